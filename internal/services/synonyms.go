// internal/services/synonyms.go
package services

import (
	"sort"
	"strings"
)

// synonyms maps names members commonly type to the fragment used in catalog
// names. Keys and values are normalized (see NormalizeQuery).
var synonyms = map[string]string{
	"couch":         "sofa",
	"settee":        "sofa",
	"loveseat":      "sofa",
	"sectional":     "sofa",
	"armchair":      "chair",
	"recliner":      "chair",
	"barstool":      "stool",
	"bookcase":      "bookshelf",
	"shelves":       "shelf",
	"shelving":      "shelf",
	"dresser":       "drawers",
	"chest":         "drawers",
	"nightstand":    "bedside table",
	"night stand":   "bedside table",
	"end table":     "side table",
	"coffee table":  "low table",
	"desk":          "writing table",
	"armoire":       "wardrobe",
	"closet":        "wardrobe",
	"cupboard":      "cabinet",
	"lamp":          "light",
	"lantern":       "light",
	"chandelier":    "light",
	"sconce":        "wall light",
	"rug":           "carpet",
	"mat":           "carpet",
	"plant":         "planter",
	"potted plant":  "planter",
	"mirror":        "looking glass",
	"bed frame":     "bed",
	"bunk":          "bunk bed",
	"futon":         "bed",
	"hammock":       "bed",
	"bench seat":    "bench",
	"ottoman":       "footstool",
	"pouf":          "footstool",
	"tv":            "television",
	"telly":         "television",
	"fireplace":     "hearth",
	"chimney piece": "hearth",
	"partition":     "screen",
	"divider":       "screen",
}

// SynonymMatch records one expansion that fired for a query.
type SynonymMatch struct {
	Term      string `json:"term"`
	ExpandsTo string `json:"expands_to"`
}

// ExpandQuery returns the normalized query followed by every extra term
// produced by the synonym table, and the matches that produced them. A
// synonym fires when its key appears in the query as a whole word or phrase.
func ExpandQuery(normalized string) ([]string, []SynonymMatch) {
	terms := []string{normalized}
	seen := map[string]struct{}{normalized: {}}
	var matches []SynonymMatch

	padded := " " + normalized + " "

	keys := make([]string, 0, len(synonyms))
	for k := range synonyms {
		keys = append(keys, k)
	}
	// Longest first so "coffee table" is considered before shorter keys; then
	// alphabetical for a stable order.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		if !strings.Contains(padded, " "+key+" ") {
			continue
		}
		canonical := synonyms[key]

		// Substitute within the query so "red couch" also searches "red sofa".
		expanded := strings.TrimSpace(strings.ReplaceAll(padded, " "+key+" ", " "+canonical+" "))
		for _, term := range []string{expanded, canonical} {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			terms = append(terms, term)
		}
		matches = append(matches, SynonymMatch{Term: key, ExpandsTo: canonical})
	}

	return terms, matches
}
