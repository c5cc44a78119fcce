// internal/services/text.go
package services

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars     = regexp.MustCompile(`[^a-z0-9]+`)
	likeReplacer     = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	nonAlphanumerics = func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) }
)

// foldDiacritics lowercases s and strips combining marks: "Café" -> "cafe".
func foldDiacritics(s string) string {
	// Transformers are stateful, build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// NormalizeQuery case-folds, trims and collapses whitespace runs.
func NormalizeQuery(s string) string {
	return strings.Join(strings.Fields(foldDiacritics(s)), " ")
}

// NormalizeName reduces a furniture name to lowercase words separated by
// single spaces, with punctuation treated as a separator.
func NormalizeName(s string) string {
	return strings.Join(strings.FieldsFunc(foldDiacritics(s), nonAlphanumerics), " ")
}

// Slugify converts a display name to a URL-safe slug: "Mid-Century Modern" -> "mid-century-modern".
func Slugify(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// likePattern returns a %term% pattern for use with ESCAPE '\'.
func likePattern(term string) string {
	return "%" + likeReplacer.Replace(term) + "%"
}
