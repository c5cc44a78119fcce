// internal/services/duplicate_service.go
package services

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/javajoker/prop-catalog/internal/apperrors"
	"github.com/javajoker/prop-catalog/internal/config"
	"github.com/javajoker/prop-catalog/internal/models"
)

// Names shorter than this match too much of the catalog to be useful.
const minDuplicateNameLength = 3

type DuplicateCandidate struct {
	Furniture  models.Furniture `json:"furniture"`
	Similarity float64          `json:"similarity"`
}

type DuplicateService struct {
	db        *gorm.DB
	catalog   *CatalogService
	threshold float64
	limit     int
}

func NewDuplicateService(db *gorm.DB, catalog *CatalogService, cfg config.CatalogConfig) *DuplicateService {
	return &DuplicateService{
		db:        db,
		catalog:   catalog,
		threshold: cfg.DuplicateThreshold,
		limit:     cfg.DuplicateLimit,
	}
}

// FindCandidates returns existing furniture whose name is close to name,
// most similar first. categoryID limits the comparison to that category and
// excludeID drops one item (the one being edited).
func (s *DuplicateService) FindCandidates(ctx context.Context, name string, categoryID, excludeID *uint) ([]DuplicateCandidate, error) {
	normalized := NormalizeName(name)
	if utf8.RuneCountInString(strings.ReplaceAll(normalized, " ", "")) < minDuplicateNameLength {
		return []DuplicateCandidate{}, nil
	}

	query := s.db.WithContext(ctx).Model(&models.Furniture{})
	if categoryID != nil {
		query = query.Where("furniture.id IN (?)",
			s.db.Model(&models.FurnitureCategory{}).
				Select("furniture_id").
				Where("category_id = ?", *categoryID))
	}
	if excludeID != nil {
		query = query.Where("furniture.id <> ?", *excludeID)
	}

	var rows []struct {
		ID   uint
		Name string
	}
	if err := query.Select("furniture.id", "furniture.name").Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to load furniture names")
	}

	type scored struct {
		id         uint
		name       string
		similarity float64
	}
	var matches []scored
	for _, row := range rows {
		if sim := normalizedSimilarity(normalized, NormalizeName(row.Name)); sim >= s.threshold {
			matches = append(matches, scored{id: row.ID, name: row.Name, similarity: sim})
		}
	}
	if len(matches) == 0 {
		return []DuplicateCandidate{}, nil
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].similarity != matches[j].similarity {
			return matches[i].similarity > matches[j].similarity
		}
		if matches[i].name != matches[j].name {
			return matches[i].name < matches[j].name
		}
		return matches[i].id < matches[j].id
	})
	if len(matches) > s.limit {
		matches = matches[:s.limit]
	}

	ids := make([]uint, len(matches))
	for i, m := range matches {
		ids[i] = m.id
	}
	items, err := s.catalog.loadOrdered(s.db.WithContext(ctx), ids)
	if err != nil {
		return nil, err
	}

	similarity := make(map[uint]float64, len(matches))
	for _, m := range matches {
		similarity[m.id] = m.similarity
	}

	candidates := make([]DuplicateCandidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, DuplicateCandidate{Furniture: item, Similarity: similarity[item.ID]})
	}
	return candidates, nil
}

// NameSimilarity scores two furniture names in [0, 1].
func NameSimilarity(a, b string) float64 {
	return normalizedSimilarity(NormalizeName(a), NormalizeName(b))
}

// normalizedSimilarity takes the better of the edit-distance similarity of
// the names with spaces removed and the overlap of their word sets.
func normalizedSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	compactA := strings.ReplaceAll(a, " ", "")
	compactB := strings.ReplaceAll(b, " ", "")
	if compactA == compactB {
		return 1
	}

	return max(editSimilarity(compactA, compactB), wordOverlap(a, b))
}

func editSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshteinDistance(ra, rb))/float64(longest)
}

// wordOverlap is the Jaccard index of the two word sets.
func wordOverlap(a, b string) float64 {
	setA := make(map[string]struct{})
	for _, w := range strings.Fields(a) {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{})
	for _, w := range strings.Fields(b) {
		setB[w] = struct{}{}
	}

	shared := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// levenshteinDistance calculates the edit distance between two rune slices
// keeping only two rows of the matrix.
func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
