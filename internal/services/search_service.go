// internal/services/search_service.go
package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/prop-catalog/internal/apperrors"
	"github.com/javajoker/prop-catalog/internal/config"
	"github.com/javajoker/prop-catalog/internal/models"
	"github.com/javajoker/prop-catalog/internal/utils"
)

const (
	minQueryLength = 2
	maxQueryLength = 255

	// Candidates beyond this, in search_name order, are not ranked.
	maxSearchCandidates = 2000
)

// Match scores. Terms that came from the synonym table lose synonymPenalty so
// the caller's own wording ranks first.
const (
	scoreExactName   = 100
	scoreNamePrefix  = 70
	scoreNameContain = 50
	scoreRelatedOnly = 10
	synonymPenalty   = 5
)

type SearchParams struct {
	Query string
	utils.PaginationParams
	CategorySlug  string
	FavoritesOnly bool
	Actor         *models.Actor
}

type SearchMeta struct {
	Query         string         `json:"query"`
	ExpandedTerms []string       `json:"expanded_terms"`
	Synonyms      []SynonymMatch `json:"synonyms"`
}

type SearchResult struct {
	*FurniturePage
	// Meta is set only when synonym expansion added terms.
	Meta *SearchMeta `json:"meta,omitempty"`
}

// QueryRecorder receives executed searches for analytics. Implementations
// must not block the search and must not report failure to it.
type QueryRecorder interface {
	Record(query string, resultCount int64, userID *uint)
}

type SearchService struct {
	db       *gorm.DB
	catalog  *CatalogService
	recorder QueryRecorder
	cfg      config.CatalogConfig

	// maxCandidates bounds the rows ranked in memory per search.
	maxCandidates int
}

func NewSearchService(db *gorm.DB, catalog *CatalogService, recorder QueryRecorder, cfg config.CatalogConfig) *SearchService {
	return &SearchService{
		db:            db,
		catalog:       catalog,
		recorder:      recorder,
		cfg:           cfg,
		maxCandidates: maxSearchCandidates,
	}
}

type searchCandidate struct {
	ID    uint
	Name  string
	score int
}

func (s *SearchService) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	query := NormalizeQuery(params.Query)
	length := utf8.RuneCountInString(query)
	if length < minQueryLength {
		return nil, apperrors.Validationf("search query must be at least %d characters", minQueryLength)
	}
	if length > maxQueryLength {
		return nil, apperrors.Validationf("search query must be at most %d characters", maxQueryLength)
	}

	pagination := params.PaginationParams.Normalize(s.cfg.DefaultPerPage, s.cfg.MaxPerPage)
	terms, matches := ExpandQuery(query)

	result := &SearchResult{}
	if len(terms) > 1 {
		result.Meta = &SearchMeta{
			Query:         query,
			ExpandedTerms: terms[1:],
			Synonyms:      matches,
		}
	}

	base, empty, err := s.catalog.filteredQuery(ctx, CatalogFilters{
		CategorySlug:  params.CategorySlug,
		FavoritesOnly: params.FavoritesOnly,
		Actor:         params.Actor,
	})
	if err != nil {
		return nil, err
	}
	if empty {
		result.FurniturePage = newFurniturePage(nil, 0, pagination)
		s.record(query, 0, params.Actor)
		return result, nil
	}

	condition, args, err := s.matchCondition(ctx, terms)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID   uint
		Name string
	}
	err = base.Where(condition, args...).
		Select("furniture.id", "furniture.name").
		Order("furniture.search_name ASC").
		Order("furniture.id ASC").
		Limit(s.maxCandidates).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to search furniture")
	}

	candidates := make([]searchCandidate, len(rows))
	for i, row := range rows {
		candidates[i] = searchCandidate{ID: row.ID, Name: row.Name, score: scoreName(row.Name, terms)}
	}
	sortCandidates(candidates)

	total := int64(len(candidates))
	start := pagination.Offset()
	if start > len(candidates) {
		start = len(candidates)
	}
	end := start + pagination.PerPage
	if end > len(candidates) {
		end = len(candidates)
	}

	ids := make([]uint, 0, end-start)
	for _, c := range candidates[start:end] {
		ids = append(ids, c.ID)
	}

	items := []models.Furniture{}
	if len(ids) > 0 {
		items, err = s.catalog.loadOrdered(s.db.WithContext(ctx), ids)
		if err != nil {
			return nil, err
		}
	}

	result.FurniturePage = newFurniturePage(items, total, pagination)
	s.record(query, total, params.Actor)
	return result, nil
}

// matchCondition ORs a folded-name match for every term with membership in
// any tag or category whose folded name contains a term.
func (s *SearchService) matchCondition(ctx context.Context, terms []string) (string, []interface{}, error) {
	clauses := make([]string, 0, len(terms)+2)
	args := make([]interface{}, 0, len(terms)+2)
	for _, term := range terms {
		clauses = append(clauses, `furniture.search_name LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(term))
	}

	tagIDs, err := s.matchingNames(ctx, &models.Tag{}, terms)
	if err != nil {
		return "", nil, err
	}
	if len(tagIDs) > 0 {
		clauses = append(clauses,
			"furniture.id IN (SELECT furniture_tags.furniture_id FROM furniture_tags WHERE furniture_tags.tag_id IN ?)")
		args = append(args, tagIDs)
	}

	categoryIDs, err := s.matchingNames(ctx, &models.Category{}, terms)
	if err != nil {
		return "", nil, err
	}
	if len(categoryIDs) > 0 {
		clauses = append(clauses,
			"furniture.id IN (SELECT furniture_categories.furniture_id FROM furniture_categories WHERE furniture_categories.category_id IN ?)")
		args = append(args, categoryIDs)
	}

	return "(" + strings.Join(clauses, " OR ") + ")", args, nil
}

// matchingNames returns the ids of taxonomy rows whose folded name contains
// any of the terms. Taxonomy tables are small enough to fold in memory.
func (s *SearchService) matchingNames(ctx context.Context, model interface{}, terms []string) ([]uint, error) {
	var rows []struct {
		ID   uint
		Name string
	}
	if err := s.db.WithContext(ctx).Model(model).Select("id", "name").Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "failed to load taxonomy names")
	}

	var ids []uint
	for _, row := range rows {
		name := NormalizeQuery(row.Name)
		for _, term := range terms {
			if strings.Contains(name, term) {
				ids = append(ids, row.ID)
				break
			}
		}
	}
	return ids, nil
}

func (s *SearchService) record(query string, total int64, actor *models.Actor) {
	if s.recorder == nil || !s.cfg.SearchLogging {
		return
	}
	var userID *uint
	if actor != nil && actor.UserID != 0 {
		id := actor.UserID
		userID = &id
	}
	s.recorder.Record(query, total, userID)
}

// scoreName rates how well a furniture name matches the expanded terms.
// Rows that matched only through a tag or category get scoreRelatedOnly.
func scoreName(name string, terms []string) int {
	normalized := NormalizeQuery(name)
	best := scoreRelatedOnly
	for i, term := range terms {
		var score int
		switch {
		case normalized == term:
			score = scoreExactName
		case strings.HasPrefix(normalized, term):
			score = scoreNamePrefix
		case strings.Contains(normalized, term):
			score = scoreNameContain
		default:
			continue
		}
		if i > 0 {
			score -= synonymPenalty
		}
		if score > best {
			best = score
		}
	}
	return best
}

func sortCandidates(candidates []searchCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		an, bn := NormalizeQuery(a.Name), NormalizeQuery(b.Name)
		if an != bn {
			return an < bn
		}
		return a.ID < b.ID
	})
}

// SearchLogRecorder stores searches in search_logs from a goroutine per call.
type SearchLogRecorder struct {
	db *gorm.DB
	wg sync.WaitGroup
}

func NewSearchLogRecorder(db *gorm.DB) *SearchLogRecorder {
	return &SearchLogRecorder{db: db}
}

func (r *SearchLogRecorder) Record(query string, resultCount int64, userID *uint) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				logrus.WithField("panic", p).Error("Search log recorder panicked")
			}
		}()

		entry := &models.SearchLog{
			Query:       query,
			ResultCount: resultCount,
			UserID:      userID,
		}
		if err := r.db.Create(entry).Error; err != nil {
			logrus.WithError(err).WithField("query", query).Warn("Failed to record search query")
		}
	}()
}

// Wait blocks until every pending write has finished.
func (r *SearchLogRecorder) Wait() {
	r.wg.Wait()
}

type PopularQuery struct {
	Query       string  `json:"query"`
	Searches    int64   `json:"searches"`
	AvgResults  float64 `json:"avg_results"`
	ZeroResults int64   `json:"zero_results"`
}

// PopularQueries returns the most frequent searches since the given time.
func (s *SearchService) PopularQueries(ctx context.Context, actor models.Actor, since time.Time, limit int) ([]PopularQuery, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only staff can view search analytics")
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var rows []PopularQuery
	err := s.db.WithContext(ctx).
		Model(&models.SearchLog{}).
		Select("query, COUNT(*) AS searches, AVG(result_count) AS avg_results, "+
			"SUM(CASE WHEN result_count = 0 THEN 1 ELSE 0 END) AS zero_results").
		Where("created_at >= ?", since).
		Group("query").
		Order("searches DESC").
		Order("query ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load search analytics")
	}
	if rows == nil {
		rows = []PopularQuery{}
	}
	return rows, nil
}
