package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type DuplicateServiceSuite struct {
	storeSuite
	duplicates *DuplicateService
}

func TestDuplicateService(t *testing.T) {
	suite.Run(t, new(DuplicateServiceSuite))
}

func (s *DuplicateServiceSuite) SetupTest() {
	s.storeSuite.SetupTest()
	s.duplicates = NewDuplicateService(s.db, s.catalog, s.cfg)
}

func (s *DuplicateServiceSuite) TestShortNamesReturnEmpty() {
	s.addFurniture("ab", 10, []uint{s.seating.ID})

	for _, name := range []string{"", "a", "ab", " a!b "} {
		candidates, err := s.duplicates.FindCandidates(s.ctx(), name, nil, nil)
		s.Require().NoError(err)
		s.NotNil(candidates)
		s.Empty(candidates, name)
	}
}

func (s *DuplicateServiceSuite) TestSameCategoryMatch() {
	sofa := s.addFurniture("red sofa", 10, []uint{s.seating.ID}, s.wood.ID)

	candidates, err := s.duplicates.FindCandidates(s.ctx(), "Red Sofa", &s.seating.ID, nil)
	s.Require().NoError(err)
	s.Require().Len(candidates, 1)
	s.Equal(sofa.ID, candidates[0].Furniture.ID)
	s.Equal(1.0, candidates[0].Similarity)
	s.NotEmpty(candidates[0].Furniture.Categories)
	s.Equal([]uint{s.wood.ID}, candidates[0].Furniture.TagIDs())
}

func (s *DuplicateServiceSuite) TestDifferentCategoryIsIgnored() {
	s.addFurniture("red sofa", 10, []uint{s.tables.ID})

	candidates, err := s.duplicates.FindCandidates(s.ctx(), "Red Sofa", &s.seating.ID, nil)
	s.Require().NoError(err)
	s.Empty(candidates)

	// Without a category the item is found.
	candidates, err = s.duplicates.FindCandidates(s.ctx(), "Red Sofa", nil, nil)
	s.Require().NoError(err)
	s.Len(candidates, 1)
}

func (s *DuplicateServiceSuite) TestExcludeID() {
	item := s.addFurniture("Wing Chair", 10, []uint{s.seating.ID})

	candidates, err := s.duplicates.FindCandidates(s.ctx(), "Wing Chair", nil, &item.ID)
	s.Require().NoError(err)
	s.Empty(candidates)
}

func (s *DuplicateServiceSuite) TestOrderingThresholdAndLimit() {
	exact := s.addFurniture("Wooden Chair", 10, []uint{s.seating.ID})
	plural := s.addFurniture("Wooden Chairs", 10, []uint{s.seating.ID})
	s.addFurniture("Metal Chair", 10, []uint{s.seating.ID})
	s.addFurniture("Armchair", 10, []uint{s.seating.ID})

	candidates, err := s.duplicates.FindCandidates(s.ctx(), "wooden-chair", nil, nil)
	s.Require().NoError(err)
	s.Require().Len(candidates, 2)
	s.Equal(exact.ID, candidates[0].Furniture.ID)
	s.Equal(plural.ID, candidates[1].Furniture.ID)
	s.Greater(candidates[0].Similarity, candidates[1].Similarity)

	for i := 0; i < 8; i++ {
		s.addFurniture("Wooden Chair", 10, []uint{s.seating.ID})
	}
	candidates, err = s.duplicates.FindCandidates(s.ctx(), "Wooden Chair", nil, nil)
	s.Require().NoError(err)
	s.Len(candidates, s.cfg.DuplicateLimit)
}

func TestNameSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("Red Sofa", "red   SOFA"))
	assert.Equal(t, 1.0, NameSimilarity("Wing-Back Chair", "wingback chair"))
	assert.Equal(t, 1.0, NameSimilarity("Café Table", "cafe table"))
	assert.Equal(t, 1.0, NameSimilarity("Sofa Red Velvet", "Red Velvet Sofa"))
	assert.InDelta(t, 1-1.0/12, NameSimilarity("Wooden Chair", "Wooden Chairs"), 1e-9)
	assert.Less(t, NameSimilarity("Chair", "Armchair"), 0.75)
	assert.Less(t, NameSimilarity("Wooden Chair", "Metal Chair"), 0.75)
	assert.Equal(t, 0.0, NameSimilarity("", "chair"))
}

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"sofa", "sofa", 0},
		{"café", "cafe", 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, levenshteinDistance([]rune(tc.a), []rune(tc.b)), "%q/%q", tc.a, tc.b)
	}
}
