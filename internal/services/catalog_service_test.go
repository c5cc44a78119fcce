package services

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/javajoker/prop-catalog/internal/apperrors"
	"github.com/javajoker/prop-catalog/internal/models"
	"github.com/javajoker/prop-catalog/internal/utils"
)

type CatalogServiceSuite struct {
	storeSuite
}

func TestCatalogService(t *testing.T) {
	suite.Run(t, new(CatalogServiceSuite))
}

func (s *CatalogServiceSuite) TestApplyPayload_CreateRoundTrip() {
	price := 250
	created, err := s.catalog.ApplyFurniturePayload(s.ctx(), nil, models.FurniturePayload{
		Name:        "  Oak Bench ",
		Price:       &price,
		ImageURL:    "/images/oak-bench.png",
		CategoryIDs: []uint{s.tables.ID, s.seating.ID, s.tables.ID},
		TagIDs:      []uint{s.wood.ID, s.vintage.ID},
	})
	s.Require().NoError(err)

	fetched, err := s.catalog.GetFurniture(s.ctx(), created.ID)
	s.Require().NoError(err)

	s.Equal("Oak Bench", fetched.Name)
	s.Equal(250, fetched.Price)
	s.Require().NotNil(fetched.ImageURL)
	s.Equal("/images/oak-bench.png", *fetched.ImageURL)
	s.ElementsMatch([]uint{s.tables.ID, s.seating.ID}, fetched.CategoryIDs())
	s.Require().NotNil(fetched.PrimaryCategory())
	s.Equal(s.tables.ID, fetched.PrimaryCategory().ID)
	s.Equal("tables", fetched.PrimaryCategory().Slug)
	s.ElementsMatch([]uint{s.wood.ID, s.vintage.ID}, fetched.TagIDs())
	s.assertCatalogInvariant()
}

func (s *CatalogServiceSuite) TestApplyPayload_PriceDefaultsToZero() {
	created, err := s.catalog.ApplyFurniturePayload(s.ctx(), nil, models.FurniturePayload{
		Name:        "Free Stool",
		CategoryIDs: []uint{s.seating.ID},
	})
	s.Require().NoError(err)
	s.Equal(0, created.Price)
	s.Nil(created.ImageURL)
	s.Empty(created.Tags)
}

func (s *CatalogServiceSuite) TestApplyPayload_InvalidShape() {
	negative := -1
	cases := map[string]models.FurniturePayload{
		"empty name":      {Name: "   ", CategoryIDs: []uint{s.seating.ID}},
		"no categories":   {Name: "Chair"},
		"negative price":  {Name: "Chair", Price: &negative, CategoryIDs: []uint{s.seating.ID}},
		"bad image":       {Name: "Chair", ImageURL: "ftp://example.com/a.png", CategoryIDs: []uint{s.seating.ID}},
		"protocol path":   {Name: "Chair", ImageURL: "//cdn.example.com/a.png", CategoryIDs: []uint{s.seating.ID}},
		"zero tag id":     {Name: "Chair", CategoryIDs: []uint{s.seating.ID}, TagIDs: []uint{0}},
		"zero category":   {Name: "Chair", CategoryIDs: []uint{0}},
	}

	for name, payload := range cases {
		_, err := s.catalog.ApplyFurniturePayload(s.ctx(), nil, payload)
		s.ErrorIs(err, apperrors.ErrValidation, name)
	}

	var count int64
	s.Require().NoError(s.db.Model(&models.Furniture{}).Count(&count).Error)
	s.Zero(count)
}

func (s *CatalogServiceSuite) TestApplyPayload_UnknownReferencesListed() {
	_, err := s.catalog.ApplyFurniturePayload(s.ctx(), nil, models.FurniturePayload{
		Name:        "Ghost Chair",
		CategoryIDs: []uint{s.seating.ID, 404},
		TagIDs:      []uint{s.wood.ID, 909, 910},
	})
	s.Require().ErrorIs(err, apperrors.ErrValidation)

	var appErr *apperrors.Error
	s.Require().ErrorAs(err, &appErr)
	s.Contains(appErr.Message, "unknown category ids: 404")
	s.Contains(appErr.Message, "unknown tag ids: 909, 910")
	s.Equal(map[string][]uint{"category_ids": {404}, "tag_ids": {909, 910}}, appErr.Details)

	var count int64
	s.Require().NoError(s.db.Model(&models.Furniture{}).Count(&count).Error)
	s.Zero(count, "nothing is written when references are unknown")
}

func (s *CatalogServiceSuite) TestApplyPayload_UpdateReplacesAssociations() {
	original := s.addFurniture("Desk Lamp", 40, []uint{s.lighting.ID, s.tables.ID}, s.metal.ID, s.vintage.ID)

	price := 45
	updated, err := s.catalog.ApplyFurniturePayload(s.ctx(), &original.ID, models.FurniturePayload{
		Name:        "Brass Desk Lamp",
		Price:       &price,
		CategoryIDs: []uint{s.tables.ID},
		TagIDs:      []uint{s.wood.ID},
	})
	s.Require().NoError(err)

	s.Equal(original.ID, updated.ID)
	s.Equal("Brass Desk Lamp", updated.Name)
	s.Equal(45, updated.Price)
	s.Equal([]uint{s.tables.ID}, updated.CategoryIDs())
	s.Equal(s.tables.ID, updated.PrimaryCategory().ID)
	s.Equal([]uint{s.wood.ID}, updated.TagIDs())

	var furnitureCount, tagRows int64
	s.Require().NoError(s.db.Model(&models.Furniture{}).Count(&furnitureCount).Error)
	s.Require().NoError(s.db.Model(&models.FurnitureTag{}).Where("furniture_id = ?", original.ID).Count(&tagRows).Error)
	s.Equal(int64(1), furnitureCount)
	s.Equal(int64(1), tagRows)
	s.assertCatalogInvariant()
}

func (s *CatalogServiceSuite) TestApplyPayload_FailedUpdateLeavesItemUntouched() {
	original := s.addFurniture("Floor Lamp", 80, []uint{s.lighting.ID}, s.metal.ID)

	_, err := s.catalog.ApplyFurniturePayload(s.ctx(), &original.ID, models.FurniturePayload{
		Name:        "Renamed Lamp",
		CategoryIDs: []uint{s.seating.ID},
		TagIDs:      []uint{777},
	})
	s.Require().ErrorIs(err, apperrors.ErrValidation)

	fetched, err := s.catalog.GetFurniture(s.ctx(), original.ID)
	s.Require().NoError(err)
	s.Equal("Floor Lamp", fetched.Name)
	s.Equal([]uint{s.lighting.ID}, fetched.CategoryIDs())
	s.Equal([]uint{s.metal.ID}, fetched.TagIDs())
}

func (s *CatalogServiceSuite) TestApplyPayload_UpdateMissingTarget() {
	missing := uint(999)
	_, err := s.catalog.ApplyFurniturePayload(s.ctx(), &missing, models.FurniturePayload{
		Name:        "Nothing",
		CategoryIDs: []uint{s.seating.ID},
	})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *CatalogServiceSuite) TestGetFurniture_NotFound() {
	_, err := s.catalog.GetFurniture(s.ctx(), 12345)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *CatalogServiceSuite) TestGetFurnitureBatch_KeepsRequestOrder() {
	a := s.addFurniture("A Chair", 10, []uint{s.seating.ID})
	b := s.addFurniture("B Table", 20, []uint{s.tables.ID})
	c := s.addFurniture("C Lamp", 30, []uint{s.lighting.ID})

	items, err := s.catalog.GetFurnitureBatch(s.ctx(), []uint{c.ID, 999, a.ID, b.ID, a.ID})
	s.Require().NoError(err)
	s.Require().Len(items, 3)
	s.Equal([]uint{c.ID, a.ID, b.ID}, []uint{items[0].ID, items[1].ID, items[2].ID})
	s.NotEmpty(items[0].Categories)

	empty, err := s.catalog.GetFurnitureBatch(s.ctx(), nil)
	s.Require().NoError(err)
	s.Empty(empty)

	tooMany := make([]uint, maxBatchSize+1)
	for i := range tooMany {
		tooMany[i] = uint(i + 1)
	}
	_, err = s.catalog.GetFurnitureBatch(s.ctx(), tooMany)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *CatalogServiceSuite) TestListFurniture_SortByPriceDescending() {
	s.addFurniture("Wooden Chair", 100, []uint{s.seating.ID})
	s.addFurniture("Metal Chair", 150, []uint{s.seating.ID})

	page, err := s.catalog.ListFurniture(s.ctx(), FurnitureListParams{
		PaginationParams: utils.PaginationParams{Sort: "price", Order: "desc"},
	})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 2)
	s.Equal("Metal Chair", page.Items[0].Name)
	s.Equal("Wooden Chair", page.Items[1].Name)
	s.Equal(int64(2), page.Total)
	s.Equal(1, page.TotalPages)
}

func (s *CatalogServiceSuite) TestListFurniture_SortByNameAndNewest() {
	first := s.addFurniture("Zebra Rug", 10, []uint{s.seating.ID})
	second := s.addFurniture("Armchair", 10, []uint{s.seating.ID})

	byName, err := s.catalog.ListFurniture(s.ctx(), FurnitureListParams{
		PaginationParams: utils.PaginationParams{Sort: "name"},
	})
	s.Require().NoError(err)
	s.Equal([]uint{second.ID, first.ID}, furnitureIDs(byName.Items))

	newest, err := s.catalog.ListFurniture(s.ctx(), FurnitureListParams{})
	s.Require().NoError(err)
	s.Equal([]uint{second.ID, first.ID}, furnitureIDs(newest.Items))
}

func (s *CatalogServiceSuite) TestListFurniture_CategoryAndTagFilters() {
	both := s.addFurniture("Wood Metal Stool", 10, []uint{s.seating.ID}, s.wood.ID, s.metal.ID)
	s.addFurniture("Wood Stool", 10, []uint{s.seating.ID}, s.wood.ID)
	s.addFurniture("Wood Metal Table", 10, []uint{s.tables.ID}, s.wood.ID, s.metal.ID)

	page, err := s.catalog.ListFurniture(s.ctx(), FurnitureListParams{
		CatalogFilters: CatalogFilters{CategorySlug: "seating", TagSlugs: []string{"wood", "metal", "wood"}},
	})
	s.Require().NoError(err)
	s.Equal([]uint{both.ID}, furnitureIDs(page.Items))
	s.Equal(int64(1), page.Total)

	page, err = s.catalog.ListFurniture(s.ctx(), FurnitureListParams{
		CatalogFilters: CatalogFilters{TagSlugs: []string{"wood", "no-such-tag"}},
	})
	s.Require().NoError(err)
	s.Empty(page.Items)
	s.NotNil(page.Items)
}

func (s *CatalogServiceSuite) TestListFurniture_FavoritesOnly() {
	liked := s.addFurniture("Liked Lamp", 10, []uint{s.lighting.ID})
	s.addFurniture("Other Lamp", 10, []uint{s.lighting.ID})
	s.Require().NoError(s.db.Create(&models.Favorite{UserID: member.UserID, FurnitureID: liked.ID}).Error)

	page, err := s.catalog.ListFurniture(s.ctx(), FurnitureListParams{
		CatalogFilters: CatalogFilters{FavoritesOnly: true, Actor: &member},
	})
	s.Require().NoError(err)
	s.Equal([]uint{liked.ID}, furnitureIDs(page.Items))

	page, err = s.catalog.ListFurniture(s.ctx(), FurnitureListParams{
		CatalogFilters: CatalogFilters{FavoritesOnly: true, Actor: &other},
	})
	s.Require().NoError(err)
	s.Empty(page.Items)
	s.Zero(page.Total)

	_, err = s.catalog.ListFurniture(s.ctx(), FurnitureListParams{
		CatalogFilters: CatalogFilters{FavoritesOnly: true},
	})
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *CatalogServiceSuite) TestListFurniture_Pagination() {
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		s.addFurniture(name+" Chair", 10, []uint{s.seating.ID})
	}

	page, err := s.catalog.ListFurniture(s.ctx(), FurnitureListParams{
		PaginationParams: utils.PaginationParams{Page: 2, PerPage: 2, Sort: "name"},
	})
	s.Require().NoError(err)
	s.Equal(int64(5), page.Total)
	s.Equal(3, page.TotalPages)
	s.Equal(2, page.Page)
	s.Require().Len(page.Items, 2)
	s.Equal("C Chair", page.Items[0].Name)

	clamped, err := s.catalog.ListFurniture(s.ctx(), FurnitureListParams{
		PaginationParams: utils.PaginationParams{Page: -3, PerPage: 5000},
	})
	s.Require().NoError(err)
	s.Equal(1, clamped.Page)
	s.Equal(s.cfg.MaxPerPage, clamped.PerPage)
}

func (s *CatalogServiceSuite) TestSaveFurniture_AdminOnlyAndAudited() {
	payload := models.FurniturePayload{Name: "Staff Sofa", CategoryIDs: []uint{s.seating.ID}}

	_, err := s.catalog.SaveFurniture(s.ctx(), member, nil, payload)
	s.ErrorIs(err, apperrors.ErrForbidden)

	created, err := s.catalog.SaveFurniture(s.ctx(), admin, nil, payload)
	s.Require().NoError(err)

	var entry models.AuditLog
	s.Require().NoError(s.db.Where("resource_type = ? AND resource_id = ?", "furniture", created.ID).First(&entry).Error)
	s.Equal(models.AuditActionSaveFurniture, entry.Action)
	s.Equal(admin.UserID, entry.UserID)
	s.Equal("Staff Sofa", entry.NewValues["name"])
	s.Nil(entry.OldValues)
}

func (s *CatalogServiceSuite) TestDeleteFurniture() {
	item := s.addFurniture("Old Cabinet", 60, []uint{s.tables.ID}, s.wood.ID)
	s.Require().NoError(s.db.Create(&models.Favorite{UserID: member.UserID, FurnitureID: item.ID}).Error)
	pendingEdit := models.Submission{
		UserID:      member.UserID,
		Type:        models.SubmissionTypeEdit,
		FurnitureID: &item.ID,
		Payload:     models.FurniturePayload{Name: "Old Cabinet II", CategoryIDs: []uint{s.tables.ID}},
		Status:      models.SubmissionStatusPending,
	}
	s.Require().NoError(s.db.Create(&pendingEdit).Error)

	s.ErrorIs(s.catalog.DeleteFurniture(s.ctx(), member, item.ID), apperrors.ErrForbidden)
	s.Require().NoError(s.catalog.DeleteFurniture(s.ctx(), admin, item.ID))

	_, err := s.catalog.GetFurniture(s.ctx(), item.ID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	for _, model := range []interface{}{&models.FurnitureCategory{}, &models.FurnitureTag{}, &models.Favorite{}} {
		var count int64
		s.Require().NoError(s.db.Model(model).Where("furniture_id = ?", item.ID).Count(&count).Error)
		s.Zero(count)
	}

	var closed models.Submission
	s.Require().NoError(s.db.First(&closed, pendingEdit.ID).Error)
	s.Equal(models.SubmissionStatusRejected, closed.Status)
	s.Require().NotNil(closed.ReviewedBy)
	s.Equal(admin.UserID, *closed.ReviewedBy)

	s.ErrorIs(s.catalog.DeleteFurniture(s.ctx(), admin, item.ID), apperrors.ErrNotFound)
}

func TestOrderClause(t *testing.T) {
	cases := []struct {
		sort  FurnitureSort
		order string
		want  string
	}{
		{SortName, "", "furniture.name ASC, furniture.id ASC"},
		{SortPrice, "desc", "furniture.price DESC, furniture.id ASC"},
		{SortNewest, "", "furniture.created_at DESC, furniture.id DESC"},
		{"bogus", "asc", "furniture.created_at ASC, furniture.id ASC"},
	}
	for _, tc := range cases {
		if got := orderClause(tc.sort, tc.order); got != tc.want {
			t.Errorf("orderClause(%q, %q) = %q, want %q", tc.sort, tc.order, got, tc.want)
		}
	}
}

func furnitureIDs(items []models.Furniture) []uint {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
