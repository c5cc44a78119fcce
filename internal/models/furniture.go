// internal/models/furniture.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

type Furniture struct {
	BaseModel
	Name     string  `json:"name" gorm:"size:255;not null;index"`
	Price    int     `json:"price" gorm:"not null;default:0;index"`
	ImageURL *string `json:"image_url" gorm:"size:500"`

	// SearchName is Name case- and diacritic-folded, kept in step by the
	// catalog write path.
	SearchName string `json:"-" gorm:"size:255;not null;default:'';index"`

	// Relationships
	Categories []FurnitureCategory `json:"categories" gorm:"foreignKey:FurnitureID"`
	Tags       []Tag               `json:"tags" gorm:"many2many:furniture_tags"`
}

func (Furniture) TableName() string {
	return "furniture"
}

// PrimaryCategory returns the association flagged primary, or nil if the
// categories were not loaded.
func (f *Furniture) PrimaryCategory() *Category {
	for i := range f.Categories {
		if f.Categories[i].IsPrimary {
			return &f.Categories[i].Category
		}
	}
	return nil
}

// CategoryIDs returns the associated category ids, primary first.
func (f *Furniture) CategoryIDs() []uint {
	ids := make([]uint, 0, len(f.Categories))
	for _, fc := range f.Categories {
		if fc.IsPrimary {
			ids = append([]uint{fc.CategoryID}, ids...)
			continue
		}
		ids = append(ids, fc.CategoryID)
	}
	return ids
}

func (f *Furniture) TagIDs() []uint {
	ids := make([]uint, 0, len(f.Tags))
	for _, t := range f.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// FurnitureCategory is the furniture×category junction. Exactly one row per
// furniture carries IsPrimary.
type FurnitureCategory struct {
	FurnitureID uint `json:"furniture_id" gorm:"primaryKey"`
	CategoryID  uint `json:"category_id" gorm:"primaryKey;index"`
	IsPrimary   bool `json:"is_primary" gorm:"not null;default:false"`

	// Relationships
	Category Category `json:"category" gorm:"foreignKey:CategoryID"`
}

func (FurnitureCategory) TableName() string {
	return "furniture_categories"
}

type FurnitureTag struct {
	FurnitureID uint `json:"furniture_id" gorm:"primaryKey"`
	TagID       uint `json:"tag_id" gorm:"primaryKey;index"`
}

func (FurnitureTag) TableName() string {
	return "furniture_tags"
}

// FurniturePayload is the complete desired state of a furniture item. It is
// the input of the catalog write contract and the document stored on a
// submission.
type FurniturePayload struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Price       *int   `json:"price,omitempty" validate:"omitempty,min=0"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,max=500,image_ref"`
	CategoryIDs []uint `json:"category_ids" validate:"required,min=1,dive,gt=0"`
	TagIDs      []uint `json:"tag_ids" validate:"omitempty,dive,gt=0"`
	Notes       string `json:"notes,omitempty" validate:"max=2000"`
}

// Normalize trims text fields and drops repeated ids while keeping the
// first-seen order, so the first category stays primary.
func (p *FurniturePayload) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	p.Notes = strings.TrimSpace(p.Notes)
	p.CategoryIDs = uniqueIDs(p.CategoryIDs)
	p.TagIDs = uniqueIDs(p.TagIDs)
}

// PriceOrDefault returns the price, zero when omitted.
func (p *FurniturePayload) PriceOrDefault() int {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

func (p FurniturePayload) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *FurniturePayload) Scan(value interface{}) error {
	if value == nil {
		*p = FurniturePayload{}
		return nil
	}

	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, p)
}

func uniqueIDs(ids []uint) []uint {
	if ids == nil {
		return nil
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
