// internal/models/taxonomy.go
package models

type Category struct {
	BaseModel
	Name      string `json:"name" gorm:"size:100;not null"`
	Slug      string `json:"slug" gorm:"size:100;not null;uniqueIndex"`
	Icon      string `json:"icon" gorm:"size:50"`
	SortOrder int    `json:"sort_order" gorm:"not null;default:0;index"`
}

type TagGroup struct {
	BaseModel
	Name      string `json:"name" gorm:"size:100;not null"`
	Slug      string `json:"slug" gorm:"size:100;not null;uniqueIndex"`
	Color     string `json:"color" gorm:"size:20"`
	SortOrder int    `json:"sort_order" gorm:"not null;default:0;index"`

	// Relationships
	Tags []Tag `json:"tags,omitempty" gorm:"foreignKey:TagGroupID"`
}

type Tag struct {
	BaseModel
	Name       string `json:"name" gorm:"size:100;not null"`
	Slug       string `json:"slug" gorm:"size:100;not null;uniqueIndex"`
	Color      string `json:"color" gorm:"size:20"`
	TagGroupID *uint  `json:"tag_group_id" gorm:"index"`

	// Relationships
	TagGroup *TagGroup `json:"tag_group,omitempty" gorm:"foreignKey:TagGroupID"`
}
