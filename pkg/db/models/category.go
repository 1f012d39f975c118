package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a catalog node. Root categories carry a nil ParentID; the
// storefront renders at most two levels deep.
type Category struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	Slug      string     `gorm:"column:slug;not null;uniqueIndex"`
	ParentID  *uuid.UUID `gorm:"column:parent_id;type:uuid;index"`
	ImageURL  *string    `gorm:"column:image_url"`
	SortOrder int        `gorm:"column:sort_order;not null;default:0"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// IsRoot reports whether the category sits at the top of the tree.
func (c Category) IsRoot() bool {
	return c.ParentID == nil
}
