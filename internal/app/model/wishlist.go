package model

import (
	"time"

	"gorm.io/gorm"
)

type Wishlist struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	EventDate   *time.Time     `json:"event_date,omitempty"`
	PublicSlug  string         `gorm:"uniqueIndex;not null;size:80" json:"public_slug"` // shareable link id
	IsPublic    bool           `gorm:"not null;default:true" json:"is_public"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Owner User   `gorm:"foreignKey:OwnerID" json:"-"`
	Items []Item `gorm:"foreignKey:WishlistID" json:"items,omitempty"`
}

func (Wishlist) TableName() string {
	return "wishlists"
}
