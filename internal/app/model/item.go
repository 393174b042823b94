package model

import (
	"time"

	"gorm.io/gorm"
)

// Item is a single giftable entry within a wishlist. All money fields are
// integer minor currency units (cents); floats never touch money.
type Item struct {
	ID                   uint           `gorm:"primarykey" json:"id"`
	WishlistID           uint           `gorm:"not null;index" json:"wishlist_id"`
	Title                string         `gorm:"not null" json:"title"`
	URL                  string         `gorm:"size:500" json:"url,omitempty"`
	ImageURL             string         `gorm:"size:500" json:"image_url,omitempty"`
	PriceCents           *int64         `gorm:"check:price_cents >= 0" json:"price_cents,omitempty"`
	AllowGroupFunding    bool           `gorm:"not null;default:false" json:"allow_group_funding"`
	TargetAmountCents    *int64         `gorm:"check:target_amount_cents >= 0" json:"target_amount_cents,omitempty"`
	MinContributionCents *int64         `gorm:"check:min_contribution_cents >= 0" json:"min_contribution_cents,omitempty"` // resolved at create/edit time, see funding.DefaultMinimum
	SourceUnavailable    bool           `gorm:"not null;default:false" json:"source_unavailable"`                          // owner-set, informational only
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	Wishlist      Wishlist       `gorm:"foreignKey:WishlistID" json:"-"`
	Reservations  []Reservation  `gorm:"foreignKey:ItemID" json:"reservations,omitempty"`
	Contributions []Contribution `gorm:"foreignKey:ItemID" json:"contributions,omitempty"`
}

func (Item) TableName() string {
	return "wishlist_items"
}
