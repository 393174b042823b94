package model

import (
	"time"

	"gorm.io/gorm"
)

// Contribution is a recorded pledge toward a group-funded item. It is a
// declaration of intent for display, not a money movement. Append-only.
type Contribution struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	ItemID          uint           `gorm:"not null;index" json:"item_id"`
	AmountCents     int64          `gorm:"not null;check:amount_cents > 0" json:"amount_cents"`
	ContributorName string         `gorm:"not null" json:"contributor_name"`
	IsAnonymous     bool           `gorm:"not null;default:false" json:"is_anonymous"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"` // set only by item cascade

	Item Item `gorm:"foreignKey:ItemID" json:"-"`
}

func (Contribution) TableName() string {
	return "contributions"
}
