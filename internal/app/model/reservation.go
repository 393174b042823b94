package model

import (
	"time"

	"gorm.io/gorm"
)

// Reservation is an anonymous visitor's exclusive claim on a non-group item.
// Rows are append-only: there is no edit or public cancel operation.
type Reservation struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	ItemID       uint           `gorm:"not null;index" json:"item_id"`
	ReserverName string         `gorm:"not null" json:"reserver_name"`
	Message      string         `gorm:"type:text" json:"message,omitempty"`
	IsGroup      bool           `gorm:"not null;default:false" json:"is_group"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"` // set only by item cascade

	Item Item `gorm:"foreignKey:ItemID" json:"-"`
}

func (Reservation) TableName() string {
	return "reservations"
}
