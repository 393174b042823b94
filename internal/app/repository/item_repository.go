package repository

import (
	"github.com/giftwish/giftwish-backend/internal/app/model"
	"github.com/giftwish/giftwish-backend/pkg/logger"
	"gorm.io/gorm"
)

type ItemRepository interface {
	Create(item *model.Item) error
	FindByID(id uint) (*model.Item, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(item *model.Item) error {
	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create item in database", err, map[string]interface{}{
			"wishlist_id": item.WishlistID,
		})
		return err
	}
	return nil
}

// FindByID loads the item with its parent wishlist, which callers use for
// ownership checks.
func (r *itemRepository) FindByID(id uint) (*model.Item, error) {
	var item model.Item
	if err := r.db.Preload("Wishlist").First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

