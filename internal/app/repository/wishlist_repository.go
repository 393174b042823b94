package repository

import (
	"github.com/giftwish/giftwish-backend/internal/app/model"
	"github.com/giftwish/giftwish-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistRepository interface {
	Create(wishlist *model.Wishlist) error
	FindByID(id uint) (*model.Wishlist, error)
	FindByIDWithItems(id uint) (*model.Wishlist, error)
	FindBySlugWithItems(slug string) (*model.Wishlist, error)
	FindByOwnerID(ownerID uint) ([]model.Wishlist, error)
	SlugExists(slug string) (bool, error)
	Update(wishlist *model.Wishlist) error
	Delete(wishlist *model.Wishlist) error
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

// preloadLedger loads items with their full reservation/contribution ledger,
// oldest rows first so projections are stable across reads.
func (r *wishlistRepository) preloadLedger() *gorm.DB {
	return r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("wishlist_items.created_at ASC")
		}).
		Preload("Items.Reservations", func(db *gorm.DB) *gorm.DB {
			return db.Order("reservations.created_at ASC")
		}).
		Preload("Items.Contributions", func(db *gorm.DB) *gorm.DB {
			return db.Order("contributions.created_at ASC")
		})
}

func (r *wishlistRepository) Create(wishlist *model.Wishlist) error {
	if err := r.db.Create(wishlist).Error; err != nil {
		logger.Error("Failed to create wishlist in database", err, map[string]interface{}{
			"owner_id": wishlist.OwnerID,
		})
		return err
	}
	return nil
}

func (r *wishlistRepository) FindByID(id uint) (*model.Wishlist, error) {
	var wishlist model.Wishlist
	if err := r.db.First(&wishlist, id).Error; err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func (r *wishlistRepository) FindByIDWithItems(id uint) (*model.Wishlist, error) {
	var wishlist model.Wishlist
	if err := r.preloadLedger().First(&wishlist, id).Error; err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func (r *wishlistRepository) FindBySlugWithItems(slug string) (*model.Wishlist, error) {
	var wishlist model.Wishlist
	if err := r.preloadLedger().
		Where("public_slug = ? AND is_public = ?", slug, true).
		First(&wishlist).Error; err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func (r *wishlistRepository) FindByOwnerID(ownerID uint) ([]model.Wishlist, error) {
	var wishlists []model.Wishlist
	if err := r.db.
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&wishlists).Error; err != nil {
		logger.Error("Failed to find wishlists by owner in database", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return nil, err
	}
	return wishlists, nil
}

func (r *wishlistRepository) SlugExists(slug string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Wishlist{}).
		Where("public_slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *wishlistRepository) Update(wishlist *model.Wishlist) error {
	if err := r.db.Omit(clause.Associations).Save(wishlist).Error; err != nil {
		logger.Error("Failed to update wishlist in database", err, map[string]interface{}{
			"wishlist_id": wishlist.ID,
		})
		return err
	}
	return nil
}

func (r *wishlistRepository) Delete(wishlist *model.Wishlist) error {
	if err := r.db.Delete(wishlist).Error; err != nil {
		logger.Error("Failed to delete wishlist in database", err, map[string]interface{}{
			"wishlist_id": wishlist.ID,
		})
		return err
	}
	return nil
}
