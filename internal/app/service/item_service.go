package service

import (
	"errors"
	"fmt"

	"github.com/giftwish/giftwish-backend/internal/app/model"
	"github.com/giftwish/giftwish-backend/internal/app/repository"
	"github.com/giftwish/giftwish-backend/internal/funding"
	"github.com/giftwish/giftwish-backend/internal/websocket"
	"github.com/giftwish/giftwish-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrWishlistNotFound   = errors.New("wishlist not found")
	ErrGroupFundingLocked = errors.New("group funding cannot be disabled once contributions exist")
)

// CreateItemInput carries the owner-supplied fields of a new item. Money is
// in minor units throughout.
type CreateItemInput struct {
	Title                string
	URL                  string
	ImageURL             string
	PriceCents           *int64
	AllowGroupFunding    bool
	TargetAmountCents    *int64
	MinContributionCents *int64
}

// UpdateItemInput uses pointers on every field so the controller can tell
// "absent" from "set to zero value". MoneyCleared flags let the owner clear
// an optional money field entirely.
type UpdateItemInput struct {
	Title                *string
	URL                  *string
	ImageURL             *string
	PriceCents           *int64
	PriceCleared         bool
	AllowGroupFunding    *bool
	TargetAmountCents    *int64
	TargetCleared        bool
	MinContributionCents *int64
	MinCleared           bool
}

type ItemService interface {
	Create(ownerID, wishlistID uint, input CreateItemInput) (*model.Item, error)
	Update(ownerID, itemID uint, input UpdateItemInput) (*model.Item, error)
	Delete(ownerID, itemID uint) error
}

type itemService struct {
	db           *gorm.DB
	wishlistRepo repository.WishlistRepository
	itemRepo     repository.ItemRepository
	notifier     ChangeNotifier
}

func NewItemService(db *gorm.DB, wishlistRepo repository.WishlistRepository, itemRepo repository.ItemRepository, notifier ChangeNotifier) ItemService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &itemService{
		db:           db,
		wishlistRepo: wishlistRepo,
		itemRepo:     itemRepo,
		notifier:     notifier,
	}
}

// resolveMinimum pins the effective minimum contribution at write time. An
// explicit minimum wins; otherwise a group-funded item with a known target
// gets the 10% default. Later target edits do not retroactively move the bar
// for contributions already judged against it.
func resolveMinimum(allowGroupFunding bool, explicitMin, targetCents, priceCents *int64) *int64 {
	if explicitMin != nil {
		return explicitMin
	}
	if !allowGroupFunding {
		return nil
	}
	target := funding.EffectiveTarget(targetCents, priceCents)
	if target == 0 {
		return nil
	}
	min := funding.DefaultMinimum(target)
	return &min
}

func (s *itemService) Create(ownerID, wishlistID uint, input CreateItemInput) (*model.Item, error) {
	wishlist, err := s.wishlistRepo.FindByID(wishlistID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWishlistNotFound
		}
		return nil, err
	}
	if wishlist.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	item := &model.Item{
		WishlistID:           wishlistID,
		Title:                input.Title,
		URL:                  input.URL,
		ImageURL:             input.ImageURL,
		PriceCents:           input.PriceCents,
		AllowGroupFunding:    input.AllowGroupFunding,
		TargetAmountCents:    input.TargetAmountCents,
		MinContributionCents: resolveMinimum(input.AllowGroupFunding, input.MinContributionCents, input.TargetAmountCents, input.PriceCents),
	}

	if err := s.itemRepo.Create(item); err != nil {
		logger.Error("Failed to create item", err, map[string]interface{}{
			"wishlist_id": wishlistID,
		})
		return nil, err
	}

	s.notifier.Publish(wishlistID, websocket.EventItemCreated)

	logger.Info("Item created", map[string]interface{}{
		"item_id":     item.ID,
		"wishlist_id": wishlistID,
	})
	return item, nil
}

func (s *itemService) Update(ownerID, itemID uint, input UpdateItemInput) (*model.Item, error) {
	item, err := s.itemRepo.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.Wishlist.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during item update, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"item_id": itemID,
			})
		}
	}()

	// Re-read under the same row lock Contribute takes, so the flag-flip
	// guard counts the ledger as of this transaction and no pledge can land
	// between the check and the save.
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(item, itemID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		logger.Error("Failed to fetch item during update", err, map[string]interface{}{
			"item_id": itemID,
		})
		return nil, err
	}

	// Disabling group funding while pledges exist would strand money that
	// was accepted under the funding rules, so that flip is refused.
	if input.AllowGroupFunding != nil && !*input.AllowGroupFunding && item.AllowGroupFunding {
		var count int64
		if err := tx.Model(&model.Contribution{}).
			Where("item_id = ?", itemID).
			Count(&count).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		if count > 0 {
			tx.Rollback()
			return nil, ErrGroupFundingLocked
		}
	}

	if input.Title != nil {
		item.Title = *input.Title
	}
	if input.URL != nil {
		item.URL = *input.URL
	}
	if input.ImageURL != nil {
		item.ImageURL = *input.ImageURL
	}
	if input.PriceCleared {
		item.PriceCents = nil
	} else if input.PriceCents != nil {
		item.PriceCents = input.PriceCents
	}
	if input.AllowGroupFunding != nil {
		item.AllowGroupFunding = *input.AllowGroupFunding
	}
	if input.TargetCleared {
		item.TargetAmountCents = nil
	} else if input.TargetAmountCents != nil {
		item.TargetAmountCents = input.TargetAmountCents
	}

	minTouched := input.MinCleared || input.MinContributionCents != nil
	switch {
	case input.MinCleared:
		item.MinContributionCents = resolveMinimum(item.AllowGroupFunding, nil, item.TargetAmountCents, item.PriceCents)
	case input.MinContributionCents != nil:
		item.MinContributionCents = input.MinContributionCents
	}
	// An item that just turned group-funded needs a minimum even if the
	// request did not set one.
	if !minTouched && item.AllowGroupFunding && item.MinContributionCents == nil {
		item.MinContributionCents = resolveMinimum(true, nil, item.TargetAmountCents, item.PriceCents)
	}
	if !item.AllowGroupFunding {
		item.MinContributionCents = nil
	}

	if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to update item", err, map[string]interface{}{
			"item_id": itemID,
		})
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit item update", err, map[string]interface{}{
			"item_id": itemID,
		})
		return nil, err
	}

	s.notifier.Publish(item.WishlistID, websocket.EventItemUpdated)

	logger.Info("Item updated", map[string]interface{}{
		"item_id": itemID,
	})
	return item, nil
}

// Delete soft-deletes the item with its reservations and contributions in a
// single transaction, so a concurrent snapshot sees either the full ledger or
// none of it.
func (s *itemService) Delete(ownerID, itemID uint) error {
	item, err := s.itemRepo.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	if item.Wishlist.OwnerID != ownerID {
		return ErrNotOwner
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during item delete, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"item_id": itemID,
			})
		}
	}()

	if err := tx.Where("item_id = ?", itemID).Delete(&model.Reservation{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("item_id = ?", itemID).Delete(&model.Contribution{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&model.Item{}, itemID).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit item delete", err, map[string]interface{}{
			"item_id": itemID,
		})
		return err
	}

	s.notifier.Publish(item.WishlistID, websocket.EventItemDeleted)

	logger.Info("Item deleted", map[string]interface{}{
		"item_id":     itemID,
		"wishlist_id": item.WishlistID,
	})
	return nil
}
