package service

import (
	"errors"
	"fmt"

	"github.com/giftwish/giftwish-backend/internal/app/model"
	"github.com/giftwish/giftwish-backend/internal/funding"
	"github.com/giftwish/giftwish-backend/internal/websocket"
	"github.com/giftwish/giftwish-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrItemNotFound         = errors.New("item not found")
	ErrAlreadyReserved      = errors.New("item is already reserved")
	ErrGroupFundingItem     = errors.New("group-funded items take contributions, not reservations")
	ErrGroupFundingDisabled = errors.New("item does not allow group funding")
	ErrInvalidAmount        = errors.New("contribution amount must be positive")
	ErrFundingComplete      = errors.New("funding target already collected")
	ErrBelowMinimum         = errors.New("contribution below the minimum amount")
	ErrExceedsRemaining     = errors.New("contribution exceeds the remaining amount")
	ErrNotOwner             = errors.New("not the owner of this item")
)

// ReservationService is the reservation/group-funding engine. Every mutation
// runs as one transaction that locks the item row, re-reads the ledger and
// writes the new row, so concurrent callers on the same item serialize and
// resolve to a single outcome.
type ReservationService interface {
	Reserve(itemID uint, reserverName, message string) (*model.Reservation, error)
	Contribute(itemID uint, contributorName string, amountCents int64, isAnonymous bool) (*model.Contribution, error)
	SetAvailability(ownerID, itemID uint, unavailable bool) (*model.Item, error)
}

type reservationService struct {
	db       *gorm.DB
	notifier ChangeNotifier
}

func NewReservationService(db *gorm.DB, notifier ChangeNotifier) ReservationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &reservationService{db: db, notifier: notifier}
}

// Reserve claims exclusivity on a non-group item. The reservation count is
// checked under the item row lock, so of any number of concurrent callers
// exactly one wins; the rest get ErrAlreadyReserved.
func (s *reservationService) Reserve(itemID uint, reserverName, message string) (*model.Reservation, error) {
	logger.Debug("Reserving item", map[string]interface{}{
		"item_id":       itemID,
		"reserver_name": reserverName,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during reservation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"item_id": itemID,
			})
		}
	}()

	var item model.Item
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, itemID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		logger.Error("Failed to fetch item during reservation", err, map[string]interface{}{
			"item_id": itemID,
		})
		return nil, err
	}

	if item.AllowGroupFunding {
		tx.Rollback()
		return nil, ErrGroupFundingItem
	}

	var count int64
	if err := tx.Model(&model.Reservation{}).
		Where("item_id = ?", itemID).
		Count(&count).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to count reservations", err, map[string]interface{}{
			"item_id": itemID,
		})
		return nil, err
	}
	if count > 0 {
		tx.Rollback()
		logger.Warn("Reservation rejected: item already reserved", map[string]interface{}{
			"item_id": itemID,
		})
		return nil, ErrAlreadyReserved
	}

	reservation := &model.Reservation{
		ItemID:       itemID,
		ReserverName: reserverName,
		Message:      message,
	}
	if err := tx.Create(reservation).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create reservation", err, map[string]interface{}{
			"item_id": itemID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit reservation", err, map[string]interface{}{
			"item_id": itemID,
		})
		return nil, err
	}

	// fan-out happens outside the critical section, after commit only
	s.notifier.Publish(item.WishlistID, websocket.EventItemReserved)

	logger.Info("Item reserved", map[string]interface{}{
		"item_id":        itemID,
		"reservation_id": reservation.ID,
	})
	return reservation, nil
}

// Contribute appends a pledge to a group-funded item. The collected total is
// recomputed from the contributions table inside the same transaction as the
// insert; any total the client derived is ignored, so the running sum can
// never exceed the target even under concurrent submission.
func (s *reservationService) Contribute(itemID uint, contributorName string, amountCents int64, isAnonymous bool) (*model.Contribution, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	logger.Debug("Adding contribution", map[string]interface{}{
		"item_id":      itemID,
		"amount_cents": amountCents,
		"is_anonymous": isAnonymous,
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during contribution, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"item_id": itemID,
			})
		}
	}()

	var item model.Item
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, itemID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		logger.Error("Failed to fetch item during contribution", err, map[string]interface{}{
			"item_id": itemID,
		})
		return nil, err
	}

	if !item.AllowGroupFunding {
		tx.Rollback()
		return nil, ErrGroupFundingDisabled
	}

	var collected int64
	if err := tx.Model(&model.Contribution{}).
		Where("item_id = ?", itemID).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&collected).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to sum contributions", err, map[string]interface{}{
			"item_id": itemID,
		})
		return nil, err
	}

	// Without a target or price the funding is unbounded: any positive
	// amount is welcome and the item never completes.
	target := funding.EffectiveTarget(item.TargetAmountCents, item.PriceCents)
	if target > 0 {
		if collected >= target {
			tx.Rollback()
			logger.Warn("Contribution rejected: funding complete", map[string]interface{}{
				"item_id":   itemID,
				"collected": collected,
				"target":    target,
			})
			return nil, ErrFundingComplete
		}
		if remaining := target - collected; amountCents > remaining {
			tx.Rollback()
			logger.Warn("Contribution rejected: exceeds remaining", map[string]interface{}{
				"item_id":      itemID,
				"amount_cents": amountCents,
				"remaining":    remaining,
			})
			return nil, ErrExceedsRemaining
		}
	}

	if item.MinContributionCents != nil && amountCents < *item.MinContributionCents {
		tx.Rollback()
		logger.Warn("Contribution rejected: below minimum", map[string]interface{}{
			"item_id":      itemID,
			"amount_cents": amountCents,
			"minimum":      *item.MinContributionCents,
		})
		return nil, ErrBelowMinimum
	}

	contribution := &model.Contribution{
		ItemID:          itemID,
		AmountCents:     amountCents,
		ContributorName: contributorName,
		IsAnonymous:     isAnonymous,
	}
	if err := tx.Create(contribution).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create contribution", err, map[string]interface{}{
			"item_id": itemID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit contribution", err, map[string]interface{}{
			"item_id": itemID,
		})
		return nil, err
	}

	s.notifier.Publish(item.WishlistID, websocket.EventContributionAdded)

	logger.Info("Contribution added", map[string]interface{}{
		"item_id":         itemID,
		"contribution_id": contribution.ID,
		"amount_cents":    amountCents,
	})
	return contribution, nil
}

// SetAvailability flips the informational source_unavailable flag. Owner
// only; has no effect on reservations or funding.
func (s *reservationService) SetAvailability(ownerID, itemID uint, unavailable bool) (*model.Item, error) {
	var item model.Item
	if err := s.db.Preload("Wishlist").First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if item.Wishlist.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	if item.SourceUnavailable == unavailable {
		return &item, nil
	}

	item.SourceUnavailable = unavailable
	if err := s.db.Model(&model.Item{}).
		Where("id = ?", itemID).
		Update("source_unavailable", unavailable).Error; err != nil {
		logger.Error("Failed to update item availability", err, map[string]interface{}{
			"item_id": itemID,
		})
		return nil, err
	}

	s.notifier.Publish(item.WishlistID, websocket.EventItemUpdated)

	logger.Info("Item availability updated", map[string]interface{}{
		"item_id":     itemID,
		"unavailable": unavailable,
	})
	return &item, nil
}
