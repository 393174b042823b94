package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/giftwish/giftwish-backend/internal/app/model"
	"github.com/giftwish/giftwish-backend/internal/app/repository"
	"github.com/giftwish/giftwish-backend/pkg/logger"
	"github.com/giftwish/giftwish-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const slugRetries = 5

type CreateWishlistInput struct {
	Title       string
	Description string
	EventDate   *time.Time
	IsPublic    *bool
}

type UpdateWishlistInput struct {
	Title       *string
	Description *string
	EventDate   *time.Time
	ClearEvent  bool
	IsPublic    *bool
}

type WishlistService interface {
	Create(ownerID uint, input CreateWishlistInput) (*model.Wishlist, error)
	ListByOwner(ownerID uint) ([]model.Wishlist, error)
	GetOwnerView(ownerID, wishlistID uint) (*OwnerWishlist, error)
	Exists(wishlistID uint) (bool, error)
	GetPublicView(slug string) (*PublicWishlist, error)
	Update(ownerID, wishlistID uint, input UpdateWishlistInput) (*model.Wishlist, error)
	Delete(ownerID, wishlistID uint) error
	ExportXLSX(ownerID, wishlistID uint) (*excelize.File, string, error)
}

type wishlistService struct {
	db           *gorm.DB
	wishlistRepo repository.WishlistRepository
}

func NewWishlistService(db *gorm.DB, wishlistRepo repository.WishlistRepository) WishlistService {
	return &wishlistService{db: db, wishlistRepo: wishlistRepo}
}

// generateSlug retries on the rare collision; the keyspace is large enough
// that running out of retries means the RNG is broken, not the table full.
func (s *wishlistService) generateSlug() (string, error) {
	for i := 0; i < slugRetries; i++ {
		slug, err := util.GenerateSlug(util.SlugLength)
		if err != nil {
			return "", err
		}
		exists, err := s.wishlistRepo.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique slug after %d attempts", slugRetries)
}

func (s *wishlistService) Create(ownerID uint, input CreateWishlistInput) (*model.Wishlist, error) {
	slug, err := s.generateSlug()
	if err != nil {
		logger.Error("Failed to generate wishlist slug", err, nil)
		return nil, err
	}

	wishlist := &model.Wishlist{
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		EventDate:   input.EventDate,
		PublicSlug:  slug,
		IsPublic:    true,
	}
	if input.IsPublic != nil {
		wishlist.IsPublic = *input.IsPublic
	}

	if err := s.wishlistRepo.Create(wishlist); err != nil {
		return nil, err
	}

	logger.Info("Wishlist created", map[string]interface{}{
		"wishlist_id": wishlist.ID,
		"owner_id":    ownerID,
		"public_slug": slug,
	})
	return wishlist, nil
}

func (s *wishlistService) ListByOwner(ownerID uint) ([]model.Wishlist, error) {
	return s.wishlistRepo.FindByOwnerID(ownerID)
}

// Exists reports whether a wishlist can be watched over WebSocket
func (s *wishlistService) Exists(wishlistID uint) (bool, error) {
	if _, err := s.wishlistRepo.FindByID(wishlistID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *wishlistService) GetOwnerView(ownerID, wishlistID uint) (*OwnerWishlist, error) {
	wishlist, err := s.wishlistRepo.FindByIDWithItems(wishlistID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWishlistNotFound
		}
		return nil, err
	}
	if wishlist.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return ProjectOwnerWishlist(wishlist), nil
}

// GetPublicView resolves an is_public wishlist by slug. A private or unknown
// slug is the same not-found to the caller; the slug is the only credential a
// viewer holds.
func (s *wishlistService) GetPublicView(slug string) (*PublicWishlist, error) {
	wishlist, err := s.wishlistRepo.FindBySlugWithItems(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWishlistNotFound
		}
		return nil, err
	}
	return ProjectPublicWishlist(wishlist), nil
}

func (s *wishlistService) Update(ownerID, wishlistID uint, input UpdateWishlistInput) (*model.Wishlist, error) {
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

	if input.Title != nil {
		wishlist.Title = *input.Title
	}
	if input.Description != nil {
		wishlist.Description = *input.Description
	}
	if input.ClearEvent {
		wishlist.EventDate = nil
	} else if input.EventDate != nil {
		wishlist.EventDate = input.EventDate
	}
	if input.IsPublic != nil {
		wishlist.IsPublic = *input.IsPublic
	}

	if err := s.wishlistRepo.Update(wishlist); err != nil {
		return nil, err
	}

	logger.Info("Wishlist updated", map[string]interface{}{
		"wishlist_id": wishlistID,
	})
	return wishlist, nil
}

// Delete soft-deletes the wishlist and everything under it in one
// transaction.
func (s *wishlistService) Delete(ownerID, wishlistID uint) error {
	wishlist, err := s.wishlistRepo.FindByID(wishlistID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWishlistNotFound
		}
		return err
	}
	if wishlist.OwnerID != ownerID {
		return ErrNotOwner
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during wishlist delete, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"wishlist_id": wishlistID,
			})
		}
	}()

	itemIDs := tx.Model(&model.Item{}).Select("id").Where("wishlist_id = ?", wishlistID)
	if err := tx.Where("item_id IN (?)", itemIDs).Delete(&model.Reservation{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("item_id IN (?)", itemIDs).Delete(&model.Contribution{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Where("wishlist_id = ?", wishlistID).Delete(&model.Item{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&model.Wishlist{}, wishlistID).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit wishlist delete", err, map[string]interface{}{
			"wishlist_id": wishlistID,
		})
		return err
	}

	logger.Info("Wishlist deleted", map[string]interface{}{
		"wishlist_id": wishlistID,
		"owner_id":    ownerID,
	})
	return nil
}

// ExportXLSX renders the owner snapshot as a spreadsheet. Same redaction
// rules as the owner view: aggregates only, no reserver or contributor names.
func (s *wishlistService) ExportXLSX(ownerID, wishlistID uint) (*excelize.File, string, error) {
	view, err := s.GetOwnerView(ownerID, wishlistID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "Items"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", err
	}

	headers := []string{"Title", "URL", "Price", "Group funding", "Reserved", "Collected", "Remaining", "Funded %"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, "", err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, headerStyle)
	}

	money := func(cents *int64) interface{} {
		if cents == nil {
			return ""
		}
		return float64(*cents) / 100
	}

	for row, item := range view.Items {
		values := []interface{}{
			item.Title,
			item.URL,
			money(item.PriceCents),
			item.AllowGroupFunding,
			item.ReservedCount,
			float64(item.Funding.Collected) / 100,
			float64(item.Funding.Remaining) / 100,
			item.Funding.Percent,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, "", err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", err
			}
		}
	}

	filename := fmt.Sprintf("wishlist_%d_%s.xlsx", wishlistID, time.Now().Format("20060102"))

	logger.Info("Wishlist exported", map[string]interface{}{
		"wishlist_id": wishlistID,
		"items":       len(view.Items),
	})
	return f, filename, nil
}
