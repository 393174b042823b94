package controller

import (
	"errors"
	"net/http"

	"github.com/giftwish/giftwish-backend/internal/app/service"
	apperrors "github.com/giftwish/giftwish-backend/internal/errors"
	"github.com/giftwish/giftwish-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ItemController struct {
	itemService service.ItemService
}

func NewItemController(itemService service.ItemService) *ItemController {
	return &ItemController{
		itemService: itemService,
	}
}

type CreateItemRequest struct {
	Title                string `json:"title" binding:"required,max=200"`
	URL                  string `json:"url" binding:"omitempty,url,max=2000"`
	ImageURL             string `json:"image_url" binding:"omitempty,url,max=2000"`
	PriceCents           *int64 `json:"price_cents" binding:"omitempty,min=1"`
	AllowGroupFunding    bool   `json:"allow_group_funding"`
	TargetAmountCents    *int64 `json:"target_amount_cents" binding:"omitempty,min=1"`
	MinContributionCents *int64 `json:"min_contribution_cents" binding:"omitempty,min=1"`
}

// UpdateItemRequest distinguishes omitted fields (nil) from explicit clears
// (*_cleared flags) so a PATCH can null out an optional money field.
type UpdateItemRequest struct {
	Title                *string `json:"title" binding:"omitempty,max=200"`
	URL                  *string `json:"url" binding:"omitempty,max=2000"`
	ImageURL             *string `json:"image_url" binding:"omitempty,max=2000"`
	PriceCents           *int64  `json:"price_cents" binding:"omitempty,min=1"`
	PriceCleared         bool    `json:"price_cleared"`
	AllowGroupFunding    *bool   `json:"allow_group_funding"`
	TargetAmountCents    *int64  `json:"target_amount_cents" binding:"omitempty,min=1"`
	TargetCleared        bool    `json:"target_cleared"`
	MinContributionCents *int64  `json:"min_contribution_cents" binding:"omitempty,min=1"`
	MinCleared           bool    `json:"min_cleared"`
}

// CreateItem adds an item to the owner's wishlist
// POST /api/v1/wishlists/:id/items
func (ctrl *ItemController) CreateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "authentication required")
		return
	}
	wishlistID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "a title is required; money fields must be positive")
		return
	}

	item, err := ctrl.itemService.Create(userID, wishlistID, service.CreateItemInput{
		Title:                req.Title,
		URL:                  req.URL,
		ImageURL:             req.ImageURL,
		PriceCents:           req.PriceCents,
		AllowGroupFunding:    req.AllowGroupFunding,
		TargetAmountCents:    req.TargetAmountCents,
		MinContributionCents: req.MinContributionCents,
	})
	if err != nil {
		if !errors.Is(err, service.ErrWishlistNotFound) && !errors.Is(err, service.ErrNotOwner) {
			log.Error("Failed to create item", err, map[string]interface{}{
				"wishlist_id": wishlistID,
			})
		}
		respondItemError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateItem edits an item's fields
// PATCH /api/v1/items/:id
func (ctrl *ItemController) UpdateItem(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "authentication required")
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid item fields")
		return
	}

	item, err := ctrl.itemService.Update(userID, itemID, service.UpdateItemInput{
		Title:                req.Title,
		URL:                  req.URL,
		ImageURL:             req.ImageURL,
		PriceCents:           req.PriceCents,
		PriceCleared:         req.PriceCleared,
		AllowGroupFunding:    req.AllowGroupFunding,
		TargetAmountCents:    req.TargetAmountCents,
		TargetCleared:        req.TargetCleared,
		MinContributionCents: req.MinContributionCents,
		MinCleared:           req.MinCleared,
	})
	if err != nil {
		respondItemError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item with its reservations and contributions
// DELETE /api/v1/items/:id
func (ctrl *ItemController) DeleteItem(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "authentication required")
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.itemService.Delete(userID, itemID); err != nil {
		respondItemError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "item deleted",
	})
}

func respondItemError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		apperrors.NotFound(c, apperrors.ItemNotFound, "item not found")
	case errors.Is(err, service.ErrWishlistNotFound):
		apperrors.NotFound(c, apperrors.WishlistNotFound, "wishlist not found")
	case errors.Is(err, service.ErrNotOwner):
		apperrors.Forbidden(c, "you do not own this item")
	case errors.Is(err, service.ErrGroupFundingLocked):
		apperrors.Conflict(c, apperrors.ItemGroupFundingLocked, "group funding cannot be disabled while contributions exist")
	default:
		apperrors.InternalError(c, "something went wrong")
	}
}
