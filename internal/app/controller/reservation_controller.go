package controller

import (
	"errors"
	"net/http"

	"github.com/giftwish/giftwish-backend/internal/app/service"
	apperrors "github.com/giftwish/giftwish-backend/internal/errors"
	"github.com/giftwish/giftwish-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ReservationController exposes the guest-facing mutations: reserving an
// item, pledging to a group-funded one, and the owner-facing availability
// toggle.
type ReservationController struct {
	reservationService service.ReservationService
}

func NewReservationController(reservationService service.ReservationService) *ReservationController {
	return &ReservationController{
		reservationService: reservationService,
	}
}

type ReserveRequest struct {
	ReserverName string `json:"reserver_name" binding:"required,max=100"`
	Message      string `json:"message" binding:"max=500"`
}

type ContributeRequest struct {
	ContributorName string `json:"contributor_name" binding:"required,max=100"`
	AmountCents     int64  `json:"amount_cents" binding:"required,min=1"`
	IsAnonymous     bool   `json:"is_anonymous"`
}

type AvailabilityRequest struct {
	SourceUnavailable *bool `json:"source_unavailable" binding:"required"`
}

// Reserve claims an item for a guest
// POST /api/v1/items/:id/reserve
func (ctrl *ReservationController) Reserve(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "a reserver name up to 100 characters is required")
		return
	}

	reservation, err := ctrl.reservationService.Reserve(itemID, req.ReserverName, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			apperrors.NotFound(c, apperrors.ItemNotFound, "item not found")
		case errors.Is(err, service.ErrAlreadyReserved):
			apperrors.Conflict(c, apperrors.ReservationAlreadyReserved, "this item is already reserved")
		case errors.Is(err, service.ErrGroupFundingItem):
			apperrors.Conflict(c, apperrors.ReservationGroupItem, "this item collects contributions instead of reservations")
		default:
			log.Error("Failed to reserve item", err, map[string]interface{}{
				"item_id": itemID,
			})
			apperrors.InternalError(c, "failed to reserve the item")
		}
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

// Contribute adds a pledge to a group-funded item
// POST /api/v1/items/:id/contributions
func (ctrl *ReservationController) Contribute(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "a contributor name and a positive amount are required")
		return
	}

	contribution, err := ctrl.reservationService.Contribute(itemID, req.ContributorName, req.AmountCents, req.IsAnonymous)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			apperrors.NotFound(c, apperrors.ItemNotFound, "item not found")
		case errors.Is(err, service.ErrGroupFundingDisabled):
			apperrors.Conflict(c, apperrors.FundingDisabled, "this item does not accept contributions")
		case errors.Is(err, service.ErrInvalidAmount):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "the amount must be positive")
		case errors.Is(err, service.ErrFundingComplete):
			apperrors.Conflict(c, apperrors.FundingComplete, "the funding target has already been collected")
		case errors.Is(err, service.ErrBelowMinimum):
			apperrors.Conflict(c, apperrors.FundingBelowMinimum, "the amount is below the minimum contribution")
		case errors.Is(err, service.ErrExceedsRemaining):
			apperrors.Conflict(c, apperrors.FundingExceedsRemaining, "the amount exceeds what is left to collect")
		default:
			log.Error("Failed to add contribution", err, map[string]interface{}{
				"item_id": itemID,
			})
			apperrors.InternalError(c, "failed to add the contribution")
		}
		return
	}

	c.JSON(http.StatusCreated, contribution)
}

// SetAvailability toggles the informational "no longer sold" flag
// PUT /api/v1/items/:id/availability
func (ctrl *ReservationController) SetAvailability(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "authentication required")
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SourceUnavailable == nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "source_unavailable is required")
		return
	}

	item, err := ctrl.reservationService.SetAvailability(userID, itemID, *req.SourceUnavailable)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			apperrors.NotFound(c, apperrors.ItemNotFound, "item not found")
		case errors.Is(err, service.ErrNotOwner):
			apperrors.Forbidden(c, "you do not own this item")
		default:
			apperrors.InternalError(c, "failed to update the item")
		}
		return
	}

	c.JSON(http.StatusOK, item)
}
