package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/giftwish/giftwish-backend/internal/app/service"
	apperrors "github.com/giftwish/giftwish-backend/internal/errors"
	"github.com/giftwish/giftwish-backend/internal/middleware"
	ws "github.com/giftwish/giftwish-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
)

type WishlistController struct {
	wishlistService service.WishlistService
	hub             *ws.Hub
	upgrader        gorillaws.Upgrader
}

func NewWishlistController(wishlistService service.WishlistService, hub *ws.Hub) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
		hub:             hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// events carry no payload, so cross-origin viewers are fine
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type CreateWishlistRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	EventDate   *time.Time `json:"event_date"`
	IsPublic    *bool      `json:"is_public"`
}

type UpdateWishlistRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	EventDate   *time.Time `json:"event_date"`
	ClearEvent  bool       `json:"clear_event"`
	IsPublic    *bool      `json:"is_public"`
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// CreateWishlist creates a wishlist for the authenticated user
// POST /api/v1/wishlists
func (ctrl *WishlistController) CreateWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	var req CreateWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "a title up to 200 characters is required")
		return
	}

	wishlist, err := ctrl.wishlistService.Create(userID, service.CreateWishlistInput{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		log.Error("Failed to create wishlist", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create wishlist")
		return
	}

	c.JSON(http.StatusCreated, wishlist)
}

// GetWishlists lists the authenticated user's wishlists
// GET /api/v1/wishlists
func (ctrl *WishlistController) GetWishlists(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "authentication required")
		return
	}

	wishlists, err := ctrl.wishlistService.ListByOwner(userID)
	if err != nil {
		apperrors.InternalError(c, "failed to load wishlists")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wishlists": wishlists,
		"count":     len(wishlists),
	})
}

// GetWishlist returns the owner view of one wishlist: reservation counts and
// funding totals, no reserver names
// GET /api/v1/wishlists/:id
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "authentication required")
		return
	}
	wishlistID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := ctrl.wishlistService.GetOwnerView(userID, wishlistID)
	if err != nil {
		respondWishlistError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetPublicWishlist returns the viewer snapshot by slug
// GET /api/v1/wishlists/public/:slug
func (ctrl *WishlistController) GetPublicWishlist(c *gin.Context) {
	slug := c.Param("slug")

	view, err := ctrl.wishlistService.GetPublicView(slug)
	if err != nil {
		if errors.Is(err, service.ErrWishlistNotFound) {
			apperrors.NotFound(c, apperrors.WishlistNotFound, "wishlist not found")
			return
		}
		apperrors.InternalError(c, "failed to load the wishlist")
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateWishlist edits title, description, event date or visibility
// PATCH /api/v1/wishlists/:id
func (ctrl *WishlistController) UpdateWishlist(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "authentication required")
		return
	}
	wishlistID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid wishlist fields")
		return
	}

	wishlist, err := ctrl.wishlistService.Update(userID, wishlistID, service.UpdateWishlistInput{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
		ClearEvent:  req.ClearEvent,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		respondWishlistError(c, err)
		return
	}

	c.JSON(http.StatusOK, wishlist)
}

// DeleteWishlist removes the wishlist with its items and ledger
// DELETE /api/v1/wishlists/:id
func (ctrl *WishlistController) DeleteWishlist(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "authentication required")
		return
	}
	wishlistID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.wishlistService.Delete(userID, wishlistID); err != nil {
		respondWishlistError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "wishlist deleted",
	})
}

// ExportWishlist streams the owner snapshot as an XLSX file
// GET /api/v1/wishlists/:id/export
func (ctrl *WishlistController) ExportWishlist(c *gin.Context) {
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

	file, filename, err := ctrl.wishlistService.ExportXLSX(userID, wishlistID)
	if err != nil {
		respondWishlistError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := file.Write(c.Writer); err != nil {
		log.Error("Failed to stream wishlist export", err, map[string]interface{}{
			"wishlist_id": wishlistID,
		})
	}
}

// WatchWishlist upgrades the connection and registers the viewer with the
// hub. Viewers receive invalidation events only; the authoritative state
// always comes from a follow-up snapshot fetch.
// GET /ws/wishlists/:id
func (ctrl *WishlistController) WatchWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	wishlistID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if exists, err := ctrl.wishlistService.Exists(wishlistID); err != nil {
		apperrors.InternalError(c, "failed to look up the wishlist")
		return
	} else if !exists {
		apperrors.NotFound(c, apperrors.WishlistNotFound, "wishlist not found")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"wishlist_id": wishlistID,
			"error":       err.Error(),
		})
		return
	}

	client := ws.NewClient(ctrl.hub, conn, wishlistID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Viewer connected", map[string]interface{}{
		"wishlist_id": wishlistID,
	})
}

func respondWishlistError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWishlistNotFound):
		apperrors.NotFound(c, apperrors.WishlistNotFound, "wishlist not found")
	case errors.Is(err, service.ErrNotOwner):
		apperrors.Forbidden(c, "you do not own this wishlist")
	default:
		apperrors.InternalError(c, "something went wrong")
	}
}
