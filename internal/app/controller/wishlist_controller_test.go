package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/giftwish/giftwish-backend/internal/app/model"
	"github.com/giftwish/giftwish-backend/internal/app/repository"
	"github.com/giftwish/giftwish-backend/internal/app/service"
	"github.com/giftwish/giftwish-backend/internal/db"
	ws "github.com/giftwish/giftwish-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupWishlistControllerTest(t *testing.T) (*WishlistController, *gin.Engine, *gorm.DB, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	wishlistRepo := repository.NewWishlistRepository(testDB)
	wishlistService := service.NewWishlistService(testDB, wishlistRepo)
	wishlistController := NewWishlistController(wishlistService, ws.NewHub())

	user := &model.User{
		Email:        "owner@example.com",
		PasswordHash: "hash",
	}
	testDB.Create(user)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return wishlistController, router, testDB, user
}

func TestWishlistController_CreateWishlist(t *testing.T) {
	controller, router, _, user := setupWishlistControllerTest(t)

	router.POST("/wishlists", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.CreateWishlist(c)
	})

	w := postJSON(t, router, "/wishlists", gin.H{
		"title":       "Housewarming",
		"description": "Everything for the new flat",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Housewarming", response["title"])
	assert.NotEmpty(t, response["public_slug"])
}

func TestWishlistController_CreateWishlist_MissingTitle(t *testing.T) {
	controller, router, _, user := setupWishlistControllerTest(t)

	router.POST("/wishlists", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.CreateWishlist(c)
	})

	w := postJSON(t, router, "/wishlists", gin.H{"description": "no title"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_INVALID_INPUT", errorCode(t, w))
}

// The public endpoint must hide anonymous contributor names and never leak
// through serialization
func TestWishlistController_GetPublicWishlist_Redaction(t *testing.T) {
	controller, router, testDB, user := setupWishlistControllerTest(t)

	wishlist := &model.Wishlist{
		OwnerID:    user.ID,
		Title:      "Birthday",
		PublicSlug: "bday1234",
		IsPublic:   true,
	}
	testDB.Create(wishlist)

	item := &model.Item{
		WishlistID:        wishlist.ID,
		Title:             "Record Player",
		AllowGroupFunding: true,
		TargetAmountCents: int64Ptr(20000),
	}
	testDB.Create(item)
	testDB.Create(&model.Contribution{ItemID: item.ID, AmountCents: 5000, ContributorName: "Hidden Harry", IsAnonymous: true})

	router.GET("/wishlists/public/:slug", controller.GetPublicWishlist)

	req := httptest.NewRequest(http.MethodGet, "/wishlists/public/bday1234", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Hidden Harry")

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	items := response["items"].([]interface{})
	require.Len(t, items, 1)

	funding := items[0].(map[string]interface{})["funding"].(map[string]interface{})
	assert.Equal(t, float64(5000), funding["collected_amount_cents"])
	assert.Equal(t, float64(15000), funding["remaining_amount_cents"])
	assert.Equal(t, float64(25), funding["percent"])
}

func TestWishlistController_GetPublicWishlist_UnknownSlug(t *testing.T) {
	controller, router, _, _ := setupWishlistControllerTest(t)

	router.GET("/wishlists/public/:slug", controller.GetPublicWishlist)

	req := httptest.NewRequest(http.MethodGet, "/wishlists/public/missing1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "WISHLIST_NOT_FOUND", errorCode(t, w))
}

func TestWishlistController_GetWishlist_Forbidden(t *testing.T) {
	controller, router, testDB, user := setupWishlistControllerTest(t)

	wishlist := &model.Wishlist{
		OwnerID:    user.ID,
		Title:      "Mine",
		PublicSlug: "mine5678",
	}
	testDB.Create(wishlist)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash"}
	testDB.Create(other)

	router.GET("/wishlists/:id", func(c *gin.Context) {
		setUserIDInContext(c, other.ID)
		controller.GetWishlist(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/wishlists/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTHZ_FORBIDDEN", errorCode(t, w))
}

func TestWishlistController_ExportWishlist(t *testing.T) {
	controller, router, testDB, user := setupWishlistControllerTest(t)

	wishlist := &model.Wishlist{
		OwnerID:    user.ID,
		Title:      "Birthday",
		PublicSlug: "bday9999",
	}
	testDB.Create(wishlist)
	testDB.Create(&model.Item{WishlistID: wishlist.ID, Title: "Blender", PriceCents: int64Ptr(7000)})

	router.GET("/wishlists/:id/export", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.ExportWishlist(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/wishlists/1/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, w.Body.Len())
}
