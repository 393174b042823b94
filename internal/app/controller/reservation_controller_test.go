package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/giftwish/giftwish-backend/internal/app/model"
	"github.com/giftwish/giftwish-backend/internal/app/service"
	"github.com/giftwish/giftwish-backend/internal/db"
	"github.com/giftwish/giftwish-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func setUserIDInContext(c *gin.Context, userID uint) {
	c.Set(middleware.UserIDKey, userID)
}

func setupReservationControllerTest(t *testing.T) (*ReservationController, *gin.Engine, *gorm.DB, *model.User, *model.Wishlist) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	reservationService := service.NewReservationService(testDB, nil)
	reservationController := NewReservationController(reservationService)

	user := &model.User{
		Email:        "owner@example.com",
		PasswordHash: "hash",
	}
	testDB.Create(user)

	wishlist := &model.Wishlist{
		OwnerID:    user.ID,
		Title:      "Birthday",
		PublicSlug: "bday1234",
		IsPublic:   true,
	}
	testDB.Create(wishlist)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return reservationController, router, testDB, user, wishlist
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	code, _ := response["error"].(string)
	return code
}

func TestReservationController_Reserve_Success(t *testing.T) {
	controller, router, testDB, _, wishlist := setupReservationControllerTest(t)

	item := &model.Item{WishlistID: wishlist.ID, Title: "Headphones"}
	testDB.Create(item)

	router.POST("/items/:id/reserve", controller.Reserve)

	w := postJSON(t, router, "/items/1/reserve", gin.H{
		"reserver_name": "Anna",
		"message":       "from all of us",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Anna", response["reserver_name"])
}

func TestReservationController_Reserve_Conflict(t *testing.T) {
	controller, router, testDB, _, wishlist := setupReservationControllerTest(t)

	item := &model.Item{WishlistID: wishlist.ID, Title: "Headphones"}
	testDB.Create(item)
	testDB.Create(&model.Reservation{ItemID: item.ID, ReserverName: "Ivan"})

	router.POST("/items/:id/reserve", controller.Reserve)

	w := postJSON(t, router, "/items/1/reserve", gin.H{"reserver_name": "Anna"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "RESERVATION_ALREADY_RESERVED", errorCode(t, w))
}

func TestReservationController_Reserve_NotFound(t *testing.T) {
	controller, router, _, _, _ := setupReservationControllerTest(t)

	router.POST("/items/:id/reserve", controller.Reserve)

	w := postJSON(t, router, "/items/999/reserve", gin.H{"reserver_name": "Anna"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ITEM_NOT_FOUND", errorCode(t, w))
}

func TestReservationController_Reserve_MissingName(t *testing.T) {
	controller, router, testDB, _, wishlist := setupReservationControllerTest(t)

	item := &model.Item{WishlistID: wishlist.ID, Title: "Headphones"}
	testDB.Create(item)

	router.POST("/items/:id/reserve", controller.Reserve)

	w := postJSON(t, router, "/items/1/reserve", gin.H{"message": "no name"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_INVALID_INPUT", errorCode(t, w))
}

func TestReservationController_Contribute_Success(t *testing.T) {
	controller, router, testDB, _, wishlist := setupReservationControllerTest(t)

	item := &model.Item{
		WishlistID:        wishlist.ID,
		Title:             "Espresso Machine",
		AllowGroupFunding: true,
		TargetAmountCents: int64Ptr(10000),
	}
	testDB.Create(item)

	router.POST("/items/:id/contributions", controller.Contribute)

	w := postJSON(t, router, "/items/1/contributions", gin.H{
		"contributor_name": "Anna",
		"amount_cents":     4000,
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(4000), response["amount_cents"])
}

func TestReservationController_Contribute_ErrorMapping(t *testing.T) {
	controller, router, testDB, _, wishlist := setupReservationControllerTest(t)

	plain := &model.Item{WishlistID: wishlist.ID, Title: "Plain"}
	testDB.Create(plain)

	funded := &model.Item{
		WishlistID:           wishlist.ID,
		Title:                "Funded",
		AllowGroupFunding:    true,
		TargetAmountCents:    int64Ptr(10000),
		MinContributionCents: int64Ptr(1000),
	}
	testDB.Create(funded)
	testDB.Create(&model.Contribution{ItemID: funded.ID, AmountCents: 9500, ContributorName: "Early"})

	router.POST("/items/:id/contributions", controller.Contribute)

	tests := []struct {
		name    string
		path    string
		payload gin.H
		status  int
		code    string
	}{
		{
			name:    "group funding disabled",
			path:    "/items/1/contributions",
			payload: gin.H{"contributor_name": "Anna", "amount_cents": 1000},
			status:  http.StatusConflict,
			code:    "FUNDING_DISABLED",
		},
		{
			name:    "below minimum",
			path:    "/items/2/contributions",
			payload: gin.H{"contributor_name": "Anna", "amount_cents": 100},
			status:  http.StatusConflict,
			code:    "FUNDING_BELOW_MINIMUM",
		},
		{
			name:    "exceeds remaining",
			path:    "/items/2/contributions",
			payload: gin.H{"contributor_name": "Anna", "amount_cents": 1000},
			status:  http.StatusConflict,
			code:    "FUNDING_EXCEEDS_REMAINING",
		},
		{
			name:    "missing amount",
			path:    "/items/2/contributions",
			payload: gin.H{"contributor_name": "Anna"},
			status:  http.StatusBadRequest,
			code:    "VALIDATION_INVALID_INPUT",
		},
		{
			name:    "missing contributor name",
			path:    "/items/2/contributions",
			payload: gin.H{"amount_cents": 1000},
			status:  http.StatusBadRequest,
			code:    "VALIDATION_INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, tt.path, tt.payload)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestReservationController_SetAvailability(t *testing.T) {
	controller, router, testDB, user, wishlist := setupReservationControllerTest(t)

	item := &model.Item{WishlistID: wishlist.ID, Title: "Discontinued Lamp"}
	testDB.Create(item)

	router.PUT("/items/:id/availability", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.SetAvailability(c)
	})

	body, _ := json.Marshal(gin.H{"source_unavailable": true})
	req := httptest.NewRequest(http.MethodPut, "/items/1/availability", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var stored model.Item
	testDB.First(&stored, item.ID)
	assert.True(t, stored.SourceUnavailable)
}
