package service

import (
	"testing"

	"github.com/giftwish/giftwish-backend/internal/app/model"
	"github.com/giftwish/giftwish-backend/internal/app/repository"
	"github.com/giftwish/giftwish-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupItemServiceTest(t *testing.T) (ItemService, *gorm.DB, *model.User, *model.Wishlist) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	wishlistRepo := repository.NewWishlistRepository(testDB)
	itemRepo := repository.NewItemRepository(testDB)
	itemService := NewItemService(testDB, wishlistRepo, itemRepo, nil)

	user := &model.User{
		Email:        "owner@example.com",
		PasswordHash: "hash",
	}
	testDB.Create(user)

	wishlist := &model.Wishlist{
		OwnerID:    user.ID,
		Title:      "Wedding",
		PublicSlug: "wed45678",
		IsPublic:   true,
	}
	testDB.Create(wishlist)

	return itemService, testDB, user, wishlist
}

func TestItemService_Create_Success(t *testing.T) {
	svc, _, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{
		Title:      "Coffee Machine",
		URL:        "https://shop.example.com/coffee",
		PriceCents: int64Ptr(25000),
	})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, wishlist.ID, item.WishlistID)
	assert.False(t, item.AllowGroupFunding)
	assert.Nil(t, item.MinContributionCents)
}

// A group-funded item with a 5000 target gets the 10% default minimum of 500
func TestItemService_Create_DefaultMinimum(t *testing.T) {
	svc, _, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{
		Title:             "Mixer",
		AllowGroupFunding: true,
		TargetAmountCents: int64Ptr(5000),
	})
	require.NoError(t, err)
	require.NotNil(t, item.MinContributionCents)
	assert.Equal(t, int64(500), *item.MinContributionCents)
}

func TestItemService_Create_DefaultMinimumFromPrice(t *testing.T) {
	svc, _, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{
		Title:             "Armchair",
		AllowGroupFunding: true,
		PriceCents:        int64Ptr(30000),
	})
	require.NoError(t, err)
	require.NotNil(t, item.MinContributionCents)
	assert.Equal(t, int64(3000), *item.MinContributionCents)
}

func TestItemService_Create_ExplicitMinimumWins(t *testing.T) {
	svc, _, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{
		Title:                "Telescope",
		AllowGroupFunding:    true,
		TargetAmountCents:    int64Ptr(100000),
		MinContributionCents: int64Ptr(2500),
	})
	require.NoError(t, err)
	require.NotNil(t, item.MinContributionCents)
	assert.Equal(t, int64(2500), *item.MinContributionCents)
}

func TestItemService_Create_NoTargetNoMinimum(t *testing.T) {
	svc, _, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{
		Title:             "Anything helps",
		AllowGroupFunding: true,
	})
	require.NoError(t, err)
	assert.Nil(t, item.MinContributionCents)
}

func TestItemService_Create_NotOwner(t *testing.T) {
	svc, testDB, _, wishlist := setupItemServiceTest(t)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash"}
	testDB.Create(other)

	item, err := svc.Create(other.ID, wishlist.ID, CreateItemInput{Title: "Sneaky"})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Nil(t, item)
}

func TestItemService_Create_WishlistNotFound(t *testing.T) {
	svc, _, user, _ := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, 99999, CreateItemInput{Title: "Ghost"})
	assert.ErrorIs(t, err, ErrWishlistNotFound)
	assert.Nil(t, item)
}

func TestItemService_Update_Fields(t *testing.T) {
	svc, _, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{
		Title:      "Old title",
		PriceCents: int64Ptr(10000),
	})
	require.NoError(t, err)

	newTitle := "New title"
	updated, err := svc.Update(user.ID, item.ID, UpdateItemInput{
		Title:      &newTitle,
		PriceCents: int64Ptr(12000),
	})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	require.NotNil(t, updated.PriceCents)
	assert.Equal(t, int64(12000), *updated.PriceCents)
}

func TestItemService_Update_ClearPrice(t *testing.T) {
	svc, _, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{
		Title:      "Lamp",
		PriceCents: int64Ptr(4000),
	})
	require.NoError(t, err)

	updated, err := svc.Update(user.ID, item.ID, UpdateItemInput{PriceCleared: true})
	require.NoError(t, err)
	assert.Nil(t, updated.PriceCents)
}

// Turning group funding on without a minimum resolves the default from the
// target at that moment
func TestItemService_Update_EnableGroupFunding(t *testing.T) {
	svc, _, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{
		Title:      "Bike",
		PriceCents: int64Ptr(60000),
	})
	require.NoError(t, err)
	assert.Nil(t, item.MinContributionCents)

	enable := true
	updated, err := svc.Update(user.ID, item.ID, UpdateItemInput{
		AllowGroupFunding: &enable,
	})
	require.NoError(t, err)
	assert.True(t, updated.AllowGroupFunding)
	require.NotNil(t, updated.MinContributionCents)
	assert.Equal(t, int64(6000), *updated.MinContributionCents)
}

func TestItemService_Update_DisableGroupFundingNoContributions(t *testing.T) {
	svc, _, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{
		Title:             "Drone",
		AllowGroupFunding: true,
		TargetAmountCents: int64Ptr(20000),
	})
	require.NoError(t, err)

	disable := false
	updated, err := svc.Update(user.ID, item.ID, UpdateItemInput{
		AllowGroupFunding: &disable,
	})
	require.NoError(t, err)
	assert.False(t, updated.AllowGroupFunding)
	assert.Nil(t, updated.MinContributionCents)
}

// Once money is on record the group funding flag is locked in
func TestItemService_Update_DisableGroupFundingLocked(t *testing.T) {
	svc, testDB, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{
		Title:             "Grill",
		AllowGroupFunding: true,
		TargetAmountCents: int64Ptr(20000),
	})
	require.NoError(t, err)

	reservationService := NewReservationService(testDB, nil)
	_, err = reservationService.Contribute(item.ID, "Anna", 5000, false)
	require.NoError(t, err)

	disable := false
	updated, err := svc.Update(user.ID, item.ID, UpdateItemInput{
		AllowGroupFunding: &disable,
	})
	assert.ErrorIs(t, err, ErrGroupFundingLocked)
	assert.Nil(t, updated)

	var stored model.Item
	testDB.First(&stored, item.ID)
	assert.True(t, stored.AllowGroupFunding)
}

func TestItemService_Update_DisableGroupFundingRejectsWholeEdit(t *testing.T) {
	svc, testDB, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{
		Title:             "Telescope",
		AllowGroupFunding: true,
		TargetAmountCents: int64Ptr(40000),
	})
	require.NoError(t, err)

	// A pledge committed after the item was last loaded must still be seen
	// by the flip guard: the contribution count is taken inside the update
	// transaction, under the same row lock Contribute holds.
	reservationService := NewReservationService(testDB, nil)
	_, err = reservationService.Contribute(item.ID, "Nina", 8000, false)
	require.NoError(t, err)

	disable := false
	title := "Renamed Telescope"
	updated, err := svc.Update(user.ID, item.ID, UpdateItemInput{
		Title:             &title,
		AllowGroupFunding: &disable,
	})
	assert.ErrorIs(t, err, ErrGroupFundingLocked)
	assert.Nil(t, updated)

	// The refused flip rolls back the whole edit, not just the flag.
	var stored model.Item
	testDB.First(&stored, item.ID)
	assert.Equal(t, "Telescope", stored.Title)
	assert.True(t, stored.AllowGroupFunding)
	require.NotNil(t, stored.MinContributionCents)
	assert.Equal(t, int64(4000), *stored.MinContributionCents)
}

func TestItemService_Update_NotOwner(t *testing.T) {
	svc, testDB, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{Title: "Book"})
	require.NoError(t, err)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash"}
	testDB.Create(other)

	newTitle := "Hijacked"
	updated, err := svc.Update(other.ID, item.ID, UpdateItemInput{Title: &newTitle})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Nil(t, updated)
}

func TestItemService_Delete_CascadesLedger(t *testing.T) {
	svc, testDB, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{
		Title:             "Tent",
		AllowGroupFunding: true,
		TargetAmountCents: int64Ptr(15000),
	})
	require.NoError(t, err)

	reservationService := NewReservationService(testDB, nil)
	_, err = reservationService.Contribute(item.ID, "Anna", 5000, false)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(user.ID, item.ID))

	var itemCount, contributionCount int64
	testDB.Model(&model.Item{}).Where("id = ?", item.ID).Count(&itemCount)
	testDB.Model(&model.Contribution{}).Where("item_id = ?", item.ID).Count(&contributionCount)
	assert.Equal(t, int64(0), itemCount)
	assert.Equal(t, int64(0), contributionCount)
}

func TestItemService_Delete_NotOwner(t *testing.T) {
	svc, testDB, user, wishlist := setupItemServiceTest(t)

	item, err := svc.Create(user.ID, wishlist.ID, CreateItemInput{Title: "Kettle"})
	require.NoError(t, err)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash"}
	testDB.Create(other)

	assert.ErrorIs(t, svc.Delete(other.ID, item.ID), ErrNotOwner)
}
