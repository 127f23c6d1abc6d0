package listings

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/mineralmarket-backend/pkg/db/dbtest"
	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mineralmarket-backend/pkg/errors"
)

func seedListing(t *testing.T, r Repository, qty string, status enums.ListingStatus) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		SellerID:     uuid.New(),
		Title:        "Raw tanzanite",
		Category:     enums.ListingCategoryGemstone,
		Quantity:     decimal.RequireFromString(qty),
		Unit:         enums.UnitCarats,
		PricePerUnit: decimal.RequireFromString("1850"),
		Status:       status,
	}
	require.NoError(t, r.Create(context.Background(), listing))
	return listing
}

func TestDecrementQuantity(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	listing := seedListing(t, r, "5", enums.ListingStatusLive)

	ok, err := r.DecrementQuantity(ctx, listing.ID, decimal.RequireFromString("2"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.DecrementQuantity(ctx, listing.ID, decimal.RequireFromString("4"))
	require.NoError(t, err)
	assert.False(t, ok, "cannot take more than is left")

	ok, err = r.DecrementQuantity(ctx, listing.ID, decimal.RequireFromString("3"))
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := r.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero())
	assert.Equal(t, enums.ListingStatusSold, got.Status)

	ok, err = r.DecrementQuantity(ctx, listing.ID, decimal.RequireFromString("1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecrementQuantityRequiresLive(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	listing := seedListing(t, r, "5", enums.ListingStatusApproved)

	ok, err := r.DecrementQuantity(context.Background(), listing.ID, decimal.RequireFromString("1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestoreQuantityReopensSoldListing(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	listing := seedListing(t, r, "1.5", enums.ListingStatusLive)

	ok, err := r.DecrementQuantity(ctx, listing.ID, decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.RestoreQuantity(ctx, listing.ID, decimal.RequireFromString("1.5")))

	got, err := r.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, enums.ListingStatusLive, got.Status)

	err = r.RestoreQuantity(ctx, uuid.New(), decimal.NewFromInt(1))
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRestoreQuantityKeepsRemovedStatus(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	listing := seedListing(t, r, "3", enums.ListingStatusLive)
	require.NoError(t, r.SetStatus(ctx, listing.ID, enums.ListingStatusRemoved))

	require.NoError(t, r.RestoreQuantity(ctx, listing.ID, decimal.NewFromInt(2)))

	got, err := r.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, enums.ListingStatusRemoved, got.Status)
}

func TestWithTxRollsBack(t *testing.T) {
	conn := dbtest.Open(t)
	r := NewRepository(conn)
	ctx := context.Background()
	listing := seedListing(t, r, "2", enums.ListingStatusLive)

	err := conn.Transaction(func(tx *gorm.DB) error {
		ok, err := r.WithTx(tx).DecrementQuantity(ctx, listing.ID, decimal.NewFromInt(2))
		require.NoError(t, err)
		require.True(t, ok)
		return errors.New("abort")
	})
	require.Error(t, err)

	got, err := r.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, enums.ListingStatusLive, got.Status)
}

func TestStockGuardSurfacesAsInsufficientQuantity(t *testing.T) {
	conn := dbtest.Open(t)
	r := NewRepository(conn)
	listing := seedListing(t, r, "1", enums.ListingStatusLive)

	err := conn.Model(&models.Listing{}).
		Where("id = ?", listing.ID).
		Update("quantity", gorm.Expr("quantity - ?", 2)).Error
	require.Error(t, err)

	mapped := pkgerrors.FromStore(err, pkgerrors.CodeDependency, "reserve listing quantity")
	assert.Equal(t, pkgerrors.CodeInsufficientQuantity, mapped.Code())
}
