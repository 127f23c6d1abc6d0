package listings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/mineralmarket-backend/internal/repo"
	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
)

// Repository is the listing store used by the settlement engine. Quantity only
// changes through the conditional updates below.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	DecrementQuantity(ctx context.Context, id uuid.UUID, qty decimal.Decimal) (bool, error)
	RestoreQuantity(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error
	SetStatus(ctx context.Context, id uuid.UUID, status enums.ListingStatus) error
}

type repository struct {
	repo.Base
	now func() time.Time
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db), now: func() time.Time { return time.Now().UTC() }}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.WithTx(tx), now: r.now}
}

func (r *repository) Create(ctx context.Context, listing *models.Listing) error {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	return r.DB(ctx).Create(listing).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.DB(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// DecrementQuantity takes qty from a live listing in one statement and flips it
// to sold when the stock hits zero. It reports false when the listing is not
// live or holds less than qty.
func (r *repository) DecrementQuantity(ctx context.Context, id uuid.UUID, qty decimal.Decimal) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND status = ? AND quantity >= ?", id, enums.ListingStatusLive, qty).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"status":     gorm.Expr("CASE WHEN quantity - ? = 0 THEN ? ELSE status END", qty, enums.ListingStatusSold),
			"updated_at": r.now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RestoreQuantity hands qty back and reopens a sold listing.
func (r *repository) RestoreQuantity(ctx context.Context, id uuid.UUID, qty decimal.Decimal) error {
	res := r.DB(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", qty),
			"status":     gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", enums.ListingStatusSold, enums.ListingStatusLive),
			"updated_at": r.now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status enums.ListingStatus) error {
	res := r.DB(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": r.now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
