package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	"github.com/angelmondragon/mineralmarket-backend/pkg/pagination"
)

// Repository persists orders. State only changes through Transition.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Transition(ctx context.Context, update TransitionUpdate) (bool, error)
	List(ctx context.Context, params listOrdersParams) ([]models.Order, error)
	ListUnsettled(ctx context.Context, limit int) ([]models.Order, error)
}

// TransitionUpdate is a compare-and-set on (state, version).
type TransitionUpdate struct {
	OrderID         uuid.UUID
	From            enums.OrderState
	To              enums.OrderState
	ExpectedVersion int
	At              time.Time
	Fields          map[string]any
}

type listOrdersParams struct {
	PartyColumn string
	PartyID     uuid.UUID
	State       *enums.OrderState
	Cursor      *pagination.Cursor
	Limit       int
}

var timestampColumns = map[enums.OrderState]string{
	enums.OrderStateShipped:   "shipped_at",
	enums.OrderStateDelivered: "delivered_at",
	enums.OrderStateCompleted: "completed_at",
	enums.OrderStateDisputed:  "disputed_at",
	enums.OrderStateRefunded:  "refunded_at",
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Transition applies the update only if the row still has the expected state
// and version. It reports false when another writer got there first.
func (r *repository) Transition(ctx context.Context, update TransitionUpdate) (bool, error) {
	values := map[string]any{
		"state":      update.To,
		"version":    gorm.Expr("version + 1"),
		"updated_at": update.At,
	}
	if column, ok := timestampColumns[update.To]; ok {
		values[column] = update.At
	}
	for k, v := range update.Fields {
		values[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND state = ? AND version = ?", update.OrderID, update.From, update.ExpectedVersion).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) List(ctx context.Context, params listOrdersParams) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Where(params.PartyColumn+" = ?", params.PartyID)
	if params.State != nil {
		query = query.Where("state = ?", *params.State)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC, id DESC").Limit(params.Limit).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListUnsettled finds orders whose ledger trail is missing a movement the
// order's state implies: every order needs a hold, completed orders a release
// and refunded orders a refund.
func (r *repository) ListUnsettled(ctx context.Context, limit int) ([]models.Order, error) {
	missing := "NOT EXISTS (SELECT 1 FROM ledger_events le WHERE le.order_id = orders.id AND le.type = ?)"
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where(missing+" OR (state = ? AND "+missing+") OR (state = ? AND "+missing+")",
			enums.LedgerEventTypeHold,
			enums.OrderStateCompleted, enums.LedgerEventTypeRelease,
			enums.OrderStateRefunded, enums.LedgerEventTypeRefund,
		).
		Order("updated_at ASC, id ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
