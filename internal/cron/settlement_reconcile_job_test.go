package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mineralmarket-backend/internal/ledger"
	"github.com/angelmondragon/mineralmarket-backend/internal/settlement"
	"github.com/angelmondragon/mineralmarket-backend/pkg/db/dbtest"
	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	"github.com/angelmondragon/mineralmarket-backend/pkg/logger"
)

func seedSettledOrder(t *testing.T, repo settlement.Repository, state enums.OrderState) *models.Order {
	t.Helper()
	now := time.Now().UTC()
	o := &models.Order{
		ListingID:        uuid.New(),
		BuyerID:          uuid.New(),
		SellerID:         uuid.New(),
		Quantity:         decimal.NewFromInt(2),
		UnitPrice:        decimal.NewFromInt(1850),
		TotalAmount:      decimal.RequireFromString("3700.00"),
		CommissionRate:   decimal.RequireFromString("0.075"),
		CommissionAmount: decimal.RequireFromString("277.50"),
		SellerNet:        decimal.RequireFromString("3422.50"),
		State:            state,
		Version:          3,
		CreatedAt:        now,
		UpdatedAt:        now,
		FundedAt:         &now,
	}
	require.NoError(t, repo.Create(context.Background(), o))
	return o
}

func TestSettlementReconcileBackfillsMissingEntries(t *testing.T) {
	conn := dbtest.Open(t)
	orders := settlement.NewRepository(conn)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	completed := seedSettledOrder(t, orders, enums.OrderStateCompleted)
	refunded := seedSettledOrder(t, orders, enums.OrderStateRefunded)
	shipped := seedSettledOrder(t, orders, enums.OrderStateShipped)
	require.NoError(t, ledgerSvc.HoldFunds(ctx, completed.ID, completed.BuyerID, completed.TotalAmount))

	job, err := NewSettlementReconcileJob(SettlementReconcileJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Orders: orders,
		Ledger: ledgerSvc,
	})
	require.NoError(t, err)
	require.NoError(t, job.Run(ctx))

	events, err := ledgerSvc.ListByOrder(ctx, completed.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	release, err := ledgerSvc.HasEvent(ctx, completed.ID, enums.LedgerEventTypeRelease)
	require.NoError(t, err)
	require.True(t, release)

	refund, err := ledgerSvc.HasEvent(ctx, refunded.ID, enums.LedgerEventTypeRefund)
	require.NoError(t, err)
	require.True(t, refund)

	held, err := ledgerSvc.HasEvent(ctx, shipped.ID, enums.LedgerEventTypeHold)
	require.NoError(t, err)
	require.True(t, held)
	released, err := ledgerSvc.HasEvent(ctx, shipped.ID, enums.LedgerEventTypeRelease)
	require.NoError(t, err)
	require.False(t, released, "in-flight orders keep their funds held")

	remaining, err := orders.ListUnsettled(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, remaining)

	require.NoError(t, job.Run(ctx), "second run has nothing to do")
	events, err = ledgerSvc.ListByOrder(ctx, completed.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
}

type stubUnsettled struct{ orders []models.Order }

func (s stubUnsettled) ListUnsettled(context.Context, int) ([]models.Order, error) {
	return s.orders, nil
}

type flakyLedger struct {
	failFor uuid.UUID
	writes  int
}

func (f *flakyLedger) HoldFunds(context.Context, uuid.UUID, uuid.UUID, decimal.Decimal) error {
	return nil
}

func (f *flakyLedger) ReleaseFunds(_ context.Context, orderID, _ uuid.UUID, _ decimal.Decimal) error {
	if orderID == f.failFor {
		return errors.New("ledger unavailable")
	}
	f.writes++
	return nil
}

func (f *flakyLedger) RefundFunds(context.Context, uuid.UUID, uuid.UUID, decimal.Decimal) error {
	return nil
}

func (f *flakyLedger) HasEvent(context.Context, uuid.UUID, enums.LedgerEventType) (bool, error) {
	return true, nil
}

func TestSettlementReconcileContinuesPastFailures(t *testing.T) {
	bad := models.Order{ID: uuid.New(), State: enums.OrderStateCompleted}
	good := models.Order{ID: uuid.New(), State: enums.OrderStateCompleted}
	led := &flakyLedger{failFor: bad.ID}
	job, err := NewSettlementReconcileJob(SettlementReconcileJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Orders: stubUnsettled{orders: []models.Order{bad, good}},
		Ledger: led,
	})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), bad.ID.String())
	require.Equal(t, 1, led.writes)
}
