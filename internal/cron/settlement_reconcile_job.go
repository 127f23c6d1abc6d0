package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	"github.com/angelmondragon/mineralmarket-backend/pkg/logger"
)

const defaultReconcileBatch = 200

// SettlementReconcileJobParams configure the ledger repair job.
type SettlementReconcileJobParams struct {
	Logger    *logger.Logger
	Orders    unsettledOrderReader
	Ledger    ledgerWriter
	BatchSize int
}

type unsettledOrderReader interface {
	ListUnsettled(ctx context.Context, limit int) ([]models.Order, error)
}

type ledgerWriter interface {
	HoldFunds(ctx context.Context, orderID, buyerID uuid.UUID, amount decimal.Decimal) error
	ReleaseFunds(ctx context.Context, orderID, sellerID uuid.UUID, amount decimal.Decimal) error
	RefundFunds(ctx context.Context, orderID, buyerID uuid.UUID, amount decimal.Decimal) error
	HasEvent(ctx context.Context, orderID uuid.UUID, eventType enums.LedgerEventType) (bool, error)
}

// NewSettlementReconcileJob builds the job that backfills ledger entries the
// settlement engine failed to write after commit.
func NewSettlementReconcileJob(params SettlementReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultReconcileBatch
	}
	return &settlementReconcileJob{
		logg:   params.Logger,
		orders: params.Orders,
		ledger: params.Ledger,
		batch:  batch,
	}, nil
}

type settlementReconcileJob struct {
	logg   *logger.Logger
	orders unsettledOrderReader
	ledger ledgerWriter
	batch  int
}

func (j *settlementReconcileJob) Name() string { return "settlement-reconcile" }

func (j *settlementReconcileJob) Run(ctx context.Context) error {
	orders, err := j.orders.ListUnsettled(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("query unsettled orders: %w", err)
	}
	var errs []error
	repaired := 0
	for i := range orders {
		if err := j.reconcile(ctx, &orders[i]); err != nil {
			errs = append(errs, fmt.Errorf("order %s: %w", orders[i].ID, err))
			continue
		}
		repaired++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(orders),
		"repaired":   repaired,
		"failed":     len(errs),
	})
	j.logg.Info(logCtx, "settlement reconcile complete")
	return multierr.Combine(errs...)
}

// reconcile writes every entry the order's state implies. Ledger writes are
// idempotent so entries that already exist are left alone.
func (j *settlementReconcileJob) reconcile(ctx context.Context, o *models.Order) error {
	held, err := j.ledger.HasEvent(ctx, o.ID, enums.LedgerEventTypeHold)
	if err != nil {
		return err
	}
	if !held {
		if err := j.ledger.HoldFunds(ctx, o.ID, o.BuyerID, o.TotalAmount); err != nil {
			return fmt.Errorf("hold: %w", err)
		}
	}
	switch o.State {
	case enums.OrderStateCompleted:
		if err := j.ledger.ReleaseFunds(ctx, o.ID, o.SellerID, o.SellerNet); err != nil {
			return fmt.Errorf("release: %w", err)
		}
	case enums.OrderStateRefunded:
		if err := j.ledger.RefundFunds(ctx, o.ID, o.BuyerID, o.TotalAmount); err != nil {
			return fmt.Errorf("refund: %w", err)
		}
	}
	return nil
}
