package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mineralmarket-backend/pkg/db"
	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mineralmarket-backend/pkg/errors"
	"github.com/angelmondragon/mineralmarket-backend/pkg/money"
)

// Service records fund movements. Each movement type is written at most once
// per order, so every call is safe to repeat.
type Service interface {
	HoldFunds(ctx context.Context, orderID, buyerID uuid.UUID, amount decimal.Decimal) error
	ReleaseFunds(ctx context.Context, orderID, sellerID uuid.UUID, amount decimal.Decimal) error
	RefundFunds(ctx context.Context, orderID, buyerID uuid.UUID, amount decimal.Decimal) error
	HasEvent(ctx context.Context, orderID uuid.UUID, eventType enums.LedgerEventType) (bool, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEvent, error)
}

type service struct {
	repo Repository
}

type entry struct {
	OrderID uuid.UUID             `json:"order_id"`
	PartyID uuid.UUID             `json:"party_id"`
	Type    enums.LedgerEventType `json:"type"`
	Amount  decimal.Decimal       `json:"amount"`
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) HoldFunds(ctx context.Context, orderID, buyerID uuid.UUID, amount decimal.Decimal) error {
	return s.record(ctx, entry{OrderID: orderID, PartyID: buyerID, Type: enums.LedgerEventTypeHold, Amount: amount})
}

func (s *service) ReleaseFunds(ctx context.Context, orderID, sellerID uuid.UUID, amount decimal.Decimal) error {
	return s.record(ctx, entry{OrderID: orderID, PartyID: sellerID, Type: enums.LedgerEventTypeRelease, Amount: amount})
}

func (s *service) RefundFunds(ctx context.Context, orderID, buyerID uuid.UUID, amount decimal.Decimal) error {
	return s.record(ctx, entry{OrderID: orderID, PartyID: buyerID, Type: enums.LedgerEventTypeRefund, Amount: amount})
}

func (s *service) record(ctx context.Context, in entry) error {
	if in.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if in.PartyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "party id is required")
	}
	if !in.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger event type %q", in.Type))
	}
	amount := money.Round2(in.Amount)
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	existing, err := s.repo.FindByOrderAndType(ctx, in.OrderID, in.Type)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup ledger event")
	}
	if existing != nil {
		return sameMovement(existing, in.PartyID, amount)
	}

	metadata, err := json.Marshal(map[string]string{"source": "settlement"})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode ledger metadata")
	}
	event := &models.LedgerEvent{
		OrderID:  in.OrderID,
		PartyID:  in.PartyID,
		Type:     in.Type,
		Amount:   amount,
		Metadata: metadata,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return pkgerrors.FromStore(err, pkgerrors.CodeDependency, "record ledger event")
	}
	return nil
}

// sameMovement accepts a replay of an already recorded movement and rejects a
// conflicting one.
func sameMovement(existing *models.LedgerEvent, partyID uuid.UUID, amount decimal.Decimal) error {
	if existing.PartyID == partyID && existing.Amount.Equal(amount) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "ledger event already recorded with different values").
		WithDetails(map[string]any{
			"type":            existing.Type,
			"recorded_amount": existing.Amount.StringFixed(money.Scale),
		})
}

func (s *service) HasEvent(ctx context.Context, orderID uuid.UUID, eventType enums.LedgerEventType) (bool, error) {
	if orderID == uuid.Nil {
		return false, fmt.Errorf("order id is required")
	}
	if !eventType.IsValid() {
		return false, fmt.Errorf("invalid ledger event type %q", eventType)
	}
	event, err := s.repo.FindByOrderAndType(ctx, orderID, eventType)
	if err != nil {
		return false, err
	}
	return event != nil, nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEvent, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return s.repo.ListByOrderID(ctx, orderID)
}
