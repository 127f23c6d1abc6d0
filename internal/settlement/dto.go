package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
)

// Actor is the authenticated caller as asserted by the identity provider.
type Actor struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}

func (a Actor) isAdmin() bool { return a.Role == enums.ActorRoleAdmin }
func (a Actor) isSystem() bool { return a.Role == enums.ActorRoleSystem }

// CreateOrderInput is a buyer's purchase request.
type CreateOrderInput struct {
	BuyerID   uuid.UUID
	ListingID uuid.UUID
	Quantity  decimal.Decimal
}

// TransitionInput drives an existing order through the state machine.
type TransitionInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// DisputeInput opens a dispute with a free-text reason.
type DisputeInput struct {
	OrderID uuid.UUID
	Actor   Actor
	Reason  string
}

// Perspective selects which side of the order the caller lists from.
type Perspective string

const (
	PerspectiveBuyer  Perspective = "buyer"
	PerspectiveSeller Perspective = "seller"
)

// ListOrdersInput filters the caller's orders.
type ListOrdersInput struct {
	Actor       Actor
	Perspective Perspective
	State       *enums.OrderState
	Cursor      string
	Limit       int
}

// OrderView is the API representation of an order.
type OrderView struct {
	ID               uuid.UUID        `json:"id"`
	ListingID        uuid.UUID        `json:"listing_id"`
	BuyerID          uuid.UUID        `json:"buyer_id"`
	SellerID         uuid.UUID        `json:"seller_id"`
	Quantity         decimal.Decimal  `json:"quantity"`
	UnitPrice        decimal.Decimal  `json:"unit_price"`
	TotalAmount      string           `json:"total_amount"`
	CommissionRate   decimal.Decimal  `json:"commission_rate"`
	CommissionAmount string           `json:"commission_amount"`
	SellerNet        string           `json:"seller_net"`
	State            enums.OrderState `json:"state"`
	BuyerConfirmed   bool             `json:"buyer_confirmed"`
	DisputeReason    *string          `json:"dispute_reason,omitempty"`
	Version          int              `json:"version"`
	CreatedAt        time.Time        `json:"created_at"`
	FundedAt         *time.Time       `json:"funded_at,omitempty"`
	ShippedAt        *time.Time       `json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time       `json:"delivered_at,omitempty"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	DisputedAt       *time.Time       `json:"disputed_at,omitempty"`
	RefundedAt       *time.Time       `json:"refunded_at,omitempty"`
}

// OrderList is one page of orders.
type OrderList struct {
	Items      []OrderView `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// NewOrderView renders money with exactly two decimals.
func NewOrderView(o *models.Order) OrderView {
	return OrderView{
		ID:               o.ID,
		ListingID:        o.ListingID,
		BuyerID:          o.BuyerID,
		SellerID:         o.SellerID,
		Quantity:         o.Quantity,
		UnitPrice:        o.UnitPrice,
		TotalAmount:      o.TotalAmount.StringFixed(2),
		CommissionRate:   o.CommissionRate,
		CommissionAmount: o.CommissionAmount.StringFixed(2),
		SellerNet:        o.SellerNet.StringFixed(2),
		State:            o.State,
		BuyerConfirmed:   o.BuyerConfirmed,
		DisputeReason:    o.DisputeReason,
		Version:          o.Version,
		CreatedAt:        o.CreatedAt,
		FundedAt:         o.FundedAt,
		ShippedAt:        o.ShippedAt,
		DeliveredAt:      o.DeliveredAt,
		CompletedAt:      o.CompletedAt,
		DisputedAt:       o.DisputedAt,
		RefundedAt:       o.RefundedAt,
	}
}
