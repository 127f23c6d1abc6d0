package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
)

// OrderCreatedEvent is emitted once funds are held for a new order.
type OrderCreatedEvent struct {
	OrderID          uuid.UUID       `json:"order_id"`
	ListingID        uuid.UUID       `json:"listing_id"`
	BuyerID          uuid.UUID       `json:"buyer_id"`
	SellerID         uuid.UUID       `json:"seller_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	SellerNet        decimal.Decimal `json:"seller_net"`
	CreatedAt        time.Time       `json:"created_at"`
}

// OrderTransitionEvent covers every state change after creation.
type OrderTransitionEvent struct {
	OrderID   uuid.UUID        `json:"order_id"`
	ListingID uuid.UUID        `json:"listing_id"`
	BuyerID   uuid.UUID        `json:"buyer_id"`
	SellerID  uuid.UUID        `json:"seller_id"`
	From      enums.OrderState `json:"from"`
	To        enums.OrderState `json:"to"`
	ActorID   uuid.UUID        `json:"actor_id"`
	ActorRole enums.ActorRole  `json:"actor_role"`
	Reason    *string          `json:"reason,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Restocked *decimal.Decimal `json:"restocked_quantity,omitempty"`
	Version   int              `json:"version"`
	At        time.Time        `json:"at"`
}
