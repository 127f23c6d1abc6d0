package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
)

// Order is one escrow-mediated purchase. SellerID, UnitPrice and
// CommissionRate are snapshots taken at creation and never re-read from the
// listing.
type Order struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ListingID        uuid.UUID        `gorm:"column:listing_id;type:uuid;not null"`
	BuyerID          uuid.UUID        `gorm:"column:buyer_id;type:uuid;not null"`
	SellerID         uuid.UUID        `gorm:"column:seller_id;type:uuid;not null"`
	Quantity         decimal.Decimal  `gorm:"column:quantity;type:numeric(14,3);not null"`
	UnitPrice        decimal.Decimal  `gorm:"column:unit_price;type:numeric(14,2);not null"`
	TotalAmount      decimal.Decimal  `gorm:"column:total_amount;type:numeric(14,2);not null"`
	CommissionRate   decimal.Decimal  `gorm:"column:commission_rate;type:numeric(6,4);not null"`
	CommissionAmount decimal.Decimal  `gorm:"column:commission_amount;type:numeric(14,2);not null"`
	SellerNet        decimal.Decimal  `gorm:"column:seller_net;type:numeric(14,2);not null"`
	State            enums.OrderState `gorm:"column:state;type:order_state;not null"`
	BuyerConfirmed   bool             `gorm:"column:buyer_confirmed;not null;default:false"`
	DisputeReason    *string          `gorm:"column:dispute_reason;type:text"`
	Version          int              `gorm:"column:version;not null;default:1"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	FundedAt         *time.Time       `gorm:"column:funded_at"`
	ShippedAt        *time.Time       `gorm:"column:shipped_at"`
	DeliveredAt      *time.Time       `gorm:"column:delivered_at"`
	CompletedAt      *time.Time       `gorm:"column:completed_at"`
	DisputedAt       *time.Time       `gorm:"column:disputed_at"`
	RefundedAt       *time.Time       `gorm:"column:refunded_at"`
}
