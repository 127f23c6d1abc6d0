package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
)

// LedgerEvent records an immutable fund movement tied to an order. At most
// one event of each type exists per order.
type LedgerEvent struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID             `gorm:"column:order_id;type:uuid;not null"`
	PartyID   uuid.UUID             `gorm:"column:party_id;type:uuid;not null"`
	Type      enums.LedgerEventType `gorm:"column:type;type:ledger_event_type;not null"`
	Amount    decimal.Decimal       `gorm:"column:amount;type:numeric(14,2);not null"`
	Metadata  json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}
