package enums

import "fmt"

// OrderState maps to the order_state enum in Postgres.
type OrderState string

const (
	OrderStateFundsHeld OrderState = "FUNDS_HELD"
	OrderStateShipped   OrderState = "SHIPPED"
	OrderStateDelivered OrderState = "DELIVERED"
	OrderStateDisputed  OrderState = "DISPUTED"
	OrderStateCompleted OrderState = "COMPLETED"
	OrderStateRefunded  OrderState = "REFUNDED"
)

var validOrderStates = []OrderState{
	OrderStateFundsHeld,
	OrderStateShipped,
	OrderStateDelivered,
	OrderStateDisputed,
	OrderStateCompleted,
	OrderStateRefunded,
}

// IsValid reports whether the value matches the canonical order_state enum.
func (s OrderState) IsValid() bool {
	for _, candidate := range validOrderStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderState converts raw input into OrderState.
func ParseOrderState(value string) (OrderState, error) {
	for _, candidate := range validOrderStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order state %q", value)
}
