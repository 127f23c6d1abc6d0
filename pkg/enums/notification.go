package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypePurchaseCreated NotificationType = "purchase_created"
	NotificationTypeOrderShipped    NotificationType = "order_shipped"
	NotificationTypeOrderDelivered  NotificationType = "order_delivered"
	NotificationTypeOrderCompleted  NotificationType = "order_completed"
	NotificationTypeDisputeOpened   NotificationType = "dispute_opened"
	NotificationTypeOrderRefunded   NotificationType = "order_refunded"
	NotificationTypeFundsReleased   NotificationType = "funds_released"
)

var validNotificationTypes = []NotificationType{
	NotificationTypePurchaseCreated,
	NotificationTypeOrderShipped,
	NotificationTypeOrderDelivered,
	NotificationTypeOrderCompleted,
	NotificationTypeDisputeOpened,
	NotificationTypeOrderRefunded,
	NotificationTypeFundsReleased,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
