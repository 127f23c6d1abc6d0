package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mineralmarket-backend/pkg/errors"
	"github.com/angelmondragon/mineralmarket-backend/pkg/pagination"
)

// Service defines notification delivery and list/read operations.
type Service interface {
	Notify(ctx context.Context, userID uuid.UUID, notificationType enums.NotificationType, payload Payload) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// Payload is the structured body stored with a notification.
type Payload struct {
	OrderID   uuid.UUID        `json:"order_id"`
	ListingID uuid.UUID        `json:"listing_id,omitempty"`
	State     enums.OrderState `json:"state,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	Reason    string           `json:"reason,omitempty"`
}

// ListParams configures pagination for notifications.
type ListParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

var templates = map[enums.NotificationType]struct{ title, message string }{
	enums.NotificationTypePurchaseCreated: {"New purchase", "A buyer purchased from your listing. Funds are held in escrow until delivery is confirmed."},
	enums.NotificationTypeOrderShipped:    {"Order shipped", "The seller marked your order as shipped."},
	enums.NotificationTypeOrderDelivered:  {"Order delivered", "Your order was marked delivered. Confirm receipt or open a dispute."},
	enums.NotificationTypeOrderCompleted:  {"Order completed", "The order is complete."},
	enums.NotificationTypeDisputeOpened:   {"Dispute opened", "A dispute was opened on your order. Funds stay held until an admin resolves it."},
	enums.NotificationTypeOrderRefunded:   {"Order refunded", "The order was refunded to the buyer."},
	enums.NotificationTypeFundsReleased:   {"Funds released", "Escrowed funds for your order were released to your balance."},
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) Notify(ctx context.Context, userID uuid.UUID, notificationType enums.NotificationType, payload Payload) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	tmpl, ok := templates[notificationType]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported notification type")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode notification payload")
	}

	notification := &models.Notification{
		UserID:    userID,
		Type:      notificationType,
		Title:     tmpl.title,
		Message:   tmpl.message,
		Payload:   body,
		CreatedAt: s.now(),
	}
	if payload.OrderID != uuid.Nil {
		link := "/orders/" + payload.OrderID.String()
		notification.Link = &link
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listNotificationsParams{
		UserID:     params.UserID,
		Limit:      pagination.LimitWithBuffer(params.Limit),
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	items, cursor := pagination.Trim(rows, params.Limit, func(n models.Notification) pagination.Cursor {
		return pagination.Cursor{CreatedAt: n.CreatedAt, ID: n.ID}
	})
	return &ListResult{
		Items:  items,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, notificationID, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	count, err := s.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete read notifications")
	}
	return count, nil
}
