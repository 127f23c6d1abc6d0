package settlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/mineralmarket-backend/internal/listings"
	"github.com/angelmondragon/mineralmarket-backend/internal/notifications"
	"github.com/angelmondragon/mineralmarket-backend/pkg/db"
	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mineralmarket-backend/pkg/errors"
	"github.com/angelmondragon/mineralmarket-backend/pkg/logger"
	"github.com/angelmondragon/mineralmarket-backend/pkg/metrics"
	"github.com/angelmondragon/mineralmarket-backend/pkg/money"
	"github.com/angelmondragon/mineralmarket-backend/pkg/outbox"
	"github.com/angelmondragon/mineralmarket-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/mineralmarket-backend/pkg/pagination"
)

const (
	opCreateOrder          = "create_order"
	opMarkShipped          = "mark_shipped"
	opMarkDelivered        = "mark_delivered"
	opConfirmDelivery      = "confirm_delivery"
	opOpenDispute          = "open_dispute"
	opCompleteAfterDispute = "complete_after_dispute"
	opRefund               = "refund"

	maxQuantityScale    = 3
	maxDisputeReasonLen = 2000
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// LedgerSink records fund movements. Calls happen after commit.
type LedgerSink interface {
	HoldFunds(ctx context.Context, orderID, buyerID uuid.UUID, amount decimal.Decimal) error
	ReleaseFunds(ctx context.Context, orderID, sellerID uuid.UUID, amount decimal.Decimal) error
	RefundFunds(ctx context.Context, orderID, buyerID uuid.UUID, amount decimal.Decimal) error
}

// Notifier delivers user-facing notifications. Calls happen after commit.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notificationType enums.NotificationType, payload notifications.Payload) error
}

type metricsRecorder interface {
	Observe(operation, outcome string, elapsed time.Duration)
	IncRetry(operation string)
}

// Service is the order settlement engine.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	MarkShipped(ctx context.Context, input TransitionInput) (*models.Order, error)
	MarkDelivered(ctx context.Context, input TransitionInput) (*models.Order, error)
	ConfirmDelivery(ctx context.Context, input TransitionInput) (*models.Order, error)
	OpenDispute(ctx context.Context, input DisputeInput) (*models.Order, error)
	CompleteAfterDispute(ctx context.Context, input TransitionInput) (*models.Order, error)
	Refund(ctx context.Context, input TransitionInput) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	ListOrders(ctx context.Context, input ListOrdersInput) (*OrderList, error)
}

// Params carries the engine's collaborators.
type Params struct {
	Repo           Repository
	Listings       listings.Repository
	Tx             txRunner
	Outbox         outboxPublisher
	Ledger         LedgerSink
	Notifier       Notifier
	Logger         *logger.Logger
	Metrics        metricsRecorder
	CommissionRate decimal.Decimal
	TxRetries      int
	Now            func() time.Time
}

type service struct {
	repo      Repository
	listings  listings.Repository
	tx        txRunner
	outbox    outboxPublisher
	ledger    LedgerSink
	notifier  Notifier
	logg      *logger.Logger
	metrics   metricsRecorder
	rate      decimal.Decimal
	txRetries int
	now       func() time.Time
}

// NewService builds the settlement engine.
func NewService(p Params) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if p.Ledger == nil {
		return nil, fmt.Errorf("ledger sink required")
	}
	if p.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	rate := p.CommissionRate
	if rate.IsZero() {
		rate = money.DefaultCommissionRate
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("commission rate must be in [0, 1), got %s", rate)
	}
	now := p.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	m := p.Metrics
	if m == nil {
		m = metrics.NewSettlementMetrics(nil)
	}
	retries := p.TxRetries
	if retries < 0 {
		retries = 0
	}
	return &service{
		repo:      p.Repo,
		listings:  p.Listings,
		tx:        p.Tx,
		outbox:    p.Outbox,
		ledger:    p.Ledger,
		notifier:  p.Notifier,
		logg:      p.Logger,
		metrics:   m,
		rate:      rate,
		txRetries: retries,
		now:       now,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (order *models.Order, err error) {
	defer s.observe(opCreateOrder, time.Now(), &err)

	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if input.ListingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if !input.Quantity.Equal(input.Quantity.Truncate(maxQuantityScale)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity supports at most three decimal places")
	}
	qty := input.Quantity

	err = s.runTx(ctx, opCreateOrder, func(tx *gorm.DB) error {
		listingRepo := s.listings.WithTx(tx)
		listing, err := listingRepo.FindByID(ctx, input.ListingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
		}
		if listing.Unit.Countable() && !qty.Equal(qty.Truncate(0)) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be a whole number of %s", listing.Unit))
		}
		if err := checkPurchasable(listing); err != nil {
			return err
		}
		if listing.SellerID == input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeInvalidActor, "sellers cannot purchase their own listing")
		}
		if qty.GreaterThan(listing.Quantity) {
			return insufficientQuantity(listing)
		}
		split := money.Compute(qty, listing.PricePerUnit, s.rate)
		if !split.Settleable() {
			return pkgerrors.New(pkgerrors.CodeValidation, "order value rounds to less than one cent").
				WithDetails(map[string]any{
					"total":      split.Total.StringFixed(money.Scale),
					"seller_net": split.SellerNet.StringFixed(money.Scale),
				})
		}

		ok, err := listingRepo.DecrementQuantity(ctx, listing.ID, qty)
		if err != nil {
			return pkgerrors.FromStore(err, pkgerrors.CodeDependency, "reserve listing quantity")
		}
		if !ok {
			current, err := listingRepo.FindByID(ctx, listing.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload listing")
			}
			if err := checkPurchasable(current); err != nil {
				return err
			}
			return insufficientQuantity(current)
		}

		now := s.now()
		created := &models.Order{
			ID:               uuid.New(),
			ListingID:        listing.ID,
			BuyerID:          input.BuyerID,
			SellerID:         listing.SellerID,
			Quantity:         qty,
			UnitPrice:        listing.PricePerUnit,
			TotalAmount:      split.Total,
			CommissionRate:   s.rate,
			CommissionAmount: split.Commission,
			SellerNet:        split.SellerNet,
			State:            enums.OrderStateFundsHeld,
			Version:          1,
			CreatedAt:        now,
			UpdatedAt:        now,
			FundedAt:         &now,
		}
		if err := s.repo.WithTx(tx).Create(ctx, created); err != nil {
			return pkgerrors.FromStore(err, pkgerrors.CodeDependency, "create order")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   created.ID,
			Actor:         &outbox.ActorRef{UserID: input.BuyerID, Role: string(enums.ActorRoleBuyer)},
			Data: payloads.OrderCreatedEvent{
				OrderID:          created.ID,
				ListingID:        created.ListingID,
				BuyerID:          created.BuyerID,
				SellerID:         created.SellerID,
				Quantity:         created.Quantity,
				UnitPrice:        created.UnitPrice,
				TotalAmount:      created.TotalAmount,
				CommissionRate:   created.CommissionRate,
				CommissionAmount: created.CommissionAmount,
				SellerNet:        created.SellerNet,
				CreatedAt:        now,
			},
			OccurredAt: now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order created event")
		}

		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.orderLogContext(ctx, order)
	s.info(logCtx, "settlement.order_created")
	s.recordLedger(logCtx, "hold", func() error {
		return s.ledger.HoldFunds(ctx, order.ID, order.BuyerID, order.TotalAmount)
	})
	s.notify(logCtx, order.SellerID, enums.NotificationTypePurchaseCreated, order, nil)
	return order, nil
}

func (s *service) MarkShipped(ctx context.Context, input TransitionInput) (*models.Order, error) {
	return s.transition(ctx, input.OrderID, input.Actor, transition{
		op: opMarkShipped,
		to: enums.OrderStateShipped,
		authorize: func(o *models.Order, a Actor) bool {
			return a.UserID == o.SellerID || a.isAdmin()
		},
		event: enums.EventOrderShipped,
		after: func(ctx context.Context, o *models.Order, _ Actor) {
			s.notify(ctx, o.BuyerID, enums.NotificationTypeOrderShipped, o, nil)
		},
	})
}

func (s *service) MarkDelivered(ctx context.Context, input TransitionInput) (*models.Order, error) {
	return s.transition(ctx, input.OrderID, input.Actor, transition{
		op: opMarkDelivered,
		to: enums.OrderStateDelivered,
		authorize: func(o *models.Order, a Actor) bool {
			return a.UserID == o.SellerID || a.isAdmin() || a.isSystem()
		},
		event: enums.EventOrderDelivered,
		after: func(ctx context.Context, o *models.Order, _ Actor) {
			s.notify(ctx, o.BuyerID, enums.NotificationTypeOrderDelivered, o, nil)
		},
	})
}

// ConfirmDelivery is the buyer's acceptance and the normal path that pays the seller.
func (s *service) ConfirmDelivery(ctx context.Context, input TransitionInput) (*models.Order, error) {
	return s.transition(ctx, input.OrderID, input.Actor, transition{
		op:   opConfirmDelivery,
		from: enums.OrderStateDelivered,
		to:   enums.OrderStateCompleted,
		authorize: func(o *models.Order, a Actor) bool {
			return a.UserID == o.BuyerID
		},
		fields: map[string]any{"buyer_confirmed": true},
		apply:  func(o *models.Order) { o.BuyerConfirmed = true },
		event:  enums.EventOrderCompleted,
		after:  s.releaseToSeller,
	})
}

func (s *service) OpenDispute(ctx context.Context, input DisputeInput) (*models.Order, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute reason required")
	}
	if len([]rune(reason)) > maxDisputeReasonLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("dispute reason must be at most %d characters", maxDisputeReasonLen))
	}
	return s.transition(ctx, input.OrderID, input.Actor, transition{
		op: opOpenDispute,
		to: enums.OrderStateDisputed,
		authorize: func(o *models.Order, a Actor) bool {
			return a.UserID == o.BuyerID || a.UserID == o.SellerID
		},
		fields: map[string]any{"dispute_reason": reason},
		apply:  func(o *models.Order) { o.DisputeReason = &reason },
		reason: &reason,
		event:  enums.EventOrderDisputed,
		after: func(ctx context.Context, o *models.Order, a Actor) {
			counterparty := o.SellerID
			if a.UserID == o.SellerID {
				counterparty = o.BuyerID
			}
			s.notify(ctx, counterparty, enums.NotificationTypeDisputeOpened, o, func(p *notifications.Payload) {
				p.Reason = reason
			})
		},
	})
}

// CompleteAfterDispute resolves a dispute in the seller's favour.
func (s *service) CompleteAfterDispute(ctx context.Context, input TransitionInput) (*models.Order, error) {
	return s.transition(ctx, input.OrderID, input.Actor, transition{
		op:        opCompleteAfterDispute,
		from:      enums.OrderStateDisputed,
		to:        enums.OrderStateCompleted,
		authorize: func(_ *models.Order, a Actor) bool { return a.isAdmin() },
		event:     enums.EventOrderCompleted,
		after: func(ctx context.Context, o *models.Order, a Actor) {
			s.releaseToSeller(ctx, o, a)
			s.notify(ctx, o.BuyerID, enums.NotificationTypeOrderCompleted, o, nil)
		},
	})
}

// Refund returns the full total to the buyer and puts the stock back.
func (s *service) Refund(ctx context.Context, input TransitionInput) (*models.Order, error) {
	return s.transition(ctx, input.OrderID, input.Actor, transition{
		op:        opRefund,
		to:        enums.OrderStateRefunded,
		authorize: func(_ *models.Order, a Actor) bool { return a.isAdmin() },
		inTx: func(ctx context.Context, tx *gorm.DB, o *models.Order) error {
			if err := s.listings.WithTx(tx).RestoreQuantity(ctx, o.ListingID, o.Quantity); err != nil {
				return pkgerrors.FromStore(err, pkgerrors.CodeDependency, "restore listing quantity")
			}
			return nil
		},
		restock: true,
		event:   enums.EventOrderRefunded,
		after: func(ctx context.Context, o *models.Order, _ Actor) {
			s.recordLedger(ctx, "refund", func() error {
				return s.ledger.RefundFunds(ctx, o.ID, o.BuyerID, o.TotalAmount)
			})
			s.notify(ctx, o.BuyerID, enums.NotificationTypeOrderRefunded, o, nil)
			s.notify(ctx, o.SellerID, enums.NotificationTypeOrderRefunded, o, nil)
		},
	})
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if actor.UserID != order.BuyerID && actor.UserID != order.SellerID && !actor.isAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, input ListOrdersInput) (*OrderList, error) {
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	params := listOrdersParams{
		PartyID: input.Actor.UserID,
		State:   input.State,
		Limit:   pagination.LimitWithBuffer(input.Limit),
	}
	switch input.Perspective {
	case PerspectiveBuyer, "":
		params.PartyColumn = "buyer_id"
	case PerspectiveSeller:
		params.PartyColumn = "seller_id"
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "perspective must be buyer or seller")
	}
	if input.State != nil && !input.State.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order state filter")
	}
	if input.Cursor != "" {
		cursor, err := pagination.ParseCursor(input.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		params.Cursor = cursor
	}

	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page, next := pagination.Trim(rows, input.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	items := make([]OrderView, 0, len(page))
	for i := range page {
		items = append(items, NewOrderView(&page[i]))
	}
	return &OrderList{Items: items, NextCursor: next}, nil
}

// transition describes one edge of the state machine and its effects.
type transition struct {
	op        string
	from      enums.OrderState
	to        enums.OrderState
	authorize func(o *models.Order, a Actor) bool
	fields    map[string]any
	apply     func(o *models.Order)
	inTx      func(ctx context.Context, tx *gorm.DB, o *models.Order) error
	reason    *string
	restock   bool
	event     enums.OutboxEventType
	after     func(ctx context.Context, o *models.Order, a Actor)
}

func (s *service) transition(ctx context.Context, orderID uuid.UUID, actor Actor, t transition) (order *models.Order, err error) {
	defer s.observe(t.op, time.Now(), &err)

	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var from enums.OrderState
	err = s.runTx(ctx, t.op, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if !t.authorize(current, actor) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "actor may not perform this action on the order")
		}
		if t.from != "" && current.State != t.from {
			return invalidTransition(current.State, t.to)
		}
		if err := validateTransition(current.State, t.to); err != nil {
			return err
		}

		now := s.now()
		ok, err := repo.Transition(ctx, TransitionUpdate{
			OrderID:         current.ID,
			From:            current.State,
			To:              t.to,
			ExpectedVersion: current.Version,
			At:              now,
			Fields:          t.fields,
		})
		if err != nil {
			return pkgerrors.FromStore(err, pkgerrors.CodeDependency, "update order state")
		}
		if !ok {
			return invalidTransition(current.State, t.to)
		}

		from = current.State
		applyState(current, t.to, now)
		if t.apply != nil {
			t.apply(current)
		}
		if t.inTx != nil {
			if err := t.inTx(ctx, tx, current); err != nil {
				return err
			}
		}

		data := payloads.OrderTransitionEvent{
			OrderID:   current.ID,
			ListingID: current.ListingID,
			BuyerID:   current.BuyerID,
			SellerID:  current.SellerID,
			From:      from,
			To:        t.to,
			ActorID:   actor.UserID,
			ActorRole: actor.Role,
			Reason:    t.reason,
			Version:   current.Version,
			At:        now,
		}
		switch t.to {
		case enums.OrderStateCompleted:
			data.Amount = &current.SellerNet
		case enums.OrderStateRefunded:
			data.Amount = &current.TotalAmount
		}
		if t.restock {
			data.Restocked = &current.Quantity
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     t.event,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data:          data,
			OccurredAt:    now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order event")
		}

		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.orderLogContext(ctx, order)
	if s.logg != nil {
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"from":       from,
			"to":         order.State,
			"actor_id":   actor.UserID.String(),
			"actor_role": actor.Role,
		})
	}
	s.info(logCtx, "settlement.order_transitioned")
	if t.after != nil {
		t.after(logCtx, order, actor)
	}
	return order, nil
}

func (s *service) releaseToSeller(ctx context.Context, o *models.Order, _ Actor) {
	s.recordLedger(ctx, "release", func() error {
		return s.ledger.ReleaseFunds(ctx, o.ID, o.SellerID, o.SellerNet)
	})
	s.notify(ctx, o.SellerID, enums.NotificationTypeOrderCompleted, o, nil)
	s.notify(ctx, o.SellerID, enums.NotificationTypeFundsReleased, o, func(p *notifications.Payload) {
		p.Amount = &o.SellerNet
	})
}

func (s *service) loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// runTx replays fn once more per configured retry when the datastore reports
// a serialization conflict or a busy lock.
func (s *service) runTx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	return db.RetryTransient(ctx, s.txRetries, func(attempt int, err error) {
		s.metrics.IncRetry(op)
		if s.logg != nil {
			retryCtx := s.logg.WithFields(ctx, map[string]any{"operation": op, "attempt": attempt, "error": err.Error()})
			s.logg.Warn(retryCtx, "settlement.tx_retry")
		}
	}, func() error {
		return s.tx.WithTx(ctx, fn)
	})
}

func (s *service) observe(op string, start time.Time, errp *error) {
	outcome := metrics.OutcomeOK
	if errp != nil && *errp != nil {
		outcome = strings.ToLower(string(pkgerrors.As(*errp).Code()))
	}
	s.metrics.Observe(op, outcome, time.Since(start))
}

func (s *service) recordLedger(ctx context.Context, movement string, fn func() error) {
	if err := fn(); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "movement", movement), "settlement.ledger_failed", err)
	}
}

func (s *service) notify(ctx context.Context, userID uuid.UUID, notificationType enums.NotificationType, o *models.Order, decorate func(p *notifications.Payload)) {
	payload := notifications.Payload{
		OrderID:   o.ID,
		ListingID: o.ListingID,
		State:     o.State,
		Quantity:  &o.Quantity,
	}
	if decorate != nil {
		decorate(&payload)
	}
	if err := s.notifier.Notify(ctx, userID, notificationType, payload); err != nil && s.logg != nil {
		warnCtx := s.logg.WithFields(ctx, map[string]any{
			"notification_type": notificationType,
			"recipient_id":      userID.String(),
			"error":             err.Error(),
		})
		s.logg.Warn(warnCtx, "settlement.notification_failed")
	}
}

func (s *service) orderLogContext(ctx context.Context, o *models.Order) context.Context {
	if s.logg == nil {
		return ctx
	}
	ctx = s.logg.WithOrderID(ctx, o.ID.String())
	return s.logg.WithListingID(ctx, o.ListingID.String())
}

func (s *service) info(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Info(ctx, msg)
	}
}

// applyState mirrors a successful Transition on the in-memory row.
func applyState(o *models.Order, to enums.OrderState, at time.Time) {
	o.State = to
	o.Version++
	o.UpdatedAt = at
	switch to {
	case enums.OrderStateShipped:
		o.ShippedAt = &at
	case enums.OrderStateDelivered:
		o.DeliveredAt = &at
	case enums.OrderStateCompleted:
		o.CompletedAt = &at
	case enums.OrderStateDisputed:
		o.DisputedAt = &at
	case enums.OrderStateRefunded:
		o.RefundedAt = &at
	}
}

// checkPurchasable rejects listings that are not on sale. A sold listing is
// still on sale but out of stock, which callers report as insufficient quantity.
func checkPurchasable(l *models.Listing) error {
	switch l.Status {
	case enums.ListingStatusLive:
		if !l.PricePerUnit.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeListingUnavailable, "listing has no valid price")
		}
		return nil
	case enums.ListingStatusSold:
		return insufficientQuantity(l)
	default:
		return pkgerrors.New(pkgerrors.CodeListingUnavailable, fmt.Sprintf("listing is %s and cannot be purchased", l.Status)).
			WithDetails(map[string]any{"status": l.Status})
	}
}

func insufficientQuantity(l *models.Listing) error {
	available := l.Quantity
	if available.IsNegative() {
		available = decimal.Zero
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientQuantity,
		fmt.Sprintf("requested quantity exceeds available stock; at most %s %s can be purchased", available.String(), l.Unit)).
		WithDetails(map[string]any{"available": available.String(), "unit": l.Unit})
}
