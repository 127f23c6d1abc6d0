package orders

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mineralmarket-backend/api/middleware"
	"github.com/angelmondragon/mineralmarket-backend/api/responses"
	"github.com/angelmondragon/mineralmarket-backend/api/validators"
	"github.com/angelmondragon/mineralmarket-backend/internal/settlement"
	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mineralmarket-backend/pkg/errors"
	"github.com/angelmondragon/mineralmarket-backend/pkg/logger"
	"github.com/angelmondragon/mineralmarket-backend/pkg/pagination"
)

type createOrderRequest struct {
	ListingID uuid.UUID       `json:"listing_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"positive_decimal"`
}

type disputeRequest struct {
	Reason string `json:"reason" validate:"notblank,max=2000"`
}

type transitionFunc func(ctx context.Context, input settlement.TransitionInput) (*models.Order, error)

// Create places a purchase against a listing and holds the buyer's funds.
func Create(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if actor.Role != enums.ActorRoleBuyer {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "only buyers can place orders"))
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), settlement.CreateOrderInput{
			BuyerID:   actor.UserID,
			ListingID: req.ListingID,
			Quantity:  req.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, settlement.NewOrderView(order))
	}
}

// List returns the caller's orders from the buyer or seller side.
func List(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		perspective, err := parsePerspective(r, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := settlement.ListOrdersInput{
			Actor:       actor,
			Perspective: perspective,
			Cursor:      strings.TrimSpace(r.URL.Query().Get("cursor")),
			Limit:       limit,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("state")); raw != "" {
			state, err := enums.ParseOrderState(strings.ToUpper(raw))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid state filter"))
				return
			}
			input.State = &state
		}

		list, err := svc.ListOrders(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Detail returns one order to its buyer, its seller or an admin.
func Detail(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.URLParamUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settlement.NewOrderView(order))
	}
}

// Ship lets the seller mark a funded order as shipped.
func Ship(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(s settlement.Service) transitionFunc { return s.MarkShipped })
}

// Deliver lets the seller mark a shipped order as delivered.
func Deliver(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(s settlement.Service) transitionFunc { return s.MarkDelivered })
}

// Confirm lets the buyer confirm receipt, completing the order.
func Confirm(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(s settlement.Service) transitionFunc { return s.ConfirmDelivery })
}

// Dispute lets the buyer or seller freeze a funded order pending admin review.
func Dispute(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.URLParamUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req disputeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.OpenDispute(r.Context(), settlement.DisputeInput{
			OrderID: orderID,
			Actor:   actor,
			Reason:  strings.TrimSpace(req.Reason),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settlement.NewOrderView(order))
	}
}

func transitionHandler(svc settlement.Service, logg *logger.Logger, pick func(settlement.Service) transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlement service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.URLParamUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := pick(svc)(r.Context(), settlement.TransitionInput{OrderID: orderID, Actor: actor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settlement.NewOrderView(order))
	}
}

func actorFromRequest(r *http.Request) (settlement.Actor, error) {
	rawUser := middleware.UserIDFromContext(r.Context())
	if rawUser == "" {
		return settlement.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return settlement.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role, err := enums.ParseActorRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return settlement.Actor{}, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid role")
	}
	return settlement.Actor{UserID: userID, Role: role}, nil
}

func parsePerspective(r *http.Request, actor settlement.Actor) (settlement.Perspective, error) {
	raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("perspective")))
	switch settlement.Perspective(raw) {
	case settlement.PerspectiveBuyer, settlement.PerspectiveSeller:
		return settlement.Perspective(raw), nil
	case "":
		if actor.Role == enums.ActorRoleSeller {
			return settlement.PerspectiveSeller, nil
		}
		return settlement.PerspectiveBuyer, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "perspective must be buyer or seller")
	}
}
