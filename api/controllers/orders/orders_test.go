package orders

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mineralmarket-backend/api/middleware"
	"github.com/angelmondragon/mineralmarket-backend/internal/settlement"
	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mineralmarket-backend/pkg/errors"
	"github.com/angelmondragon/mineralmarket-backend/pkg/logger"
)

type stubSettlement struct {
	settlement.Service

	create   func(ctx context.Context, input settlement.CreateOrderInput) (*models.Order, error)
	ship     func(ctx context.Context, input settlement.TransitionInput) (*models.Order, error)
	refund   func(ctx context.Context, input settlement.TransitionInput) (*models.Order, error)
	resolve  func(ctx context.Context, input settlement.TransitionInput) (*models.Order, error)
	dispute  func(ctx context.Context, input settlement.DisputeInput) (*models.Order, error)
	getOrder func(ctx context.Context, orderID uuid.UUID, actor settlement.Actor) (*models.Order, error)
	list     func(ctx context.Context, input settlement.ListOrdersInput) (*settlement.OrderList, error)
}

func (s *stubSettlement) CreateOrder(ctx context.Context, input settlement.CreateOrderInput) (*models.Order, error) {
	return s.create(ctx, input)
}

func (s *stubSettlement) MarkShipped(ctx context.Context, input settlement.TransitionInput) (*models.Order, error) {
	return s.ship(ctx, input)
}

func (s *stubSettlement) Refund(ctx context.Context, input settlement.TransitionInput) (*models.Order, error) {
	return s.refund(ctx, input)
}

func (s *stubSettlement) CompleteAfterDispute(ctx context.Context, input settlement.TransitionInput) (*models.Order, error) {
	return s.resolve(ctx, input)
}

func (s *stubSettlement) OpenDispute(ctx context.Context, input settlement.DisputeInput) (*models.Order, error) {
	return s.dispute(ctx, input)
}

func (s *stubSettlement) GetOrder(ctx context.Context, orderID uuid.UUID, actor settlement.Actor) (*models.Order, error) {
	return s.getOrder(ctx, orderID, actor)
}

func (s *stubSettlement) ListOrders(ctx context.Context, input settlement.ListOrdersInput) (*settlement.OrderList, error) {
	return s.list(ctx, input)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withActor(req *http.Request, userID uuid.UUID, role enums.ActorRole) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), userID.String(), string(role)))
}

func withOrderParam(req *http.Request, orderID uuid.UUID) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", orderID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func sampleOrder(state enums.OrderState) *models.Order {
	return &models.Order{
		ID:               uuid.New(),
		ListingID:        uuid.New(),
		BuyerID:          uuid.New(),
		SellerID:         uuid.New(),
		Quantity:         decimal.RequireFromString("2"),
		UnitPrice:        decimal.RequireFromString("100"),
		TotalAmount:      decimal.RequireFromString("200"),
		CommissionRate:   decimal.RequireFromString("0.05"),
		CommissionAmount: decimal.RequireFromString("10"),
		SellerNet:        decimal.RequireFromString("190"),
		State:            state,
		Version:          1,
	}
}

func decodeError(t *testing.T, body io.Reader) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

func TestCreateReturnsCreatedOrder(t *testing.T) {
	buyerID := uuid.New()
	listingID := uuid.New()
	var got settlement.CreateOrderInput
	svc := &stubSettlement{
		create: func(ctx context.Context, input settlement.CreateOrderInput) (*models.Order, error) {
			got = input
			o := sampleOrder(enums.OrderStateFundsHeld)
			o.BuyerID = input.BuyerID
			o.ListingID = input.ListingID
			return o, nil
		},
	}

	body := `{"listing_id":"` + listingID.String() + `","quantity":"2"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req = withActor(req, buyerID, enums.ActorRoleBuyer)
	resp := httptest.NewRecorder()
	Create(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if got.BuyerID != buyerID || got.ListingID != listingID || !got.Quantity.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("unexpected input %+v", got)
	}

	var envelope struct {
		Data settlement.OrderView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.State != enums.OrderStateFundsHeld {
		t.Fatalf("unexpected state %s", envelope.Data.State)
	}
	if envelope.Data.TotalAmount != "200.00" || envelope.Data.SellerNet != "190.00" {
		t.Fatalf("unexpected money fields %+v", envelope.Data)
	}
}

func TestCreateRejectsBadBodies(t *testing.T) {
	listingID := uuid.New().String()
	cases := map[string]string{
		"zero quantity":     `{"listing_id":"` + listingID + `","quantity":"0"}`,
		"negative quantity": `{"listing_id":"` + listingID + `","quantity":"-1"}`,
		"non numeric":       `{"listing_id":"` + listingID + `","quantity":"abc"}`,
		"missing listing":   `{"quantity":"1"}`,
		"unknown field":     `{"listing_id":"` + listingID + `","quantity":"1","price":"1"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &stubSettlement{
				create: func(ctx context.Context, input settlement.CreateOrderInput) (*models.Order, error) {
					t.Fatal("service should not be called")
					return nil, nil
				},
			}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
			req = withActor(req, uuid.New(), enums.ActorRoleBuyer)
			resp := httptest.NewRecorder()
			Create(svc, testLogger())(resp, req)

			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", resp.Code)
			}
			if code := decodeError(t, resp.Body); code != string(pkgerrors.CodeValidation) {
				t.Fatalf("unexpected code %s", code)
			}
		})
	}
}

func TestCreateRequiresBuyerRole(t *testing.T) {
	svc := &stubSettlement{}
	body := `{"listing_id":"` + uuid.NewString() + `","quantity":"1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req = withActor(req, uuid.New(), enums.ActorRoleSeller)
	resp := httptest.NewRecorder()
	Create(svc, testLogger())(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestCreateSurfacesSettlementErrors(t *testing.T) {
	cases := []struct {
		code   pkgerrors.Code
		status int
	}{
		{pkgerrors.CodeListingUnavailable, http.StatusConflict},
		{pkgerrors.CodeInsufficientQuantity, http.StatusConflict},
		{pkgerrors.CodeNotFound, http.StatusNotFound},
		{pkgerrors.CodeDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			svc := &stubSettlement{
				create: func(ctx context.Context, input settlement.CreateOrderInput) (*models.Order, error) {
					return nil, pkgerrors.New(tc.code, "rejected")
				},
			}
			body := `{"listing_id":"` + uuid.NewString() + `","quantity":"1.5"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
			req = withActor(req, uuid.New(), enums.ActorRoleBuyer)
			resp := httptest.NewRecorder()
			Create(svc, testLogger())(resp, req)

			if resp.Code != tc.status {
				t.Fatalf("expected %d got %d", tc.status, resp.Code)
			}
			if code := decodeError(t, resp.Body); code != string(tc.code) {
				t.Fatalf("unexpected code %s", code)
			}
		})
	}
}

func TestShipPassesActorAndOrder(t *testing.T) {
	sellerID := uuid.New()
	orderID := uuid.New()
	svc := &stubSettlement{
		ship: func(ctx context.Context, input settlement.TransitionInput) (*models.Order, error) {
			if input.OrderID != orderID {
				t.Fatalf("unexpected order %s", input.OrderID)
			}
			if input.Actor.UserID != sellerID || input.Actor.Role != enums.ActorRoleSeller {
				t.Fatalf("unexpected actor %+v", input.Actor)
			}
			return sampleOrder(enums.OrderStateShipped), nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/ship", nil)
	req = withOrderParam(withActor(req, sellerID, enums.ActorRoleSeller), orderID)
	resp := httptest.NewRecorder()
	Ship(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestShipInvalidTransitionIsConflict(t *testing.T) {
	orderID := uuid.New()
	svc := &stubSettlement{
		ship: func(ctx context.Context, input settlement.TransitionInput) (*models.Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "order is not in FUNDS_HELD")
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = withOrderParam(withActor(req, uuid.New(), enums.ActorRoleSeller), orderID)
	resp := httptest.NewRecorder()
	Ship(svc, testLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if code := decodeError(t, resp.Body); code != string(pkgerrors.CodeInvalidTransition) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestTransitionRejectsBadOrderID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = withActor(req, uuid.New(), enums.ActorRoleSeller)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	resp := httptest.NewRecorder()
	Ship(&stubSettlement{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestTransitionRequiresIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = withOrderParam(req, uuid.New())
	resp := httptest.NewRecorder()
	Ship(&stubSettlement{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestDisputeTrimsReason(t *testing.T) {
	orderID := uuid.New()
	svc := &stubSettlement{
		dispute: func(ctx context.Context, input settlement.DisputeInput) (*models.Order, error) {
			if input.Reason != "stones were cracked" {
				t.Fatalf("unexpected reason %q", input.Reason)
			}
			return sampleOrder(enums.OrderStateDisputed), nil
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"  stones were cracked "}`))
	req = withOrderParam(withActor(req, uuid.New(), enums.ActorRoleBuyer), orderID)
	resp := httptest.NewRecorder()
	Dispute(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDisputeRequiresReason(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"   "}`))
	req = withOrderParam(withActor(req, uuid.New(), enums.ActorRoleBuyer), uuid.New())
	resp := httptest.NewRecorder()
	Dispute(&stubSettlement{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListParsesFilters(t *testing.T) {
	sellerID := uuid.New()
	svc := &stubSettlement{
		list: func(ctx context.Context, input settlement.ListOrdersInput) (*settlement.OrderList, error) {
			if input.Perspective != settlement.PerspectiveSeller {
				t.Fatalf("unexpected perspective %s", input.Perspective)
			}
			if input.State == nil || *input.State != enums.OrderStateShipped {
				t.Fatalf("unexpected state %v", input.State)
			}
			if input.Limit != 10 || input.Cursor != "abc" {
				t.Fatalf("unexpected paging %d %q", input.Limit, input.Cursor)
			}
			return &settlement.OrderList{Items: []settlement.OrderView{}}, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?state=shipped&limit=10&cursor=abc", nil)
	req = withActor(req, sellerID, enums.ActorRoleSeller)
	resp := httptest.NewRecorder()
	List(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestListRejectsBadQuery(t *testing.T) {
	for _, query := range []string{"?perspective=agent", "?state=LOST", "?limit=0", "?limit=101"} {
		t.Run(query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders"+query, nil)
			req = withActor(req, uuid.New(), enums.ActorRoleBuyer)
			resp := httptest.NewRecorder()
			List(&stubSettlement{}, testLogger())(resp, req)

			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", resp.Code)
			}
		})
	}
}

func TestDetailHidesOtherUsersOrders(t *testing.T) {
	svc := &stubSettlement{
		getOrder: func(ctx context.Context, orderID uuid.UUID, actor settlement.Actor) (*models.Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = withOrderParam(withActor(req, uuid.New(), enums.ActorRoleBuyer), uuid.New())
	resp := httptest.NewRecorder()
	Detail(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestAdminHandlersRouteToService(t *testing.T) {
	adminID := uuid.New()
	orderID := uuid.New()
	var refunded, resolved bool
	svc := &stubSettlement{
		refund: func(ctx context.Context, input settlement.TransitionInput) (*models.Order, error) {
			refunded = input.Actor.Role == enums.ActorRoleAdmin && input.OrderID == orderID
			return sampleOrder(enums.OrderStateRefunded), nil
		},
		resolve: func(ctx context.Context, input settlement.TransitionInput) (*models.Order, error) {
			resolved = input.Actor.Role == enums.ActorRoleAdmin && input.OrderID == orderID
			return sampleOrder(enums.OrderStateCompleted), nil
		},
	}

	for _, h := range []http.HandlerFunc{AdminRefund(svc, testLogger()), AdminResolve(svc, testLogger())} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = withOrderParam(withActor(req, adminID, enums.ActorRoleAdmin), orderID)
		resp := httptest.NewRecorder()
		h(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
	}
	if !refunded || !resolved {
		t.Fatalf("expected both admin operations, refunded=%v resolved=%v", refunded, resolved)
	}
}

func TestNilServiceIsInternalError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	resp := httptest.NewRecorder()
	Ship(nil, testLogger())(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
