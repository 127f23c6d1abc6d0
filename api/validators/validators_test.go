package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/mineralmarket-backend/pkg/errors"
)

type purchaseBody struct {
	ListingID string          `json:"listing_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required,positive_decimal"`
	Note      string          `json:"note" validate:"omitempty,notblank,max=10"`
}

func decode(t *testing.T, body string) (purchaseBody, error) {
	t.Helper()
	var dest purchaseBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return dest, DecodeJSONBody(req, &dest)
}

func TestDecodeJSONBodyAcceptsDecimalStringsAndNumbers(t *testing.T) {
	id := uuid.NewString()
	for _, raw := range []string{`"2.5"`, `2.5`} {
		got, err := decode(t, `{"listing_id":"`+id+`","quantity":`+raw+`}`)
		if err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if !got.Quantity.Equal(decimal.RequireFromString("2.5")) {
			t.Fatalf("expected 2.5 got %s", got.Quantity)
		}
	}
}

func TestDecodeJSONBodyRejections(t *testing.T) {
	id := uuid.NewString()
	cases := map[string]string{
		"non numeric quantity": `{"listing_id":"` + id + `","quantity":"lots"}`,
		"zero quantity":        `{"listing_id":"` + id + `","quantity":"0"}`,
		"negative quantity":    `{"listing_id":"` + id + `","quantity":-1}`,
		"bad listing id":       `{"listing_id":"nope","quantity":"1"}`,
		"unknown field":        `{"listing_id":"` + id + `","quantity":"1","price":"1"}`,
		"trailing object":      `{"listing_id":"` + id + `","quantity":"1"}{}`,
		"blank note":           `{"listing_id":"` + id + `","quantity":"1","note":"   "}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decode(t, body)
			if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=30&bad=x&big=500", nil)
	if v, err := ParseQueryInt(req, "limit", 20, 1, 100); err != nil || v != 30 {
		t.Fatalf("expected 30, got %d %v", v, err)
	}
	if v, err := ParseQueryInt(req, "missing", 20, 1, 100); err != nil || v != 20 {
		t.Fatalf("expected default, got %d %v", v, err)
	}
	if _, err := ParseQueryInt(req, "bad", 20, 1, 100); err == nil {
		t.Fatal("expected numeric error")
	}
	if _, err := ParseQueryInt(req, "big", 20, 1, 100); err == nil {
		t.Fatal("expected range error")
	}
}

func TestURLParamUUID(t *testing.T) {
	id := uuid.New()
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", id.String())
	rc.URLParams.Add("broken", "123")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	got, err := URLParamUUID(req, "orderId")
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s %v", id, got, err)
	}
	if _, err := URLParamUUID(req, "broken"); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
