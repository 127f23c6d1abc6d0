package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mineralmarket-backend/pkg/errors"
	"github.com/angelmondragon/mineralmarket-backend/pkg/logger"
)

type stubListings struct {
	listing *models.Listing
	err     error
}

func (s stubListings) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return s.listing, s.err
}

func TestGetListing(t *testing.T) {
	listing := &models.Listing{
		ID:           uuid.New(),
		SellerID:     uuid.New(),
		Title:        "Colombian emerald lot",
		Category:     enums.ListingCategoryGemstone,
		Quantity:     decimal.RequireFromString("12.5"),
		Unit:         enums.UnitCarats,
		PricePerUnit: decimal.RequireFromString("310"),
		Status:       enums.ListingStatusLive,
	}
	req := addRouteParam(httptest.NewRequest(http.MethodGet, "/api/v1/listings/"+listing.ID.String(), nil), "listingId", listing.ID.String())
	resp := httptest.NewRecorder()
	GetListing(stubListings{listing: listing}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Data["price_per_unit"] != "310.00" || envelope.Data["quantity"] != "12.5" || envelope.Data["status"] != "live" {
		t.Fatalf("unexpected listing payload %+v", envelope.Data)
	}
}

func TestGetListingNotFound(t *testing.T) {
	id := uuid.NewString()
	req := addRouteParam(httptest.NewRequest(http.MethodGet, "/api/v1/listings/"+id, nil), "listingId", id)
	resp := httptest.NewRecorder()
	GetListing(stubListings{err: pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
