package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mineralmarket-backend/api/responses"
	"github.com/angelmondragon/mineralmarket-backend/api/validators"
	"github.com/angelmondragon/mineralmarket-backend/internal/listings"
	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mineralmarket-backend/pkg/errors"
	"github.com/angelmondragon/mineralmarket-backend/pkg/logger"
)

type listingView struct {
	ID           uuid.UUID             `json:"id"`
	SellerID     uuid.UUID             `json:"seller_id"`
	Title        string                `json:"title"`
	Category     enums.ListingCategory `json:"category"`
	Quantity     decimal.Decimal       `json:"quantity"`
	Unit         enums.QuantityUnit    `json:"unit"`
	PricePerUnit string                `json:"price_per_unit"`
	Status       enums.ListingStatus   `json:"status"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func newListingView(l *models.Listing) listingView {
	return listingView{
		ID:           l.ID,
		SellerID:     l.SellerID,
		Title:        l.Title,
		Category:     l.Category,
		Quantity:     l.Quantity,
		Unit:         l.Unit,
		PricePerUnit: l.PricePerUnit.StringFixed(2),
		Status:       l.Status,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// GetListing returns the current quantity and status of a listing.
func GetListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		listingID, err := validators.URLParamUUID(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.GetListing(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListingView(listing))
	}
}
