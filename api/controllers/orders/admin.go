package orders

import (
	"net/http"

	"github.com/angelmondragon/mineralmarket-backend/internal/settlement"
	"github.com/angelmondragon/mineralmarket-backend/pkg/logger"
)

// AdminRefund returns the buyer's funds and restocks the listing.
func AdminRefund(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(s settlement.Service) transitionFunc { return s.Refund })
}

// AdminResolve closes a dispute in the seller's favour and releases funds.
func AdminResolve(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(s settlement.Service) transitionFunc { return s.CompleteAfterDispute })
}

// AdminDeliver marks delivery on behalf of a seller, e.g. from carrier tracking.
func AdminDeliver(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(s settlement.Service) transitionFunc { return s.MarkDelivered })
}
