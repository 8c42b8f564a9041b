package containers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Estevanavelar/naldogas-backend/api/responses"
	"github.com/Estevanavelar/naldogas-backend/api/validators"
	containersvc "github.com/Estevanavelar/naldogas-backend/internal/containers"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
	"github.com/Estevanavelar/naldogas-backend/pkg/logger"
	"github.com/Estevanavelar/naldogas-backend/pkg/metrics"
)

type movementRequest struct {
	DepotID string `json:"depot_id" validate:"required,uuid"`
	Count   int    `json:"count" validate:"required,min=1"`
}

type returnRequest struct {
	DepotID    string `json:"depot_id" validate:"required,uuid"`
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Count      int    `json:"count" validate:"required,min=1"`
}

// Stock returns the full/empty counts for one depot.
func Stock(svc containersvc.Service, m *metrics.LedgerMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "container service unavailable"))
			return
		}

		depotID, err := validators.ParseUUIDParam(chi.URLParam(r, "depotId"), "depotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stock, err := svc.GetStock(r.Context(), depotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		m.SetContainerStock(depotID.String(), stock.FullQty, stock.EmptyQty)
		responses.WriteSuccess(w, stock)
	}
}

type possessionResponse struct {
	DepotID    string `json:"depot_id"`
	CustomerID string `json:"customer_id"`
	OwedQty    int    `json:"owed_qty"`
}

// Possession returns how many containers a customer currently owes a depot.
func Possession(svc containersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "container service unavailable"))
			return
		}

		depotID, err := validators.ParseUUIDParam(chi.URLParam(r, "depotId"), "depotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := validators.ParseUUIDParam(chi.URLParam(r, "customerId"), "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		owed, err := svc.GetPossession(r.Context(), depotID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, possessionResponse{
			DepotID:    depotID.String(),
			CustomerID: customerID.String(),
			OwedQty:    owed,
		})
	}
}

// Return records empties a customer brought back outside a sale.
func Return(svc containersvc.Service, m *metrics.LedgerMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "container service unavailable"))
			return
		}

		var payload returnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		depotID, err := validators.ParseUUIDParam(payload.DepotID, "depot_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := validators.ParseUUIDParam(payload.CustomerID, "customer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ReturnContainers(r.Context(), depotID, customerID, payload.Count); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stock, err := svc.GetStock(r.Context(), depotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		m.SetContainerStock(depotID.String(), stock.FullQty, stock.EmptyQty)
		responses.WriteSuccess(w, stock)
	}
}

// Acquire records brand-new full units entering the depot.
func Acquire(svc containersvc.Service, m *metrics.LedgerMetrics, logg *logger.Logger) http.HandlerFunc {
	return depotMovement(svc, m, logg, func(r *http.Request, depotID uuid.UUID, count int) error {
		return svc.AcquireUnits(r.Context(), depotID, count)
	})
}

// Refill records a supplier swap of empties for fulls.
func Refill(svc containersvc.Service, m *metrics.LedgerMetrics, logg *logger.Logger) http.HandlerFunc {
	return depotMovement(svc, m, logg, func(r *http.Request, depotID uuid.UUID, count int) error {
		return svc.RefillEmpties(r.Context(), depotID, count)
	})
}

func depotMovement(svc containersvc.Service, m *metrics.LedgerMetrics, logg *logger.Logger, apply func(r *http.Request, depotID uuid.UUID, count int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "container service unavailable"))
			return
		}

		var payload movementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		depotID, err := validators.ParseUUIDParam(payload.DepotID, "depot_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := apply(r, depotID, payload.Count); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stock, err := svc.GetStock(r.Context(), depotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		m.SetContainerStock(depotID.String(), stock.FullQty, stock.EmptyQty)
		responses.WriteSuccess(w, stock)
	}
}
