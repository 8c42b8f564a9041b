package deliveries

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Estevanavelar/naldogas-backend/api/responses"
	"github.com/Estevanavelar/naldogas-backend/api/validators"
	deliverysvc "github.com/Estevanavelar/naldogas-backend/internal/deliveries"
	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
	"github.com/Estevanavelar/naldogas-backend/pkg/logger"
)

type assignRequest struct {
	DelivererID string `json:"deliverer_id" validate:"required,uuid"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Assign locks a deliverer onto a pending delivery.
func Assign(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		deliveryID, err := validators.ParseUUIDParam(chi.URLParam(r, "deliveryId"), "deliveryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivererID, err := validators.ParseUUIDParam(payload.DelivererID, "deliverer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.AssignDeliverer(r.Context(), deliveryID, delivererID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

// UpdateStatus advances a delivery along its lifecycle.
func UpdateStatus(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		deliveryID, err := validators.ParseUUIDParam(chi.URLParam(r, "deliveryId"), "deliveryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.UpdateStatus(r.Context(), deliveryID, enums.DeliveryStatus(strings.TrimSpace(payload.Status)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

// Detail returns one delivery.
func Detail(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		deliveryID, err := validators.ParseUUIDParam(chi.URLParam(r, "deliveryId"), "deliveryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.GetByID(r.Context(), deliveryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

// List filters deliveries by status or deliverer; requires one of the two.
func List(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable"))
			return
		}

		status := strings.TrimSpace(r.URL.Query().Get("status"))
		deliverer := strings.TrimSpace(r.URL.Query().Get("deliverer_id"))

		switch {
		case status != "" && deliverer != "":
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "filter by either status or deliverer_id, not both"))
		case status != "":
			rows, err := svc.ListByStatus(r.Context(), enums.DeliveryStatus(status))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, rows)
		case deliverer != "":
			delivererID, err := validators.ParseUUIDParam(deliverer, "deliverer_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			rows, err := svc.ListByDeliverer(r.Context(), delivererID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, rows)
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "status or deliverer_id filter required"))
		}
	}
}
