package receivables

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Estevanavelar/naldogas-backend/api/responses"
	"github.com/Estevanavelar/naldogas-backend/api/validators"
	"github.com/Estevanavelar/naldogas-backend/internal/money"
	receivablesvc "github.com/Estevanavelar/naldogas-backend/internal/receivables"
	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
	"github.com/Estevanavelar/naldogas-backend/pkg/logger"
)

type registerPaymentRequest struct {
	Amount string `json:"amount" validate:"required"`
	Method string `json:"method" validate:"required"`
}

// RegisterPayment takes a payment against an open receivable.
func RegisterPayment(svc receivablesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receivable service unavailable"))
			return
		}

		receivableID, err := validators.ParseUUIDParam(chi.URLParam(r, "receivableId"), "receivableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload registerPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amount, err := money.FromDecimalString(payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := receivablesvc.RegisterPaymentInput{
			Amount: amount,
			Method: enums.PaymentMethod(strings.TrimSpace(payload.Method)),
		}
		if key := strings.TrimSpace(r.Header.Get("Idempotency-Key")); key != "" {
			input.IdempotencyKey = &key
		}

		receivable, err := svc.RegisterPayment(r.Context(), receivableID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receivable)
	}
}

// Detail returns one receivable with its payment history.
func Detail(svc receivablesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receivable service unavailable"))
			return
		}

		receivableID, err := validators.ParseUUIDParam(chi.URLParam(r, "receivableId"), "receivableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receivable, err := svc.GetByID(r.Context(), receivableID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receivable)
	}
}

// List filters receivables by status or customer; requires one of the two.
func List(svc receivablesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receivable service unavailable"))
			return
		}

		status := strings.TrimSpace(r.URL.Query().Get("status"))
		customer := strings.TrimSpace(r.URL.Query().Get("customer_id"))

		switch {
		case status != "" && customer != "":
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "filter by either status or customer_id, not both"))
		case status != "":
			rows, err := svc.ListByStatus(r.Context(), enums.ReceivableStatus(status))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, rows)
		case customer != "":
			customerID, err := validators.ParseUUIDParam(customer, "customer_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			rows, err := svc.ListByCustomer(r.Context(), customerID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, rows)
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "status or customer_id filter required"))
		}
	}
}

// ListOverdue returns receivables past due with a pending balance.
func ListOverdue(svc receivablesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receivable service unavailable"))
			return
		}

		rows, err := svc.ListOverdue(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// Summary returns the aggregate receivables dashboard.
func Summary(svc receivablesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receivable service unavailable"))
			return
		}

		summary, err := svc.Summarize(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
