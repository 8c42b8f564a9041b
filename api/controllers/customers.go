package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Estevanavelar/naldogas-backend/api/responses"
	"github.com/Estevanavelar/naldogas-backend/api/validators"
	customersvc "github.com/Estevanavelar/naldogas-backend/internal/customers"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
	"github.com/Estevanavelar/naldogas-backend/pkg/logger"
)

type createCustomerRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=160"`
	CPF     string `json:"cpf,omitempty" validate:"omitempty,len=11,numeric"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,min=8,max=20"`
	Address string `json:"address,omitempty" validate:"omitempty,max=300"`
}

// CreateCustomer registers a counter customer from the minimal quick-create
// payload.
func CreateCustomer(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		var payload createCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.QuickCreate(r.Context(), customersvc.QuickCreateInput{
			Name:    validators.SanitizeString(payload.Name, 160),
			CPF:     strings.TrimSpace(payload.CPF),
			Phone:   strings.TrimSpace(payload.Phone),
			Address: validators.SanitizeString(payload.Address, 300),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

// GetCustomer returns one customer by id.
func GetCustomer(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		customerID, err := validators.ParseUUIDParam(chi.URLParam(r, "customerId"), "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.GetByID(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

// LookupCustomer resolves a customer by cpf or phone for the counter flow.
func LookupCustomer(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		cpf := strings.TrimSpace(r.URL.Query().Get("cpf"))
		phone := strings.TrimSpace(r.URL.Query().Get("phone"))

		switch {
		case cpf != "" && phone != "":
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "lookup by either cpf or phone, not both"))
		case cpf != "":
			customer, err := svc.FindByCPF(r.Context(), cpf)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, customer)
		case phone != "":
			customer, err := svc.FindByPhone(r.Context(), phone)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, customer)
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cpf or phone query parameter required"))
		}
	}
}
