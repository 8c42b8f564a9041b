package sales

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Estevanavelar/naldogas-backend/api/responses"
	"github.com/Estevanavelar/naldogas-backend/api/validators"
	"github.com/Estevanavelar/naldogas-backend/internal/money"
	salesvc "github.com/Estevanavelar/naldogas-backend/internal/sales"
	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
	pkgerrors "github.com/Estevanavelar/naldogas-backend/pkg/errors"
	"github.com/Estevanavelar/naldogas-backend/pkg/logger"
	"github.com/Estevanavelar/naldogas-backend/pkg/metrics"
	"github.com/Estevanavelar/naldogas-backend/pkg/pagination"
)

type recordSaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type recordSaleRequest struct {
	DepotID               string                  `json:"depot_id" validate:"required,uuid"`
	CustomerID            *string                 `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	Channel               string                  `json:"channel" validate:"required"`
	PaymentMethod         string                  `json:"payment_method" validate:"required"`
	Items                 []recordSaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount              string                  `json:"discount,omitempty"`
	CustomerReturnedEmpty bool                    `json:"customer_returned_empty"`
	DeliveryAddress       *string                 `json:"delivery_address,omitempty"`
	DeliveryNotes         *string                 `json:"delivery_notes,omitempty"`
	Notes                 *string                 `json:"notes,omitempty"`
}

// Record handles the checkout POST: all validation beyond shape lives in the
// sale service.
func Record(svc salesvc.Service, m *metrics.LedgerMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sale service unavailable"))
			return
		}

		var payload recordSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if key := strings.TrimSpace(r.Header.Get("Idempotency-Key")); key != "" {
			input.IdempotencyKey = &key
		}

		result, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if result.Sale != nil {
			m.ObserveSale(string(result.Sale.Channel), string(result.Sale.PaymentMethod), result.Sale.TotalCents)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// Detail returns one sale with its frozen line items.
func Detail(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sale service unavailable"))
			return
		}

		saleID, err := validators.ParseUUIDParam(chi.URLParam(r, "saleId"), "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.GetByID(r.Context(), saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

type salesPageResponse struct {
	Sales      any    `json:"sales"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// List returns sales: a cursor page by default, or a date-range report when
// from/to are supplied.
func List(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sale service unavailable"))
			return
		}

		from, hasFrom, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, hasTo, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if hasFrom != hasTo {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "from and to must be supplied together"))
			return
		}

		if hasFrom {
			// [from, to) over whole days when a bare date was supplied.
			if to.Equal(to.Truncate(24 * time.Hour)) {
				to = to.Add(24 * time.Hour)
			}
			rows, err := svc.ListByDateRange(r.Context(), from, to)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, rows)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		rows, next, err := svc.ListPage(r.Context(), pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, salesPageResponse{Sales: rows, NextCursor: next})
	}
}

// ListByCustomer returns a customer's purchase history.
func ListByCustomer(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sale service unavailable"))
			return
		}

		customerID, err := validators.ParseUUIDParam(chi.URLParam(r, "customerId"), "customerId")
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
	}
}

func (p recordSaleRequest) toInput() (salesvc.RecordInput, error) {
	depotID, err := validators.ParseUUIDParam(p.DepotID, "depot_id")
	if err != nil {
		return salesvc.RecordInput{}, err
	}

	input := salesvc.RecordInput{
		DepotID:               depotID,
		Channel:               enums.SalesChannel(strings.TrimSpace(p.Channel)),
		PaymentMethod:         enums.PaymentMethod(strings.TrimSpace(p.PaymentMethod)),
		CustomerReturnedEmpty: p.CustomerReturnedEmpty,
		DeliveryAddress:       p.DeliveryAddress,
		DeliveryNotes:         p.DeliveryNotes,
		Notes:                 p.Notes,
		Discount:              money.Zero,
	}

	if p.CustomerID != nil {
		customerID, err := validators.ParseUUIDParam(*p.CustomerID, "customer_id")
		if err != nil {
			return salesvc.RecordInput{}, err
		}
		input.CustomerID = &customerID
	}

	if strings.TrimSpace(p.Discount) != "" {
		discount, err := money.FromDecimalString(p.Discount)
		if err != nil {
			return salesvc.RecordInput{}, err
		}
		input.Discount = discount
	}

	for _, item := range p.Items {
		productID, err := validators.ParseUUIDParam(item.ProductID, "product_id")
		if err != nil {
			return salesvc.RecordInput{}, err
		}
		input.Items = append(input.Items, salesvc.ItemInput{ProductID: productID, Quantity: item.Quantity})
	}

	return input, nil
}
