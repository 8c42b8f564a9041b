package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/Estevanavelar/naldogas-backend/pkg/enums"
)

// SaleRecordedEvent signals a finalized sale, container outcome included.
type SaleRecordedEvent struct {
	SaleID             uuid.UUID           `json:"sale_id"`
	DepotID            uuid.UUID           `json:"depot_id"`
	CustomerID         *uuid.UUID          `json:"customer_id,omitempty"`
	Channel            enums.SalesChannel  `json:"channel"`
	PaymentMethod      enums.PaymentMethod `json:"payment_method"`
	TotalCents         int64               `json:"total_cents"`
	DiscountCents      int64               `json:"discount_cents"`
	ContainerExchanged bool                `json:"container_exchanged"`
	ContainerOwed      int                 `json:"container_owed"`
}

// ReceivableOpenedEvent is emitted when a credit sale opens a balance.
type ReceivableOpenedEvent struct {
	ReceivableID uuid.UUID `json:"receivable_id"`
	SaleID       uuid.UUID `json:"sale_id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	TotalCents   int64     `json:"total_cents"`
	DueDate      time.Time `json:"due_date"`
}

// ReceivablePaymentTakenEvent reports one settlement against a receivable.
type ReceivablePaymentTakenEvent struct {
	ReceivableID uuid.UUID              `json:"receivable_id"`
	PaymentID    uuid.UUID              `json:"payment_id"`
	AmountCents  int64                  `json:"amount_cents"`
	Method       enums.PaymentMethod    `json:"method"`
	Status       enums.ReceivableStatus `json:"status"`
	PendingCents int64                  `json:"pending_cents"`
}

// ReceivableSettledEvent fires when the pending balance reaches zero.
type ReceivableSettledEvent struct {
	ReceivableID uuid.UUID `json:"receivable_id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	TotalCents   int64     `json:"total_cents"`
	SettledAt    time.Time `json:"settled_at"`
}

// ContainersReturnedEvent reports empties handed back by a customer.
type ContainersReturnedEvent struct {
	DepotID    uuid.UUID `json:"depot_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Count      int       `json:"count"`
}

// ContainersAcquiredEvent reports new units put into circulation at a depot.
type ContainersAcquiredEvent struct {
	DepotID uuid.UUID `json:"depot_id"`
	Count   int       `json:"count"`
}

// ContainersRefilledEvent reports empties sent out and returned full.
type ContainersRefilledEvent struct {
	DepotID uuid.UUID `json:"depot_id"`
	Count   int       `json:"count"`
}

// DeliveryStatusChangedEvent reports a fulfillment transition.
type DeliveryStatusChangedEvent struct {
	DeliveryID uuid.UUID            `json:"delivery_id"`
	SaleID     uuid.UUID            `json:"sale_id"`
	From       enums.DeliveryStatus `json:"from"`
	To         enums.DeliveryStatus `json:"to"`
}

// DeliveryAssignedEvent reports a deliverer taking a pending delivery out.
type DeliveryAssignedEvent struct {
	DeliveryID  uuid.UUID `json:"delivery_id"`
	SaleID      uuid.UUID `json:"sale_id"`
	DelivererID uuid.UUID `json:"deliverer_id"`
}
