package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateSale           OutboxAggregateType = "sale"
	AggregateReceivable     OutboxAggregateType = "receivable"
	AggregateDelivery       OutboxAggregateType = "delivery"
	AggregateContainerStock OutboxAggregateType = "container_stock"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSale,
	AggregateReceivable,
	AggregateDelivery,
	AggregateContainerStock,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventSaleRecorded           OutboxEventType = "sale_recorded"
	EventReceivableOpened       OutboxEventType = "receivable_opened"
	EventReceivablePaymentTaken OutboxEventType = "receivable_payment_taken"
	EventReceivableSettled      OutboxEventType = "receivable_settled"
	EventContainersReturned     OutboxEventType = "containers_returned"
	EventContainersAcquired     OutboxEventType = "containers_acquired"
	EventContainersRefilled     OutboxEventType = "containers_refilled"
	EventDeliveryStatusChanged  OutboxEventType = "delivery_status_changed"
	EventDeliveryAssigned       OutboxEventType = "delivery_assigned"
)

var validOutboxEventTypes = []OutboxEventType{
	EventSaleRecorded,
	EventReceivableOpened,
	EventReceivablePaymentTaken,
	EventReceivableSettled,
	EventContainersReturned,
	EventContainersAcquired,
	EventContainersRefilled,
	EventDeliveryStatusChanged,
	EventDeliveryAssigned,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
