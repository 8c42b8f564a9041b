package enums

import "fmt"

// ReceivableStatus is a pure function of the pending balance: pending while
// nothing has been paid, partial once some payment landed, paid at zero balance.
type ReceivableStatus string

const (
	ReceivableStatusPending ReceivableStatus = "pending"
	ReceivableStatusPartial ReceivableStatus = "partial"
	ReceivableStatusPaid    ReceivableStatus = "paid"
)

var validReceivableStatuses = []ReceivableStatus{
	ReceivableStatusPending,
	ReceivableStatusPartial,
	ReceivableStatusPaid,
}

// String implements fmt.Stringer.
func (r ReceivableStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReceivableStatus.
func (r ReceivableStatus) IsValid() bool {
	for _, candidate := range validReceivableStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReceivableStatus converts raw input into a ReceivableStatus.
func ParseReceivableStatus(value string) (ReceivableStatus, error) {
	for _, candidate := range validReceivableStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid receivable status %q", value)
}
