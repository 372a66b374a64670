package enums

import "strings"

// OrderStatusOrdinal indexes the fixed order lifecycle enumeration. History
// entries store the ordinal; the order's denormalized status carries the name
// of the highest ordinal present.
type OrderStatusOrdinal int

const (
	OrderStatusPending OrderStatusOrdinal = iota
	OrderStatusPaid
	OrderStatusProcessing
	OrderStatusBilled
	OrderStatusCancelled
	OrderStatusDespatched
	OrderStatusDelivered
	OrderStatusReturned
)

var orderStatusNames = []string{
	"Pending",
	"Paid",
	"Processing",
	"Billed",
	"Cancelled",
	"Despatched",
	"Delivered",
	"Returned",
}

// IsValid reports whether the ordinal maps onto a known status.
func (o OrderStatusOrdinal) IsValid() bool {
	return o >= 0 && int(o) < len(orderStatusNames)
}

// String returns the display name for the ordinal, or empty when out of range.
func (o OrderStatusOrdinal) String() string {
	if !o.IsValid() {
		return ""
	}
	return orderStatusNames[o]
}

// ParseOrderStatus maps a display name onto its ordinal, case-insensitively.
func ParseOrderStatus(name string) (OrderStatusOrdinal, bool) {
	for i, candidate := range orderStatusNames {
		if strings.EqualFold(candidate, name) {
			return OrderStatusOrdinal(i), true
		}
	}
	return 0, false
}

// OrderStatusNames returns the full ordered enumeration.
func OrderStatusNames() []string {
	out := make([]string, len(orderStatusNames))
	copy(out, orderStatusNames)
	return out
}
