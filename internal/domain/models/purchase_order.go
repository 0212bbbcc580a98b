package models

import (
	"fmt"
	"strings"
	"time"
)

// POStatus is the lifecycle state of a purchase order.
type POStatus string

const (
	POPending   POStatus = "pending"
	POConfirmed POStatus = "confirmed"
	POShipped   POStatus = "shipped"
	PODelivered POStatus = "delivered"
	POCancelled POStatus = "cancelled"
)

var poTransitions = map[POStatus][]POStatus{
	POPending:   {POConfirmed, POCancelled},
	POConfirmed: {POShipped, POCancelled},
	POShipped:   {PODelivered, POCancelled},
	PODelivered: nil,
	POCancelled: nil,
}

// ParsePOStatus maps free text onto the closed status set.
func ParsePOStatus(value string) (POStatus, error) {
	status := POStatus(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := poTransitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
	return status, nil
}

// Terminal reports whether no further transition is possible.
func (s POStatus) Terminal() bool { return len(poTransitions[s]) == 0 }

// CanTransition reports whether s may move to next.
func (s POStatus) CanTransition(next POStatus) bool {
	for _, allowed := range poTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus tracks how much of a purchase order has been paid.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// ParsePaymentStatus maps free text onto the closed payment status set.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	switch status := PaymentStatus(strings.ToLower(strings.TrimSpace(value))); status {
	case PaymentUnpaid, PaymentPartial, PaymentPaid:
		return status, nil
	default:
		return "", fmt.Errorf("%w: payment %q", ErrInvalidStatus, value)
	}
}

// POItem is one ordered line of a purchase order.
type POItem struct {
	ProductID   string  `json:"product_id" mapstructure:"product_id"`
	ProductName string  `json:"product_name" mapstructure:"product_name"`
	Quantity    int     `json:"quantity" mapstructure:"quantity"`
	UnitPrice   float64 `json:"unit_price" mapstructure:"unit_price"`
}

// Total is quantity times unit price.
func (i POItem) Total() float64 { return float64(i.Quantity) * i.UnitPrice }

// PurchaseOrder references its supplier by id only; the supplier may have been
// deleted since, so readers resolve it at lookup time.
type PurchaseOrder struct {
	ID               string        `json:"id" mapstructure:"id"`
	SupplierID       string        `json:"supplier_id" mapstructure:"supplier_id"`
	Items            []POItem      `json:"items" mapstructure:"items"`
	Status           POStatus      `json:"status" mapstructure:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status" mapstructure:"payment_status"`
	TotalAmount      float64       `json:"total_amount" mapstructure:"total_amount"`
	OrderDate        time.Time     `json:"order_date" mapstructure:"order_date"`
	ExpectedDelivery *time.Time    `json:"expected_delivery,omitempty" mapstructure:"expected_delivery"`
	DeliveredAt      *time.Time    `json:"delivered_at,omitempty" mapstructure:"delivered_at"`
	Notes            string        `json:"notes" mapstructure:"notes"`
	CreatedAt        time.Time     `json:"created_at" mapstructure:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" mapstructure:"updated_at"`
}

// PurchaseOrderID formats the sequential order identifier.
func PurchaseOrderID(seq int) string { return fmt.Sprintf("PO%06d", seq) }

// ItemsTotal sums the current items. TotalAmount is only set from this at creation.
func (po PurchaseOrder) ItemsTotal() float64 {
	total := 0.0
	for _, item := range po.Items {
		total += item.Total()
	}
	return total
}

// Clone copies the order including its items and optional dates.
func (po PurchaseOrder) Clone() PurchaseOrder {
	out := po
	out.Items = append([]POItem(nil), po.Items...)
	if po.ExpectedDelivery != nil {
		t := *po.ExpectedDelivery
		out.ExpectedDelivery = &t
	}
	if po.DeliveredAt != nil {
		t := *po.DeliveredAt
		out.DeliveredAt = &t
	}
	return out
}

// ValidateItems rejects empty orders and negative lines.
func ValidateItems(items []POItem) error {
	if len(items) == 0 {
		return InvalidField("items", "at least one item is required")
	}
	for i, item := range items {
		if item.ProductID == "" {
			return InvalidField(fmt.Sprintf("items[%d].product_id", i), "must not be empty")
		}
		if item.Quantity <= 0 {
			return InvalidField(fmt.Sprintf("items[%d].quantity", i), "must be positive, got %d", item.Quantity)
		}
		if item.UnitPrice < 0 {
			return InvalidField(fmt.Sprintf("items[%d].unit_price", i), "must not be negative")
		}
	}
	return nil
}

// SupplierPerformance summarises a supplier's delivery track record.
type SupplierPerformance struct {
	SupplierID       string  `json:"supplier_id"`
	SupplierName     string  `json:"supplier_name"`
	TotalOrders      int     `json:"total_orders"`
	TotalValue       float64 `json:"total_value"`
	DeliveredOrders  int     `json:"delivered_orders"`
	CancelledOrders  int     `json:"cancelled_orders"`
	OnTimeDeliveries int     `json:"on_time_deliveries"`
	LateDeliveries   int     `json:"late_deliveries"`
	OnTimeRate       float64 `json:"on_time_rate"`
	AverageDelayDays float64 `json:"average_delay_days"`
}
