package models

import "fmt"

// AlertLevel ranks stock alerts; lower values are more severe.
type AlertLevel string

const (
	AlertCritical AlertLevel = "CRITICAL"
	AlertLow      AlertLevel = "LOW"
	AlertReorder  AlertLevel = "REORDER"
)

// Severity orders levels for sorting: CRITICAL first.
func (l AlertLevel) Severity() int {
	switch l {
	case AlertCritical:
		return 0
	case AlertLow:
		return 1
	case AlertReorder:
		return 2
	default:
		return 3
	}
}

// Alert is the payload handed to alert transports.
type Alert struct {
	ProductID    string     `json:"product_id" bson:"product_id"`
	Name         string     `json:"name" bson:"name"`
	CurrentStock int        `json:"current_stock" bson:"current_stock"`
	Level        AlertLevel `json:"level" bson:"level"`
	Message      string     `json:"message" bson:"message"`
}

// AlertThresholds are the three ascending stock thresholds.
type AlertThresholds struct {
	Critical int
	Low      int
	Reorder  int
}

// DefaultThresholds are 5/10/15.
var DefaultThresholds = AlertThresholds{Critical: 5, Low: 10, Reorder: 15}

// Validate requires 0 <= critical < low < reorder.
func (t AlertThresholds) Validate() error {
	if t.Critical < 0 || t.Critical >= t.Low || t.Low >= t.Reorder {
		return InvalidField("thresholds", "must satisfy 0 <= critical < low < reorder, got %d/%d/%d", t.Critical, t.Low, t.Reorder)
	}
	return nil
}

// Classify returns the most severe tier for quantity, or "" when none applies.
// reorderOverride replaces the reorder threshold when positive.
func (t AlertThresholds) Classify(quantity, reorderOverride int) AlertLevel {
	reorder := t.Reorder
	if reorderOverride > 0 {
		reorder = reorderOverride
	}
	switch {
	case quantity <= t.Critical:
		return AlertCritical
	case quantity <= t.Low:
		return AlertLow
	case quantity <= reorder:
		return AlertReorder
	default:
		return ""
	}
}

// NewAlert builds the payload for a classified product.
func NewAlert(p Product, level AlertLevel) Alert {
	var msg string
	switch level {
	case AlertCritical:
		msg = fmt.Sprintf("Critical stock: %s has only %d left", p.Name, p.Quantity)
	case AlertLow:
		msg = fmt.Sprintf("Low stock: %s is down to %d", p.Name, p.Quantity)
	default:
		msg = fmt.Sprintf("Reorder %s: stock at %d", p.Name, p.Quantity)
	}
	return Alert{
		ProductID:    p.ProductID,
		Name:         p.Name,
		CurrentStock: p.Quantity,
		Level:        level,
		Message:      msg,
	}
}

// ExpiringBatch pairs a batch with its owning product.
type ExpiringBatch struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Batch       Batch  `json:"batch"`
	DaysLeft    int    `json:"days_left"`
}
