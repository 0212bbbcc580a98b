// Package analytics derives stock-health and sales reports from immutable
// snapshots of the inventory and its sales history. Nothing here mutates state.
package analytics

import (
	"time"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

const (
	// Epsilon smooths the turnover ratios so empty stock or zero sales never
	// divide by zero. It is a fixed constant, not a fitted estimator.
	Epsilon = 0.1

	DefaultTurnoverDays  = 30
	DefaultDeadStockDays = 90
	DefaultForecastDays  = 30

	dateLayout    = "2006-01-02"
	uncategorized = "Uncategorized"
)

// Snapshot is the read-only input of every computation. Now anchors the
// trailing windows so results are reproducible.
type Snapshot struct {
	Products []models.Product
	Sales    []models.SalesRecord
	Now      time.Time
}

// NewSnapshot copies products and sales so later inventory changes cannot leak
// into a computation in progress.
func NewSnapshot(products []models.Product, sales []models.SalesRecord, now time.Time) Snapshot {
	snap := Snapshot{
		Products: make([]models.Product, len(products)),
		Sales:    make([]models.SalesRecord, len(sales)),
		Now:      now,
	}
	for i, p := range products {
		snap.Products[i] = p.Clone()
	}
	for i, s := range sales {
		snap.Sales[i] = s.Clone()
	}
	return snap
}

// Window is an inclusive time range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Trailing returns the window covering the last days days up to now.
func Trailing(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days is the whole number of days spanned by the window.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start).Hours() / 24)
}

func (s Snapshot) trailing(days int) Window {
	return Trailing(s.Now, days)
}

// local moves t into the snapshot clock's location so day and hour buckets
// line up with the window grid.
func (s Snapshot) local(t time.Time) time.Time {
	return t.In(s.Now.Location())
}

// salesIn returns the sales recorded inside w, in history order.
func (s Snapshot) salesIn(w Window) []models.SalesRecord {
	var out []models.SalesRecord
	for _, sale := range s.Sales {
		if w.Contains(sale.Timestamp) {
			out = append(out, sale)
		}
	}
	return out
}

func orDefault(days, fallback int) int {
	if days <= 0 {
		return fallback
	}
	return days
}
