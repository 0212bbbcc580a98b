package models

import "time"

// DailyReport is the end-of-day stock health snapshot archived in MongoDB and
// appended to the export sheet.
type DailyReport struct {
	Date           time.Time `bson:"date" json:"date"`
	ProductCount   int       `bson:"product_count" json:"product_count"`
	TotalUnits     int       `bson:"total_units" json:"total_units"`
	InventoryValue float64   `bson:"inventory_value" json:"inventory_value"`
	SalesCount     int       `bson:"sales_count" json:"sales_count"`
	UnitsSold      int       `bson:"units_sold" json:"units_sold"`
	Revenue        float64   `bson:"revenue" json:"revenue"`
	CriticalAlerts int       `bson:"critical_alerts" json:"critical_alerts"`
	LowAlerts      int       `bson:"low_alerts" json:"low_alerts"`
	ReorderAlerts  int       `bson:"reorder_alerts" json:"reorder_alerts"`
	DeadStockCount int       `bson:"dead_stock_count" json:"dead_stock_count"`
	DeadStockValue float64   `bson:"dead_stock_value" json:"dead_stock_value"`
	Alerts         []Alert   `bson:"alerts" json:"alerts"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// InventoryStats summarises the current collection.
type InventoryStats struct {
	ProductCount   int                `json:"product_count"`
	TotalUnits     int                `json:"total_units"`
	InventoryValue float64            `json:"inventory_value"`
	CategoryCount  int                `json:"category_count"`
	BatchTracked   int                `json:"batch_tracked"`
	AlertCounts    map[AlertLevel]int `json:"alert_counts"`
}
