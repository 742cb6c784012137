// Package domain defines the typed record shapes for the six source tables
// and the denormalized sales row produced by the join stage. Each entity is a
// fixed-shape struct; nullable source columns are pointer fields so that an
// absent value is distinguishable from a zero value.
package domain

import "time"

// Layout is the timestamp layout used across the source CSVs.
const Layout = "2006-01-02 15:04:05"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Observed order lifecycle states.
const (
	StatusCreated     OrderStatus = "created"
	StatusApproved    OrderStatus = "approved"
	StatusInvoiced    OrderStatus = "invoiced"
	StatusProcessing  OrderStatus = "processing"
	StatusShipped     OrderStatus = "shipped"
	StatusDelivered   OrderStatus = "delivered"
	StatusCanceled    OrderStatus = "canceled"
	StatusUnavailable OrderStatus = "unavailable"
)

// KnownStatus reports whether s is one of the observed lifecycle states.
func KnownStatus(s OrderStatus) bool {
	switch s {
	case StatusCreated, StatusApproved, StatusInvoiced, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCanceled, StatusUnavailable:
		return true
	}
	return false
}

// Order is one row of orders_dataset.csv.
//
// DeliveredAt is present iff Status is "delivered".
type Order struct {
	OrderID     string
	CustomerID  string
	Status      OrderStatus
	PurchasedAt time.Time
	DeliveredAt *time.Time
	EstimatedAt *time.Time
}

// OrderItem is one row of order_items_dataset.csv. The (OrderID, ItemSeq)
// pair identifies a line item within its parent order.
type OrderItem struct {
	OrderID      string
	ItemSeq      int
	ProductID    string
	Price        float64
	FreightValue float64
}

// Product is one row of products_dataset.csv. Category and the physical
// attributes are nullable in the source data.
type Product struct {
	ProductID string
	Category  *string
	WeightG   *float64
	LengthCm  *float64
	HeightCm  *float64
	WidthCm   *float64
}

// Customer is one row of customers_dataset.csv.
type Customer struct {
	CustomerID string
	ZipPrefix  string
	City       string
	State      string
}

// Review is one row of order_reviews_dataset.csv. An order has zero or one
// review; the join stage enforces that cardinality.
type Review struct {
	ReviewID  string
	OrderID   string
	Score     int
	Comment   *string
	CreatedAt *time.Time
}

// Payment is one row of order_payments_dataset.csv. The (OrderID, Sequential)
// pair identifies a payment within its order.
type Payment struct {
	OrderID      string
	Sequential   int
	Type         string
	Installments int
	Value        float64
}

// SalesRecord is the denormalized per-order-item row produced by the join
// stage and enriched by the derivation stage. It is the unit of all
// downstream aggregation. Records are constructed fresh on every run and
// never mutated in place; the derivation stage returns new copies.
type SalesRecord struct {
	OrderID    string
	ItemSeq    int
	ProductID  string
	CustomerID string

	Price        float64
	FreightValue float64

	Status      OrderStatus
	PurchasedAt time.Time
	DeliveredAt *time.Time

	// Optional enrichment from the secondary joins. Nil when the matching
	// table was not joined or had no matching row.
	Category    *string
	City        *string
	State       *string
	ReviewScore *int

	// Derived fields, set by the derivation stage.
	Year          int
	Month         int
	DaysToDeliver *int
	SpeedBucket   string
}

// Revenue is the monetary contribution of the record: price plus freight.
func (r SalesRecord) Revenue() float64 { return r.Price + r.FreightValue }
