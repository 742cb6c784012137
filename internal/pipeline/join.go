// Package pipeline turns the six loaded tables into derived sales records:
// the join stage denormalizes order items against their parent orders and
// enriches them from the product, customer, and review tables; the
// derivation stage filters by order status and computes the calendar and
// delivery-speed columns. Every stage returns a newly constructed slice and
// never mutates its input, so downstream aggregation can read the records
// concurrently without synchronization.
package pipeline

import (
	"salesmetrics/internal/dataset"
	"salesmetrics/internal/domain"
)

// Join produces one SalesRecord per order item, in item insertion order.
//
// The primary join (item against order) is inner: an item whose order cannot
// be found is dropped and counted as an integrity warning. The secondary
// joins against products, customers, and reviews are left joins; a missing
// match leaves the enrichment fields nil. An order has at most one review;
// extras are counted and ignored (first one wins).
func Join(t *dataset.Tables, w *Warnings) []domain.SalesRecord {
	orders := make(map[string]domain.Order, len(t.Orders))
	for _, o := range t.Orders {
		orders[o.OrderID] = o
	}
	products := make(map[string]domain.Product, len(t.Products))
	for _, p := range t.Products {
		products[p.ProductID] = p
	}
	customers := make(map[string]domain.Customer, len(t.Customers))
	for _, c := range t.Customers {
		customers[c.CustomerID] = c
	}
	reviews := reviewIndex(t, orders, w)

	out := make([]domain.SalesRecord, 0, len(t.Items))
	for _, it := range t.Items {
		o, ok := orders[it.OrderID]
		if !ok {
			w.Add(WarnOrphanItem, "item %s/%d references missing order", it.OrderID, it.ItemSeq)
			continue
		}

		rec := domain.SalesRecord{
			OrderID:      it.OrderID,
			ItemSeq:      it.ItemSeq,
			ProductID:    it.ProductID,
			CustomerID:   o.CustomerID,
			Price:        it.Price,
			FreightValue: it.FreightValue,
			Status:       o.Status,
			PurchasedAt:  o.PurchasedAt,
			DeliveredAt:  o.DeliveredAt,
		}
		if p, ok := products[it.ProductID]; ok {
			rec.Category = p.Category
		}
		if c, ok := customers[o.CustomerID]; ok {
			city, state := c.City, c.State
			rec.City = &city
			rec.State = &state
		}
		if rv, ok := reviews[it.OrderID]; ok {
			score := rv.Score
			rec.ReviewScore = &score
		}
		out = append(out, rec)
	}
	return out
}

// reviewIndex maps order id to its single review. Duplicate reviews for an
// order and reviews referencing a nonexistent order are integrity warnings;
// the offending rows are dropped.
func reviewIndex(t *dataset.Tables, orders map[string]domain.Order, w *Warnings) map[string]domain.Review {
	idx := make(map[string]domain.Review, len(t.Reviews))
	for _, rv := range t.Reviews {
		if _, ok := orders[rv.OrderID]; !ok {
			w.Add(WarnOrphanReview, "review %s references missing order %s", rv.ReviewID, rv.OrderID)
			continue
		}
		if _, dup := idx[rv.OrderID]; dup {
			w.Add(WarnDuplicateReview, "order %s has more than one review", rv.OrderID)
			continue
		}
		idx[rv.OrderID] = rv
	}
	return idx
}

// ValidPayments returns the payment rows that survive integrity checks:
// payments referencing a nonexistent order and payments repeating an
// (order, sequential) pair are dropped and counted. Row order is preserved.
func ValidPayments(t *dataset.Tables, w *Warnings) []domain.Payment {
	orders := make(map[string]struct{}, len(t.Orders))
	for _, o := range t.Orders {
		orders[o.OrderID] = struct{}{}
	}

	type payKey struct {
		order string
		seq   int
	}
	seen := make(map[payKey]struct{}, len(t.Payments))

	out := make([]domain.Payment, 0, len(t.Payments))
	for _, p := range t.Payments {
		if _, ok := orders[p.OrderID]; !ok {
			w.Add(WarnOrphanPayment, "payment %s/%d references missing order", p.OrderID, p.Sequential)
			continue
		}
		k := payKey{p.OrderID, p.Sequential}
		if _, dup := seen[k]; dup {
			w.Add(WarnDuplicatePayment, "payment %s/%d appears more than once", p.OrderID, p.Sequential)
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}
