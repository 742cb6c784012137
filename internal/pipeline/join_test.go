package pipeline

import (
	"testing"
	"time"

	"salesmetrics/internal/dataset"
	"salesmetrics/internal/domain"
)

func ts(s string) time.Time {
	t, err := time.Parse(domain.Layout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleTables() *dataset.Tables {
	cat := "toys"
	return &dataset.Tables{
		Orders: []domain.Order{
			{OrderID: "O1", CustomerID: "C1", Status: domain.StatusDelivered, PurchasedAt: ts("2023-01-10 08:00:00")},
			{OrderID: "O2", CustomerID: "C2", Status: domain.StatusDelivered, PurchasedAt: ts("2023-02-01 09:30:00")},
		},
		Items: []domain.OrderItem{
			{OrderID: "O1", ItemSeq: 1, ProductID: "P1", Price: 100, FreightValue: 10},
			{OrderID: "O1", ItemSeq: 2, ProductID: "P2", Price: 50, FreightValue: 5},
			{OrderID: "O2", ItemSeq: 1, ProductID: "P1", Price: 80, FreightValue: 8},
		},
		Products: []domain.Product{
			{ProductID: "P1", Category: &cat},
		},
		Customers: []domain.Customer{
			{CustomerID: "C1", City: "atlanta", State: "GA"},
		},
		Reviews: []domain.Review{
			{ReviewID: "R1", OrderID: "O1", Score: 5},
		},
		Payments: []domain.Payment{
			{OrderID: "O1", Sequential: 1, Type: "credit_card", Installments: 2, Value: 165},
			{OrderID: "O2", Sequential: 1, Type: "boleto", Installments: 1, Value: 88},
		},
	}
}

func TestJoinProducesOneRecordPerItem(t *testing.T) {
	tbl := sampleTables()
	w := NewWarnings()

	recs := Join(tbl, w)
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if w.Total() != 0 {
		t.Fatalf("unexpected warnings: %v", w.Counts())
	}

	// Insertion order follows the items table.
	if recs[0].OrderID != "O1" || recs[0].ItemSeq != 1 {
		t.Fatalf("recs[0] = %s/%d, want O1/1", recs[0].OrderID, recs[0].ItemSeq)
	}
	if recs[2].OrderID != "O2" {
		t.Fatalf("recs[2].OrderID = %s, want O2", recs[2].OrderID)
	}

	// Enrichment from orders, products, customers, reviews.
	r0 := recs[0]
	if r0.CustomerID != "C1" {
		t.Fatalf("CustomerID = %s, want C1", r0.CustomerID)
	}
	if r0.Category == nil || *r0.Category != "toys" {
		t.Fatalf("Category = %v, want toys", r0.Category)
	}
	if r0.State == nil || *r0.State != "GA" {
		t.Fatalf("State = %v, want GA", r0.State)
	}
	if r0.ReviewScore == nil || *r0.ReviewScore != 5 {
		t.Fatalf("ReviewScore = %v, want 5", r0.ReviewScore)
	}
	if got := r0.Revenue(); got != 110 {
		t.Fatalf("Revenue = %v, want 110", got)
	}

	// O2 has no product P2 review, customer, but its item with P1 keeps the
	// known product category; its unmatched customer leaves State nil.
	r2 := recs[2]
	if r2.Category == nil || *r2.Category != "toys" {
		t.Fatalf("recs[2].Category = %v, want toys", r2.Category)
	}
	if r2.State != nil {
		t.Fatalf("recs[2].State = %v, want nil", *r2.State)
	}
	if r2.ReviewScore != nil {
		t.Fatalf("recs[2].ReviewScore = %v, want nil", *r2.ReviewScore)
	}
}

func TestJoinDropsOrphanItems(t *testing.T) {
	tbl := sampleTables()
	tbl.Items = append(tbl.Items, domain.OrderItem{OrderID: "GHOST", ItemSeq: 1, ProductID: "P1", Price: 9, FreightValue: 1})
	w := NewWarnings()

	recs := Join(tbl, w)
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3 (orphan dropped)", len(recs))
	}
	if got := w.Count(WarnOrphanItem); got != 1 {
		t.Fatalf("orphan item warnings = %d, want 1", got)
	}
}

func TestJoinFirstReviewWins(t *testing.T) {
	tbl := sampleTables()
	tbl.Reviews = append(tbl.Reviews, domain.Review{ReviewID: "R2", OrderID: "O1", Score: 1})
	w := NewWarnings()

	recs := Join(tbl, w)
	if recs[0].ReviewScore == nil || *recs[0].ReviewScore != 5 {
		t.Fatalf("ReviewScore = %v, want 5 (first review)", recs[0].ReviewScore)
	}
	if got := w.Count(WarnDuplicateReview); got != 1 {
		t.Fatalf("duplicate review warnings = %d, want 1", got)
	}
}

func TestJoinDropsOrphanReviews(t *testing.T) {
	tbl := sampleTables()
	tbl.Reviews = append(tbl.Reviews, domain.Review{ReviewID: "R9", OrderID: "GHOST", Score: 3})
	w := NewWarnings()

	Join(tbl, w)
	if got := w.Count(WarnOrphanReview); got != 1 {
		t.Fatalf("orphan review warnings = %d, want 1", got)
	}
}

func TestJoinDoesNotMutateInput(t *testing.T) {
	tbl := sampleTables()
	w := NewWarnings()

	before := len(tbl.Items)
	recs := Join(tbl, w)

	if len(tbl.Items) != before {
		t.Fatalf("items table changed length: %d -> %d", before, len(tbl.Items))
	}
	// Pointer enrichment must not alias the source tables.
	*recs[0].State = "XX"
	if tbl.Customers[0].State != "GA" {
		t.Fatalf("mutating a record changed the customer table: %s", tbl.Customers[0].State)
	}
}

func TestValidPayments(t *testing.T) {
	tbl := sampleTables()
	tbl.Payments = append(tbl.Payments,
		domain.Payment{OrderID: "GHOST", Sequential: 1, Type: "voucher", Value: 5},
		domain.Payment{OrderID: "O1", Sequential: 1, Type: "credit_card", Value: 165},
	)
	w := NewWarnings()

	pays := ValidPayments(tbl, w)
	if len(pays) != 2 {
		t.Fatalf("got %d payments, want 2", len(pays))
	}
	if pays[0].OrderID != "O1" || pays[1].OrderID != "O2" {
		t.Fatalf("payment order not preserved: %s, %s", pays[0].OrderID, pays[1].OrderID)
	}
	if got := w.Count(WarnOrphanPayment); got != 1 {
		t.Fatalf("orphan payment warnings = %d, want 1", got)
	}
	if got := w.Count(WarnDuplicatePayment); got != 1 {
		t.Fatalf("duplicate payment warnings = %d, want 1", got)
	}
}
