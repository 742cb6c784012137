package pipeline

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// WarningKind classifies a non-fatal data-integrity finding.
type WarningKind string

const (
	// WarnOrphanItem counts order items whose parent order does not exist.
	WarnOrphanItem WarningKind = "orphan_item"
	// WarnDuplicateReview counts extra reviews beyond the first for an order.
	WarnDuplicateReview WarningKind = "duplicate_review"
	// WarnOrphanReview counts reviews referencing a nonexistent order.
	WarnOrphanReview WarningKind = "orphan_review"
	// WarnDuplicatePayment counts payments repeating an (order, sequential) pair.
	WarnDuplicatePayment WarningKind = "duplicate_payment"
	// WarnOrphanPayment counts payments referencing a nonexistent order.
	WarnOrphanPayment WarningKind = "orphan_payment"
)

// sampleLimit bounds how many example messages are retained per kind.
const sampleLimit = 3

// Warnings accumulates integrity findings across the join stage. Offending
// records are dropped, never fatal; the caller inspects the counts and
// decides whether to proceed. Only the first few messages per kind are kept.
type Warnings struct {
	mu     sync.Mutex
	counts map[WarningKind]int
	first  map[WarningKind][]string
}

// NewWarnings returns an empty accumulator.
func NewWarnings() *Warnings {
	return &Warnings{
		counts: make(map[WarningKind]int),
		first:  make(map[WarningKind][]string),
	}
}

// Add records one finding of the given kind.
func (w *Warnings) Add(kind WarningKind, format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.counts[kind] < sampleLimit {
		w.first[kind] = append(w.first[kind], fmt.Sprintf(format, args...))
	}
	w.counts[kind]++
}

// Count returns the number of findings of the given kind.
func (w *Warnings) Count(kind WarningKind) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.counts[kind]
}

// Total returns the number of findings across all kinds.
func (w *Warnings) Total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.counts {
		n += c
	}
	return n
}

// Counts returns a copy of the per-kind counts.
func (w *Warnings) Counts() map[WarningKind]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[WarningKind]int, len(w.counts))
	for k, v := range w.counts {
		out[k] = v
	}
	return out
}

// Samples returns the retained example messages for a kind.
func (w *Warnings) Samples(kind WarningKind) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.first[kind]...)
}

// LogSummary prints per-kind counts with the first few sample messages.
func (w *Warnings) LogSummary() {
	w.mu.Lock()
	defer w.mu.Unlock()

	kinds := make([]string, 0, len(w.counts))
	for k := range w.counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	for _, k := range kinds {
		kind := WarningKind(k)
		log.Printf("integrity: %s=%d (showing first %d)", k, w.counts[kind], len(w.first[kind]))
		for i, s := range w.first[kind] {
			log.Printf("  #%03d: %s", i+1, s)
		}
	}
}
