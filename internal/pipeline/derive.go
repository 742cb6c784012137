package pipeline

import (
	"salesmetrics/internal/config"
	"salesmetrics/internal/domain"
)

// DeriveOptions controls the filter and derivation stage.
type DeriveOptions struct {
	// Status is the order-lifecycle state to keep. Records with any other
	// status are dropped.
	Status domain.OrderStatus

	// Year, when non-zero, keeps only records purchased in that calendar
	// year.
	Year int

	// Month, when non-zero, keeps only records purchased in that calendar
	// month (1-12).
	Month int

	// Buckets resolve days-to-deliver into a delivery-speed label.
	Buckets []config.SpeedBucket
}

// Derive filters records by order status (and optionally by purchase year
// and month) and computes the derived columns: calendar year and month, whole days to
// deliver, and the delivery-speed bucket. The input is never modified; each
// surviving record is a fresh copy with the derived fields set.
//
// Records without a delivery timestamp keep a nil DaysToDeliver and an empty
// SpeedBucket; they still count toward revenue, only the delivery-speed
// analysis skips them.
func Derive(records []domain.SalesRecord, opt DeriveOptions) []domain.SalesRecord {
	out := make([]domain.SalesRecord, 0, len(records))
	for _, rec := range records {
		if rec.Status != opt.Status {
			continue
		}
		if opt.Year != 0 && rec.PurchasedAt.Year() != opt.Year {
			continue
		}
		if opt.Month != 0 && int(rec.PurchasedAt.Month()) != opt.Month {
			continue
		}

		r := rec
		r.Year = rec.PurchasedAt.Year()
		r.Month = int(rec.PurchasedAt.Month())
		if rec.DeliveredAt != nil {
			days := int(rec.DeliveredAt.Sub(rec.PurchasedAt).Hours() / 24)
			r.DaysToDeliver = &days
			r.SpeedBucket = bucketFor(days, opt.Buckets)
		}
		out = append(out, r)
	}
	return out
}

// bucketFor resolves days into the first bucket it fits. A bucket with
// MaxDays <= 0 is unbounded and catches everything that reaches it.
func bucketFor(days int, buckets []config.SpeedBucket) string {
	for _, b := range buckets {
		if b.MaxDays <= 0 || days <= b.MaxDays {
			return b.Label
		}
	}
	return ""
}
