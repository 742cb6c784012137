package aggregate

import (
	"sort"

	"salesmetrics/internal/domain"
)

// BucketScore is the mean review score for one delivery-speed bucket.
type BucketScore struct {
	Bucket    string  `json:"bucket"`
	MeanScore float64 `json:"mean_score"`
	Orders    int     `json:"orders"`
}

// SatisfactionBySpeedBucket computes the mean review score per
// delivery-speed bucket at order grain: each order counts once regardless of
// how many items it has. Orders without a review or without a delivery date
// are excluded from this aggregate only. Output follows bucketOrder; buckets
// with no orders are omitted.
func SatisfactionBySpeedBucket(records []domain.SalesRecord, bucketOrder []string) []BucketScore {
	type acc struct {
		sum   int
		count int
	}
	perOrder := map[string]struct{}{}
	buckets := map[string]*acc{}
	for _, r := range records {
		if r.ReviewScore == nil || r.DaysToDeliver == nil || r.SpeedBucket == "" {
			continue
		}
		if _, seen := perOrder[r.OrderID]; seen {
			continue
		}
		perOrder[r.OrderID] = struct{}{}

		a, ok := buckets[r.SpeedBucket]
		if !ok {
			a = &acc{}
			buckets[r.SpeedBucket] = a
		}
		a.sum += *r.ReviewScore
		a.count++
	}

	out := make([]BucketScore, 0, len(buckets))
	for _, label := range bucketOrder {
		if a, ok := buckets[label]; ok {
			out = append(out, BucketScore{
				Bucket:    label,
				MeanScore: float64(a.sum) / float64(a.count),
				Orders:    a.count,
			})
			delete(buckets, label)
		}
	}
	// Buckets outside the configured order (possible when the config changed
	// between derivation and aggregation) are appended alphabetically.
	rest := make([]string, 0, len(buckets))
	for label := range buckets {
		rest = append(rest, label)
	}
	sort.Strings(rest)
	for _, label := range rest {
		a := buckets[label]
		out = append(out, BucketScore{
			Bucket:    label,
			MeanScore: float64(a.sum) / float64(a.count),
			Orders:    a.count,
		})
	}
	return out
}

// ScoreShare is the share of reviewed orders carrying one review score.
type ScoreShare struct {
	Score  int     `json:"score"`
	Orders int     `json:"orders"`
	Share  float64 `json:"share"`
}

// ScoreDistribution summarizes review scores at order grain.
type ScoreDistribution struct {
	Scores []ScoreShare `json:"scores"`
	// HighRate is the share of reviewed orders scoring 4 or 5.
	HighRate float64 `json:"high_rate"`
	// LowRate is the share of reviewed orders scoring 1 or 2.
	LowRate float64 `json:"low_rate"`
	// Reviewed is the number of orders with a review.
	Reviewed int `json:"reviewed"`
}

// ReviewScoreDistribution computes the review score distribution at order
// grain, ascending by score. Orders without a review are excluded.
func ReviewScoreDistribution(records []domain.SalesRecord) ScoreDistribution {
	perOrder := map[string]int{}
	for _, r := range records {
		if r.ReviewScore == nil {
			continue
		}
		perOrder[r.OrderID] = *r.ReviewScore
	}

	counts := map[int]int{}
	high, low := 0, 0
	for _, score := range perOrder {
		counts[score]++
		if score >= 4 {
			high++
		}
		if score <= 2 {
			low++
		}
	}

	d := ScoreDistribution{Reviewed: len(perOrder)}
	if d.Reviewed == 0 {
		return d
	}
	scores := make([]int, 0, len(counts))
	for s := range counts {
		scores = append(scores, s)
	}
	sort.Ints(scores)
	for _, s := range scores {
		d.Scores = append(d.Scores, ScoreShare{
			Score:  s,
			Orders: counts[s],
			Share:  float64(counts[s]) / float64(d.Reviewed),
		})
	}
	d.HighRate = float64(high) / float64(d.Reviewed)
	d.LowRate = float64(low) / float64(d.Reviewed)
	return d
}

// DeliveryStats summarizes delivery times at order grain.
type DeliveryStats struct {
	Orders     int     `json:"orders"`
	MeanDays   float64 `json:"mean_days"`
	MedianDays float64 `json:"median_days"`
	// FastRate is the share of orders delivered within 3 days.
	FastRate float64 `json:"fast_rate"`
	// SlowRate is the share of orders taking more than 10 days.
	SlowRate float64 `json:"slow_rate"`
}

// Delivery computes delivery-time statistics at order grain. Orders without
// a delivery date are excluded.
func Delivery(records []domain.SalesRecord) DeliveryStats {
	perOrder := map[string]int{}
	for _, r := range records {
		if r.DaysToDeliver == nil {
			continue
		}
		perOrder[r.OrderID] = *r.DaysToDeliver
	}

	var s DeliveryStats
	s.Orders = len(perOrder)
	if s.Orders == 0 {
		return s
	}

	days := make([]int, 0, len(perOrder))
	sum, fast, slow := 0, 0, 0
	for _, d := range perOrder {
		days = append(days, d)
		sum += d
		if d <= 3 {
			fast++
		}
		if d > 10 {
			slow++
		}
	}
	sort.Ints(days)

	s.MeanDays = float64(sum) / float64(len(days))
	if n := len(days); n%2 == 1 {
		s.MedianDays = float64(days[n/2])
	} else {
		s.MedianDays = float64(days[n/2-1]+days[n/2]) / 2
	}
	s.FastRate = float64(fast) / float64(len(days))
	s.SlowRate = float64(slow) / float64(len(days))
	return s
}
