// Package aggregate computes the reported business metrics from derived
// sales records. Every function here is pure: it reads the record slice,
// never mutates it, and returns a freshly built table. All sums are plain
// additions, so aggregating any partition of the input and merging the
// partial tables equals aggregating the whole input.
package aggregate

import (
	"math"
	"sort"

	"salesmetrics/internal/domain"
	"salesmetrics/internal/textutil"
)

// Granularity selects the period key for RevenueByPeriod.
type Granularity string

const (
	// GranularityMonth groups by (year, month).
	GranularityMonth Granularity = "month"
	// GranularityYear groups by year.
	GranularityYear Granularity = "year"
)

// PeriodRevenue is one row of the revenue-by-period table. Month is zero for
// yearly granularity.
type PeriodRevenue struct {
	Year    int     `json:"year"`
	Month   int     `json:"month,omitempty"`
	Revenue float64 `json:"revenue"`
	Items   int     `json:"items"`
}

// RevenueByPeriod sums price+freight per period, ascending by period.
func RevenueByPeriod(records []domain.SalesRecord, g Granularity) []PeriodRevenue {
	type key struct{ year, month int }
	sums := map[key]*PeriodRevenue{}
	for _, r := range records {
		k := key{r.Year, r.Month}
		if g == GranularityYear {
			k.month = 0
		}
		row, ok := sums[k]
		if !ok {
			row = &PeriodRevenue{Year: k.year, Month: k.month}
			sums[k] = row
		}
		row.Revenue += r.Revenue()
		row.Items++
	}

	out := make([]PeriodRevenue, 0, len(sums))
	for _, row := range sums {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// MergePeriods combines two revenue-by-period tables into one, summing rows
// that share a period. Merging partial tables from any partition of the
// input equals aggregating the whole input directly.
func MergePeriods(a, b []PeriodRevenue) []PeriodRevenue {
	type key struct{ year, month int }
	sums := map[key]*PeriodRevenue{}
	for _, part := range [][]PeriodRevenue{a, b} {
		for _, row := range part {
			k := key{row.Year, row.Month}
			acc, ok := sums[k]
			if !ok {
				cp := row
				sums[k] = &cp
				continue
			}
			acc.Revenue += row.Revenue
			acc.Items += row.Items
		}
	}
	out := make([]PeriodRevenue, 0, len(sums))
	for _, row := range sums {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// GrowthRate is the relative change from prior to current. When prior is
// zero the rate is undefined and NaN is returned; callers report it as an
// explicit null, never as a crash.
func GrowthRate(current, prior float64) float64 {
	if prior == 0 {
		return math.NaN()
	}
	return (current - prior) / prior
}

// CategoryRevenue is one row of the revenue-by-category table. Category is
// the folded grouping key; Share is the fraction of the table total.
type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Items    int     `json:"items"`
	Share    float64 `json:"share"`
}

// RevenueByCategory sums price+freight per product category, descending by
// total. Category labels are folded so accented spellings group together.
// Records without a joined category are excluded from this table only.
func RevenueByCategory(records []domain.SalesRecord) []CategoryRevenue {
	sums := map[string]*CategoryRevenue{}
	total := 0.0
	for _, r := range records {
		if r.Category == nil {
			continue
		}
		key := textutil.Fold(*r.Category)
		if key == "" {
			continue
		}
		row, ok := sums[key]
		if !ok {
			row = &CategoryRevenue{Category: key}
			sums[key] = row
		}
		row.Revenue += r.Revenue()
		row.Items++
		total += r.Revenue()
	}

	out := make([]CategoryRevenue, 0, len(sums))
	for _, row := range sums {
		if total > 0 {
			row.Share = row.Revenue / total
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// StateRevenue is one row of the revenue-by-state table.
type StateRevenue struct {
	State     string  `json:"state"`
	Revenue   float64 `json:"revenue"`
	Orders    int     `json:"orders"`
	Customers int     `json:"customers"`
	Share     float64 `json:"share"`
}

// RevenueByState sums price+freight per customer state, descending by total.
// Records without a joined customer are excluded from this table only.
func RevenueByState(records []domain.SalesRecord) []StateRevenue {
	type acc struct {
		revenue   float64
		orders    map[string]struct{}
		customers map[string]struct{}
	}
	sums := map[string]*acc{}
	total := 0.0
	for _, r := range records {
		if r.State == nil {
			continue
		}
		a, ok := sums[*r.State]
		if !ok {
			a = &acc{orders: map[string]struct{}{}, customers: map[string]struct{}{}}
			sums[*r.State] = a
		}
		a.revenue += r.Revenue()
		a.orders[r.OrderID] = struct{}{}
		a.customers[r.CustomerID] = struct{}{}
		total += r.Revenue()
	}

	out := make([]StateRevenue, 0, len(sums))
	for state, a := range sums {
		row := StateRevenue{
			State:     state,
			Revenue:   a.revenue,
			Orders:    len(a.orders),
			Customers: len(a.customers),
		}
		if total > 0 {
			row.Share = a.revenue / total
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].State < out[j].State
	})
	return out
}

// PaymentTypeRevenue is one row of the revenue-by-payment-type table.
type PaymentTypeRevenue struct {
	Type            string  `json:"type"`
	Value           float64 `json:"value"`
	Payments        int     `json:"payments"`
	AvgInstallments float64 `json:"avg_installments"`
	Share           float64 `json:"share"`
}

// RevenueByPaymentType sums payment values per payment type for orders that
// appear in the derived record set, descending by value.
func RevenueByPaymentType(payments []domain.Payment, records []domain.SalesRecord) []PaymentTypeRevenue {
	orders := make(map[string]struct{}, len(records))
	for _, r := range records {
		orders[r.OrderID] = struct{}{}
	}

	type acc struct {
		value        float64
		count        int
		installments int
	}
	sums := map[string]*acc{}
	total := 0.0
	for _, p := range payments {
		if _, ok := orders[p.OrderID]; !ok {
			continue
		}
		a, ok := sums[p.Type]
		if !ok {
			a = &acc{}
			sums[p.Type] = a
		}
		a.value += p.Value
		a.count++
		a.installments += p.Installments
		total += p.Value
	}

	out := make([]PaymentTypeRevenue, 0, len(sums))
	for typ, a := range sums {
		row := PaymentTypeRevenue{
			Type:            typ,
			Value:           a.value,
			Payments:        a.count,
			AvgInstallments: float64(a.installments) / float64(a.count),
		}
		if total > 0 {
			row.Share = a.value / total
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Type < out[j].Type
	})
	return out
}
