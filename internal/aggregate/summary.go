package aggregate

import (
	"math"

	"salesmetrics/internal/domain"
)

// Summary is the year-level revenue summary, optionally compared against a
// prior year. Growth fields are fractions (0.12 = +12%); they are nil when
// the prior-year denominator is zero, which JSON renders as null rather
// than crashing on NaN.
type Summary struct {
	Year         int     `json:"year"`
	TotalRevenue float64 `json:"total_revenue"`
	Orders       int     `json:"orders"`
	Items        int     `json:"items"`
	// AvgOrderValue is the mean of per-order revenue.
	AvgOrderValue float64 `json:"avg_order_value"`
	AvgItemPrice  float64 `json:"avg_item_price"`

	PriorYear    int     `json:"prior_year,omitempty"`
	PriorRevenue float64 `json:"prior_revenue,omitempty"`

	RevenueGrowth *float64 `json:"revenue_growth"`
	OrderGrowth   *float64 `json:"order_growth"`
	AOVGrowth     *float64 `json:"aov_growth"`

	// MonthlyGrowthTrend is the mean month-over-month revenue change within
	// Year; nil when fewer than two months have revenue.
	MonthlyGrowthTrend *float64 `json:"monthly_growth_trend"`
}

// RevenueSummary computes the revenue summary for year, compared against
// priorYear when priorYear is non-zero.
func RevenueSummary(records []domain.SalesRecord, year, priorYear int) Summary {
	s := Summary{Year: year}

	cur := yearStats(records, year)
	s.TotalRevenue = cur.revenue
	s.Orders = cur.orders
	s.Items = cur.items
	if cur.orders > 0 {
		s.AvgOrderValue = cur.revenue / float64(cur.orders)
	}
	if cur.items > 0 {
		s.AvgItemPrice = cur.priceSum / float64(cur.items)
	}

	if priorYear != 0 {
		s.PriorYear = priorYear
		prev := yearStats(records, priorYear)
		s.PriorRevenue = prev.revenue

		s.RevenueGrowth = finiteRate(GrowthRate(cur.revenue, prev.revenue))
		s.OrderGrowth = finiteRate(GrowthRate(float64(cur.orders), float64(prev.orders)))
		var prevAOV float64
		if prev.orders > 0 {
			prevAOV = prev.revenue / float64(prev.orders)
		}
		s.AOVGrowth = finiteRate(GrowthRate(s.AvgOrderValue, prevAOV))
	}

	s.MonthlyGrowthTrend = monthlyTrend(records, year)
	return s
}

type yearAcc struct {
	revenue  float64
	priceSum float64
	items    int
	orders   int
}

func yearStats(records []domain.SalesRecord, year int) yearAcc {
	var a yearAcc
	orders := map[string]struct{}{}
	for _, r := range records {
		if r.Year != year {
			continue
		}
		a.revenue += r.Revenue()
		a.priceSum += r.Price
		a.items++
		orders[r.OrderID] = struct{}{}
	}
	a.orders = len(orders)
	return a
}

// monthlyTrend is the mean of month-over-month revenue changes between
// consecutive observed months of the given year.
func monthlyTrend(records []domain.SalesRecord, year int) *float64 {
	var months []PeriodRevenue
	for _, row := range RevenueByPeriod(records, GranularityMonth) {
		if row.Year == year {
			months = append(months, row)
		}
	}
	if len(months) < 2 {
		return nil
	}
	sum, n := 0.0, 0
	for i := 1; i < len(months); i++ {
		rate := GrowthRate(months[i].Revenue, months[i-1].Revenue)
		if math.IsNaN(rate) {
			continue
		}
		sum += rate
		n++
	}
	if n == 0 {
		return nil
	}
	trend := sum / float64(n)
	return &trend
}

// finiteRate converts a NaN or infinite rate to nil.
func finiteRate(rate float64) *float64 {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil
	}
	return &rate
}
