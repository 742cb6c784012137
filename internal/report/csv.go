package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes the report as a sequence of named sections, each a small
// CSV table preceded by a "# <section>" line and separated by a blank line.
// Spreadsheet users can split the sections apart; the JSON form is the
// machine-readable one.
func (r *Report) WriteCSV(w io.Writer) error {
	sections := []struct {
		name  string
		write func(*csv.Writer) error
	}{
		{"summary", r.writeSummary},
		{"monthly_revenue", r.writeMonthly},
		{"yearly_revenue", r.writeYearly},
		{"categories", r.writeCategories},
		{"states", r.writeStates},
		{"satisfaction_by_speed", r.writeSatisfaction},
		{"review_scores", r.writeScores},
		{"payment_types", r.writePayments},
	}
	for i, s := range sections {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s\n", s.name); err != nil {
			return err
		}
		cw := csv.NewWriter(w)
		if err := s.write(cw); err != nil {
			return fmt.Errorf("section %s: %w", s.name, err)
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("section %s: %w", s.name, err)
		}
	}
	return nil
}

func f(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func n(v int) string { return strconv.Itoa(v) }

func optF(v *float64) string {
	if v == nil {
		return ""
	}
	return f(*v)
}

func (r *Report) writeSummary(cw *csv.Writer) error {
	if err := cw.Write([]string{"metric", "value"}); err != nil {
		return err
	}
	rows := [][]string{
		{"analysis_year", n(r.AnalysisYear)},
		{"total_revenue", f(r.Revenue.TotalRevenue)},
		{"avg_order_value", f(r.Revenue.AvgOrderValue)},
		{"orders", n(r.Revenue.Orders)},
		{"items", n(r.Revenue.Items)},
		{"revenue_growth", optF(r.Revenue.RevenueGrowth)},
		{"aov_growth", optF(r.Revenue.AOVGrowth)},
		{"monthly_growth_trend", optF(r.Revenue.MonthlyGrowthTrend)},
	}
	return cw.WriteAll(rows)
}

func (r *Report) writeMonthly(cw *csv.Writer) error {
	if err := cw.Write([]string{"year", "month", "revenue", "items"}); err != nil {
		return err
	}
	for _, p := range r.MonthlyRevenue {
		if err := cw.Write([]string{n(p.Year), n(p.Month), f(p.Revenue), n(p.Items)}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) writeYearly(cw *csv.Writer) error {
	if err := cw.Write([]string{"year", "revenue", "items"}); err != nil {
		return err
	}
	for _, p := range r.YearlyRevenue {
		if err := cw.Write([]string{n(p.Year), f(p.Revenue), n(p.Items)}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) writeCategories(cw *csv.Writer) error {
	if err := cw.Write([]string{"category", "revenue", "items", "share"}); err != nil {
		return err
	}
	for _, c := range r.Categories {
		if err := cw.Write([]string{c.Category, f(c.Revenue), n(c.Items), f(c.Share)}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) writeStates(cw *csv.Writer) error {
	if err := cw.Write([]string{"state", "revenue", "orders", "customers", "share"}); err != nil {
		return err
	}
	for _, s := range r.States {
		if err := cw.Write([]string{s.State, f(s.Revenue), n(s.Orders), n(s.Customers), f(s.Share)}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) writeSatisfaction(cw *csv.Writer) error {
	if err := cw.Write([]string{"speed_bucket", "mean_score", "orders"}); err != nil {
		return err
	}
	for _, b := range r.Satisfaction {
		if err := cw.Write([]string{b.Bucket, f(b.MeanScore), n(b.Orders)}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) writeScores(cw *csv.Writer) error {
	if err := cw.Write([]string{"score", "orders", "share"}); err != nil {
		return err
	}
	for _, s := range r.ReviewScores.Scores {
		if err := cw.Write([]string{n(s.Score), n(s.Orders), f(s.Share)}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) writePayments(cw *csv.Writer) error {
	if err := cw.Write([]string{"payment_type", "value", "payments", "avg_installments"}); err != nil {
		return err
	}
	for _, p := range r.PaymentTypes {
		if err := cw.Write([]string{p.Type, f(p.Value), n(p.Payments), f(p.AvgInstallments)}); err != nil {
			return err
		}
	}
	return nil
}
