// Package report bundles the aggregate tables produced by one pipeline run
// together with run statistics, and serializes them for the presentation
// layer. The report is the pipeline's only outward contract; nothing here
// renders charts.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zeebo/xxh3"

	"salesmetrics/internal/aggregate"
)

// Report is the full output of a pipeline run.
type Report struct {
	Status         string `json:"status"`
	AnalysisYear   int    `json:"analysis_year"`
	ComparisonYear int    `json:"comparison_year,omitempty"`

	Revenue         aggregate.Summary              `json:"revenue"`
	MonthlyRevenue  []aggregate.PeriodRevenue      `json:"monthly_revenue"`
	YearlyRevenue   []aggregate.PeriodRevenue      `json:"yearly_revenue"`
	Categories      []aggregate.CategoryRevenue    `json:"categories"`
	States          []aggregate.StateRevenue       `json:"states"`
	Satisfaction    []aggregate.BucketScore        `json:"satisfaction_by_speed"`
	ReviewScores    aggregate.ScoreDistribution    `json:"review_scores"`
	Delivery        aggregate.DeliveryStats        `json:"delivery"`
	PaymentTypes    []aggregate.PaymentTypeRevenue `json:"payment_types"`

	Stats RunStats `json:"stats"`
}

// RunStats carries run bookkeeping. Durations vary between runs; the report
// fingerprint deliberately excludes them so identical inputs hash identically.
type RunStats struct {
	RowsLoaded   map[string]int    `json:"rows_loaded"`
	SalesRecords int               `json:"sales_records"`
	Derived      int               `json:"derived"`
	Warnings     map[string]int    `json:"warnings,omitempty"`
	Sources      map[string]string `json:"sources"`
	Durations    map[string]string `json:"durations,omitempty"`
}

// Fingerprint hashes the aggregate content of the report with xxh3. Two runs
// over byte-identical inputs produce equal fingerprints; run bookkeeping
// (durations) is excluded.
func (r *Report) Fingerprint() (uint64, error) {
	body := struct {
		Status         string                         `json:"status"`
		AnalysisYear   int                            `json:"analysis_year"`
		ComparisonYear int                            `json:"comparison_year"`
		Revenue        aggregate.Summary              `json:"revenue"`
		MonthlyRevenue []aggregate.PeriodRevenue      `json:"monthly_revenue"`
		YearlyRevenue  []aggregate.PeriodRevenue      `json:"yearly_revenue"`
		Categories     []aggregate.CategoryRevenue    `json:"categories"`
		States         []aggregate.StateRevenue       `json:"states"`
		Satisfaction   []aggregate.BucketScore        `json:"satisfaction"`
		ReviewScores   aggregate.ScoreDistribution    `json:"review_scores"`
		Delivery       aggregate.DeliveryStats        `json:"delivery"`
		PaymentTypes   []aggregate.PaymentTypeRevenue `json:"payment_types"`
	}{
		Status:         r.Status,
		AnalysisYear:   r.AnalysisYear,
		ComparisonYear: r.ComparisonYear,
		Revenue:        r.Revenue,
		MonthlyRevenue: r.MonthlyRevenue,
		YearlyRevenue:  r.YearlyRevenue,
		Categories:     r.Categories,
		States:         r.States,
		Satisfaction:   r.Satisfaction,
		ReviewScores:   r.ReviewScores,
		Delivery:       r.Delivery,
		PaymentTypes:   r.PaymentTypes,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("fingerprint marshal: %w", err)
	}
	return xxh3.Hash(b), nil
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
