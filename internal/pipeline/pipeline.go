package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"salesmetrics/internal/aggregate"
	"salesmetrics/internal/config"
	"salesmetrics/internal/dataset"
	"salesmetrics/internal/domain"
	"salesmetrics/internal/metrics"
	"salesmetrics/internal/report"
)

// Run executes one full analysis: load the six source tables, join them into
// sales records, derive the filtered analysis columns, and fan the aggregate
// computations out over a goroutine group. Any load error aborts the run with
// no partial report; integrity problems inside consistent files are counted
// as warnings and the run continues.
func Run(ctx context.Context, cfg config.Config) (*report.Report, error) {
	job := cfg.Metrics.Job
	durations := make(map[string]string, 4)

	step := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		d := time.Since(start)
		durations[name] = d.String()
		metrics.RecordStep(job, name, err, d)
		return err
	}

	var tables *dataset.Tables
	if err := step("load", func() error {
		var err error
		tables, err = dataset.NewLoader(cfg.DataDir).Load(ctx)
		return err
	}); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	metrics.RecordSource(job, "orders", int64(len(tables.Orders)))
	metrics.RecordSource(job, "order_items", int64(len(tables.Items)))
	metrics.RecordSource(job, "products", int64(len(tables.Products)))
	metrics.RecordSource(job, "customers", int64(len(tables.Customers)))
	metrics.RecordSource(job, "reviews", int64(len(tables.Reviews)))
	metrics.RecordSource(job, "payments", int64(len(tables.Payments)))

	warnings := NewWarnings()

	var joined []domain.SalesRecord
	var payments []domain.Payment
	_ = step("join", func() error {
		joined = Join(tables, warnings)
		payments = ValidPayments(tables, warnings)
		return nil
	})
	metrics.RecordRow(job, "joined", int64(len(joined)))

	var derived []domain.SalesRecord
	_ = step("derive", func() error {
		derived = Derive(joined, DeriveOptions{
			Status:  domain.OrderStatus(cfg.Status),
			Month:   cfg.Month,
			Buckets: cfg.SpeedBuckets,
		})
		return nil
	})
	metrics.RecordRow(job, "derived", int64(len(derived)))
	for kind, n := range warnings.Counts() {
		metrics.RecordRow(job, string(kind), int64(n))
	}

	rep := &report.Report{
		Status:         cfg.Status,
		AnalysisYear:   cfg.AnalysisYear,
		ComparisonYear: cfg.ComparisonYear,
	}

	// The aggregates are pure functions over an immutable record slice, so
	// they run concurrently without locks. Each goroutine writes a distinct
	// report field.
	if err := step("aggregate", func() error {
		bucketOrder := make([]string, len(cfg.SpeedBuckets))
		for i, b := range cfg.SpeedBuckets {
			bucketOrder[i] = b.Label
		}

		g, _ := errgroup.WithContext(ctx)
		g.Go(func() error {
			rep.Revenue = aggregate.RevenueSummary(derived, cfg.AnalysisYear, cfg.ComparisonYear)
			return nil
		})
		g.Go(func() error {
			rep.MonthlyRevenue = aggregate.RevenueByPeriod(derived, aggregate.GranularityMonth)
			return nil
		})
		g.Go(func() error {
			rep.YearlyRevenue = aggregate.RevenueByPeriod(derived, aggregate.GranularityYear)
			return nil
		})
		g.Go(func() error {
			rep.Categories = aggregate.RevenueByCategory(derived)
			return nil
		})
		g.Go(func() error {
			rep.States = aggregate.RevenueByState(derived)
			return nil
		})
		g.Go(func() error {
			rep.Satisfaction = aggregate.SatisfactionBySpeedBucket(derived, bucketOrder)
			return nil
		})
		g.Go(func() error {
			rep.ReviewScores = aggregate.ReviewScoreDistribution(derived)
			return nil
		})
		g.Go(func() error {
			rep.Delivery = aggregate.Delivery(derived)
			return nil
		})
		g.Go(func() error {
			rep.PaymentTypes = aggregate.RevenueByPaymentType(payments, derived)
			return nil
		})
		return g.Wait()
	}); err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	sources := make(map[string]string, len(tables.Fingerprints))
	for name, sum := range tables.Fingerprints {
		sources[name] = fmt.Sprintf("%016x", sum)
	}
	warnCounts := make(map[string]int, warnings.Total())
	for kind, n := range warnings.Counts() {
		warnCounts[string(kind)] = n
	}

	rep.Stats = report.RunStats{
		RowsLoaded: map[string]int{
			"orders":      len(tables.Orders),
			"order_items": len(tables.Items),
			"products":    len(tables.Products),
			"customers":   len(tables.Customers),
			"reviews":     len(tables.Reviews),
			"payments":    len(tables.Payments),
		},
		SalesRecords: len(joined),
		Derived:      len(derived),
		Warnings:     warnCounts,
		Sources:      sources,
		Durations:    durations,
	}

	warnings.LogSummary()
	log.Printf("run complete: %d sales records, %d after filter (%s), %d warnings",
		len(joined), len(derived), cfg.Status, warnings.Total())

	return rep, nil
}
