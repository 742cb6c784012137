// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"

	"salesmetrics/internal/domain"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Config.
//
// Path is a dotted path into the config (e.g. "speed_buckets[1].max_days").
// Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue in the slice is of error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of a Config.
//
// It does not mutate the config. Instead it returns a slice of Issue values;
// callers may decide whether to treat warnings as fatal or not.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.DataDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "data_dir",
			Message:  "data_dir must not be empty",
		})
	}

	if strings.TrimSpace(c.Status) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "status",
			Message:  "status must not be empty",
		})
	} else if !domain.KnownStatus(domain.OrderStatus(c.Status)) {
		// Unknown statuses are warnings for forward compatibility: the filter
		// still works, it just may match nothing.
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "status",
			Message:  fmt.Sprintf("unknown order status %q; the filter may match no records", c.Status),
		})
	}

	if c.AnalysisYear == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "analysis_year",
			Message:  "analysis_year is required",
		})
	}
	if c.ComparisonYear != 0 && c.ComparisonYear >= c.AnalysisYear && c.AnalysisYear != 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "comparison_year",
			Message:  "comparison_year is not before analysis_year; growth rates will compare forward in time",
		})
	}

	if c.Month < 0 || c.Month > 12 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "month",
			Message:  fmt.Sprintf("month=%d; must be 1-12 or absent", c.Month),
		})
	}

	issues = append(issues, validateBuckets(c.SpeedBuckets)...)
	issues = append(issues, validateMetrics(c.Metrics)...)

	return issues
}

// validateBuckets checks that bucket boundaries are strictly ascending, that
// labels are present and unique, and that only the last bucket is unbounded.
func validateBuckets(buckets []SpeedBucket) []Issue {
	var issues []Issue

	if len(buckets) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "speed_buckets",
			Message:  "at least one speed bucket is required",
		})
		return issues
	}

	seen := map[string]struct{}{}
	prev := 0
	for i, b := range buckets {
		path := fmt.Sprintf("speed_buckets[%d]", i)
		if strings.TrimSpace(b.Label) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".label",
				Message:  "bucket label must not be empty",
			})
		}
		if _, dup := seen[b.Label]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".label",
				Message:  fmt.Sprintf("duplicate bucket label %q", b.Label),
			})
		}
		seen[b.Label] = struct{}{}

		unbounded := b.MaxDays <= 0
		if unbounded && i != len(buckets)-1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".max_days",
				Message:  "only the last bucket may be unbounded",
			})
			continue
		}
		if !unbounded {
			if b.MaxDays <= prev {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path + ".max_days",
					Message:  fmt.Sprintf("max_days=%d must exceed the previous bound %d", b.MaxDays, prev),
				})
			}
			prev = b.MaxDays
		}
	}

	return issues
}

// validateMetrics validates the metrics backend selection.
func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Kind {
	case "", "none":
	case "prometheus":
		if strings.TrimSpace(m.GatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.gateway_url",
				Message:  "prometheus metrics require a gateway_url",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.StatsdAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.statsd_addr",
				Message:  "datadog metrics require a statsd_addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.kind",
			Message:  fmt.Sprintf("unknown metrics kind %q; use none, prometheus, or datadog", m.Kind),
		})
	}

	return issues
}
