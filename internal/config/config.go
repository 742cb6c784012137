// Package config defines the canonical, JSON-serializable configuration for
// an analysis run. It is intentionally small, explicit, and dependency-free
// so that run settings can be loaded from disk and passed through the
// program without additional glue code.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: field names in Go mirror the JSON structure of run files.
//  3. Minimalism: no third-party config libraries; decoding is performed by
//     the standard library.
//
// Example:
//
//	{
//	  "data_dir": "ecommerce_data",
//	  "status": "delivered",
//	  "analysis_year": 2023,
//	  "comparison_year": 2022,
//	  "speed_buckets": [
//	    { "label": "1-3 days", "max_days": 3 },
//	    { "label": "4-7 days", "max_days": 7 },
//	    { "label": "8+ days" }
//	  ]
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the top-level object decoded from a run file. It is the only
// configuration surface of the pipeline; there is no process-wide mutable
// state. A zero Month means "no month filter".
type Config struct {
	// DataDir is the directory holding the six source CSV files.
	DataDir string `json:"data_dir"`

	// Status selects the order-lifecycle state revenue metrics include.
	// Defaults to "delivered".
	Status string `json:"status"`

	// AnalysisYear is the year the revenue summary reports on.
	AnalysisYear int `json:"analysis_year"`

	// ComparisonYear, when non-zero, is the prior year growth rates are
	// computed against.
	ComparisonYear int `json:"comparison_year"`

	// Month, when non-zero, restricts the derived sales records to a single
	// calendar month (1-12).
	Month int `json:"month,omitempty"`

	// SpeedBuckets are the delivery-speed buckets, ordered by ascending
	// MaxDays. A bucket with MaxDays <= 0 is unbounded and must come last.
	SpeedBuckets []SpeedBucket `json:"speed_buckets"`

	// Metrics configures the optional operational metrics backend.
	Metrics Metrics `json:"metrics"`
}

// SpeedBucket is one delivery-speed bucket: a days-to-deliver value falls
// into the first bucket whose MaxDays it does not exceed.
type SpeedBucket struct {
	Label   string `json:"label"`
	MaxDays int    `json:"max_days,omitempty"`
}

// Metrics selects the operational metrics backend. Kind is one of "none"
// (default), "prometheus", or "datadog".
type Metrics struct {
	Kind string `json:"kind"`

	// Job labels every emitted metric; defaults to "salesmetrics".
	Job string `json:"job"`

	// GatewayURL is the Pushgateway base URL for the "prometheus" kind.
	GatewayURL string `json:"gateway_url,omitempty"`

	// StatsdAddr is the DogStatsD address for the "datadog" kind.
	StatsdAddr string `json:"statsd_addr,omitempty"`
}

// DefaultSpeedBuckets mirrors the buckets the dashboard has always used.
func DefaultSpeedBuckets() []SpeedBucket {
	return []SpeedBucket{
		{Label: "1-3 days", MaxDays: 3},
		{Label: "4-7 days", MaxDays: 7},
		{Label: "8+ days"},
	}
}

// Default returns a Config with every optional field at its documented
// default. DataDir and AnalysisYear must still be supplied by the caller.
func Default() Config {
	return Config{
		Status:       "delivered",
		SpeedBuckets: DefaultSpeedBuckets(),
		Metrics:      Metrics{Kind: "none", Job: "salesmetrics"},
	}
}

// Load decodes a Config from a JSON file and fills in defaults for absent
// fields. It does not validate; see Validate.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	c := Default()
	if err := json.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Status == "" {
		c.Status = "delivered"
	}
	if len(c.SpeedBuckets) == 0 {
		c.SpeedBuckets = DefaultSpeedBuckets()
	}
	if c.Metrics.Kind == "" {
		c.Metrics.Kind = "none"
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "salesmetrics"
	}
}
