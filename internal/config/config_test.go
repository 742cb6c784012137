package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"data_dir":"data","analysis_year":2023}`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Status != "delivered" {
		t.Fatalf("status=%q want delivered", c.Status)
	}
	if len(c.SpeedBuckets) != 3 {
		t.Fatalf("buckets=%d want 3 defaults", len(c.SpeedBuckets))
	}
	if c.SpeedBuckets[0].Label != "1-3 days" || c.SpeedBuckets[0].MaxDays != 3 {
		t.Fatalf("first bucket = %+v", c.SpeedBuckets[0])
	}
	if c.SpeedBuckets[2].MaxDays != 0 {
		t.Fatalf("last bucket should be unbounded, got max_days=%d", c.SpeedBuckets[2].MaxDays)
	}
	if c.Metrics.Kind != "none" || c.Metrics.Job != "salesmetrics" {
		t.Fatalf("metrics defaults = %+v", c.Metrics)
	}
}

func TestLoadExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `{
		"data_dir": "data",
		"status": "shipped",
		"analysis_year": 2023,
		"comparison_year": 2022,
		"month": 3,
		"speed_buckets": [
			{"label": "fast", "max_days": 2},
			{"label": "slow"}
		],
		"metrics": {"kind": "prometheus", "gateway_url": "http://gw:9091"}
	}`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Status != "shipped" || c.Month != 3 || c.ComparisonYear != 2022 {
		t.Fatalf("config = %+v", c)
	}
	if len(c.SpeedBuckets) != 2 || c.SpeedBuckets[0].Label != "fast" {
		t.Fatalf("buckets = %+v", c.SpeedBuckets)
	}
	if c.Metrics.Kind != "prometheus" || c.Metrics.Job != "salesmetrics" {
		t.Fatalf("metrics = %+v", c.Metrics)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{"data_dir": `)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}
