package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"salesmetrics/internal/aggregate"
)

func sampleReport() *Report {
	growth := 0.25
	return &Report{
		Status:         "delivered",
		AnalysisYear:   2023,
		ComparisonYear: 2022,
		Revenue: aggregate.Summary{
			Year:          2023,
			TotalRevenue:  1500,
			Orders:        3,
			Items:         5,
			AvgOrderValue: 500,
			RevenueGrowth: &growth,
		},
		MonthlyRevenue: []aggregate.PeriodRevenue{
			{Year: 2023, Month: 1, Revenue: 700, Items: 2},
			{Year: 2023, Month: 2, Revenue: 800, Items: 3},
		},
		YearlyRevenue: []aggregate.PeriodRevenue{
			{Year: 2023, Revenue: 1500, Items: 5},
		},
		Categories: []aggregate.CategoryRevenue{
			{Category: "toys", Revenue: 1500, Items: 5, Share: 1},
		},
		Satisfaction: []aggregate.BucketScore{
			{Bucket: "1-3 days", MeanScore: 4.5, Orders: 2},
		},
		Stats: RunStats{
			RowsLoaded:   map[string]int{"orders": 3},
			SalesRecords: 5,
			Derived:      5,
			Sources:      map[string]string{"orders_dataset.csv": "00000000deadbeef"},
			Durations:    map[string]string{"load": "1.2ms"},
		},
	}
}

func TestFingerprintStable(t *testing.T) {
	a := sampleReport()
	b := sampleReport()

	fa, err := a.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	fb, err := b.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if fa != fb {
		t.Fatalf("equal reports hash differently: %016x != %016x", fa, fb)
	}
}

func TestFingerprintIgnoresDurations(t *testing.T) {
	a := sampleReport()
	b := sampleReport()
	b.Stats.Durations = map[string]string{"load": "99h"}

	fa, _ := a.Fingerprint()
	fb, _ := b.Fingerprint()
	if fa != fb {
		t.Fatal("fingerprint should not depend on run durations")
	}
}

func TestFingerprintSeesContent(t *testing.T) {
	a := sampleReport()
	b := sampleReport()
	b.Revenue.TotalRevenue = 1501

	fa, _ := a.Fingerprint()
	fb, _ := b.Fingerprint()
	if fa == fb {
		t.Fatal("fingerprint should change with aggregate content")
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Revenue.TotalRevenue != 1500 {
		t.Fatalf("TotalRevenue = %v, want 1500", decoded.Revenue.TotalRevenue)
	}
	if decoded.Revenue.RevenueGrowth == nil || *decoded.Revenue.RevenueGrowth != 0.25 {
		t.Fatalf("RevenueGrowth = %v, want 0.25", decoded.Revenue.RevenueGrowth)
	}
}

func TestWriteJSONNullGrowth(t *testing.T) {
	r := sampleReport()
	r.Revenue.RevenueGrowth = nil

	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"revenue_growth": null`) {
		t.Fatal("undefined growth should serialize as null")
	}
}

func TestWriteCSVSections(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.String()

	for _, section := range []string{
		"# summary", "# monthly_revenue", "# yearly_revenue",
		"# categories", "# states", "# satisfaction_by_speed",
		"# review_scores", "# payment_types",
	} {
		if !strings.Contains(out, section+"\n") {
			t.Fatalf("missing section %q in output", section)
		}
	}
	if !strings.Contains(out, "total_revenue,1500\n") {
		t.Fatal("summary section missing total_revenue row")
	}
	if !strings.Contains(out, "2023,1,700,2\n") {
		t.Fatal("monthly section missing January row")
	}
	// Undefined growth renders as an empty cell, not NaN.
	if strings.Contains(out, "NaN") {
		t.Fatal("CSV output must not contain NaN")
	}
}
