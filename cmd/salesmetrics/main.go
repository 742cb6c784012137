package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"salesmetrics/internal/config"
	"salesmetrics/internal/metrics"
	"salesmetrics/internal/metrics/datadog"
	"salesmetrics/internal/metrics/prompush"
	"salesmetrics/internal/pipeline"
)

// main is the entry point for the salesmetrics binary. It loads the run
// config, optionally initializes a metrics backend, executes the analysis
// pipeline, and writes the report to stdout or a file.
func main() {
	var (
		cfgPath  string
		format   string
		outPath  string
		dataDir  string
		validate bool
	)

	flag.StringVar(&cfgPath, "config", "configs/sample.json", "run config JSON path")
	flag.StringVar(&format, "format", "json", "report output format (json, csv)")
	flag.StringVar(&outPath, "out", "", "report output path (default stdout)")
	flag.StringVar(&dataDir, "data-dir", "", "override data_dir from the config")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	if format != "json" && format != "csv" {
		fatalf("unknown format %q (want json or csv)", format)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	issues := config.Validate(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	setupMetrics(cfg.Metrics, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("run: data_dir=%s status=%s year=%d vs %d",
			cfg.DataDir, cfg.Status, cfg.AnalysisYear, cfg.ComparisonYear)
	}

	rep, err := pipeline.Run(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fatalf("create output: %v", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "csv":
		err = rep.WriteCSV(out)
	default:
		err = rep.WriteJSON(out)
	}
	if err != nil {
		log.Fatalf("write report: %v", err)
	}

	if *verbose {
		if sum, err := rep.Fingerprint(); err == nil {
			log.Printf("report fingerprint: %016x", sum)
		}
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// setupMetrics installs the configured metrics backend; the nop backend
// remains on any failure so the run itself is never blocked by metrics.
func setupMetrics(m config.Metrics, verbose bool) {
	switch m.Kind {
	case "prometheus":
		b, err := prompush.NewBackend(m.Job, m.GatewayURL)
		if err != nil {
			log.Printf("metrics: failed to init prometheus backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=prometheus url=%v job=%v", m.GatewayURL, m.Job)
		metrics.SetBackend(b)

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:      m.StatsdAddr,
			Namespace: "salesmetrics.",
			GlobalTags: []string{
				"job:" + m.Job,
			},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=datadog addr=%v job=%v", m.StatsdAddr, m.Job)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", m.Kind)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
