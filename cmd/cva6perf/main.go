// Package main provides the cva6perf entry point: a structural timing
// model replaying RISC-V commit traces to predict cycle counts.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tebeka/atexit"

	"github.com/riscvperf/cva6perf/report"
	"github.com/riscvperf/cva6perf/timing/latency"
	"github.com/riscvperf/cva6perf/timing/pipeline"
	"github.com/riscvperf/cva6perf/trace"
)

var (
	configPath  = flag.String("config", "", "Path to pipeline configuration JSON file")
	latencyPath = flag.String("latency", "", "Path to unit latency JSON file")
	markerFlag  = flag.String("marker", "", "Timed-region marker opcode (hex); default is csrr minstret")
	reportPath  = flag.String("report", "", "Append run reports to this file")
	verbose     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: cva6perf [options] <trace.log> [more traces...]\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		atexit.Exit(1)
	}

	cfg, table, marker, err := loadSetup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	var writer *report.Writer
	if *reportPath != "" {
		writer, err = report.NewWriter(*reportPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			atexit.Exit(1)
		}
	}

	for _, path := range flag.Args() {
		if err := run(path, cfg, table, marker, writer); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			atexit.Exit(1)
		}
	}
	atexit.Exit(0)
}

// loadSetup resolves configuration from flags, falling back to the CVA6
// defaults.
func loadSetup() (pipeline.Config, *latency.Table, uint32, error) {
	cfg := pipeline.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = pipeline.LoadConfig(*configPath)
		if err != nil {
			return cfg, nil, 0, err
		}
	}

	table := latency.NewTable()
	if *latencyPath != "" {
		timing, err := latency.LoadConfig(*latencyPath)
		if err != nil {
			return cfg, nil, 0, err
		}
		table = latency.NewTableWithConfig(timing)
	}

	marker := trace.DefaultMarkerOpcode
	if *markerFlag != "" {
		parsed, err := strconv.ParseUint(strings.TrimPrefix(*markerFlag, "0x"), 16, 32)
		if err != nil {
			return cfg, nil, 0, errors.Wrapf(err, "parsing marker opcode %q", *markerFlag)
		}
		marker = uint32(parsed)
	}
	return cfg, table, marker, nil
}

// run replays one trace and reports it. A trace without a usable timed
// region is reported and skipped, not an error.
func run(path string, cfg pipeline.Config, table *latency.Table,
	marker uint32, writer *report.Writer) error {
	t, err := trace.Load(path, marker)
	if err != nil {
		return err
	}

	timed, err := t.Timed()
	if errors.Is(err, trace.ErrInsufficientData) {
		fmt.Fprintf(os.Stderr, "%s: insufficient data, skipping cycle count: %v\n", path, err)
		return nil
	}
	if err != nil {
		return err
	}
	measured, err := t.MeasuredCycles()
	if err != nil {
		return err
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", path)
		fmt.Printf("Instructions in trace: %d\n", len(t.Instructions))
		fmt.Printf("Instructions in timed region: %d\n", len(timed))
	}

	result := pipeline.NewScheduler(cfg, table, timed).Run()

	r := report.Run{
		Trace:          path,
		MeasuredCycles: measured,
		ModeledCycles:  result.Cycles,
		Instructions:   len(timed),
		Stats:          result.Stats,
	}
	report.PrintConsole(r)
	if writer != nil {
		return writer.Append(r)
	}
	return nil
}
