// Package main provides sweep, a batch runner that replays one trace
// under several pipeline parameter sets and reports them side by side.
// Runs are independent and execute in parallel; nothing is shared
// between their tracker instances.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/riscvperf/cva6perf/insts"
	"github.com/riscvperf/cva6perf/report"
	"github.com/riscvperf/cva6perf/timing/latency"
	"github.com/riscvperf/cva6perf/timing/pipeline"
	"github.com/riscvperf/cva6perf/trace"
)

var reportPath = flag.String("report", "", "Append run reports to this file")

// sweepPoint is one parameter set of the sweep.
type sweepPoint struct {
	name string
	cfg  pipeline.Config
}

// sweepPoints covers the issue/commit/scoreboard corners a performance
// engineer compares first.
func sweepPoints() []sweepPoint {
	points := []sweepPoint{}
	for _, issue := range []int{1, 2} {
		for _, commit := range []int{1, 2} {
			for _, depth := range []int{4, 8} {
				cfg := pipeline.DefaultConfig()
				cfg.IssueWidth = issue
				cfg.CommitWidth = commit
				cfg.ScoreboardDepth = depth
				points = append(points, sweepPoint{
					name: fmt.Sprintf("issue=%d commit=%d sb=%d", issue, commit, depth),
					cfg:  cfg,
				})
			}
		}
	}
	return points
}

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: sweep [options] <trace.log>\n")
		flag.PrintDefaults()
		atexit.Exit(1)
	}
	path := flag.Arg(0)

	t, err := trace.Load(path, trace.DefaultMarkerOpcode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}
	timed, err := t.Timed()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: insufficient data, no sweep: %v\n", path, err)
		atexit.Exit(0)
	}
	measured, _ := t.MeasuredCycles()

	var writer *report.Writer
	if *reportPath != "" {
		writer, err = report.NewWriter(*reportPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			atexit.Exit(1)
		}
	}

	points := sweepPoints()
	table := latency.NewTable()
	runs := make([]report.Run, len(points))

	var wg sync.WaitGroup
	for i, point := range points {
		wg.Add(1)
		go func(i int, point sweepPoint) {
			defer wg.Done()
			result := pipeline.NewScheduler(point.cfg, table, cloneProgram(timed)).Run()
			runs[i] = report.Run{
				ID:             xid.New().String(),
				Trace:          fmt.Sprintf("%s (%s)", path, point.name),
				MeasuredCycles: measured,
				ModeledCycles:  result.Cycles,
				Instructions:   len(timed),
				Stats:          result.Stats,
			}
		}(i, point)
	}
	wg.Wait()

	for _, r := range runs {
		report.PrintConsole(r)
		if writer != nil {
			if err := writer.Append(r); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				atexit.Exit(1)
			}
		}
	}
	atexit.Exit(0)
}

// cloneProgram gives each run its own instruction instances, since
// scoreboard entries are keyed by pointer in the event log and the
// parallel runs must not share per-instruction state.
func cloneProgram(program []*insts.Instruction) []*insts.Instruction {
	out := make([]*insts.Instruction, len(program))
	for i, inst := range program {
		clone := *inst
		out[i] = &clone
	}
	return out
}
