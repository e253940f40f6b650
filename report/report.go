// Package report formats per-run results: cycle counts, instruction
// counts and the derived throughput figure, for the console and for
// appendable report files.
package report

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/tebeka/atexit"

	"github.com/riscvperf/cva6perf/timing/pipeline"
)

// RefFrequency is the reference frequency the throughput figure is
// derived from: CoreMark/MHz style, frequency divided by cycle count.
const RefFrequency = 1_000_000.0

// nameColumn aligns the '=' of key-value lines.
const nameColumn = 24

// Run is one trace replay worth of reportable numbers.
type Run struct {
	// ID tags the run in batch output; empty for single runs.
	ID string
	// Trace is the input file the numbers belong to.
	Trace string

	// MeasuredCycles is the timed-region cycle count the simulation
	// reported, taken straight from trace timestamps.
	MeasuredCycles uint64
	// ModeledCycles is the cycle count the scheduler predicted.
	ModeledCycles uint64
	// Instructions is the timed-region instruction count.
	Instructions int

	// Stats carries the scheduler counters for the run.
	Stats pipeline.Stats
}

// Throughput returns the derived throughput metric over the measured
// cycle count.
func (r Run) Throughput() float64 {
	if r.MeasuredCycles == 0 {
		return 0
	}
	return RefFrequency / float64(r.MeasuredCycles)
}

// ModeledThroughput returns the derived throughput metric over the
// modeled cycle count.
func (r Run) ModeledThroughput() float64 {
	if r.ModeledCycles == 0 {
		return 0
	}
	return RefFrequency / float64(r.ModeledCycles)
}

// PrintData writes one aligned "name = value" line.
func PrintData(w io.Writer, name string, value interface{}) {
	pad := nameColumn - len(name)
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(w, "%s%*s = %v\n", name, pad, "", value)
}

// Fprint writes the plain-text report for one run.
func Fprint(w io.Writer, r Run) {
	header := r.Trace
	if r.ID != "" {
		header = fmt.Sprintf("%s [%s]", r.Trace, r.ID)
	}
	fmt.Fprintf(w, "\n\n%s\n", header)
	PrintData(w, "cycle number", r.MeasuredCycles)
	PrintData(w, "modeled cycle number", r.ModeledCycles)
	PrintData(w, "instruction number", r.Instructions)
	PrintData(w, "CoreMark/MHz", r.Throughput())
	PrintData(w, "modeled CoreMark/MHz", r.ModeledThroughput())
}

// PrintConsole writes a colored run summary to stdout.
func PrintConsole(r Run) {
	color.New(color.FgCyan, color.Bold).Printf("\n%s\n", r.Trace)
	PrintData(os.Stdout, "cycle number", r.MeasuredCycles)
	PrintData(os.Stdout, "modeled cycle number", r.ModeledCycles)
	PrintData(os.Stdout, "instruction number", r.Instructions)
	PrintData(os.Stdout, "IPC", fmt.Sprintf("%.3f", r.Stats.IPC()))
	PrintData(os.Stdout, "prediction accuracy",
		fmt.Sprintf("%.3f", r.Stats.PredictionAccuracy()))

	delta := int64(r.ModeledCycles) - int64(r.MeasuredCycles)
	line := color.New(color.FgGreen)
	if delta != 0 {
		line = color.New(color.FgYellow)
	}
	line.Printf("model delta%*s = %+d cycles\n", nameColumn-11, "", delta)
}

// Writer appends run reports to a file. The file is closed when the
// process exits through atexit, so callers can fire and forget.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// NewWriter opens (or creates) an append-mode report file and registers
// its cleanup with atexit.
func NewWriter(path string) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening report file %s", path)
	}

	w := &Writer{file: file}
	atexit.Register(func() { _ = file.Close() })
	return w, nil
}

// Append writes one run report to the file. Safe for concurrent use by
// batch runners.
func (w *Writer) Append(r Run) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	Fprint(w.file, r)
	return errors.Wrap(w.file.Sync(), "flushing report file")
}
