// Package trace loads RISC-V commit traces and extracts the timed region
// the performance model replays.
//
// A trace is plain text with one retired instruction per line, in the
// form emitted by an RTL simulation log:
//
//	core   0: 0x00000000800000a4 (0x00a58533) @ 145 add a0,a1,a0
//
// Lines that do not match are skipped silently. A marker opcode (by
// default the csrr-minstret encoding 0x32951073) delimits the timed
// region: the instructions strictly between its first and second
// occurrences are the region of interest, later occurrences are
// ignored.
package trace

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/riscvperf/cva6perf/insts"
)

// DefaultMarkerOpcode is the encoding of the csrr-minstret instruction
// that benchmark harnesses place around the timed region.
const DefaultMarkerOpcode uint32 = 0x32951073

// ErrInsufficientData reports a trace without a usable timed region:
// fewer than two markers, or fewer than two instructions between them.
// It is a reported condition, not a failure of the reader itself.
var ErrInsufficientData = errors.New("trace has no usable timed region")

var reInstr = regexp.MustCompile(
	`([a-z]+)\s+0:\s*0x00000000([0-9a-f]{8})\s*\(([0-9a-fx]+)\)\s*@\s*([0-9]+)\s*(.*)`)

// Trace holds the instructions parsed from one trace file.
type Trace struct {
	Path string

	// Instructions are all matched lines in file order, markers included.
	Instructions []*insts.Instruction

	timed   []*insts.Instruction
	markers int
}

// Load parses a trace file. The returned Trace always carries whatever
// instructions matched; the error is non-nil only when the file cannot
// be read.
func Load(path string, markerOpcode uint32) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening trace %s", path)
	}
	defer func() { _ = f.Close() }()

	t := &Trace{Path: path}
	decoder := insts.NewDecoder()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		inst, ok := parseLine(decoder, strings.TrimSpace(scanner.Text()))
		if !ok {
			continue
		}
		t.Instructions = append(t.Instructions, inst)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading trace %s", path)
	}

	t.filterTimed(markerOpcode)
	return t, nil
}

// parseLine matches one trace line. Non-matching lines report ok=false
// and are not an error.
func parseLine(d *insts.Decoder, line string) (*insts.Instruction, bool) {
	m := reInstr.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	addr, err := strconv.ParseUint(m[2], 16, 32)
	if err != nil {
		return nil, false
	}
	word, err := strconv.ParseUint(strings.TrimPrefix(m[3], "0x"), 16, 32)
	if err != nil {
		return nil, false
	}
	cycle, err := strconv.ParseUint(m[4], 10, 64)
	if err != nil {
		return nil, false
	}

	inst := d.Decode(uint32(word))
	inst.Addr = uint32(addr)
	inst.Cycle = cycle
	inst.Mnemo = m[5]
	return inst, true
}

// filterTimed collects the instructions between the first two marker
// occurrences and links each to its successor so actual control-flow
// outcomes are known without executing anything.
func (t *Trace) filterTimed(marker uint32) {
	for _, inst := range t.Instructions {
		if inst.Word == marker {
			t.markers++
			continue
		}
		if t.markers == 1 {
			t.timed = append(t.timed, inst)
		}
	}
	for i := 0; i+1 < len(t.timed); i++ {
		t.timed[i].TraceNext = t.timed[i+1].Addr
	}
}

// Timed returns the instructions of the timed region, in program order.
// ErrInsufficientData is returned when the region cannot support a cycle
// count.
func (t *Trace) Timed() ([]*insts.Instruction, error) {
	if t.markers < 2 {
		return nil, errors.Wrapf(ErrInsufficientData,
			"%s: found %d timed-region markers, need 2", t.Path, t.markers)
	}
	if len(t.timed) < 2 {
		return nil, errors.Wrapf(ErrInsufficientData,
			"%s: only %d instructions in timed region", t.Path, len(t.timed))
	}
	return t.timed, nil
}

// MeasuredCycles returns the cycle count the simulation itself reported
// for the timed region: last commit cycle minus first commit cycle.
func (t *Trace) MeasuredCycles() (uint64, error) {
	timed, err := t.Timed()
	if err != nil {
		return 0, err
	}
	return timed[len(timed)-1].Cycle - timed[0].Cycle, nil
}
