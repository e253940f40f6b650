package pipeline

import (
	"fmt"

	"github.com/riscvperf/cva6perf/insts"
)

// Entry is one in-flight instruction: issued, not yet committed.
type Entry struct {
	Instr            *insts.Instruction
	CyclesSinceIssue uint64
	Done             bool

	// Prediction state captured at issue, resolved at commit.
	predicted    Outcome // branch direction prediction
	retTarget    uint32  // return target read back from the RAS
	retPredicted bool
}

func (e *Entry) String() string {
	status := "WIP "
	if e.Done {
		status = "DONE"
	}
	return fmt.Sprintf("%s 0x%08X:`%s` for %d",
		status, e.Instr.Addr, e.Instr.Mnemo, e.CyclesSinceIssue)
}

// Scoreboard is the bounded FIFO of in-flight instructions. Entries
// enter at issue in program order and leave at commit from the head
// only; they are never reordered.
type Scoreboard struct {
	depth   int
	entries []*Entry
}

// NewScoreboard creates a scoreboard bounded to depth live entries.
func NewScoreboard(depth int) *Scoreboard {
	return &Scoreboard{depth: depth}
}

// Len returns the number of in-flight entries.
func (s *Scoreboard) Len() int {
	return len(s.entries)
}

// HasRoom reports whether another instruction may issue.
func (s *Scoreboard) HasRoom() bool {
	return len(s.entries) < s.depth
}

// Push appends a freshly issued instruction. Exceeding the scoreboard
// depth is a scheduler bug and panics.
func (s *Scoreboard) Push(inst *insts.Instruction) *Entry {
	if !s.HasRoom() {
		panic("scoreboard: issuing past capacity")
	}
	entry := &Entry{Instr: inst}
	s.entries = append(s.entries, entry)
	return entry
}

// Head returns the oldest in-flight entry, or nil when empty.
func (s *Scoreboard) Head() *Entry {
	if len(s.entries) == 0 {
		return nil
	}
	return s.entries[0]
}

// PopHead retires the oldest entry.
func (s *Scoreboard) PopHead() {
	if len(s.entries) == 0 {
		panic("scoreboard: committing from empty scoreboard")
	}
	s.entries = s.entries[1:]
}

// Entries returns the in-flight entries in program order. The slice is
// the scoreboard's own; callers only scan it.
func (s *Scoreboard) Entries() []*Entry {
	return s.entries
}
