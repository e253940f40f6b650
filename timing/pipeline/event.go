package pipeline

import (
	"fmt"

	"github.com/riscvperf/cva6perf/insts"
)

// EventKind identifies something that happened to an instruction during
// the modeled replay.
type EventKind uint8

// Event kinds, covering hazards, prediction outcomes and lifecycle.
const (
	EventWAW EventKind = iota
	EventWAR
	EventRAW
	EventStruct
	EventBranchMiss
	EventBranchHit
	EventIssue
	EventDone
	EventCommit
)

var eventKindNames = [...]string{
	EventWAW:        "WAW",
	EventWAR:        "WAR",
	EventRAW:        "RAW",
	EventStruct:     "STRUCT",
	EventBranchMiss: "BMISS",
	EventBranchHit:  "BHIT",
	EventIssue:      "issue",
	EventDone:       "done",
	EventCommit:     "commit",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", k)
}

// Event is one timestamped occurrence on an instruction.
type Event struct {
	Kind  EventKind
	Cycle uint64
}

func (e Event) String() string {
	return fmt.Sprintf("@%d: %s", e.Cycle, e.Kind)
}

// LogEntry pairs an event with the instruction it happened to.
type LogEntry struct {
	Event Event
	Instr *insts.Instruction
}

// EventLog is the append-only timeline of a run. It is purely
// observational: the scheduler never reads it back to make decisions.
type EventLog struct {
	entries []LogEntry
	byInstr map[*insts.Instruction][]Event
}

// NewEventLog creates an empty event log.
func NewEventLog() *EventLog {
	return &EventLog{
		byInstr: make(map[*insts.Instruction][]Event),
	}
}

// Append records an event on an instruction at the given cycle.
func (l *EventLog) Append(inst *insts.Instruction, kind EventKind, cycle uint64) {
	event := Event{Kind: kind, Cycle: cycle}
	l.entries = append(l.entries, LogEntry{Event: event, Instr: inst})
	l.byInstr[inst] = append(l.byInstr[inst], event)
}

// Entries returns the full timeline in append order.
func (l *EventLog) Entries() []LogEntry {
	return l.entries
}

// Of returns the events recorded on one instruction, in append order.
func (l *EventLog) Of(inst *insts.Instruction) []Event {
	return l.byInstr[inst]
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int {
	return len(l.entries)
}
