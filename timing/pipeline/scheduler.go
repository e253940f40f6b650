package pipeline

import (
	"github.com/riscvperf/cva6perf/insts"
	"github.com/riscvperf/cva6perf/timing/latency"
)

// Stats holds the counters accumulated over one run.
type Stats struct {
	// Cycles is the number of cycles simulated.
	Cycles uint64
	// Instructions is the number of committed instructions.
	Instructions uint64
	// BranchHits and BranchMisses count resolved direction and
	// return-target predictions.
	BranchHits   uint64
	BranchMisses uint64
	// Flushes counts fetch-queue flushes caused by mispredictions.
	Flushes uint64
	// Stall counters, one per hazard kind, counted once per stalled
	// instruction.
	RAWStalls    uint64
	WAWStalls    uint64
	WARStalls    uint64
	StructStalls uint64
}

// IPC returns committed instructions per cycle.
func (s Stats) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Instructions) / float64(s.Cycles)
}

// PredictionAccuracy returns the fraction of resolved predictions that
// were correct.
func (s Stats) PredictionAccuracy() float64 {
	total := s.BranchHits + s.BranchMisses
	if total == 0 {
		return 0
	}
	return float64(s.BranchHits) / float64(total)
}

// Result is the outcome of replaying one trace.
type Result struct {
	// Cycles is the modeled cycle count: the cycle of the last commit.
	Cycles uint64
	// Instructions is the number of committed instructions.
	Instructions uint64
	// Stats are the run counters.
	Stats Stats
	// Log is the per-instruction event timeline.
	Log *EventLog
}

// Scheduler replays a program-ordered instruction sequence through the
// hazard and prediction trackers, deciding per instruction its issue,
// completion and commit cycles. Each Scheduler owns fresh tracker
// instances; runs share nothing, so identical input always produces an
// identical event log.
type Scheduler struct {
	cfg Config
	lat *latency.Table

	bht *BranchPredictor
	ras *RetStack
	iq  *FetchQueue
	fus *FusBusy
	sb  *Scoreboard
	log *EventLog

	queue []*insts.Instruction
	cycle uint64

	lastCommit uint64
	stats      Stats

	// stallLogged dedupes hazard events: each kind is logged once per
	// stalled instruction, however many cycles the stall lasts.
	stallLogged map[*insts.Instruction]uint16
}

// NewScheduler creates a scheduler for one run over program, which must
// be in program order. The program slice is consumed as the run
// progresses.
func NewScheduler(cfg Config, table *latency.Table, program []*insts.Instruction) *Scheduler {
	if table == nil {
		table = latency.NewTable()
	}
	return &Scheduler{
		cfg:         cfg,
		lat:         table,
		bht:         NewBranchPredictor(cfg.BHTEntries),
		ras:         NewRetStack(cfg.RASDepth),
		iq:          NewFetchQueue(cfg.fetchSize()),
		fus:         NewFusBusy(cfg.IssueWidth > 1),
		sb:          NewScoreboard(cfg.ScoreboardDepth),
		log:         NewEventLog(),
		queue:       program,
		stallLogged: make(map[*insts.Instruction]uint16),
	}
}

// Run replays the whole program and returns the result. The final cycle
// count is the cycle of the last commit.
func (s *Scheduler) Run() Result {
	for len(s.queue) > 0 || s.sb.Len() > 0 {
		s.tick()
	}
	s.stats.Cycles = s.cycle
	return Result{
		Cycles:       s.lastCommit,
		Instructions: s.stats.Instructions,
		Stats:        s.stats,
		Log:          s.log,
	}
}

// Log returns the event log accumulated so far.
func (s *Scheduler) Log() *EventLog {
	return s.log
}

// tick advances the model by one cycle: frontend refill, in-order
// issue, scoreboard advance, in-order commit, unit reset.
func (s *Scheduler) tick() {
	s.cycle++
	s.iq.Fetch()
	s.issue()
	s.advance()
	s.commit()
	s.fus.Cycle()
}

// issue admits queued instructions in program order until the issue
// width is spent or the head instruction is blocked.
func (s *Scheduler) issue() {
	for n := 0; n < s.cfg.IssueWidth && len(s.queue) > 0; n++ {
		inst := s.queue[0]

		if !s.iq.Has(inst) {
			return
		}
		if !s.fus.IsReadyFor(inst) {
			s.logStall(inst, EventStruct)
			return
		}
		if !s.sb.HasRoom() {
			return
		}
		if kind, blocked := s.dataHazard(inst); blocked {
			s.logStall(inst, kind)
			return
		}

		s.queue = s.queue[1:]
		s.iq.Remove(inst)
		s.fus.Issue(inst)

		entry := s.sb.Push(inst)
		if inst.Branch {
			entry.predicted = s.bht.Predict(inst.Addr)
		}
		s.ras.Resolve(inst)
		if inst.Ret {
			entry.retTarget, entry.retPredicted = s.ras.Read()
		}

		s.log.Append(inst, EventIssue, s.cycle)
	}
}

// advance ages every in-flight entry and marks it done once its unit's
// latency has elapsed.
func (s *Scheduler) advance() {
	for _, entry := range s.sb.Entries() {
		if entry.Done {
			continue
		}
		entry.CyclesSinceIssue++
		if entry.CyclesSinceIssue >= s.lat.Latency(entry.Instr) {
			entry.Done = true
		}
	}
}

// commit retires done entries from the scoreboard head, up to the
// commit width, resolving predictions as instructions become
// architectural.
func (s *Scheduler) commit() {
	for n := 0; n < s.cfg.CommitWidth; n++ {
		entry := s.sb.Head()
		if entry == nil || !entry.Done {
			return
		}
		inst := entry.Instr

		s.log.Append(inst, EventDone, s.cycle)
		s.resolvePrediction(entry)
		s.sb.PopHead()

		s.log.Append(inst, EventCommit, s.cycle)
		s.stats.Instructions++
		s.lastCommit = s.cycle
	}
}

// resolvePrediction compares a control-flow instruction's actual
// outcome, known from the retired trace, with the prediction captured
// at issue. Mispredictions flush the fetch queue; the wrong-path
// instructions themselves never appear in a retired trace, so no
// scoreboard rollback is needed.
func (s *Scheduler) resolvePrediction(entry *Entry) {
	inst := entry.Instr
	if inst.TraceNext == 0 {
		// Last timed instruction: outcome unknown, nothing to resolve.
		return
	}

	switch {
	case inst.Branch:
		taken := inst.Taken()
		hit := (entry.predicted == OutcomeTaken) == taken
		s.bht.Resolve(inst.Addr, taken)
		s.recordPrediction(inst, hit)
	case inst.Ret:
		hit := entry.retPredicted && entry.retTarget == inst.TraceNext
		s.recordPrediction(inst, hit)
	}
}

func (s *Scheduler) recordPrediction(inst *insts.Instruction, hit bool) {
	if hit {
		s.stats.BranchHits++
		s.log.Append(inst, EventBranchHit, s.cycle)
		return
	}
	s.stats.BranchMisses++
	s.log.Append(inst, EventBranchMiss, s.cycle)
	s.iq.Flush()
	s.stats.Flushes++
}

// dataHazard scans the in-flight entries for a dependency that blocks
// the candidate. RAW clears when the producer is done (committed,
// without forwarding); WAW and WAR exist only without renaming.
func (s *Scheduler) dataHazard(inst *insts.Instruction) (EventKind, bool) {
	for _, entry := range s.sb.Entries() {
		prod := entry.Instr

		if prod.WritesRd() {
			if prod.Rd == inst.Rs1 || prod.Rd == inst.Rs2 {
				if !entry.Done || !s.cfg.HasForwarding {
					return EventRAW, true
				}
			}
			if !s.cfg.HasRenaming && inst.WritesRd() && prod.Rd == inst.Rd {
				return EventWAW, true
			}
		}
		if !s.cfg.HasRenaming && inst.WritesRd() &&
			(prod.Rs1 == inst.Rd || prod.Rs2 == inst.Rd) {
			return EventWAR, true
		}
	}
	return 0, false
}

// logStall records a hazard event once per instruction per kind and
// bumps the matching counter.
func (s *Scheduler) logStall(inst *insts.Instruction, kind EventKind) {
	bit := uint16(1) << kind
	if s.stallLogged[inst]&bit != 0 {
		return
	}
	s.stallLogged[inst] |= bit

	switch kind {
	case EventRAW:
		s.stats.RAWStalls++
	case EventWAW:
		s.stats.WAWStalls++
	case EventWAR:
		s.stats.WARStalls++
	case EventStruct:
		s.stats.StructStalls++
	}
	s.log.Append(inst, kind, s.cycle)
}
