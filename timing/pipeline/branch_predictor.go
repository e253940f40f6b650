package pipeline

// Outcome is a branch direction prediction.
type Outcome uint8

// Prediction outcomes. Unknown means the indexed table slot was never
// trained; the frontend then falls back to not-taken.
const (
	OutcomeUnknown Outcome = iota
	OutcomeTaken
	OutcomeNotTaken
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTaken:
		return "taken"
	case OutcomeNotTaken:
		return "not-taken"
	default:
		return "unknown"
	}
}

// bhtEntry is one slot of the branch history table.
type bhtEntry struct {
	valid   bool
	counter uint8 // 2-bit saturating confidence, taken when >= 2
}

// BranchPredictor models the branch history table: a direct-mapped array
// of 2-bit saturating counters indexed by branch address. Aliasing
// between addresses sharing an index is intentional; the hardware
// aliases the same way.
type BranchPredictor struct {
	entries []bhtEntry
}

// DefaultBHTEntries is the modeled table size.
const DefaultBHTEntries = 128

// NewBranchPredictor creates a predictor with the given number of table
// entries, defaulting when the count is not positive.
func NewBranchPredictor(entries int) *BranchPredictor {
	if entries <= 0 {
		entries = DefaultBHTEntries
	}
	return &BranchPredictor{
		entries: make([]bhtEntry, entries),
	}
}

// index maps a branch address to its table slot. The low bit is dropped
// because compressed instructions are 2-byte aligned.
func (bp *BranchPredictor) index(addr uint32) int {
	return int((addr >> 1) % uint32(len(bp.entries)))
}

// Predict returns the direction prediction for a branch at addr.
func (bp *BranchPredictor) Predict(addr uint32) Outcome {
	entry := bp.entries[bp.index(addr)]
	if !entry.valid {
		return OutcomeUnknown
	}
	if entry.counter >= 2 {
		return OutcomeTaken
	}
	return OutcomeNotTaken
}

// Resolve trains the predictor with the actual outcome of a branch at
// addr. The counter saturates at 0 and 3, never wrapping.
func (bp *BranchPredictor) Resolve(addr uint32, taken bool) {
	entry := &bp.entries[bp.index(addr)]
	entry.valid = true
	if taken {
		if entry.counter < 3 {
			entry.counter++
		}
	} else {
		if entry.counter > 0 {
			entry.counter--
		}
	}
}
