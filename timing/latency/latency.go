// Package latency provides the per-unit instruction timing used by the
// scoreboard to decide when an in-flight instruction completes.
package latency

import (
	"github.com/riscvperf/cva6perf/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a latency table with default timing values.
func NewTable() *Table {
	return &Table{config: DefaultTimingConfig()}
}

// NewTableWithConfig creates a latency table with custom timing values.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{config: config}
}

// Config returns the timing configuration backing the table.
func (t *Table) Config() *TimingConfig {
	return t.config
}

// Latency returns the issue-to-done latency of an instruction, decided
// by the functional unit it occupies. Plain direct jumps ride the ALU,
// matching the unit tracker's classification.
func (t *Table) Latency(inst *insts.Instruction) uint64 {
	switch {
	case inst.Branch || inst.RegJump:
		return t.config.BranchLatency
	case inst.MulDiv:
		return t.config.MulDivLatency
	case inst.Load:
		return t.config.LoadLatency
	case inst.Store:
		return t.config.StoreLatency
	default:
		return t.config.ALULatency
	}
}
