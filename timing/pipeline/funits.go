package pipeline

import (
	"fmt"

	"github.com/riscvperf/cva6perf/insts"
)

// FuKind identifies a functional unit.
type FuKind uint8

// The modeled unit set. The second arithmetic unit is an internal
// resource of FusBusy, not a kind of its own: ALU issue spills into it
// transparently when it exists.
const (
	FuALU FuKind = iota
	FuMul
	FuBranch
	FuLdu
	FuStu
)

var fuKindNames = [...]string{
	FuALU:    "ALU",
	FuMul:    "MUL",
	FuBranch: "BRANCH",
	FuLdu:    "LDU",
	FuStu:    "STU",
}

func (k FuKind) String() string {
	if int(k) < len(fuKindNames) {
		return fuKindNames[k]
	}
	return fmt.Sprintf("FuKind(%d)", k)
}

// UnitFor classifies an instruction onto its functional unit. Branches
// and register jumps share the branch unit; a plain direct jump needs no
// computation beyond the ALU.
func UnitFor(inst *insts.Instruction) FuKind {
	switch {
	case inst.Branch || inst.RegJump:
		return FuBranch
	case inst.MulDiv:
		return FuMul
	case inst.Load:
		return FuLdu
	case inst.Store:
		return FuStu
	default:
		return FuALU
	}
}

// FusBusy tracks per-cycle structural hazards across the functional
// units. The units share write-back ports, so issuing into one unit can
// reserve others: the reservation table lives in the issue methods.
type FusBusy struct {
	hasALU2 bool

	alu    bool
	mul    bool
	branch bool
	ldu    bool
	stu    bool
	alu2   bool

	issuedMul bool
}

// NewFusBusy creates a unit tracker. hasALU2 enables the second
// arithmetic unit, present when the core issues more than one
// instruction per cycle.
func NewFusBusy(hasALU2 bool) *FusBusy {
	return &FusBusy{hasALU2: hasALU2}
}

func (f *FusBusy) alu2Ready() bool {
	return f.hasALU2 && !f.alu2
}

// IsReady reports whether the unit can accept an issue this cycle.
func (f *FusBusy) IsReady(k FuKind) bool {
	switch k {
	case FuALU:
		return f.alu2Ready() || !f.alu
	case FuMul:
		return !f.mul
	case FuBranch:
		return !f.branch
	case FuLdu:
		return !f.ldu
	case FuStu:
		return !f.stu
	default:
		panic(fmt.Sprintf("fus: unknown unit %v", k))
	}
}

// IsReadyFor reports whether the instruction's unit can accept it.
func (f *FusBusy) IsReadyFor(inst *insts.Instruction) bool {
	return f.IsReady(UnitFor(inst))
}

// Issue reserves the units the instruction occupies this cycle. Issuing
// into a busy unit is a scheduler bug and panics.
func (f *FusBusy) Issue(inst *insts.Instruction) {
	switch UnitFor(inst) {
	case FuALU:
		f.issueALU()
	case FuMul:
		f.issueMul()
	case FuBranch:
		f.issueBranch()
	case FuLdu:
		f.issueLdu()
	case FuStu:
		f.issueStu()
	}
}

func (f *FusBusy) issueALU() {
	if f.alu2Ready() {
		f.alu2 = true
		return
	}
	if f.alu {
		panic("fus: issuing into busy ALU")
	}
	f.alu = true
	f.branch = true
}

func (f *FusBusy) issueMul() {
	if f.mul {
		panic("fus: issuing into busy MUL")
	}
	f.mul = true
	f.issuedMul = true
}

func (f *FusBusy) issueBranch() {
	if f.branch {
		panic("fus: issuing into busy BRANCH")
	}
	f.alu = true
	f.branch = true
	// Stores may not co-issue with a branch.
	f.stu = true
}

func (f *FusBusy) issueLdu() {
	if f.ldu {
		panic("fus: issuing into busy LDU")
	}
	f.ldu = true
	f.stu = true
}

func (f *FusBusy) issueStu() {
	if f.stu {
		panic("fus: issuing into busy STU")
	}
	f.stu = true
	f.ldu = true
}

// Cycle resets the per-cycle reservations. A multiply issued in the
// ending cycle keeps ALU and BRANCH reserved one more cycle for its
// write-back port.
func (f *FusBusy) Cycle() {
	f.alu = f.issuedMul
	f.mul = false
	f.branch = f.issuedMul
	f.ldu = false
	f.stu = false
	f.alu2 = false
	f.issuedMul = false
}
