// Package insts provides RISC-V instruction classification for timed
// commit traces.
//
// The decoder extracts only what the timing model consumes: instruction
// size, control-flow and functional-unit classification, compressed
// encoding detection, and the register operand fields call/return
// detection depends on. It covers the RV32IMC encodings that appear in
// CVA6 commit traces; instruction semantics are never evaluated.
package insts

// Reg identifies a RISC-V integer register.
type Reg uint8

// Registers the classifier refers to by name.
const (
	RegZero Reg = 0
	RegRA   Reg = 1 // return address (x1)
	RegSP   Reg = 2
	RegT0   Reg = 5 // alternate link register (x5)
)

// IsLink reports whether the register belongs to the link-register set
// CVA6 uses for call and return detection.
func (r Reg) IsLink() bool {
	return r == RegRA || r == RegT0
}

// Instruction is a decoded instruction annotated with its trace context.
// The decoded fields are immutable after Decode; the trace loader fills
// in Addr, Cycle, Mnemo and TraceNext.
type Instruction struct {
	Word  uint32 // raw encoding
	Addr  uint32 // program address
	Cycle uint64 // commit cycle reported by the trace
	Mnemo string // free-text mnemonic from the trace line

	// TraceNext is the address of the next retired instruction in the
	// trace, or 0 for the last one. It supplies actual control-flow
	// outcomes without executing anything.
	TraceNext uint32

	Size       uint8 // encoded size in bytes, 2 or 4
	Compressed bool

	Rd  Reg
	Rs1 Reg
	Rs2 Reg

	Branch  bool // conditional branch
	RegJump bool // register-indirect jump (JALR, C.JR, C.JALR)
	Jump    bool // unconditional control transfer
	MulDiv  bool
	Load    bool
	Store   bool

	// Ret and Call follow the CVA6 frontend rules: a return is an
	// indirect jump through a link register, compact-encoded or with
	// differing source and destination; a call is C.JAL, C.JALR, or a
	// jump-and-link writing a link register.
	Ret  bool
	Call bool
}

// NextAddr returns the address of the sequentially following instruction.
func (i *Instruction) NextAddr() uint32 {
	return i.Addr + uint32(i.Size)
}

// Taken reports whether the instruction actually redirected control flow,
// derived from the retired-trace successor. False for the last timed
// instruction, whose outcome is unknown.
func (i *Instruction) Taken() bool {
	return i.TraceNext != 0 && i.TraceNext != i.NextAddr()
}

// Redirects reports whether issuing this instruction steers the fetch
// stream away from the sequential path.
func (i *Instruction) Redirects() bool {
	if i.Jump {
		return true
	}
	return i.Branch && i.Taken()
}

// WritesRd reports whether the instruction produces a register result.
// Stores and conditional branches have no destination, and x0 is
// hardwired to zero.
func (i *Instruction) WritesRd() bool {
	return !i.Store && !i.Branch && i.Rd != RegZero
}

// MnemoName returns the first word of the trace mnemonic.
func (i *Instruction) MnemoName() string {
	for p, c := range i.Mnemo {
		if c == ' ' || c == '\t' {
			return i.Mnemo[:p]
		}
	}
	return i.Mnemo
}
