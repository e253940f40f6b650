package pipeline

import (
	"github.com/riscvperf/cva6perf/insts"
)

// RetStack models the speculative return address stack. Calls push
// their sequential next address, returns pop. The popped value stays in
// a one-slot readback register until the next pop, which is how the
// frontend validates a return's predicted target.
//
// One configured slot is shadowed by the hardware, so a stack of depth
// N holds N-1 addresses. That quirk is reproduced on purpose.
type RetStack struct {
	depth       int // effective capacity, configured depth minus one
	stack       []uint32
	lastDropped uint32
	hasDropped  bool
}

// DefaultRASDepth is the configured hardware stack depth.
const DefaultRASDepth = 2

// NewRetStack creates a return address stack with the given configured
// depth, defaulting when the value is not positive.
func NewRetStack(depth int) *RetStack {
	if depth <= 0 {
		depth = DefaultRASDepth
	}
	return &RetStack{depth: depth - 1}
}

// Push appends a return address, evicting the oldest entry when the
// effective depth is exceeded.
func (r *RetStack) Push(addr uint32) {
	r.stack = append(r.stack, addr)
	if len(r.stack) > r.depth {
		r.stack = r.stack[1:]
	}
}

// Drop pops the top of the stack into the readback register. Dropping
// from an empty stack clears the register.
func (r *RetStack) Drop() {
	if len(r.stack) == 0 {
		r.hasDropped = false
		return
	}
	r.lastDropped = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.hasDropped = true
}

// Read returns the readback register without consuming it. The value is
// stable until the next Drop.
func (r *RetStack) Read() (uint32, bool) {
	return r.lastDropped, r.hasDropped
}

// Len returns the number of live stack entries.
func (r *RetStack) Len() int {
	return len(r.stack)
}

// Resolve updates the stack for a control-flow instruction. The return
// and call checks are independent: a compact JALR through a link
// register both drops and pushes.
func (r *RetStack) Resolve(inst *insts.Instruction) {
	if inst.Ret {
		r.Drop()
	}
	if inst.Call {
		r.Push(inst.NextAddr())
	}
}
