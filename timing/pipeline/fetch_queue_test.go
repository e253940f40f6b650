package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/riscvperf/cva6perf/insts"
	"github.com/riscvperf/cva6perf/timing/pipeline"
)

// wordAt builds a 4-byte ALU instruction at addr.
func wordAt(addr uint32) *insts.Instruction {
	inst := insts.NewDecoder().Decode(0x00000513) // addi a0, zero, 0
	inst.Addr = addr
	return inst
}

// halfAt builds a 2-byte ALU instruction at addr.
func halfAt(addr uint32) *insts.Instruction {
	inst := insts.NewDecoder().Decode(0x852E) // c.mv a0, a1
	inst.Addr = addr
	return inst
}

var _ = Describe("FetchQueue", func() {
	It("should round the fetch size up to a power of two, minimum 4", func() {
		Expect(pipeline.NewFetchQueue(0).FetchSize()).To(Equal(4))
		Expect(pipeline.NewFetchQueue(4).FetchSize()).To(Equal(4))
		Expect(pipeline.NewFetchQueue(5).FetchSize()).To(Equal(8))
		Expect(pipeline.NewFetchQueue(8).FetchSize()).To(Equal(8))
	})

	It("should hold a 4-byte instruction only once 4 bytes are buffered", func() {
		q := pipeline.NewFetchQueue(4)
		inst := wordAt(0x80000000)

		q.Flush()
		Expect(q.Has(inst)).To(BeFalse())

		q.Fetch()
		Expect(q.Len()).To(Equal(4))
		Expect(q.Has(inst)).To(BeTrue())
	})

	It("should make Has false for any instruction after a flush", func() {
		q := pipeline.NewFetchQueue(4)
		q.Fetch()
		q.Flush()

		Expect(q.Len()).To(BeZero())
		Expect(q.Has(wordAt(0x80000000))).To(BeFalse())
		Expect(q.Has(halfAt(0x80000002))).To(BeFalse())
	})

	It("should charge a crossword instruction the extra fetch word", func() {
		q := pipeline.NewFetchQueue(4)
		// Non-compressed at offset 2 straddles the fetch word.
		straddling := wordAt(0x80000002)

		// One word buffered: 4 - (4-2) = 2 < 4.
		Expect(q.Has(straddling)).To(BeFalse())

		q.Fetch()
		Expect(q.Has(straddling)).To(BeTrue())

		// A compressed instruction at the same offset fits in one word.
		q.Flush()
		q.Fetch()
		Expect(q.Has(halfAt(0x80000002))).To(BeTrue())
	})

	It("should consume sequential instructions without word-boundary loss", func() {
		q := pipeline.NewFetchQueue(4)
		q.Fetch()

		q.Remove(wordAt(0x80000000))
		Expect(q.Len()).To(Equal(4))

		q.Remove(wordAt(0x80000004))
		Expect(q.Len()).To(BeZero())
	})

	It("should truncate to the alignment of an unaligned successor", func() {
		q := pipeline.NewFetchQueue(4)
		q.Fetch()
		// 8 bytes buffered; a compressed instruction at an aligned
		// address leaves its word half-consumed.
		q.Remove(halfAt(0x80000000))
		Expect(q.Len()).To(Equal(6))
	})

	It("should pay one fetch slot on a jump after a fresh fetch", func() {
		q := pipeline.NewFetchQueue(4)
		Expect(q.Len()).To(Equal(4))

		q.Jump()
		Expect(q.Len()).To(BeZero())
	})

	It("should not pay the jump slot twice without a new fetch", func() {
		q := pipeline.NewFetchQueue(4)
		q.Fetch() // 8 buffered, fresh fetch pending

		q.Jump()
		Expect(q.Len()).To(Equal(4))

		q.Jump()
		Expect(q.Len()).To(Equal(4))
	})

	It("should apply the jump discard when removing a taken redirect", func() {
		q := pipeline.NewFetchQueue(4)
		q.Fetch() // 8 buffered

		jump := insts.NewDecoder().Decode(0x0080006F) // j 8
		jump.Addr = 0x80000000

		q.Remove(jump)
		// 8 - 4 (size) = 4, aligned successor, then the jump discard
		// drops the pending fetch word.
		Expect(q.Len()).To(BeZero())
	})

	It("should not discard for a not-taken branch", func() {
		q := pipeline.NewFetchQueue(4)
		q.Fetch()

		branch := insts.NewDecoder().Decode(0x00B50463) // beq a0, a1, 8
		branch.Addr = 0x80000000
		branch.TraceNext = 0x80000004 // fell through

		q.Remove(branch)
		Expect(q.Len()).To(Equal(4))
	})
})
