package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/riscvperf/cva6perf/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("sizes", func() {
		It("should report 4 bytes for uncompressed encodings", func() {
			// addi a0, zero, 0
			inst := decoder.Decode(0x00000513)
			Expect(inst.Size).To(Equal(uint8(4)))
			Expect(inst.Compressed).To(BeFalse())
		})

		It("should report 2 bytes for compressed encodings", func() {
			// c.jr ra
			inst := decoder.Decode(0x8082)
			Expect(inst.Size).To(Equal(uint8(2)))
			Expect(inst.Compressed).To(BeTrue())
		})
	})

	Describe("unit classification", func() {
		It("should classify conditional branches", func() {
			// beq a0, a1, 8
			inst := decoder.Decode(0x00B50463)
			Expect(inst.Branch).To(BeTrue())
			Expect(inst.Jump).To(BeFalse())
		})

		It("should classify loads", func() {
			// lw a0, 0(a1)
			inst := decoder.Decode(0x0005A503)
			Expect(inst.Load).To(BeTrue())
		})

		It("should classify stores", func() {
			// sw a0, 0(a1)
			inst := decoder.Decode(0x00A5A023)
			Expect(inst.Store).To(BeTrue())
		})

		It("should classify multiplies", func() {
			// mul a0, a1, a2
			inst := decoder.Decode(0x02C58533)
			Expect(inst.MulDiv).To(BeTrue())
		})

		It("should not classify plain register arithmetic as multiply", func() {
			// add a0, a1, a2
			inst := decoder.Decode(0x00C58533)
			Expect(inst.MulDiv).To(BeFalse())
		})

		It("should classify compressed loads and stores", func() {
			// c.lw / c.sw
			Expect(decoder.Decode(0x4388).Load).To(BeTrue())
			Expect(decoder.Decode(0xC388).Store).To(BeTrue())
		})
	})

	Describe("return detection", func() {
		It("should detect ret (jalr zero, ra)", func() {
			inst := decoder.Decode(0x00008067)
			Expect(inst.RegJump).To(BeTrue())
			Expect(inst.Ret).To(BeTrue())
			Expect(inst.Call).To(BeFalse())
		})

		It("should detect a return through the alternate link register", func() {
			// jalr zero, t0
			inst := decoder.Decode(0x00028067)
			Expect(inst.Ret).To(BeTrue())
		})

		It("should not treat jalr ra, ra as a return", func() {
			// Source and destination alias: this is a call shape.
			inst := decoder.Decode(0x000080E7)
			Expect(inst.Ret).To(BeFalse())
			Expect(inst.Call).To(BeTrue())
		})

		It("should detect c.jr ra as a return", func() {
			inst := decoder.Decode(0x8082)
			Expect(inst.Ret).To(BeTrue())
		})

		It("should detect c.jalr ra as both call and return", func() {
			inst := decoder.Decode(0x9082)
			Expect(inst.Ret).To(BeTrue())
			Expect(inst.Call).To(BeTrue())
		})
	})

	Describe("call detection", func() {
		It("should detect jal ra as a call", func() {
			// jal ra, 8
			inst := decoder.Decode(0x008000EF)
			Expect(inst.Call).To(BeTrue())
			Expect(inst.Jump).To(BeTrue())
			Expect(inst.RegJump).To(BeFalse())
		})

		It("should not treat jal zero (plain jump) as a call", func() {
			// j 8
			inst := decoder.Decode(0x0080006F)
			Expect(inst.Call).To(BeFalse())
			Expect(inst.Jump).To(BeTrue())
		})

		It("should not treat c.mv as a jump", func() {
			// c.mv a0, a1
			inst := decoder.Decode(0x852E)
			Expect(inst.Jump).To(BeFalse())
			Expect(inst.RegJump).To(BeFalse())
		})
	})

	Describe("operand fields", func() {
		It("should not surface J-type immediate bits as sources", func() {
			// jal ra, 8: bits [24:20] hold immediate payload, not rs2.
			inst := decoder.Decode(0x008000EF)
			Expect(inst.Rd).To(Equal(insts.RegRA))
			Expect(inst.Rs1).To(Equal(insts.RegZero))
			Expect(inst.Rs2).To(Equal(insts.RegZero))
		})

		It("should not surface I-type immediate bits as rs2", func() {
			// addi a1, a0, 1: an immediate of 1 aliases x1 in the rs2 bits.
			addi := decoder.Decode(0x00150593)
			Expect(addi.Rs1).To(Equal(insts.Reg(10)))
			Expect(addi.Rs2).To(Equal(insts.RegZero))

			// lw a0, 0(a1): the offset occupies the rs2 bits.
			load := decoder.Decode(0x0005A503)
			Expect(load.Rs1).To(Equal(insts.Reg(11)))
			Expect(load.Rs2).To(Equal(insts.RegZero))
		})

		It("should give U-type encodings no sources", func() {
			// lui a0, 0x12345
			inst := decoder.Decode(0x12345537)
			Expect(inst.Rd).To(Equal(insts.Reg(10)))
			Expect(inst.Rs1).To(Equal(insts.RegZero))
			Expect(inst.Rs2).To(Equal(insts.RegZero))
		})

		It("should give branches and stores no destination", func() {
			// beq a0, a1, 8: rd bits carry immediate payload.
			branch := decoder.Decode(0x00B50463)
			Expect(branch.Rd).To(Equal(insts.RegZero))
			Expect(branch.Rs1).To(Equal(insts.Reg(10)))
			Expect(branch.Rs2).To(Equal(insts.Reg(11)))

			// sw a0, 0(a1)
			store := decoder.Decode(0x00A5A023)
			Expect(store.Rd).To(Equal(insts.RegZero))
			Expect(store.Rs1).To(Equal(insts.Reg(11)))
			Expect(store.Rs2).To(Equal(insts.Reg(10)))
		})

		It("should read only rs2 for c.mv but both operands for c.add", func() {
			mv := decoder.Decode(0x852E) // c.mv a0, a1
			Expect(mv.Rd).To(Equal(insts.Reg(10)))
			Expect(mv.Rs1).To(Equal(insts.RegZero))
			Expect(mv.Rs2).To(Equal(insts.Reg(11)))

			add := decoder.Decode(0x952E) // c.add a0, a1
			Expect(add.Rd).To(Equal(insts.Reg(10)))
			Expect(add.Rs1).To(Equal(insts.Reg(10)))
			Expect(add.Rs2).To(Equal(insts.Reg(11)))
		})
	})

	Describe("trace annotations", func() {
		It("should compute the sequential next address", func() {
			inst := decoder.Decode(0x00000513)
			inst.Addr = 0x80000000
			Expect(inst.NextAddr()).To(Equal(uint32(0x80000004)))
		})

		It("should derive taken from the trace successor", func() {
			inst := decoder.Decode(0x00B50463)
			inst.Addr = 0x80000000
			inst.TraceNext = 0x80000010
			Expect(inst.Taken()).To(BeTrue())

			inst.TraceNext = 0x80000004
			Expect(inst.Taken()).To(BeFalse())
		})

		It("should report unknown outcomes as not taken", func() {
			inst := decoder.Decode(0x00B50463)
			inst.Addr = 0x80000000
			Expect(inst.Taken()).To(BeFalse())
		})
	})
})
