package insts

// Base RV32 opcodes (bits [6:0] of a 32-bit encoding).
const (
	opLoad   = 0x03
	opAUIPC  = 0x17
	opStore  = 0x23
	opOp     = 0x33
	opLUI    = 0x37
	opBranch = 0x63
	opJALR   = 0x67
	opJAL    = 0x6F
)

// Decoder classifies RV32IMC instruction words.
type Decoder struct{}

// NewDecoder creates a new classifying decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode classifies an instruction word. It never fails: encodings the
// model has no special handling for fall through as plain arithmetic,
// which is exactly how the timing model treats them.
func (d *Decoder) Decode(word uint32) *Instruction {
	if word&0x3 != 0x3 {
		return d.decodeCompressed(word)
	}

	inst := &Instruction{
		Word: word,
		Size: 4,
	}

	// Operand fields are taken per encoding format only: the same bits
	// carry immediates in other formats and must not surface as register
	// operands.
	rd := Reg((word >> 7) & 0x1F)
	rs1 := Reg((word >> 15) & 0x1F)
	rs2 := Reg((word >> 20) & 0x1F)

	switch word & 0x7F {
	case opBranch: // B-type, no destination
		inst.Branch = true
		inst.Rs1 = rs1
		inst.Rs2 = rs2
	case opJAL: // J-type, no sources
		inst.Jump = true
		inst.Rd = rd
		inst.Call = rd.IsLink()
	case opJALR: // I-type
		inst.Jump = true
		inst.RegJump = true
		inst.Rd = rd
		inst.Rs1 = rs1
		inst.Call = rd.IsLink()
	case opLoad: // I-type
		inst.Load = true
		inst.Rd = rd
		inst.Rs1 = rs1
	case opStore: // S-type, no destination
		inst.Store = true
		inst.Rs1 = rs1
		inst.Rs2 = rs2
	case opOp: // R-type
		inst.MulDiv = (word>>25)&0x7F == 1
		inst.Rd = rd
		inst.Rs1 = rs1
		inst.Rs2 = rs2
	case opLUI, opAUIPC: // U-type, no sources
		inst.Rd = rd
	default:
		// Remaining encodings the model times as plain arithmetic
		// (op-imm, CSR, fences) share the I-type operand shape.
		inst.Rd = rd
		inst.Rs1 = rs1
	}

	inst.Ret = isRet(inst)
	return inst
}

// decodeCompressed classifies a 16-bit RVC encoding. Quadrant and funct3
// select the form; only the forms the model distinguishes are named.
func (d *Decoder) decodeCompressed(word uint32) *Instruction {
	inst := &Instruction{
		Word:       word & 0xFFFF,
		Size:       2,
		Compressed: true,
	}

	quadrant := word & 0x3
	funct3 := (word >> 13) & 0x7

	switch quadrant {
	case 0x0:
		switch funct3 {
		case 0b010: // C.LW
			inst.Load = true
			inst.Rd = Reg(8 + (word>>2)&0x7)
			inst.Rs1 = Reg(8 + (word>>7)&0x7)
		case 0b110: // C.SW
			inst.Store = true
			inst.Rs1 = Reg(8 + (word>>7)&0x7)
			inst.Rs2 = Reg(8 + (word>>2)&0x7)
		}
	case 0x1:
		switch funct3 {
		case 0b001: // C.JAL (RV32)
			inst.Jump = true
			inst.Call = true
			inst.Rd = RegRA
		case 0b101: // C.J
			inst.Jump = true
		case 0b110, 0b111: // C.BEQZ, C.BNEZ
			inst.Branch = true
			inst.Rs1 = Reg(8 + (word>>7)&0x7)
		}
	case 0x2:
		rs1 := Reg((word >> 7) & 0x1F)
		rs2 := Reg((word >> 2) & 0x1F)
		switch funct3 {
		case 0b010: // C.LWSP
			inst.Load = true
			inst.Rd = rs1
			inst.Rs1 = RegSP
		case 0b110: // C.SWSP
			inst.Store = true
			inst.Rs1 = RegSP
			inst.Rs2 = rs2
		case 0b100:
			// C.JR / C.JALR / C.MV / C.ADD share this slot; only the
			// register-jump forms matter here.
			if rs2 == RegZero && rs1 != RegZero {
				inst.Jump = true
				inst.RegJump = true
				inst.Rs1 = rs1
				if word&(1<<12) != 0 { // C.JALR
					inst.Call = true
					inst.Rd = RegRA
				}
			} else {
				// C.MV copies rs2 into rd; C.ADD also reads rd.
				inst.Rd = rs1
				inst.Rs2 = rs2
				if word&(1<<12) != 0 {
					inst.Rs1 = rs1
				}
			}
		}
	}

	inst.Ret = isRet(inst)
	return inst
}

// isRet applies the CVA6 return condition: an indirect jump through a
// link register, with the compact forms always qualifying and the 32-bit
// form excluded when it aliases a call (rs1 == rd). There is no immediate
// or rd-discard check, matching the hardware.
func isRet(inst *Instruction) bool {
	return inst.RegJump &&
		inst.Rs1.IsLink() &&
		(inst.Compressed || inst.Rs1 != inst.Rd)
}
