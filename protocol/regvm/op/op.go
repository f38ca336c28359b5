// Package op defines the regvm instruction set: numeric opcodes,
// register ids, and the fixed-width encoding of instructions.
//
// Every instruction is exactly one 4-byte word. The top byte holds the
// opcode; the remaining 24 bits hold either four 6-bit register fields,
// two register fields and a 12-bit immediate, or a single 24-bit
// immediate, depending on the opcode.
package op

import (
	"encoding/binary"
	"fmt"
)

// InstructionLen is the width of one encoded instruction, in bytes.
const InstructionLen = 4

// Opcode selects the operation an instruction performs.
type Opcode byte

// Names for regvm opcodes.
// (These symbols use Go-style capitalization. The string mnemonics
// handled by functions Code and Name are all-lowercase.)
const (
	OpNoop Opcode = 0x00
	OpRet  Opcode = 0x01

	OpJI   Opcode = 0x10
	OpJNZF Opcode = 0x11

	OpAddi Opcode = 0x20
	OpMove Opcode = 0x21
	OpLW   Opcode = 0x22

	OpGTF  Opcode = 0x30
	OpBal  Opcode = 0x31
	OpTRO  Opcode = 0x32
	OpCall Opcode = 0x33
)

// RegID selects one of the machine's 64 registers.
type RegID uint8

// Reserved register roles. Registers below FirstWritable are maintained
// by the VM; instructions may read them but writes to them fault.
const (
	// RegZero always holds 0.
	RegZero RegID = 0x00

	// RegOne always holds 1.
	RegOne RegID = 0x01

	// RegFP holds the address of the current call frame. The frame
	// begins with the running contract's id; outside of a call it is
	// the zero page.
	RegFP RegID = 0x02

	// RegIS holds the address of the start of the currently executing
	// code.
	RegIS RegID = 0x03

	// RegCGAS holds the gas remaining in the current call.
	RegCGAS RegID = 0x04

	// RegRet holds the return value of the most recent call.
	RegRet RegID = 0x05

	// FirstWritable is the lowest register id that instructions may
	// write to.
	FirstWritable RegID = 0x10

	// NumRegs is the size of the register file.
	NumRegs = 0x40
)

// IsReserved tells whether writes to register r fault.
func IsReserved(r RegID) bool {
	return r < FirstWritable
}

// Transaction fields readable with the gtf instruction.
const (
	FieldScriptData    uint16 = 0x01
	FieldScriptDataLen uint16 = 0x02
)

// Instruction is one encoded machine word.
type Instruction uint32

const (
	maxImm12 = 1<<12 - 1
	maxImm24 = 1<<24 - 1
)

// Noop does nothing.
func Noop() Instruction { return packReg(OpNoop, 0, 0, 0, 0) }

// Ret returns from the current call with the value in ra, or halts the
// machine with that value if there is no enclosing call.
func Ret(ra RegID) Instruction { return packReg(OpRet, ra, 0, 0, 0) }

// JI jumps to the target-th instruction word, counted from the start of
// the currently executing code.
func JI(target uint32) Instruction { return packImm24(OpJI, target) }

// JNZF jumps delta+1 instruction words forward from the jnzf
// instruction when ra != rb (skipping delta instructions), and falls
// through to the next instruction otherwise.
func JNZF(ra, rb RegID, delta uint16) Instruction { return packImm12(OpJNZF, ra, rb, delta) }

// Addi sets ra = rb + imm.
func Addi(ra, rb RegID, imm uint16) Instruction { return packImm12(OpAddi, ra, rb, imm) }

// Move copies rb into ra.
func Move(ra, rb RegID) Instruction { return packReg(OpMove, ra, rb, 0, 0) }

// LW loads the 8-byte little-endian word at memory address rb + imm*8
// into ra.
func LW(ra, rb RegID, imm uint16) Instruction { return packImm12(OpLW, ra, rb, imm) }

// GTF loads the transaction field named by imm into ra. rb supplies the
// field argument for indexed fields and is ignored otherwise.
func GTF(ra, rb RegID, field uint16) Instruction { return packImm12(OpGTF, ra, rb, field) }

// Bal sets ra to the balance of the asset whose id is at memory address
// rb, held by the contract whose id is at memory address rc.
func Bal(ra, rb, rc RegID) Instruction { return packReg(OpBal, ra, rb, rc, 0) }

// TRO transfers rc units of the asset whose id is at memory address rd
// from the current contract to the variable output at index rb,
// crediting the address at memory address ra.
func TRO(ra, rb, rc, rd RegID) Instruction { return packReg(OpTRO, ra, rb, rc, rd) }

// Call calls the contract described by the call descriptor at memory
// address ra (contract id followed by two 8-byte parameters),
// forwarding rb units of the asset whose id is at memory address rc and
// rd gas.
func Call(ra, rb, rc, rd RegID) Instruction { return packReg(OpCall, ra, rb, rc, rd) }

func packReg(o Opcode, ra, rb, rc, rd RegID) Instruction {
	checkReg(ra)
	checkReg(rb)
	checkReg(rc)
	checkReg(rd)
	return Instruction(uint32(o)<<24 | uint32(ra)<<18 | uint32(rb)<<12 | uint32(rc)<<6 | uint32(rd))
}

func packImm12(o Opcode, ra, rb RegID, imm uint16) Instruction {
	checkReg(ra)
	checkReg(rb)
	if imm > maxImm12 {
		panic(fmt.Errorf("immediate %d does not fit in 12 bits", imm))
	}
	return Instruction(uint32(o)<<24 | uint32(ra)<<18 | uint32(rb)<<12 | uint32(imm))
}

func packImm24(o Opcode, imm uint32) Instruction {
	if imm > maxImm24 {
		panic(fmt.Errorf("immediate %d does not fit in 24 bits", imm))
	}
	return Instruction(uint32(o)<<24 | imm)
}

func checkReg(r RegID) {
	if r >= NumRegs {
		panic(fmt.Errorf("register id %d out of range", r))
	}
}

// Opcode returns the instruction's opcode.
func (i Instruction) Opcode() Opcode { return Opcode(i >> 24) }

// RA returns the instruction's first register field.
func (i Instruction) RA() RegID { return RegID(i >> 18 & 0x3f) }

// RB returns the instruction's second register field.
func (i Instruction) RB() RegID { return RegID(i >> 12 & 0x3f) }

// RC returns the instruction's third register field.
func (i Instruction) RC() RegID { return RegID(i >> 6 & 0x3f) }

// RD returns the instruction's fourth register field.
func (i Instruction) RD() RegID { return RegID(i & 0x3f) }

// Imm12 returns the instruction's 12-bit immediate field.
func (i Instruction) Imm12() uint16 { return uint16(i & maxImm12) }

// Imm24 returns the instruction's 24-bit immediate field.
func (i Instruction) Imm24() uint32 { return uint32(i & maxImm24) }

// Bytes returns the instruction's 4-byte encoding.
func (i Instruction) Bytes() []byte {
	var b [InstructionLen]byte
	binary.LittleEndian.PutUint32(b[:], uint32(i))
	return b[:]
}

// Encode concatenates the encodings of insns into a program.
func Encode(insns ...Instruction) []byte {
	b := make([]byte, 0, len(insns)*InstructionLen)
	for _, i := range insns {
		b = append(b, i.Bytes()...)
	}
	return b
}

// Decode decodes the first instruction in prog.
func Decode(prog []byte) (Instruction, error) {
	if len(prog) < InstructionLen {
		return 0, fmt.Errorf("program truncated: %d of %d bytes available", len(prog), InstructionLen)
	}
	return Instruction(binary.LittleEndian.Uint32(prog)), nil
}

// DecodeAll decodes prog as a sequence of instructions. It fails if
// len(prog) is not a whole number of instruction words.
func DecodeAll(prog []byte) ([]Instruction, error) {
	if len(prog)%InstructionLen != 0 {
		return nil, fmt.Errorf("program length %d is not a multiple of %d", len(prog), InstructionLen)
	}
	insns := make([]Instruction, 0, len(prog)/InstructionLen)
	for off := 0; off < len(prog); off += InstructionLen {
		i, err := Decode(prog[off:])
		if err != nil {
			return nil, err
		}
		insns = append(insns, i)
	}
	return insns, nil
}

var name = map[Opcode]string{
	OpNoop: "noop",
	OpRet:  "ret",
	OpJI:   "ji",
	OpJNZF: "jnzf",
	OpAddi: "addi",
	OpMove: "move",
	OpLW:   "lw",
	OpGTF:  "gtf",
	OpBal:  "bal",
	OpTRO:  "tro",
	OpCall: "call",
}

var code = make(map[string]Opcode)

func init() {
	for o, n := range name {
		code[n] = o
	}
}

// Name returns the mnemonic of opcode, or the empty string if opcode is
// unassigned.
func Name(opcode Opcode) string {
	return name[opcode]
}

// Code returns the opcode for the given mnemonic, or false if the
// mnemonic is unknown.
func Code(mnemonic string) (Opcode, bool) {
	o, ok := code[mnemonic]
	return o, ok
}
