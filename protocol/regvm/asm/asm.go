/*
Package asm provides an assembler and disassembler for regvm programs.

The source language is line-oriented: one instruction per line, the
mnemonic followed by its operands. Register operands are written rNN,
or by role name for the reserved registers ($zero, $one, $fp, $is,
$cgas, $ret). Immediates are decimal. A # starts a comment running to
the end of the line.

	ji 9
	gtf r16 $zero 1
	addi r19 r16 32
	ret $one
*/
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/regnet/regvm/protocol/regvm/op"
)

// operand shapes per opcode
type shape int

const (
	shapeNone shape = iota
	shapeReg
	shapeRegReg
	shapeRegRegReg
	shapeRegRegRegReg
	shapeRegRegImm
	shapeImm24
)

var shapes = map[op.Opcode]shape{
	op.OpNoop: shapeNone,
	op.OpRet:  shapeReg,
	op.OpJI:   shapeImm24,
	op.OpJNZF: shapeRegRegImm,
	op.OpAddi: shapeRegRegImm,
	op.OpMove: shapeRegReg,
	op.OpLW:   shapeRegRegImm,
	op.OpGTF:  shapeRegRegImm,
	op.OpBal:  shapeRegRegReg,
	op.OpTRO:  shapeRegRegRegReg,
	op.OpCall: shapeRegRegRegReg,
}

var regNames = map[op.RegID]string{
	op.RegZero: "$zero",
	op.RegOne:  "$one",
	op.RegFP:   "$fp",
	op.RegIS:   "$is",
	op.RegCGAS: "$cgas",
	op.RegRet:  "$ret",
}

var regCodes = make(map[string]op.RegID)

func init() {
	for r, n := range regNames {
		regCodes[n] = r
	}
}

// Assemble converts a source program to regvm bytecode.
func Assemble(src string) ([]byte, error) {
	var insns []op.Instruction
	for lineno, line := range strings.Split(src, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		insn, err := assembleLine(fields)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineno+1)
		}
		insns = append(insns, insn)
	}
	return op.Encode(insns...), nil
}

func assembleLine(fields []string) (op.Instruction, error) {
	opcode, ok := op.Code(fields[0])
	if !ok {
		return 0, errors.Errorf("unknown mnemonic %q", fields[0])
	}
	operands := fields[1:]

	var (
		regs []op.RegID
		imm  uint64
	)
	wantRegs, wantImm := arity(shapes[opcode])
	if len(operands) != wantRegs+wantImm {
		return 0, errors.Errorf("%s wants %d operands, got %d", fields[0], wantRegs+wantImm, len(operands))
	}
	for _, o := range operands[:wantRegs] {
		r, err := parseReg(o)
		if err != nil {
			return 0, err
		}
		regs = append(regs, r)
	}
	if wantImm > 0 {
		v, err := strconv.ParseUint(operands[wantRegs], 10, 24)
		if err != nil {
			return 0, errors.Wrapf(err, "immediate %q", operands[wantRegs])
		}
		imm = v
	}

	switch shapes[opcode] {
	case shapeImm24:
		if opcode == op.OpJI {
			return op.JI(uint32(imm)), nil
		}
	case shapeRegRegImm:
		if imm > 1<<12-1 {
			return 0, errors.Errorf("immediate %d does not fit in 12 bits", imm)
		}
		switch opcode {
		case op.OpJNZF:
			return op.JNZF(regs[0], regs[1], uint16(imm)), nil
		case op.OpAddi:
			return op.Addi(regs[0], regs[1], uint16(imm)), nil
		case op.OpLW:
			return op.LW(regs[0], regs[1], uint16(imm)), nil
		case op.OpGTF:
			return op.GTF(regs[0], regs[1], uint16(imm)), nil
		}
	case shapeNone:
		return op.Noop(), nil
	case shapeReg:
		return op.Ret(regs[0]), nil
	case shapeRegReg:
		return op.Move(regs[0], regs[1]), nil
	case shapeRegRegReg:
		return op.Bal(regs[0], regs[1], regs[2]), nil
	case shapeRegRegRegReg:
		switch opcode {
		case op.OpTRO:
			return op.TRO(regs[0], regs[1], regs[2], regs[3]), nil
		case op.OpCall:
			return op.Call(regs[0], regs[1], regs[2], regs[3]), nil
		}
	}
	return 0, errors.Errorf("unhandled mnemonic %q", fields[0])
}

func arity(s shape) (regs, imms int) {
	switch s {
	case shapeReg:
		return 1, 0
	case shapeRegReg:
		return 2, 0
	case shapeRegRegReg:
		return 3, 0
	case shapeRegRegRegReg:
		return 4, 0
	case shapeRegRegImm:
		return 2, 1
	case shapeImm24:
		return 0, 1
	}
	return 0, 0
}

func parseReg(s string) (op.RegID, error) {
	if r, ok := regCodes[s]; ok {
		return r, nil
	}
	if !strings.HasPrefix(s, "r") {
		return 0, errors.Errorf("bad register %q", s)
	}
	n, err := strconv.ParseUint(s[1:], 10, 8)
	if err != nil || n >= op.NumRegs {
		return 0, errors.Errorf("bad register %q", s)
	}
	return op.RegID(n), nil
}

// Disassemble converts regvm bytecode to its source form, one
// instruction per line.
func Disassemble(prog []byte) (string, error) {
	insns, err := op.DecodeAll(prog)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, insn := range insns {
		line, err := disassembleInsn(insn)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func disassembleInsn(insn op.Instruction) (string, error) {
	name := op.Name(insn.Opcode())
	if name == "" {
		return "", errors.Errorf("unassigned opcode %#02x", byte(insn.Opcode()))
	}
	parts := []string{name}
	switch shapes[insn.Opcode()] {
	case shapeReg:
		parts = append(parts, regName(insn.RA()))
	case shapeRegReg:
		parts = append(parts, regName(insn.RA()), regName(insn.RB()))
	case shapeRegRegReg:
		parts = append(parts, regName(insn.RA()), regName(insn.RB()), regName(insn.RC()))
	case shapeRegRegRegReg:
		parts = append(parts, regName(insn.RA()), regName(insn.RB()), regName(insn.RC()), regName(insn.RD()))
	case shapeRegRegImm:
		parts = append(parts, regName(insn.RA()), regName(insn.RB()), strconv.FormatUint(uint64(insn.Imm12()), 10))
	case shapeImm24:
		parts = append(parts, strconv.FormatUint(uint64(insn.Imm24()), 10))
	}
	return strings.Join(parts, " "), nil
}

func regName(r op.RegID) string {
	if n, ok := regNames[r]; ok {
		return n
	}
	return fmt.Sprintf("r%d", r)
}
