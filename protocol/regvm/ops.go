package regvm

import (
	"math/bits"

	"github.com/regnet/regvm/protocol/bc"
	"github.com/regnet/regvm/protocol/regvm/op"
)

var opFuncs = map[op.Opcode]func(*VM, op.Instruction){
	op.OpNoop: opNoop,
	op.OpRet:  opRet,
	op.OpJI:   opJI,
	op.OpJNZF: opJNZF,
	op.OpAddi: opAddi,
	op.OpMove: opMove,
	op.OpLW:   opLW,
	op.OpGTF:  opGTF,
	op.OpBal:  opBal,
	op.OpTRO:  opTRO,
	op.OpCall: opCall,
}

func opNoop(vm *VM, i op.Instruction) {}

func opRet(vm *VM, i op.Instruction) {
	vm.Ret = vm.readReg(i.RA())
	if len(vm.runstack) == 0 {
		vm.halted = true
		return
	}
	f := vm.runstack[len(vm.runstack)-1]
	vm.runstack = vm.runstack[:len(vm.runstack)-1]
	vm.pc = f.pc
	vm.is = f.is
	vm.fp = f.fp
	vm.gas += f.gas
}

func opJI(vm *VM, i op.Instruction) {
	vm.pc = vm.is + op.InstructionLen*uint64(i.Imm24())
}

func opJNZF(vm *VM, i op.Instruction) {
	if vm.readReg(i.RA()) != vm.readReg(i.RB()) {
		vm.pc += op.InstructionLen * uint64(i.Imm12())
	}
}

func opAddi(vm *VM, i op.Instruction) {
	sum, carry := bits.Add64(vm.readReg(i.RB()), uint64(i.Imm12()), 0)
	if carry != 0 {
		fault(ErrArithmeticOverflow)
	}
	vm.writeReg(i.RA(), sum)
}

func opMove(vm *VM, i op.Instruction) {
	vm.writeReg(i.RA(), vm.readReg(i.RB()))
}

func opLW(vm *VM, i op.Instruction) {
	addr, carry := bits.Add64(vm.readReg(i.RB()), bc.WordLen*uint64(i.Imm12()), 0)
	if carry != 0 {
		fault(ErrMemoryOverflow)
	}
	vm.writeReg(i.RA(), vm.readWord(addr))
}

func opGTF(vm *VM, i op.Instruction) {
	var v uint64
	switch i.Imm12() {
	case op.FieldScriptData:
		v = vm.scriptDataOff
	case op.FieldScriptDataLen:
		v = uint64(len(vm.tx.ScriptData))
	default:
		fault(ErrInvalidTransactionField)
	}
	vm.writeReg(i.RA(), v)
}

func opBal(vm *VM, i op.Instruction) {
	asset := vm.readAssetID(vm.readReg(i.RB()))
	id := vm.readContractID(vm.readReg(i.RC()))
	vm.checkInput(id)
	vm.writeReg(i.RA(), vm.state.Balance(id, asset))
}

func opTRO(vm *VM, i op.Instruction) {
	to := vm.readAddress(vm.readReg(i.RA()))
	idx := vm.readReg(i.RB())
	amount := vm.readReg(i.RC())
	asset := vm.readAssetID(vm.readReg(i.RD()))

	if amount == 0 {
		fault(ErrTransferZeroCoins)
	}
	if vm.fp == 0 {
		fault(ErrExpectedInternalContext)
	}
	if idx >= uint64(len(vm.Outputs)) || vm.Outputs[idx].Type != bc.OutputVariable || vm.Outputs[idx].Amount != 0 {
		fault(ErrOutputNotFound)
	}
	id := vm.contractID()
	if vm.state.Balance(id, asset) < amount {
		fault(ErrNotEnoughBalance)
	}
	if err := vm.state.DebitContract(id, asset, amount); err != nil {
		fault(ErrNotEnoughBalance)
	}
	vm.Outputs[idx] = bc.Output{
		Type:    bc.OutputVariable,
		To:      to,
		AssetID: asset,
		Amount:  amount,
	}
}

func opCall(vm *VM, i op.Instruction) {
	// Call descriptor: contract id followed by two caller-supplied
	// parameter words.
	desc := vm.read(vm.readReg(i.RA()), bc.ContractIDLen+2*bc.WordLen)
	id := bc.ContractIDFromBytes(desc[:bc.ContractIDLen])
	params := desc[bc.ContractIDLen:]

	code, ok := vm.state.ContractCode(id)
	if !ok {
		fault(ErrContractNotFound)
	}
	vm.checkInput(id)

	if amount := vm.readReg(i.RB()); amount > 0 {
		asset := vm.readAssetID(vm.readReg(i.RC()))
		if vm.fp == 0 {
			fault(ErrNotEnoughBalance)
		}
		caller := vm.contractID()
		if err := vm.state.DebitContract(caller, asset, amount); err != nil {
			fault(ErrNotEnoughBalance)
		}
		if err := vm.state.CreditContract(id, asset, amount); err != nil {
			fault(ErrNotEnoughBalance)
		}
	}

	forward := vm.readReg(i.RD())
	if forward > vm.gas {
		forward = vm.gas
	}
	vm.runstack = append(vm.runstack, frame{pc: vm.pc, is: vm.is, fp: vm.fp, gas: vm.gas - forward})

	// The frame begins with the callee's id so that dereferencing the
	// frame pointer yields the running contract's identity.
	frameParams := append([]byte{}, params...)
	vm.fp = vm.grow(id[:])
	vm.grow(frameParams)
	vm.is = vm.loadCode(code)
	vm.pc = vm.is
	vm.gas = forward
}
