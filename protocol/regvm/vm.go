/*
Package regvm implements a small register machine for executing
transaction scripts and the contracts they call.

Instructions are fixed-width 4-byte words (see the op package). The
machine has 64 registers; the low register ids are reserved roles
maintained by the VM (constant zero and one, the frame pointer, the
instruction start, the remaining call gas) and writes to them fault.
Memory is a flat byte array laid out at startup: a zero page, the
transaction's script-data region, then the script itself. Calls append
a frame (the callee's contract id followed by two caller-supplied
parameters) and the callee's code.

Faults propagate internally as panics and are recovered at the Validate
boundary, where they become errors carrying a short receipt reason code.
*/
package regvm

import (
	"encoding/binary"
	"math/bits"

	"github.com/regnet/regvm/protocol/bc"
	"github.com/regnet/regvm/protocol/regvm/op"
)

// MaxMem is the machine's memory ceiling. Growth past it faults.
const MaxMem = 1 << 22

// zeroPageLen reserves the start of memory so that the frame pointer of
// the outermost (script) context dereferences to an all-zero contract
// id.
const zeroPageLen = 32

// State is the ledger surface the machine reads and writes during
// execution. Implementations need not be safe for concurrent use; the
// chain layer serializes execution.
type State interface {
	// ContractCode returns the bytecode of a deployed contract.
	ContractCode(id bc.ContractID) ([]byte, bool)

	// Balance returns a contract's balance of an asset. Unknown
	// contracts have zero balances.
	Balance(id bc.ContractID, asset bc.AssetID) uint64

	// CreditContract adds amount to a contract's balance of an asset.
	CreditContract(id bc.ContractID, asset bc.AssetID, amount uint64) error

	// DebitContract removes amount from a contract's balance of an
	// asset. It fails if the balance is insufficient.
	DebitContract(id bc.ContractID, asset bc.AssetID, amount uint64) error
}

// A frame is a suspended caller: where to resume, and the gas the
// caller withheld from the callee.
type frame struct {
	pc, is, fp uint64
	gas        uint64
}

// VM is a register machine executing one transaction's script.
type VM struct {
	// Config/setup fields
	beforeStep []func(*VM)
	afterStep  []func(*VM)

	// Runtime fields
	tx       *bc.Tx
	state    State
	mem      []byte
	regs     [op.NumRegs]uint64
	pc       uint64
	is       uint64
	fp       uint64
	gas      uint64
	runstack []frame
	halted   bool
	insn     op.Instruction

	scriptDataOff uint64

	// Results

	// Ret is the return value of the outermost ret instruction. The
	// convention is 1 for success.
	Ret uint64

	// GasUsed is the gas consumed, whether or not execution succeeded.
	GasUsed uint64

	// Outputs is the transaction's output list with variable outputs
	// resolved by execution. It is only meaningful when Validate
	// returned no error.
	Outputs []bc.Output
}

// Validate is the main entrypoint to regvm. It executes tx's script
// against st, charging gas per instruction up to tx.GasLimit. Runtime
// information can be inspected via hooks, which are supplied via the
// Option arguments.
//
// Validate mutates st through the State interface; run it against a
// staged copy and commit only on success.
func Validate(tx *bc.Tx, st State, o ...Option) (*VM, error) {
	vm := &VM{
		tx:    tx,
		state: st,
		gas:   tx.GasLimit,
	}
	for _, o := range o {
		o.apply(vm)
	}
	err := vm.validate()
	return vm, err
}

func (vm *VM) validate() (err error) {
	defer func() {
		vm.GasUsed = vm.tx.GasLimit - vm.remainingGas()
	}()
	defer vm.recoverError(&err)

	vm.layout()
	vm.Outputs = append([]bc.Output{}, vm.tx.Outputs...)
	for !vm.halted {
		vm.step()
	}
	return nil
}

// layout places the zero page, the script-data region, and the script
// into memory and points the machine at the script's first word.
func (vm *VM) layout() {
	vm.mem = make([]byte, zeroPageLen)
	vm.scriptDataOff = vm.grow(vm.tx.ScriptData)
	vm.is = vm.loadCode(vm.tx.Script)
	vm.pc = vm.is
}

func (vm *VM) step() {
	if vm.pc+op.InstructionLen > uint64(len(vm.mem)) {
		fault(ErrMemoryOverflow)
	}
	insn, err := op.Decode(vm.mem[vm.pc:])
	if err != nil {
		fault(ErrMemoryOverflow)
	}
	vm.insn = insn
	vm.runHooks(vm.beforeStep)
	vm.charge(1)
	vm.pc += op.InstructionLen
	f, ok := opFuncs[insn.Opcode()]
	if !ok {
		fault(ErrInvalidOpcode)
	}
	f(vm, insn)
	vm.runHooks(vm.afterStep)
}

func (vm *VM) charge(n uint64) {
	if vm.gas < n {
		vm.gas = 0
		fault(ErrOutOfGas)
	}
	vm.gas -= n
}

func (vm *VM) remainingGas() uint64 {
	g := vm.gas
	for _, f := range vm.runstack {
		g += f.gas
	}
	return g
}

func (vm *VM) runHooks(hooks []func(*VM)) {
	for _, h := range hooks {
		h(vm)
	}
}

// register access

func (vm *VM) readReg(r op.RegID) uint64 {
	switch r {
	case op.RegZero:
		return 0
	case op.RegOne:
		return 1
	case op.RegFP:
		return vm.fp
	case op.RegIS:
		return vm.is
	case op.RegCGAS:
		return vm.gas
	case op.RegRet:
		return vm.Ret
	}
	return vm.regs[r]
}

func (vm *VM) writeReg(r op.RegID, v uint64) {
	if op.IsReserved(r) {
		fault(ErrReservedRegister)
	}
	vm.regs[r] = v
}

// memory access

// grow appends b to memory and returns its offset.
func (vm *VM) grow(b []byte) uint64 {
	off := uint64(len(vm.mem))
	if off+uint64(len(b)) > MaxMem {
		fault(ErrMemoryOverflow)
	}
	vm.mem = append(vm.mem, b...)
	return off
}

// loadCode appends code to memory, checking that it is a whole number
// of instruction words, and returns its offset.
func (vm *VM) loadCode(code []byte) uint64 {
	if len(code)%op.InstructionLen != 0 {
		fault(ErrInvalidProgram)
	}
	return vm.grow(code)
}

func (vm *VM) read(addr, n uint64) []byte {
	end, carry := bits.Add64(addr, n, 0)
	if carry != 0 || end > uint64(len(vm.mem)) {
		fault(ErrMemoryOverflow)
	}
	return vm.mem[addr:end]
}

func (vm *VM) readWord(addr uint64) uint64 {
	return binary.LittleEndian.Uint64(vm.read(addr, bc.WordLen))
}

func (vm *VM) readAddress(addr uint64) bc.Address {
	return bc.AddressFromBytes(vm.read(addr, bc.AddressLen))
}

func (vm *VM) readAssetID(addr uint64) bc.AssetID {
	return bc.AssetIDFromBytes(vm.read(addr, bc.AssetIDLen))
}

func (vm *VM) readContractID(addr uint64) bc.ContractID {
	return bc.ContractIDFromBytes(vm.read(addr, bc.ContractIDLen))
}

// contractID is the id of the contract the machine is currently
// executing inside, recovered from the current call frame. Outside of a
// call it is the zero id.
func (vm *VM) contractID() bc.ContractID {
	return vm.readContractID(vm.fp)
}

func (vm *VM) checkInput(id bc.ContractID) {
	for _, in := range vm.tx.Inputs {
		if in.ContractID == id {
			return
		}
	}
	fault(ErrContractNotInInputs)
}

// Inspection accessors for hooks.

// PC returns the address of the instruction being executed.
func (vm *VM) PC() uint64 { return vm.pc }

// Gas returns the gas remaining in the current call.
func (vm *VM) Gas() uint64 { return vm.gas }

// Instruction returns the instruction being executed.
func (vm *VM) Instruction() op.Instruction { return vm.insn }

// Reg returns the current value of a register.
func (vm *VM) Reg(r op.RegID) uint64 { return vm.readReg(r) }
