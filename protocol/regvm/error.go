package regvm

import (
	"github.com/pkg/errors"
)

// Error is a fault raised by an executing program. Code is the short
// reason string reported in transaction receipts.
type Error struct {
	Code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

func errCode(code, msg string) *Error {
	return &Error{Code: code, msg: msg}
}

// Faults a running program can raise. The zero-balance early return in
// well-formed programs is not among them: an empty sweep is a success.
var (
	// ErrOutOfGas indicates that the transaction's gas limit has been
	// exhausted.
	ErrOutOfGas = errCode("OutOfGas", "gas limit exhausted")

	// ErrMemoryOverflow is raised by any access outside the machine's
	// allocated memory, including a program counter that runs off the
	// end of its code.
	ErrMemoryOverflow = errCode("MemoryOverflow", "memory access out of bounds")

	// ErrReservedRegister is raised by writes to registers below
	// op.FirstWritable.
	ErrReservedRegister = errCode("ReservedRegister", "write to reserved register")

	// ErrInvalidOpcode is raised when execution reaches an unassigned
	// opcode.
	ErrInvalidOpcode = errCode("InvalidOpcode", "unassigned opcode")

	// ErrInvalidProgram is raised when loaded code is not a whole
	// number of instruction words.
	ErrInvalidProgram = errCode("InvalidProgram", "code length is not a multiple of the instruction width")

	// ErrInvalidTransactionField is raised by gtf with an unassigned
	// field id.
	ErrInvalidTransactionField = errCode("InvalidTransactionField", "unassigned transaction field")

	// ErrContractNotFound is raised when a call names a contract id
	// with no deployed code.
	ErrContractNotFound = errCode("ContractNotFound", "no contract with the given id")

	// ErrContractNotInInputs is raised when a balance query or call
	// touches a contract the transaction does not list as an input.
	ErrContractNotInInputs = errCode("ContractNotInInputs", "contract is not an input of the transaction")

	// ErrOutputNotFound is raised by tro when the named output index
	// holds no unresolved variable output.
	ErrOutputNotFound = errCode("OutputNotFound", "no variable output at the given index")

	// ErrNotEnoughBalance is raised when a transfer exceeds the paying
	// contract's balance.
	ErrNotEnoughBalance = errCode("NotEnoughBalance", "balance too low for transfer")

	// ErrTransferZeroCoins is raised by transfers of zero units.
	ErrTransferZeroCoins = errCode("TransferZeroCoins", "transfer of zero coins")

	// ErrExpectedInternalContext is raised by tro outside of a
	// contract call frame.
	ErrExpectedInternalContext = errCode("ExpectedInternalContext", "transfer outside of a contract call")

	// ErrArithmeticOverflow is raised when register arithmetic exceeds
	// the machine word.
	ErrArithmeticOverflow = errCode("ArithmeticOverflow", "arithmetic overflow")
)

// Reason returns the receipt reason code for an error returned by
// Validate, or the error's message when it carries no code.
func Reason(err error) string {
	if e, ok := errors.Cause(err).(*Error); ok {
		return e.Code
	}
	return err.Error()
}

// vmError distinguishes panics raised by the machine itself from
// genuine programming errors, which are not recovered.
type vmError error

func fault(e error) {
	panic(vmError(e))
}

// perr must be non-nil
func (vm *VM) recoverError(perr *error) {
	if r := recover(); r != nil {
		e, ok := r.(vmError)
		if !ok {
			panic(r)
		}
		*perr = vm.wraperr(e)
	}
}

func (vm *VM) wraperr(e error) error {
	return errors.Wrapf(e, "pc=%d gas=%d", vm.pc, vm.gas)
}
