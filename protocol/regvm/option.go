package regvm

import (
	"fmt"
	"io"

	"github.com/regnet/regvm/protocol/regvm/op"
)

// Option is the type of a function that can be passed as an option to
// Validate.
type Option struct {
	apply func(vm *VM)
}

// BeforeStep can be passed as an option to Validate. It adds a
// callback to be invoked just before each instruction is executed.
func BeforeStep(h ...func(*VM)) Option {
	return Option{
		apply: func(vm *VM) { vm.beforeStep = append(vm.beforeStep, h...) },
	}
}

// AfterStep can be passed as an option to Validate. It adds a
// callback to be invoked after each instruction is executed.
func AfterStep(h ...func(*VM)) Option {
	return Option{
		apply: func(vm *VM) { vm.afterStep = append(vm.afterStep, h...) },
	}
}

// Trace can be passed as an option to Validate. It causes a textual
// execution trace to be written to the given io.Writer.
func Trace(w io.Writer) Option {
	return Option{
		apply: func(vm *VM) {
			lastRunstack := 0
			vm.beforeStep = append(vm.beforeStep, func(vm *VM) {
				if len(vm.runstack) > lastRunstack {
					fmt.Fprintf(w, "=> call %x\n", vm.contractID())
					lastRunstack = len(vm.runstack)
				}
				i := vm.Instruction()
				fmt.Fprintf(w, "depth %d pc %d gas %d %s (%02x)\n",
					len(vm.runstack), vm.pc, vm.gas, op.Name(i.Opcode()), byte(i.Opcode()))
			})
			vm.afterStep = append(vm.afterStep, func(vm *VM) {
				if len(vm.runstack) < lastRunstack {
					fmt.Fprintf(w, "<= ret %d\n", vm.Ret)
					lastRunstack = len(vm.runstack)
				}
			})
		},
	}
}
