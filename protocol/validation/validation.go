/*
Package validation implements the static well-formedness checks a
transaction must pass before the chain executes it.
*/
package validation

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/regnet/regvm/protocol/bc"
	"github.com/regnet/regvm/protocol/regvm/op"
)

// Limits on transaction size.
const (
	MaxScriptLen     = 1 << 16
	MaxScriptDataLen = 1 << 16
	MaxOutputs       = 256
)

var (
	errEmptyScript      = errors.New("transaction script is empty")
	errScriptLen        = errors.New("bad script length")
	errScriptDataLen    = errors.New("script data too long")
	errNoGas            = errors.New("zero gas limit")
	errTooManyOutputs   = errors.New("too many outputs")
	errDupContractInput = errors.New("duplicate contract input")
)

// Tx checks a single transaction's static structure. It does not
// execute the script.
func Tx(tx *bc.Tx) error {
	if len(tx.Script) == 0 {
		return errEmptyScript
	}
	if len(tx.Script) > MaxScriptLen || len(tx.Script)%op.InstructionLen != 0 {
		return errors.Wrapf(errScriptLen, "%d bytes", len(tx.Script))
	}
	if len(tx.ScriptData) > MaxScriptDataLen {
		return errors.Wrapf(errScriptDataLen, "%d bytes", len(tx.ScriptData))
	}
	if tx.GasLimit == 0 {
		return errNoGas
	}
	if len(tx.Outputs) > MaxOutputs {
		return errors.Wrapf(errTooManyOutputs, "%d outputs", len(tx.Outputs))
	}
	seen := make(map[bc.ContractID]bool, len(tx.Inputs))
	for _, in := range tx.Inputs {
		if seen[in.ContractID] {
			return errors.Wrapf(errDupContractInput, "contract %x", in.ContractID[:8])
		}
		seen[in.ContractID] = true
	}
	return nil
}

// Txs checks a block's transactions in parallel.
func Txs(txs []*bc.Tx) error {
	var eg errgroup.Group
	for i, tx := range txs {
		i, tx := i, tx
		eg.Go(func() error {
			if err := Tx(tx); err != nil {
				return errors.Wrapf(err, "tx %d", i)
			}
			return nil
		})
	}
	return eg.Wait()
}
