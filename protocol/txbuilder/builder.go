/*
Package txbuilder defines a "fluent" builder type for constructing
transactions around regvm scripts.
*/
package txbuilder

import (
	"github.com/regnet/regvm/protocol/bc"
)

// DefaultGasLimit is applied to transactions built without an explicit
// gas limit.
const DefaultGasLimit = 1_000_000

// Builder helps programmatically build transactions.
type Builder struct {
	tx bc.Tx
}

// Script starts a Builder for a transaction executing the given script
// with the given script data.
func Script(script, scriptData []byte) *Builder {
	return &Builder{tx: bc.Tx{
		Script:     script,
		ScriptData: scriptData,
		GasLimit:   DefaultGasLimit,
	}}
}

// GasLimit sets the transaction's gas limit.
func (b *Builder) GasLimit(limit uint64) *Builder {
	b.tx.GasLimit = limit
	return b
}

// GasPrice sets the transaction's gas price. Fees accrued by a block
// are gas used times gas price.
func (b *Builder) GasPrice(price uint64) *Builder {
	b.tx.GasPrice = price
	return b
}

// AddContractInput adds an input referencing a deployed contract,
// allowing the script (and its callees) to query and move that
// contract's balances.
func (b *Builder) AddContractInput(id bc.ContractID) *Builder {
	b.tx.Inputs = append(b.tx.Inputs, bc.Input{ContractID: id})
	return b
}

// AddContractOutput adds an output returning a contract's state to the
// ledger.
func (b *Builder) AddContractOutput() *Builder {
	b.tx.Outputs = append(b.tx.Outputs, bc.Output{Type: bc.OutputContract})
	return b
}

// AddVariableOutput adds a blank variable output, to be resolved by a
// tro instruction during execution.
func (b *Builder) AddVariableOutput() *Builder {
	b.tx.Outputs = append(b.tx.Outputs, bc.Output{Type: bc.OutputVariable})
	return b
}

// Build returns the assembled transaction.
func (b *Builder) Build() *bc.Tx {
	tx := b.tx
	tx.Inputs = append([]bc.Input{}, b.tx.Inputs...)
	tx.Outputs = append([]bc.Output{}, b.tx.Outputs...)
	return &tx
}
