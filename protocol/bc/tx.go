package bc

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// Output types.
const (
	// OutputContract marks an output that returns a contract's state to
	// the ledger after the transaction runs.
	OutputContract = iota

	// OutputVariable marks an output whose recipient, asset id, and
	// amount are left unset at build time and populated by VM execution
	// (the tro instruction).
	OutputVariable
)

// Input references a contract that the transaction's scripts may
// interact with. Balance queries and calls against a contract that is
// not listed as an input fault at run time.
type Input struct {
	ContractID ContractID
}

// Output is a transaction output. Variable outputs start out blank;
// To, AssetID, and Amount are filled in when a tro instruction resolves
// the output during execution.
type Output struct {
	Type    int
	To      Address
	AssetID AssetID
	Amount  uint64
}

// Tx is a transaction: an executable script, its script-data region,
// gas terms, and the inputs and outputs the script may touch.
type Tx struct {
	Script     []byte
	ScriptData []byte
	GasLimit   uint64
	GasPrice   uint64
	Inputs     []Input
	Outputs    []Output
}

// Receipt records the outcome of executing a transaction's script.
type Receipt struct {
	// Success is true when the script ran to completion.
	Success bool

	// Reason is a short code identifying the fault when Success is
	// false, e.g. "OutputNotFound".
	Reason string

	// Ret is the script's return value. The convention is 1 for
	// success.
	Ret uint64

	// GasUsed is the gas consumed by execution, successful or not.
	GasUsed uint64
}

// ID computes the transaction's unique id over its canonical
// serialization.
func (tx *Tx) ID() (h Hash) {
	var buf bytes.Buffer
	writeBytes(&buf, tx.Script)
	writeBytes(&buf, tx.ScriptData)
	writeUint64(&buf, tx.GasLimit)
	writeUint64(&buf, tx.GasPrice)
	writeUint64(&buf, uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf.Write(in.ContractID[:])
	}
	writeUint64(&buf, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		writeUint64(&buf, uint64(out.Type))
		buf.Write(out.To[:])
		buf.Write(out.AssetID[:])
		writeUint64(&buf, out.Amount)
	}
	return Hash(sha3.Sum256(buf.Bytes()))
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUint64(buf, uint64(len(b)))
	buf.Write(b)
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
