/*
Package sweep generates the bytecode of the fee-sweep contract and the
invocation script that triggers it.

The fee-sweep contract is deployed once and designated as a chain's
coinbase recipient: block fees accrue as a balance inside it. Anyone may
later submit a transaction that calls the contract; the contract moves
its entire balance of one asset to a variable output credited to the
recipient address fixed at generation time. There is no authorization
logic and no partial withdrawal: any caller, all funds, one recipient.
*/
package sweep

import (
	"encoding/binary"
	"fmt"

	"github.com/regnet/regvm/protocol/bc"
	"github.com/regnet/regvm/protocol/regvm/op"
)

// Scratch registers used by the generated programs. Arbitrary, but they
// must stay clear of the reserved register roles; init checks that.
const (
	regAssetID    op.RegID = 0x10
	regBalance    op.RegID = 0x11
	regContractID op.RegID = 0x12
	regOutputIdx  op.RegID = 0x13
	regRecipient  op.RegID = 0x14

	// regCallDesc points the invocation script at its call descriptor.
	regCallDesc op.RegID = 0x10
)

// addressWords is the space the embedded recipient address occupies, in
// instruction words.
const addressWords = (bc.AddressLen + op.InstructionLen - 1) / op.InstructionLen

// bodyTarget is the jump target of the generated program's leading
// instruction: one word for the jump itself, plus the words holding the
// embedded address.
const bodyTarget = 1 + addressWords

func init() {
	for _, r := range []op.RegID{regAssetID, regBalance, regContractID, regOutputIdx, regRecipient, regCallDesc} {
		if op.IsReserved(r) {
			panic(fmt.Errorf("sweep scratch register %#x collides with a reserved register", r))
		}
	}
}

// Generate emits the bytecode for the fee-sweep contract. The contract
// expects the caller's script data to begin with an asset id followed
// by an 8-byte output index.
//
// The output is [jump][recipient address][body]: execution starts at
// word 0, leaps over the embedded address, and the body recovers the
// address later by offsetting one instruction word past the start of
// the code. Generate is total and deterministic.
func Generate(recipient bc.Address) []byte {
	startJump := op.Encode(
		// Jump over the embedded address, which is placed immediately
		// after the jump
		op.JI(bodyTarget),
	)

	body := op.Encode(
		// Load pointer to the asset id
		op.GTF(regAssetID, op.RegZero, op.FieldScriptData),
		// Load the output index
		op.Addi(regOutputIdx, regAssetID, bc.AssetIDLen),
		op.LW(regOutputIdx, regOutputIdx, 0),
		// Get a pointer to our own contract id
		op.Move(regContractID, op.RegFP),
		// Get the contract's balance of the asset
		op.Bal(regBalance, regAssetID, regContractID),
		// Nothing to sweep: return success without transferring
		op.JNZF(regBalance, op.RegZero, 1),
		op.Ret(op.RegOne),
		// Pointer to the embedded recipient address
		op.Addi(regRecipient, op.RegIS, op.InstructionLen),
		// Move the whole balance to the variable output
		op.TRO(regRecipient, regOutputIdx, regBalance, regAssetID),
		op.Ret(op.RegOne),
	)

	prog := make([]byte, 0, len(startJump)+bc.AddressLen+len(body))
	prog = append(prog, startJump...)
	prog = append(prog, recipient[:]...) // embed the address
	prog = append(prog, body...)
	return prog
}

// Invocation builds the calling side of a sweep: the script of a
// withdrawal transaction and its script-data blob.
//
// The blob is the asset id, the output index as an 8-byte little-endian
// integer, and the call descriptor for the deployed contract (its id
// plus two reserved parameter words, kept zero: the contract ignores
// them, but the call instruction's convention requires them). The
// script points a register at the descriptor and calls the contract
// with no forwarded coins and all remaining gas.
//
// The transaction carrying the result must list the contract as an
// input and, for a nonzero balance, declare a variable output at the
// encoded index; a missing output surfaces as an OutputNotFound failure
// at run time.
func Invocation(assetID bc.AssetID, outputIndex uint64, contractID bc.ContractID) (script, data []byte) {
	script = op.Encode(
		// Point at the call descriptor inside the script data
		op.GTF(regCallDesc, op.RegZero, op.FieldScriptData),
		op.Addi(regCallDesc, regCallDesc, bc.AssetIDLen+bc.WordLen),
		op.Call(regCallDesc, op.RegZero, op.RegZero, op.RegCGAS),
		op.Ret(op.RegOne),
	)

	data = make([]byte, 0, bc.AssetIDLen+bc.WordLen+bc.ContractIDLen+2*bc.WordLen)
	data = append(data, assetID[:]...)
	data = binary.LittleEndian.AppendUint64(data, outputIndex)
	data = append(data, contractID[:]...)
	data = binary.LittleEndian.AppendUint64(data, 0)
	data = binary.LittleEndian.AppendUint64(data, 0)
	return script, data
}
