package bc

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func sampleTx() *Tx {
	return &Tx{
		Script:     []byte{0x01, 0x00, 0x00, 0x01},
		ScriptData: []byte{0xaa, 0xbb},
		GasLimit:   1000,
		GasPrice:   1,
		Inputs:     []Input{{ContractID: ContractID{1}}},
		Outputs: []Output{
			{Type: OutputContract},
			{Type: OutputVariable},
		},
	}
}

func TestTxID(t *testing.T) {
	base := sampleTx()
	if base.ID() != sampleTx().ID() {
		t.Error("tx id is not deterministic")
	}

	// Every field must be covered by the id.
	mangles := []struct {
		name string
		f    func(*Tx)
	}{
		{"script", func(tx *Tx) { tx.Script[0] ^= 1 }},
		{"script data", func(tx *Tx) { tx.ScriptData[0] ^= 1 }},
		{"gas limit", func(tx *Tx) { tx.GasLimit++ }},
		{"gas price", func(tx *Tx) { tx.GasPrice++ }},
		{"input", func(tx *Tx) { tx.Inputs[0].ContractID[0] ^= 1 }},
		{"drop input", func(tx *Tx) { tx.Inputs = nil }},
		{"output type", func(tx *Tx) { tx.Outputs[1].Type = OutputContract }},
		{"output amount", func(tx *Tx) { tx.Outputs[1].Amount = 5 }},
		{"output recipient", func(tx *Tx) { tx.Outputs[1].To[0] ^= 1 }},
		{"drop output", func(tx *Tx) { tx.Outputs = tx.Outputs[:1] }},
	}
	for _, m := range mangles {
		t.Run(m.name, func(t *testing.T) {
			tx := sampleTx()
			m.f(tx)
			if tx.ID() == base.ID() {
				t.Errorf("mangling did not change the tx id\n%s", spew.Sdump(tx))
			}
		})
	}
}

func TestTxIDBoundaries(t *testing.T) {
	// Length prefixes must keep the script/script-data boundary from
	// being ambiguous.
	a := &Tx{Script: []byte{1, 2, 3, 4}, ScriptData: []byte{5}}
	b := &Tx{Script: []byte{1, 2, 3, 4, 5}, ScriptData: nil}
	if a.ID() == b.ID() {
		t.Error("txs with shifted boundaries share an id")
	}
}
