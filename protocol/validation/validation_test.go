package validation

import (
	"testing"

	"github.com/regnet/regvm/protocol/bc"
	"github.com/regnet/regvm/protocol/regvm/op"
	"github.com/regnet/regvm/testutil"
)

func validTx() *bc.Tx {
	return &bc.Tx{
		Script:   op.Encode(op.Ret(op.RegOne)),
		GasLimit: 1000,
	}
}

func TestTx(t *testing.T) {
	cases := []struct {
		name   string
		mangle func(*bc.Tx)
		ok     bool
	}{
		{
			name:   "valid",
			mangle: func(tx *bc.Tx) {},
			ok:     true,
		},
		{
			name:   "empty script",
			mangle: func(tx *bc.Tx) { tx.Script = nil },
		},
		{
			name:   "ragged script",
			mangle: func(tx *bc.Tx) { tx.Script = tx.Script[:3] },
		},
		{
			name:   "script too long",
			mangle: func(tx *bc.Tx) { tx.Script = make([]byte, MaxScriptLen+op.InstructionLen) },
		},
		{
			name:   "script data too long",
			mangle: func(tx *bc.Tx) { tx.ScriptData = make([]byte, MaxScriptDataLen+1) },
		},
		{
			name:   "zero gas limit",
			mangle: func(tx *bc.Tx) { tx.GasLimit = 0 },
		},
		{
			name: "too many outputs",
			mangle: func(tx *bc.Tx) {
				tx.Outputs = make([]bc.Output, MaxOutputs+1)
			},
		},
		{
			name: "duplicate contract input",
			mangle: func(tx *bc.Tx) {
				id := testutil.ContractID(t.Name())
				tx.Inputs = []bc.Input{{ContractID: id}, {ContractID: id}}
			},
		},
		{
			name: "distinct contract inputs",
			mangle: func(tx *bc.Tx) {
				tx.Inputs = []bc.Input{
					{ContractID: testutil.ContractID("a")},
					{ContractID: testutil.ContractID("b")},
				}
			},
			ok: true,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tx := validTx()
			c.mangle(tx)
			err := Tx(tx)
			if c.ok && err != nil {
				t.Errorf("got error %v, want none", err)
			}
			if !c.ok && err == nil {
				t.Error("got no error")
			}
		})
	}
}

func TestTxs(t *testing.T) {
	txs := []*bc.Tx{validTx(), validTx(), validTx()}
	if err := Txs(txs); err != nil {
		t.Fatal(err)
	}

	txs[1].GasLimit = 0
	err := Txs(txs)
	if err == nil {
		t.Fatal("block with an invalid tx passed")
	}
}
