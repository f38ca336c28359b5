// Package prottest provides a chain harness for tests that deploy and
// invoke the fee-sweep contract.
package prottest

import (
	"testing"

	"github.com/regnet/regvm/protocol"
	"github.com/regnet/regvm/protocol/bc"
	"github.com/regnet/regvm/protocol/regvm/op"
	"github.com/regnet/regvm/protocol/state"
	"github.com/regnet/regvm/protocol/txbuilder"
	"github.com/regnet/regvm/protocol/txbuilder/sweep"
	"github.com/regnet/regvm/testutil"
)

// Chain is a protocol.Chain whose coinbase recipient is a freshly
// deployed fee-sweep contract.
type Chain struct {
	*protocol.Chain

	// Recipient is the address embedded in the sweep contract.
	Recipient bc.Address

	// ContractID is the deployed sweep contract's id.
	ContractID bc.ContractID
}

// Option is a configuration option for New.
type Option func(*config)

// WithRecipient is an option for New that sets the address the sweep
// contract pays out to.
func WithRecipient(addr bc.Address) Option {
	return func(conf *config) { conf.recipient = addr }
}

// WithBaseAsset is an option for New that sets the fee asset.
func WithBaseAsset(asset bc.AssetID) Option {
	return func(conf *config) { conf.baseAsset = asset }
}

type config struct {
	recipient bc.Address
	baseAsset bc.AssetID
}

// New makes a new Chain. By default the sweep recipient is a
// per-process test address and fees are denominated in the zero asset.
// The sweep contract is deployed before New returns.
func New(tb testing.TB, opts ...Option) *Chain {
	conf := config{recipient: testutil.Address(tb.Name())}
	for _, opt := range opts {
		opt(&conf)
	}

	code := sweep.Generate(conf.recipient)
	id := bc.NewContractID(code)
	c := protocol.NewChain(state.Empty(),
		protocol.WithBaseAsset(conf.baseAsset),
		protocol.WithCoinbaseRecipient(id),
	)
	if _, err := c.DeployContract(code); err != nil {
		testutil.FatalErr(tb, err)
	}

	return &Chain{Chain: c, Recipient: conf.recipient, ContractID: id}
}

// MakeBlockWithFee applies a block with a single do-nothing script
// transaction carrying a nonzero gas price, so that a fee accrues into
// the sweep contract. It returns the fee amount.
func MakeBlockWithFee(tb testing.TB, c *Chain) uint64 {
	old := c.ContractBalance(c.ContractID, c.BaseAsset())

	tx := txbuilder.Script(op.Encode(op.Ret(op.RegOne)), nil).
		GasPrice(1).
		Build()
	r, err := c.ApplyTx(tx)
	if err != nil {
		testutil.FatalErr(tb, err)
	}
	if !r.Success {
		tb.Fatalf("fee tx failed: %s", r.Reason)
	}

	next := c.ContractBalance(c.ContractID, c.BaseAsset())
	if next <= old {
		tb.Fatalf("no fee accrued: balance %d -> %d", old, next)
	}
	return next - old
}

// CollectTx builds the withdrawal transaction for c's sweep contract:
// invocation script and data, the contract input, a contract output at
// index 0, and a variable output at index 1.
func CollectTx(c *Chain) *bc.Tx {
	const outputIndex = 1
	script, data := sweep.Invocation(c.BaseAsset(), outputIndex, c.ContractID)
	return txbuilder.Script(script, data).
		AddContractInput(c.ContractID).
		AddContractOutput().
		AddVariableOutput().
		Build()
}

// CollectFees applies a withdrawal transaction and fails the test
// unless it succeeds.
func CollectFees(tb testing.TB, c *Chain) {
	r, err := c.ApplyTx(CollectTx(c))
	if err != nil {
		testutil.FatalErr(tb, err)
	}
	if !r.Success {
		tb.Fatalf("collect tx failed: %s", r.Reason)
	}
}
