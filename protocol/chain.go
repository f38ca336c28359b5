/*
Package protocol maintains a ledger snapshot and applies blocks of
transactions to it.

The chain serializes execution: each transaction runs against a staged
copy of the state, and only a successful run commits. Fees accrued by a
block (gas used times gas price, summed over its transactions) are
credited to the configured coinbase recipient contract, which is how a
fee-sweep contract's balance builds up between withdrawals.
*/
package protocol

import (
	"math/bits"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/regnet/regvm/protocol/bc"
	"github.com/regnet/regvm/protocol/regvm"
	"github.com/regnet/regvm/protocol/regvm/op"
	"github.com/regnet/regvm/protocol/state"
	"github.com/regnet/regvm/protocol/validation"
)

// ErrFeeOverflow is returned when a block's accrued fees exceed the
// maximum representable amount.
var ErrFeeOverflow = errors.New("block fee overflow")

// Chain applies transactions to a ledger snapshot.
type Chain struct {
	mu          sync.Mutex // protects the following
	state       *state.Snapshot
	height      uint64
	baseAsset   bc.AssetID
	coinbase    bc.ContractID
	hasCoinbase bool
	log         *logrus.Entry
}

// Option is a configuration option for NewChain.
type Option func(*Chain)

// WithCoinbaseRecipient configures the contract that block fees accrue
// into.
func WithCoinbaseRecipient(id bc.ContractID) Option {
	return func(c *Chain) {
		c.coinbase = id
		c.hasCoinbase = true
	}
}

// WithBaseAsset configures the asset fees are denominated in. The
// default is the zero asset id.
func WithBaseAsset(asset bc.AssetID) Option {
	return func(c *Chain) { c.baseAsset = asset }
}

// WithLogger configures the chain's log entry.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Chain) { c.log = l }
}

// NewChain makes a new Chain over the given snapshot. The Chain owns
// the snapshot from then on.
func NewChain(st *state.Snapshot, opts ...Option) *Chain {
	c := &Chain{
		state: st,
		log:   logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Height returns the number of blocks applied so far.
func (c *Chain) Height() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// BaseAsset returns the asset fees are denominated in.
func (c *Chain) BaseAsset() bc.AssetID {
	return c.baseAsset
}

// DeployContract adds a contract's bytecode to the ledger and returns
// its derived id.
func (c *Chain) DeployContract(code []byte) (bc.ContractID, error) {
	if len(code) == 0 || len(code)%op.InstructionLen != 0 {
		return bc.ContractID{}, errors.Errorf("bad contract code length %d", len(code))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	id, err := c.state.AddContract(code)
	if err != nil {
		return id, err
	}
	c.log.WithFields(logrus.Fields{"contract": id.String(), "bytes": len(code)}).Debug("deployed contract")
	return id, nil
}

// ApplyBlock validates txs, executes them in order, credits the block's
// fees to the coinbase recipient, and advances the chain height. It
// returns one receipt per transaction. A failed transaction leaves the
// ledger untouched (beyond its fee) but does not fail the block.
func (c *Chain) ApplyBlock(txs []*bc.Tx) ([]*bc.Receipt, error) {
	if err := validation.Txs(txs); err != nil {
		return nil, errors.Wrap(err, "validating block")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		receipts []*bc.Receipt
		fees     uint64
	)
	for i, tx := range txs {
		r, err := c.applyTx(tx)
		if err != nil {
			return nil, errors.Wrapf(err, "tx %d", i)
		}
		hi, fee := bits.Mul64(r.GasUsed, tx.GasPrice)
		if hi != 0 {
			return nil, errors.Wrapf(ErrFeeOverflow, "tx %d", i)
		}
		sum, carry := bits.Add64(fees, fee, 0)
		if carry != 0 {
			return nil, errors.Wrapf(ErrFeeOverflow, "tx %d", i)
		}
		fees = sum
		receipts = append(receipts, r)
	}

	if c.hasCoinbase && fees > 0 {
		if err := c.state.CreditContract(c.coinbase, c.baseAsset, fees); err != nil {
			return nil, errors.Wrap(err, "crediting coinbase recipient")
		}
	}
	c.height++
	c.log.WithFields(logrus.Fields{"height": c.height, "txs": len(txs), "fees": fees}).Debug("applied block")
	return receipts, nil
}

// ApplyTx applies a block containing the single transaction tx and
// returns its receipt.
func (c *Chain) ApplyTx(tx *bc.Tx) (*bc.Receipt, error) {
	receipts, err := c.ApplyBlock([]*bc.Tx{tx})
	if err != nil {
		return nil, err
	}
	return receipts[0], nil
}

// applyTx executes tx against a staged copy of the state and commits
// the copy on success. Callers must hold c.mu.
func (c *Chain) applyTx(tx *bc.Tx) (*bc.Receipt, error) {
	work := c.state.Copy()
	vm, err := regvm.Validate(tx, work)
	if err != nil {
		reason := regvm.Reason(err)
		c.log.WithFields(logrus.Fields{"tx": tx.ID().String(), "reason": reason}).Debug("tx failed")
		return &bc.Receipt{Reason: reason, GasUsed: vm.GasUsed}, nil
	}

	// Resolved variable outputs become address credits at commit time.
	for _, out := range vm.Outputs {
		if out.Type == bc.OutputVariable && out.Amount > 0 {
			if err := work.CreditAddress(out.To, out.AssetID, out.Amount); err != nil {
				return nil, errors.Wrap(err, "crediting output")
			}
		}
	}
	c.state = work
	return &bc.Receipt{Success: true, Ret: vm.Ret, GasUsed: vm.GasUsed}, nil
}

// ContractBalance returns a contract's current balance of an asset.
func (c *Chain) ContractBalance(id bc.ContractID, asset bc.AssetID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Balance(id, asset)
}

// Balance returns an address's current balance of an asset.
func (c *Chain) Balance(addr bc.Address, asset bc.AssetID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.AddressBalance(addr, asset)
}
