// Package state defines the ledger snapshot the regvm executes
// against: deployed contract code, per-contract asset balances, and the
// address balances credited when variable outputs resolve.
package state

import (
	"math"

	"github.com/pkg/errors"

	"github.com/regnet/regvm/protocol/bc"
)

// ErrOverflow is returned when a credit would exceed the maximum
// representable balance.
var ErrOverflow = errors.New("balance overflow")

// ErrInsufficient is returned when a debit exceeds the available
// balance.
var ErrInsufficient = errors.New("insufficient balance")

// Snapshot is a ledger state. It is not safe for concurrent use; the
// chain layer serializes access and works on copies for staged
// execution.
type Snapshot struct {
	contracts    map[bc.ContractID][]byte
	contractBals map[bc.ContractID]map[bc.AssetID]uint64
	addressBals  map[bc.Address]map[bc.AssetID]uint64
}

// Empty produces an empty Snapshot.
func Empty() *Snapshot {
	return &Snapshot{
		contracts:    make(map[bc.ContractID][]byte),
		contractBals: make(map[bc.ContractID]map[bc.AssetID]uint64),
		addressBals:  make(map[bc.Address]map[bc.AssetID]uint64),
	}
}

// Copy makes an independent copy of a Snapshot. Executing a
// transaction against the copy leaves the original untouched, so a
// failed transaction can be discarded wholesale.
func (s *Snapshot) Copy() *Snapshot {
	c := Empty()
	for id, code := range s.contracts {
		c.contracts[id] = code
	}
	for id, bals := range s.contractBals {
		m := make(map[bc.AssetID]uint64, len(bals))
		for asset, amt := range bals {
			m[asset] = amt
		}
		c.contractBals[id] = m
	}
	for addr, bals := range s.addressBals {
		m := make(map[bc.AssetID]uint64, len(bals))
		for asset, amt := range bals {
			m[asset] = amt
		}
		c.addressBals[addr] = m
	}
	return c
}

// AddContract deploys code, returning its derived contract id. It
// fails if a contract with the same id is already deployed.
func (s *Snapshot) AddContract(code []byte) (bc.ContractID, error) {
	id := bc.NewContractID(code)
	if _, ok := s.contracts[id]; ok {
		return id, errors.Errorf("contract %x already deployed", id[:8])
	}
	s.contracts[id] = append([]byte{}, code...)
	return id, nil
}

// ContractCode returns the bytecode of a deployed contract.
func (s *Snapshot) ContractCode(id bc.ContractID) ([]byte, bool) {
	code, ok := s.contracts[id]
	return code, ok
}

// Balance returns a contract's balance of an asset. Unknown contracts
// and assets have zero balances.
func (s *Snapshot) Balance(id bc.ContractID, asset bc.AssetID) uint64 {
	return s.contractBals[id][asset]
}

// CreditContract adds amount to a contract's balance of an asset.
func (s *Snapshot) CreditContract(id bc.ContractID, asset bc.AssetID, amount uint64) error {
	bals := s.contractBals[id]
	if bals == nil {
		bals = make(map[bc.AssetID]uint64)
		s.contractBals[id] = bals
	}
	if bals[asset] > math.MaxUint64-amount {
		return errors.Wrapf(ErrOverflow, "crediting contract %x", id[:8])
	}
	bals[asset] += amount
	return nil
}

// DebitContract removes amount from a contract's balance of an asset.
func (s *Snapshot) DebitContract(id bc.ContractID, asset bc.AssetID, amount uint64) error {
	bals := s.contractBals[id]
	if bals[asset] < amount {
		return errors.Wrapf(ErrInsufficient, "debiting contract %x", id[:8])
	}
	bals[asset] -= amount
	return nil
}

// AddressBalance returns an address's balance of an asset.
func (s *Snapshot) AddressBalance(addr bc.Address, asset bc.AssetID) uint64 {
	return s.addressBals[addr][asset]
}

// CreditAddress adds amount to an address's balance of an asset. The
// chain calls it when a resolved variable output commits.
func (s *Snapshot) CreditAddress(addr bc.Address, asset bc.AssetID, amount uint64) error {
	bals := s.addressBals[addr]
	if bals == nil {
		bals = make(map[bc.AssetID]uint64)
		s.addressBals[addr] = bals
	}
	if bals[asset] > math.MaxUint64-amount {
		return errors.Wrapf(ErrOverflow, "crediting address %x", addr[:8])
	}
	bals[asset] += amount
	return nil
}
