package state

import (
	"bytes"
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/regnet/regvm/testutil"
)

func TestAddContract(t *testing.T) {
	s := Empty()
	code := []byte{0x01, 0x00, 0x00, 0x01}

	id, err := s.AddContract(code)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := s.ContractCode(id)
	if !ok || !bytes.Equal(got, code) {
		t.Errorf("ContractCode(%x) = %x, %v; want %x, true", id[:8], got, ok, code)
	}

	if _, err = s.AddContract(code); err == nil {
		t.Error("deploying the same code twice succeeded")
	}
}

func TestContractBalances(t *testing.T) {
	s := Empty()
	id := testutil.ContractID(t.Name())
	asset := testutil.AssetID(t.Name())

	if got := s.Balance(id, asset); got != 0 {
		t.Errorf("fresh balance = %d, want 0", got)
	}

	if err := s.CreditContract(id, asset, 10); err != nil {
		t.Fatal(err)
	}
	if err := s.DebitContract(id, asset, 4); err != nil {
		t.Fatal(err)
	}
	if got := s.Balance(id, asset); got != 6 {
		t.Errorf("balance = %d, want 6", got)
	}

	err := s.DebitContract(id, asset, 7)
	if errors.Cause(err) != ErrInsufficient {
		t.Errorf("overdraft error = %v, want ErrInsufficient", err)
	}

	err = s.CreditContract(id, asset, math.MaxUint64)
	if errors.Cause(err) != ErrOverflow {
		t.Errorf("overflow error = %v, want ErrOverflow", err)
	}
}

func TestAddressBalances(t *testing.T) {
	s := Empty()
	addr := testutil.Address(t.Name())
	asset := testutil.AssetID(t.Name())

	if err := s.CreditAddress(addr, asset, 5); err != nil {
		t.Fatal(err)
	}
	if err := s.CreditAddress(addr, asset, 3); err != nil {
		t.Fatal(err)
	}
	if got := s.AddressBalance(addr, asset); got != 8 {
		t.Errorf("balance = %d, want 8", got)
	}

	err := s.CreditAddress(addr, asset, math.MaxUint64)
	if errors.Cause(err) != ErrOverflow {
		t.Errorf("overflow error = %v, want ErrOverflow", err)
	}
}

func TestCopyIndependence(t *testing.T) {
	s := Empty()
	id := testutil.ContractID(t.Name())
	addr := testutil.Address(t.Name())
	asset := testutil.AssetID(t.Name())
	if err := s.CreditContract(id, asset, 10); err != nil {
		t.Fatal(err)
	}

	c := s.Copy()
	if err := c.DebitContract(id, asset, 10); err != nil {
		t.Fatal(err)
	}
	if err := c.CreditAddress(addr, asset, 10); err != nil {
		t.Fatal(err)
	}
	deployed, err := c.AddContract([]byte{0x01, 0x00, 0x00, 0x01})
	if err != nil {
		t.Fatal(err)
	}

	// Discarding the copy must leave the original untouched.
	if got := s.Balance(id, asset); got != 10 {
		t.Errorf("original contract balance = %d, want 10", got)
	}
	if got := s.AddressBalance(addr, asset); got != 0 {
		t.Errorf("original address balance = %d, want 0", got)
	}
	if _, ok := s.ContractCode(deployed); ok {
		t.Error("original snapshot has a contract deployed only in the copy")
	}
}
