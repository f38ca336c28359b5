package testutil

import (
	miscreant "github.com/miscreant/miscreant/go"

	"github.com/regnet/regvm/protocol/bc"
)

// TestCipher is an AES-PMAC-SIV cipher. Deriving test ids from it
// keeps them distinct per label and stable within a process, without
// plumbing a seed through every test.
var TestCipher *miscreant.Cipher

var testNonce = make([]byte, 16)

func init() {
	var err error
	TestCipher, err = miscreant.NewAESPMACSIV(miscreant.GenerateKey(32))
	if err != nil {
		panic(err)
	}
}

func bytes32(label string) (out [32]byte) {
	plaintext := []byte(label)
	if len(plaintext) < 16 {
		plaintext = append(plaintext, make([]byte, 16-len(plaintext))...)
	}
	sealed, err := TestCipher.Seal(nil, testNonce, plaintext)
	if err != nil {
		panic(err)
	}
	copy(out[:], sealed)
	return out
}

// Address derives a test address from label.
func Address(label string) bc.Address {
	return bc.Address(bytes32("address/" + label))
}

// AssetID derives a test asset id from label.
func AssetID(label string) bc.AssetID {
	return bc.AssetID(bytes32("asset/" + label))
}

// ContractID derives a test contract id from label. It does not
// correspond to any deployed code.
func ContractID(label string) bc.ContractID {
	return bc.ContractID(bytes32("contract/" + label))
}
