// Command contractid prints the contract id of the bytecode on
// standard input.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/regnet/regvm/protocol/bc"
)

func main() {
	code, err := io.ReadAll(os.Stdin)
	if err != nil {
		panic(err)
	}
	fmt.Println(bc.NewContractID(code))
}
