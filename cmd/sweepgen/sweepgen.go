package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/regnet/regvm/protocol/bc"
	"github.com/regnet/regvm/protocol/txbuilder/sweep"
)

func main() {
	raw := flag.Bool("raw", false, "write raw bytecode instead of hex")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: sweepgen [-raw] recipient-address-hex")
		os.Exit(2)
	}

	var addr bc.Address
	if err := addr.UnmarshalText([]byte(flag.Arg(0))); err != nil {
		panic(err)
	}

	code := sweep.Generate(addr)
	if *raw {
		os.Stdout.Write(code)
		return
	}
	fmt.Printf("contract id %s\n", bc.NewContractID(code))
	fmt.Println(hex.EncodeToString(code))
}
