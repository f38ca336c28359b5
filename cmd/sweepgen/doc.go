/*

Command sweepgen generates the fee-sweep contract for a recipient
address.

Usage:

	sweepgen [-raw] recipient-address-hex

By default it prints the derived contract id and the bytecode in hex.
With -raw it writes the raw bytecode to standard output, suitable for
piping into asm -d or a deployment tool.

*/
package main
