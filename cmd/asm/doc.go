/*

Command asm assembles and disassembles regvm programs.

Usage:

	asm [-d]

With no flags, asm reads source text from standard input and writes
bytecode to standard output. With -d it reads bytecode and writes
source text.

*/
package main
