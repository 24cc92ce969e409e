// Package machine implements the MinVM execution engine and its assembler.
//
// The machine has four one-byte registers (A, B, C, D), a 256 byte memory
// shared by code and data, a program counter, HALT/EXCEPTION flags and a
// table of 16 interrupt handlers. Each instruction byte carries a 4-bit
// opcode in its high nibble and a 4-bit argument in its low nibble; most
// arguments are register masks, letting one instruction address up to all
// four registers at once. Multi-register arithmetic treats the selected
// registers as a single little-endian wide integer.
//
// The assembler provides a textual form of the instruction set, supporting
// labels, equates, macros, and compile-time expression evaluation.
package machine
