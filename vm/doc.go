// Package vm implements a minimal byte-addressable bytecode machine.
//
// The machine consists of a fixed-size memory image, eight 32-bit unsigned
// general purpose registers (r0-r7), and an instruction pointer advanced by
// sequential fetches and rewritten by jumps. Instructions are a single
// opcode byte followed by fixed-width big-endian operands. All register
// arithmetic wraps modulo 2^32.
//
// Run drives the machine under a step budget and contains every fault
// inside the call: out-of-range memory access stops the machine with a
// crash diagnostic, an unknown opcode stops it with a decode diagnostic,
// and neither escapes to the caller.
package vm
