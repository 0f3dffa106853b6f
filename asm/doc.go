// Package asm builds raw program images for the machine in package vm.
//
// Builder assembles an image from ordered parts (literal bytes, byte
// sequences, and 4-byte big-endian words) with named labels; forward jump
// references are emitted as placeholders and patched in a second pass by
// Link. The per-opcode emit helpers and DemoProgram are built on it.
//
// Assembler parses a line-oriented assembly text: one instruction per line,
// `name:` labels, `.equ` equates, `;` comments, and compile-time `$(...)`
// expressions evaluated with Starlark.
package asm
