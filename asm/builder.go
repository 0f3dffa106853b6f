package asm

import (
	"encoding/binary"

	"github.com/dhowland/tinyvm/vm"
)

// Part is a single element of a program image under construction.
type Part interface {
	encode(out []byte) []byte
}

// Byte is a literal single-byte part.
type Byte byte

func (p Byte) encode(out []byte) []byte {
	return append(out, byte(p))
}

// Raw is a literal byte-sequence part.
type Raw []byte

func (p Raw) encode(out []byte) []byte {
	return append(out, p...)
}

// U32 is a 4-byte big-endian integer part.
type U32 uint32

func (p U32) encode(out []byte) []byte {
	return binary.BigEndian.AppendUint32(out, uint32(p))
}

// fixup records a 4-byte placeholder to overwrite with a label's offset.
type fixup struct {
	at    int
	label string
}

// Builder assembles a program image from ordered parts. Jump targets may
// reference labels that are not defined yet; Link resolves them in a second
// pass over the recorded placeholders.
type Builder struct {
	image []byte
	label map[string]uint32
	fixup []fixup
}

// Emit appends parts to the image.
func (b *Builder) Emit(parts ...Part) {
	for _, part := range parts {
		b.image = part.encode(b.image)
	}
}

// Len returns the current image length.
func (b *Builder) Len() int {
	return len(b.image)
}

// Label records the current offset under a name.
func (b *Builder) Label(name string) (err error) {
	_, ok := b.label[name]
	if ok {
		err = ErrLabelDuplicate
		return
	}

	if b.label == nil {
		b.label = make(map[string]uint32, 16)
	}
	b.label[name] = uint32(len(b.image))

	return
}

// Ref emits a 4-byte placeholder to be patched with the named label's
// offset at Link time.
func (b *Builder) Ref(name string) {
	b.fixup = append(b.fixup, fixup{at: len(b.image), label: name})
	b.Emit(U32(0))
}

// Link patches every recorded reference with its label's offset and
// returns the finished image.
func (b *Builder) Link() (image []byte, err error) {
	for _, fix := range b.fixup {
		offset, ok := b.label[fix.label]
		if !ok {
			err = ErrLabelMissing(fix.label)
			return
		}
		binary.BigEndian.PutUint32(b.image[fix.at:], offset)
	}

	image = b.image
	return
}

// Per-opcode emit helpers.

// Nop emits a NOP instruction.
func (b *Builder) Nop() {
	b.Emit(Byte(vm.OP_NOP))
}

// Halt emits a HALT instruction.
func (b *Builder) Halt() {
	b.Emit(Byte(vm.OP_HALT))
}

// LoadImm emits a LOAD_REG_IMM instruction.
func (b *Builder) LoadImm(reg uint8, imm uint32) {
	b.Emit(Byte(vm.OP_LOAD_REG_IMM), Byte(reg), U32(imm))
}

// Mov emits a MOV_REG_REG instruction.
func (b *Builder) Mov(dst, src uint8) {
	b.Emit(Byte(vm.OP_MOV_REG_REG), Byte(dst), Byte(src))
}

// Add emits an ADD_REG_REG instruction.
func (b *Builder) Add(dst, src uint8) {
	b.Emit(Byte(vm.OP_ADD_REG_REG), Byte(dst), Byte(src))
}

// Sub emits a SUB_REG_REG instruction.
func (b *Builder) Sub(dst, src uint8) {
	b.Emit(Byte(vm.OP_SUB_REG_REG), Byte(dst), Byte(src))
}

// Jmp emits a JMP to a label.
func (b *Builder) Jmp(label string) {
	b.Emit(Byte(vm.OP_JMP))
	b.Ref(label)
}

// JmpTo emits a JMP to a literal address.
func (b *Builder) JmpTo(addr uint32) {
	b.Emit(Byte(vm.OP_JMP), U32(addr))
}

// Jz emits a JZ on a register to a label.
func (b *Builder) Jz(reg uint8, label string) {
	b.Emit(Byte(vm.OP_JZ), Byte(reg))
	b.Ref(label)
}

// JzTo emits a JZ on a register to a literal address.
func (b *Builder) JzTo(reg uint8, addr uint32) {
	b.Emit(Byte(vm.OP_JZ), Byte(reg), U32(addr))
}

// Print emits a PRINT_REG instruction.
func (b *Builder) Print(reg uint8) {
	b.Emit(Byte(vm.OP_PRINT_REG), Byte(reg))
}

// Debug emits a DEBUG_STATE instruction.
func (b *Builder) Debug() {
	b.Emit(Byte(vm.OP_DEBUG_STATE))
}
