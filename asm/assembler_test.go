package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dhowland/tinyvm/vm"
)

var demoSource = []string{
	"; count from 0 to 9",
	".equ LIMIT 10",
	"        load r0 0",
	"        load r1 LIMIT",
	"loop:   print r0",
	"        load r2 1",
	"        add r0 r2",
	"        mov r3 r0",
	"        sub r3 r1",
	"        jz r3 end",
	"        jmp loop",
	"end:    halt",
}

func TestAssemblerDemoSource(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	image, err := asm.Parse(strings.NewReader(strings.Join(demoSource, "\n")))
	assert.NoError(err)
	assert.Equal(DemoProgram(), image)
}

func TestAssemblerInstructions(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		source string
		image  []byte
	}){
		{"nop", "nop", []byte{byte(vm.OP_NOP)}},
		{"halt", "halt", []byte{byte(vm.OP_HALT)}},
		{"debug", "debug", []byte{byte(vm.OP_DEBUG_STATE)}},
		{"load", "load r7 0x0102", []byte{byte(vm.OP_LOAD_REG_IMM), 7, 0, 0, 1, 2}},
		{"load_negative", "load r0 -1", []byte{byte(vm.OP_LOAD_REG_IMM), 0, 0xff, 0xff, 0xff, 0xff}},
		{"mov", "mov r1 r2", []byte{byte(vm.OP_MOV_REG_REG), 1, 2}},
		{"add", "add r3 r4", []byte{byte(vm.OP_ADD_REG_REG), 3, 4}},
		{"sub", "sub r5 r6", []byte{byte(vm.OP_SUB_REG_REG), 5, 6}},
		{"jmp_literal", "jmp 16", []byte{byte(vm.OP_JMP), 0, 0, 0, 16}},
		{"jz_literal", "jz r1 32", []byte{byte(vm.OP_JZ), 1, 0, 0, 0, 32}},
		{"print", "print r0", []byte{byte(vm.OP_PRINT_REG), 0}},
		{"label_and_jump", "here: jmp here", []byte{byte(vm.OP_JMP), 0, 0, 0, 0}},
		{"comment_only", "; nothing here", []byte(nil)},
		{"trailing_comment", "halt ; stop", []byte{byte(vm.OP_HALT)}},
	}

	for _, entry := range table {
		asm := &Assembler{}
		image, err := asm.Parse(strings.NewReader(entry.source))
		assert.NoError(err, entry.name)
		assert.Equal(entry.image, image, entry.name)
	}
}

func TestAssemblerExpressions(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		source []string
		imm    []byte
	}){
		{"arithmetic", []string{"load r0 $(2 + 3*4)"}, []byte{0, 0, 0, 14}},
		{"equate_in_scope", []string{".equ BASE 0x10", "load r0 $(BASE + 2)"}, []byte{0, 0, 0, 18}},
		{"lineno", []string{"load r0 $(LINENO)"}, []byte{0, 0, 0, 1}},
		{"shift", []string{"load r0 $(1 << 16)"}, []byte{0, 1, 0, 0}},
	}

	for _, entry := range table {
		asm := &Assembler{}
		image, err := asm.Parse(strings.NewReader(strings.Join(entry.source, "\n")))
		assert.NoError(err, entry.name)
		assert.Equal(append([]byte{byte(vm.OP_LOAD_REG_IMM), 0}, entry.imm...), image, entry.name)
	}
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("COUNT", "3")

	image, err := asm.Parse(strings.NewReader("load r1 COUNT"))
	assert.NoError(err)
	assert.Equal([]byte{byte(vm.OP_LOAD_REG_IMM), 1, 0, 0, 0, 3}, image)
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		source []string
		want   error
	}){
		{"opcode_invalid", []string{"frobnicate r0"}, ErrOpcodeInvalid},
		{"register_invalid", []string{"print r9"}, ErrRegisterInvalid},
		{"argument_count", []string{"add r0"}, ErrOpcodeArgs},
		{"bad_number", []string{"load r0 bogus"}, ErrParseNumber("bogus")},
		{"equate_syntax", []string{".equ ONLYNAME"}, ErrEquateSyntax},
		{"equate_duplicate", []string{".equ A 1", ".equ A 2"}, ErrEquateDuplicate},
		{"label_duplicate", []string{"x: nop", "x: nop"}, ErrLabelDuplicate},
		{"label_missing", []string{"jmp nowhere"}, ErrLabelMissing("nowhere")},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(strings.Join(entry.source, "\n")))
		assert.ErrorIs(err, entry.want, entry.name)

		syntax := &ErrSyntax{}
		assert.ErrorAs(err, &syntax, entry.name)
	}
}

func TestAssemblerRunsOnMachine(t *testing.T) {
	assert := assert.New(t)

	source := []string{
		"        load r0 $(6 * 7)",
		"        print r0",
		"        debug",
		"        halt",
	}

	asm := &Assembler{}
	image, err := asm.Parse(strings.NewReader(strings.Join(source, "\n")))
	assert.NoError(err)

	machine := vm.NewVm(256)
	output := &strings.Builder{}
	machine.Output = output

	err = machine.Load(image, 0)
	assert.NoError(err)

	machine.Run(100)

	assert.False(machine.Running)
	lines := strings.Split(strings.TrimSuffix(output.String(), "\n"), "\n")
	assert.Len(lines, 3)
	assert.Equal("42", lines[0])
	assert.Equal("IP=9 r0=42 r1=0 r2=0 r3=0 r4=0 r5=0 r6=0 r7=0", lines[1])
	assert.Contains(lines[2], "Stopped after 4 steps")
}
