package vm

import (
	"fmt"
)

// Opcode is the first byte of an instruction, selecting its operation.
type Opcode byte

const (
	OP_NOP          = Opcode(0x00) // no effect
	OP_HALT         = Opcode(0x01) // stop the machine
	OP_LOAD_REG_IMM = Opcode(0x10) // reg:u8 imm:u32
	OP_MOV_REG_REG  = Opcode(0x11) // dst:u8 src:u8
	OP_ADD_REG_REG  = Opcode(0x20) // dst:u8 src:u8
	OP_SUB_REG_REG  = Opcode(0x21) // dst:u8 src:u8
	OP_JMP          = Opcode(0x30) // addr:u32
	OP_JZ           = Opcode(0x31) // reg:u8 addr:u32
	OP_PRINT_REG    = Opcode(0x40) // reg:u8
	OP_DEBUG_STATE  = Opcode(0xf0) // no operands
)

// String returns the mnemonic for the opcode, or its hex value when unknown.
func (op Opcode) String() string {
	inst := instructionTable[op]
	if inst == nil {
		return fmt.Sprintf("0x%02X", byte(op))
	}

	return inst.name
}

// instruction binds an opcode to its mnemonic and execute behavior. Operand
// fetch is part of execute; each opcode's encoding is fixed width.
type instruction struct {
	name    string
	execute func(vm *Vm) error
}

// instructionTable maps every opcode byte to its instruction. A nil entry
// is an unknown opcode.
var instructionTable = [256]*instruction{
	OP_NOP:          {name: "nop", execute: opNop},
	OP_HALT:         {name: "halt", execute: opHalt},
	OP_LOAD_REG_IMM: {name: "load", execute: opLoadImm},
	OP_MOV_REG_REG:  {name: "mov", execute: opMov},
	OP_ADD_REG_REG:  {name: "add", execute: opAdd},
	OP_SUB_REG_REG:  {name: "sub", execute: opSub},
	OP_JMP:          {name: "jmp", execute: opJmp},
	OP_JZ:           {name: "jz", execute: opJz},
	OP_PRINT_REG:    {name: "print", execute: opPrint},
	OP_DEBUG_STATE:  {name: "debug", execute: opDebug},
}

func opNop(vm *Vm) (err error) {
	return
}

func opHalt(vm *Vm) (err error) {
	vm.Running = false
	return
}

func opLoadImm(vm *Vm) (err error) {
	reg, err := vm.fetchU8()
	if err != nil {
		return
	}
	imm, err := vm.fetchU32()
	if err != nil {
		return
	}

	vm.SetReg(reg, imm)
	return
}

func opMov(vm *Vm) (err error) {
	dst, err := vm.fetchU8()
	if err != nil {
		return
	}
	src, err := vm.fetchU8()
	if err != nil {
		return
	}

	vm.SetReg(dst, vm.Reg(src))
	return
}

func opAdd(vm *Vm) (err error) {
	dst, err := vm.fetchU8()
	if err != nil {
		return
	}
	src, err := vm.fetchU8()
	if err != nil {
		return
	}

	// uint32 addition wraps modulo 2^32.
	vm.SetReg(dst, vm.Reg(dst)+vm.Reg(src))
	return
}

func opSub(vm *Vm) (err error) {
	dst, err := vm.fetchU8()
	if err != nil {
		return
	}
	src, err := vm.fetchU8()
	if err != nil {
		return
	}

	vm.SetReg(dst, vm.Reg(dst)-vm.Reg(src))
	return
}

func opJmp(vm *Vm) (err error) {
	addr, err := vm.fetchU32()
	if err != nil {
		return
	}

	// Jump targets always land in range.
	vm.Ip = addr % uint32(len(vm.Mem))
	return
}

func opJz(vm *Vm) (err error) {
	reg, err := vm.fetchU8()
	if err != nil {
		return
	}
	addr, err := vm.fetchU32()
	if err != nil {
		return
	}

	if vm.Reg(reg) == 0 {
		vm.Ip = addr % uint32(len(vm.Mem))
	}
	return
}

func opPrint(vm *Vm) (err error) {
	reg, err := vm.fetchU8()
	if err != nil {
		return
	}

	_, err = fmt.Fprintf(vm.Output, "%d\n", vm.Reg(reg))
	return
}

func opDebug(vm *Vm) (err error) {
	_, err = fmt.Fprintln(vm.Output, vm.DebugState())
	return
}
