package vm

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dhowland/tinyvm/logger"
)

var log = logger.New("vm")

const (
	MEMORY_SIZE = 64 * 1024 // Default memory image size, in bytes.
	NUM_REGS    = 8         // Number of general purpose registers.
)

// Vm is the simulation context for the bytecode machine.
//
// Memory, registers, and the instruction pointer persist across Run calls;
// a second Run continues from wherever the previous one stopped.
type Vm struct {
	Verbose bool      // Set to enable verbose logging.
	Output  io.Writer // Sink for PRINT_REG, diagnostics, and the run summary.

	Mem      []byte           // Memory image.
	Register [NUM_REGS]uint32 // Register bank.
	Ip       uint32           // Current instruction pointer.

	Running bool          // True while a run is in progress.
	Steps   int           // Instructions completed by the current run.
	OpCount int           // Opcodes fetched since creation.
	Elapsed time.Duration // Wall-clock duration of the last run.
}

// NewVm creates a new machine with a memory image of the given size.
// A size of zero or less selects MEMORY_SIZE.
func NewVm(memsize int) (vm *Vm) {
	if memsize <= 0 {
		memsize = MEMORY_SIZE
	}

	vm = &Vm{
		Mem:    make([]byte, memsize),
		Output: os.Stdout,
	}

	return
}

// Load copies a program image into memory at addr, overwriting existing
// content, and resets the instruction pointer to addr. The image must fit
// entirely within memory.
func (vm *Vm) Load(image []byte, addr uint32) (err error) {
	if int(addr)+len(image) > len(vm.Mem) {
		err = &ErrLoad{Addr: addr, Size: len(image), Limit: len(vm.Mem)}
		return
	}

	copy(vm.Mem[addr:], image)
	vm.Ip = addr

	return
}

// fetchU8 returns the byte at the instruction pointer and advances it.
func (vm *Vm) fetchU8() (value uint8, err error) {
	at := int(vm.Ip)
	if at >= len(vm.Mem) {
		err = ErrFetch(vm.Ip)
		return
	}

	value = vm.Mem[at]
	vm.Ip += 1

	return
}

// fetchU32 returns the big-endian word at the instruction pointer and
// advances it by 4.
func (vm *Vm) fetchU32() (value uint32, err error) {
	at := int(vm.Ip)
	if at+4 > len(vm.Mem) {
		err = ErrFetch(vm.Ip)
		return
	}

	value = binary.BigEndian.Uint32(vm.Mem[at:])
	vm.Ip += 4

	return
}

// Reg returns the register selected by an instruction encoding byte.
// Encodings are reduced modulo NUM_REGS, so selection never faults;
// an out-of-range encoding aliases an existing register.
func (vm *Vm) Reg(sel uint8) uint32 {
	return vm.Register[int(sel)%NUM_REGS]
}

// SetReg writes the register selected by an instruction encoding byte,
// with the same modulo reduction as Reg.
func (vm *Vm) SetReg(sel uint8, value uint32) {
	vm.Register[int(sel)%NUM_REGS] = value
}

// Step fetches and executes a single instruction.
//
// An unknown opcode is not an error: it is reported to the output sink with
// its own address and stops the machine. Only an out-of-range memory access
// returns an error.
func (vm *Vm) Step() (err error) {
	at := vm.Ip

	opcode, err := vm.fetchU8()
	if err != nil {
		return
	}

	vm.OpCount += 1

	inst := instructionTable[opcode]
	if inst == nil {
		fmt.Fprintf(vm.Output, "Unknown opcode 0x%02X at %d\n", opcode, at)
		vm.Running = false
		return
	}

	if vm.Verbose {
		log.Debugf("%04x: %v", at, inst.name)
	}

	err = inst.execute(vm)

	return
}

// Run drives Step until the machine halts, faults, or completes maxSteps
// instructions. The budget bounds instruction count, not wall time.
//
// Run never returns abnormally: faults are reported to the output sink and
// leave the machine stopped. Every run ends with a one-line summary of
// steps, opcode count, and elapsed time.
func (vm *Vm) Run(maxSteps int) {
	vm.Running = true
	vm.Steps = 0
	start := time.Now()

	vm.drive(maxSteps)

	vm.Elapsed = time.Since(start)
	fmt.Fprintf(vm.Output, "Stopped after %d steps, opcount=%d, elapsed=%.4fs\n",
		vm.Steps, vm.OpCount, vm.Elapsed.Seconds())
}

// drive is the contained stepping loop. Any error or panic raised by a step
// becomes a crash diagnostic and a stopped machine. The faulting step does
// not count against the step total.
func (vm *Vm) drive(maxSteps int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(vm.Output, "VM crashed: %v\n", r)
			vm.Running = false
		}
	}()

	for vm.Running && vm.Steps < maxSteps {
		err := vm.Step()
		if err != nil {
			fmt.Fprintf(vm.Output, "VM crashed: %v\n", err)
			vm.Running = false
			return
		}
		vm.Steps += 1
	}
}

// DebugState returns a one-line snapshot of the instruction pointer and
// every register, in register order.
func (vm *Vm) DebugState() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "IP=%d", vm.Ip)
	for n, value := range vm.Register {
		fmt.Fprintf(&sb, " r%d=%d", n, value)
	}

	return sb.String()
}

// String returns the current machine state as a string.
func (vm *Vm) String() string {
	return vm.DebugState()
}
