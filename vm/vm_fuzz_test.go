package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// FuzzRun feeds arbitrary byte programs to the machine. Whatever the bytes
// decode to, Run must contain every fault and finish inside its budget.
func FuzzRun(f *testing.F) {
	f.Add([]byte{byte(OP_NOP), byte(OP_HALT)}, uint32(0))
	f.Add([]byte{byte(OP_JMP), 0, 0, 0, 0}, uint32(0))
	f.Add([]byte{byte(OP_LOAD_REG_IMM), 9, 0xde, 0xad, 0xbe, 0xef}, uint32(16))
	f.Add([]byte{byte(OP_JZ), 0, 0xff, 0xff, 0xff, 0xff}, uint32(100))
	f.Add([]byte{0x77, 0x88, 0x99}, uint32(0))
	f.Add([]byte{byte(OP_DEBUG_STATE), byte(OP_PRINT_REG), 200}, uint32(0))

	f.Fuzz(func(t *testing.T, program []byte, addr uint32) {
		assert := assert.New(t)

		machine := NewVm(4096)
		output := &bytes.Buffer{}
		machine.Output = output

		err := machine.Load(program, addr%4096)
		if err != nil {
			// Image does not fit; nothing to run.
			return
		}

		machine.Run(1000)

		assert.LessOrEqual(machine.Steps, 1000)
		assert.True(strings.Contains(output.String(), "Stopped after"))
		if machine.Steps < 1000 {
			assert.False(machine.Running)
		}
	})
}
