package asm

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/dhowland/tinyvm/logger"
)

var log = logger.New("asm")

// Assembler is a line-oriented two-pass assembler for the machine's
// instruction set.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	Equate map[string]string // Map of equates.

	predefine map[string]string // Predefines
	builder   Builder
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to encoding bytes.
var regMap = map[string]uint8{
	"r0": 0,
	"r1": 1,
	"r2": 2,
	"r3": 3,
	"r4": 4,
	"r5": 5,
	"r6": 6,
	"r7": 7,
}

// regOf returns the encoding byte of a register name.
func (asm *Assembler) regOf(word string) (reg uint8, err error) {
	reg, ok := regMap[word]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// valueOf returns the value of a simple word. Negative values are encoded
// as their 32-bit two's complement.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	v64, err := strconv.ParseInt(word, 0, 64)
	if err != nil || v64 > 0xffffffff || v64 < -int64(0x80000000) {
		err = ErrParseNumber(word)
		return
	}

	value = uint32(v64)
	return
}

// parenEval does compile-time $(...) evaluations. Integer equates are in
// scope as Starlark globals.
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or labels.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine parses a single line: expression evaluation, equate handling
// and substitution, leading labels, then the instruction itself.
func (asm *Assembler) parseLine(line string, lineno int) (err error) {
	// Set line number.
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	// Do $() evaluations
	re := regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words := slices.DeleteFunc(strings.Split(line, " "), func(a string) bool { return len(a) == 0 })
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		return
	}

	// Check for equates
	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		err = asm.builder.Label(strings.TrimSuffix(words[0], ":"))
		if err != nil {
			return
		}
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	return asm.parseWords(words)
}

// parseWords emits the instruction named by words through the builder.
func (asm *Assembler) parseWords(words []string) (err error) {
	b := &asm.builder

	op := words[0]
	args := words[1:]

	want := map[string]int{
		"nop": 0, "halt": 0, "debug": 0,
		"load": 2, "mov": 2, "add": 2, "sub": 2,
		"jmp": 1, "jz": 2, "print": 1,
	}
	need, ok := want[op]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}
	if len(args) != need {
		err = ErrOpcodeArgs
		return
	}

	switch op {
	case "nop":
		b.Nop()
	case "halt":
		b.Halt()
	case "debug":
		b.Debug()
	case "load":
		var reg uint8
		reg, err = asm.regOf(args[0])
		if err != nil {
			return
		}
		var imm uint32
		imm, err = asm.valueOf(args[1])
		if err != nil {
			return
		}
		b.LoadImm(reg, imm)
	case "mov", "add", "sub":
		var dst, src uint8
		dst, err = asm.regOf(args[0])
		if err != nil {
			return
		}
		src, err = asm.regOf(args[1])
		if err != nil {
			return
		}
		switch op {
		case "mov":
			b.Mov(dst, src)
		case "add":
			b.Add(dst, src)
		case "sub":
			b.Sub(dst, src)
		}
	case "jmp":
		addr, label := asm.jumpTarget(args[0])
		if len(label) != 0 {
			b.Jmp(label)
		} else {
			b.JmpTo(addr)
		}
	case "jz":
		var reg uint8
		reg, err = asm.regOf(args[0])
		if err != nil {
			return
		}
		addr, label := asm.jumpTarget(args[1])
		if len(label) != 0 {
			b.Jz(reg, label)
		} else {
			b.JzTo(reg, addr)
		}
	case "print":
		var reg uint8
		reg, err = asm.regOf(args[0])
		if err != nil {
			return
		}
		b.Print(reg)
	}

	return
}

// jumpTarget interprets a jump operand as either a literal address or a
// label reference.
func (asm *Assembler) jumpTarget(word string) (addr uint32, label string) {
	addr, err := asm.valueOf(word)
	if err != nil {
		label = word
	}
	return
}

// Parse parses an input stream into a finished program image.
func (asm *Assembler) Parse(input io.Reader) (image []byte, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.builder = Builder{}
	asm.Equate = map[string]string{"LINENO": "0"}
	for equ, val := range asm.predefine {
		asm.Equate[equ] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Debugf("%v: %v", lineno, text)
		}

		line = strings.TrimSpace(strings.Split(text, ";")[0])

		err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}
	}

	// Final linking of jump labels.
	image, err = asm.builder.Link()

	return
}
