package main

import (
	"flag"
	"log"
	"os"

	"github.com/dhowland/tinyvm/asm"
	"github.com/dhowland/tinyvm/vm"
)

func main() {
	var assemble string
	var loadAddr uint
	var maxSteps int
	var verbose bool

	flag.StringVar(&assemble, "a", "", ".asm file to assemble and run")
	flag.UintVar(&loadAddr, "l", 0, "Load address")
	flag.IntVar(&maxSteps, "n", 10_000_000, "Step budget")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() > 1 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args()[1:])
	}

	// A raw program image from -a, a positional path, or the built-in demo.
	var image []byte

	switch {
	case len(assemble) != 0:
		inf, err := os.Open(assemble)
		if err != nil {
			log.Fatalf("%v: %v", assemble, err)
		}
		defer inf.Close()

		as := &asm.Assembler{Verbose: verbose}
		image, err = as.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", assemble, err)
		}
	case flag.NArg() == 1:
		path := flag.Arg(0)
		var err error
		image, err = os.ReadFile(path)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
	default:
		image = asm.DemoProgram()
	}

	machine := vm.NewVm(vm.MEMORY_SIZE)
	machine.Verbose = verbose
	machine.Output = os.Stdout

	err := machine.Load(image, uint32(loadAddr))
	if err != nil {
		log.Fatalf("%v", err)
	}

	// Run contains all faults; the process exits normally whether the
	// machine halted, crashed, or ran out of budget.
	machine.Run(maxSteps)
}
