package asm

// DemoProgram builds the canonical counting program: it prints 0 through 9,
// one number per line, then halts.
//
//	        load r0 0
//	        load r1 10
//	loop:   print r0
//	        load r2 1
//	        add r0 r2
//	        mov r3 r0
//	        sub r3 r1
//	        jz r3 end
//	        jmp loop
//	end:    halt
func DemoProgram() []byte {
	b := &Builder{}

	b.LoadImm(0, 0)
	b.LoadImm(1, 10)
	b.Label("loop")
	b.Print(0)
	b.LoadImm(2, 1)
	b.Add(0, 2)
	b.Mov(3, 0)
	b.Sub(3, 1)
	b.Jz(3, "end")
	b.Jmp("loop")
	b.Label("end")
	b.Halt()

	image, err := b.Link()
	if err != nil {
		panic(err)
	}

	return image
}
