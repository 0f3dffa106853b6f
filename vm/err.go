package vm

import (
	"github.com/dhowland/tinyvm/translate"
)

var f = translate.From

// ErrFetch reports an instruction fetch outside the memory image. Its value
// is the instruction pointer at the failed fetch.
type ErrFetch uint32

func (err ErrFetch) Error() string {
	return f("fetch at %d out of memory range", uint32(err))
}

func (err ErrFetch) Is(target error) (ok bool) {
	_, ok = target.(ErrFetch)
	return
}

// ErrLoad reports a program load that does not fit in the memory image.
type ErrLoad struct {
	Addr  uint32
	Size  int
	Limit int
}

func (err *ErrLoad) Error() string {
	return f("load of %d bytes at %d exceeds memory size %d", err.Size, err.Addr, err.Limit)
}
