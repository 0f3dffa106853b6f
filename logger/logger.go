// Package logger constructs named module loggers with a shared stderr
// backend.
package logger

import (
	"os"

	"github.com/op/go-logging"
)

var format = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{module} %{level:.4s} %{message}`,
)

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	leveled.SetLevel(logging.DEBUG, "")
	logging.SetBackend(leveled)
}

// New returns the logger for the named module.
func New(module string) *logging.Logger {
	return logging.MustGetLogger(module)
}
