package testutil

import (
	"io"

	"github.com/phuslu/log"
)

// NewTestLogger returns a logger that discards everything, keeping test
// output readable.
func NewTestLogger() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}
