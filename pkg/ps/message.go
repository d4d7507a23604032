package ps

import (
	"fmt"
	"io"
	"os"
)

// Messages is the diagnostics sink for one tool invocation. Progress
// notes go to Out unless Quiet is set; fatal conditions are returned to
// the caller as errors, never printed here.
type Messages struct {
	Quiet bool
	Out   io.Writer
}

// NewMessages creates a sink writing to stderr.
func NewMessages(quiet bool) *Messages {
	return &Messages{Quiet: quiet, Out: os.Stderr}
}

// Notef prints an informational message unless the sink is quiet.
func (m *Messages) Notef(format string, args ...interface{}) {
	if m == nil || m.Quiet || m.Out == nil {
		return
	}
	fmt.Fprintf(m.Out, format, args...)
}
