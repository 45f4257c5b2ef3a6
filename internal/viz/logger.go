package viz

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Logger renders thermo diagnostics. Lines starting with WARNING or
// ERROR get the matching style; everything else is muted.
type Logger struct {
	mu sync.Mutex
	w  io.Writer
}

func NewLogger(w io.Writer) *Logger { return &Logger{w: w} }

func (l *Logger) Logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	switch {
	case strings.HasPrefix(msg, "WARNING"):
		msg = WarnStyle.Render(msg)
	case strings.HasPrefix(msg, "ERROR"):
		msg = ErrorStyle.Render(msg)
	default:
		msg = Subtle.Render(msg)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, msg)
}
