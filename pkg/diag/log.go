package diag

import (
	"fmt"
	"io"
	"log"
	"os"
)

// LogSink writes diagnostics to a standard logger as warnings.
type LogSink struct {
	prefix string
	logger *log.Logger
}

// LogSinkOption configures LogSink.
type LogSinkOption func(*LogSink)

// WithPrefix sets the message prefix.
func WithPrefix(prefix string) LogSinkOption {
	return func(s *LogSink) {
		s.prefix = prefix
	}
}

// WithOutput redirects the logger.
func WithOutput(w io.Writer) LogSinkOption {
	return func(s *LogSink) {
		s.logger = log.New(w, "", log.LstdFlags)
	}
}

// NewLogSink creates a sink that logs to stderr.
func NewLogSink(opts ...LogSinkOption) *LogSink {
	s := &LogSink{
		prefix: "[openclimate]",
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Emit logs the diagnostic.
func (s *LogSink) Emit(d Diagnostic) {
	msg := fmt.Sprintf("%s [%s] %s", s.prefix, d.Kind, d.Message)
	if d.BatchID != "" {
		msg += fmt.Sprintf(" (batch: %s)", d.BatchID)
	}
	s.logger.Printf("WARN: %s", msg)
}

var _ Sink = (*LogSink)(nil)
