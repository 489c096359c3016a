// Package diag carries non-fatal diagnostics (unknown actors, missing
// sections) from the fetch and filter layers to the caller. Diagnostics are
// delivered to an injected Sink instead of a process-wide warning stream.
package diag

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openearth/openclimate/pkg/errors"
)

// Kind identifies the diagnostic category.
type Kind int

const (
	KindNotFound Kind = iota
	KindIncompleteData
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindIncompleteData:
		return "incomplete_data"
	default:
		return "unknown"
	}
}

// Code maps the kind onto the error taxonomy.
func (k Kind) Code() errors.Code {
	switch k {
	case KindNotFound:
		return errors.CodeNotFound
	case KindIncompleteData:
		return errors.CodeIncompleteData
	default:
		return errors.CodeUnknown
	}
}

// Diagnostic is a single structured, non-fatal event.
type Diagnostic struct {
	ID        string
	BatchID   string
	Kind      Kind
	ActorID   string
	Section   string
	Message   string
	Timestamp time.Time
}

// NotFound builds the diagnostic for an id that did not resolve.
func NotFound(batchID, actorID string) Diagnostic {
	return Diagnostic{
		ID:        uuid.NewString(),
		BatchID:   batchID,
		Kind:      KindNotFound,
		ActorID:   actorID,
		Message:   fmt.Sprintf("ActorIDError: %s was not found", actorID),
		Timestamp: time.Now(),
	}
}

// IncompleteData builds the diagnostic for an actor lacking a section.
func IncompleteData(actorID, section string) Diagnostic {
	return Diagnostic{
		ID:        uuid.NewString(),
		Kind:      KindIncompleteData,
		ActorID:   actorID,
		Section:   section,
		Message:   fmt.Sprintf("NoDataError: %s has no %s data", actorID, section),
		Timestamp: time.Now(),
	}
}

// MalformedSection builds the IncompleteData diagnostic for an actor whose
// section was present but could not be decoded.
func MalformedSection(actorID, section string, cause error) Diagnostic {
	d := IncompleteData(actorID, section)
	d.Message = fmt.Sprintf("NoDataError: %s has malformed %s data: %v", actorID, section, cause)
	return d
}

// Err converts the diagnostic into a coded error.
func (d Diagnostic) Err() error {
	if d.Kind == KindIncompleteData {
		return errors.IncompleteData(d.ActorID, d.Section)
	}
	return errors.NotFound(d.ActorID)
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Kind.Code(), d.Message)
}

// Sink receives diagnostics. Implementations must be safe for concurrent use;
// the fetcher emits from its request goroutines.
type Sink interface {
	Emit(d Diagnostic)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(d Diagnostic)

// Emit calls f(d).
func (f SinkFunc) Emit(d Diagnostic) { f(d) }

// Collector stores diagnostics in memory.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Emit records d.
func (c *Collector) Emit(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// All returns a copy of the recorded diagnostics in emission order.
func (c *Collector) All() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns how many diagnostics of kind k were recorded.
func (c *Collector) Count(k Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Kind == k {
			n++
		}
	}
	return n
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Reset drops all recorded diagnostics.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

type discard struct{}

func (discard) Emit(Diagnostic) {}

// Discard drops every diagnostic.
var Discard Sink = discard{}

// Multi fans a diagnostic out to several sinks. Nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return SinkFunc(func(d Diagnostic) {
		for _, s := range live {
			s.Emit(d)
		}
	})
}

// Gate returns Discard when suppressed is true, otherwise s (or Discard when
// s is nil).
func Gate(s Sink, suppressed bool) Sink {
	if suppressed || s == nil {
		return Discard
	}
	return s
}
