package game

import (
	"fmt"

	"github.com/sanity-io/litter"
)

// ConfigurationError reports an invalid tournament setup: too few
// seats, a malformed blinds schedule, a non-positive stack. It is
// returned before any cards move, never during play.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvariantError reports an impossible game state, such as chips
// appearing or vanishing mid-hand. It is fatal: the engine halts the
// tournament rather than continue from corrupted state. State carries
// a dump of whatever the check was looking at when it failed.
type InvariantError struct {
	Reason string
	State  string
}

func (e *InvariantError) Error() string {
	if e.State == "" {
		return "invariant violated: " + e.Reason
	}
	return "invariant violated: " + e.Reason + "\n" + e.State
}

func invariantf(state any, format string, args ...any) *InvariantError {
	err := &InvariantError{Reason: fmt.Sprintf(format, args...)}
	if state != nil {
		err.State = litter.Sdump(state)
	}
	return err
}
