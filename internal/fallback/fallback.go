// Package fallback describes which tier of a fallback chain produced a value,
// so callers can log the tier instead of swallowing every failure the same way.
package fallback

import "fmt"

type Outcome int

const (
	// Resolved means the preferred source produced the value.
	Resolved Outcome = iota
	// Fallback means a lower tier produced the value; Reason says why.
	Fallback
	// Unavailable means no tier produced a value.
	Unavailable
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Fallback:
		return "fallback"
	case Unavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result carries a value together with the tier that produced it.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Source  string
	Reason  string
}

func Ok[T any](v T, source string) Result[T] {
	return Result[T]{Value: v, Outcome: Resolved, Source: source}
}

func Degraded[T any](v T, source, reason string) Result[T] {
	return Result[T]{Value: v, Outcome: Fallback, Source: source, Reason: reason}
}

func None[T any](reason string) Result[T] {
	return Result[T]{Outcome: Unavailable, Reason: reason}
}

// Available reports whether any tier produced a value.
func (r Result[T]) Available() bool {
	return r.Outcome != Unavailable
}

func (r Result[T]) String() string {
	if r.Reason == "" {
		return fmt.Sprintf("%s (%s)", r.Outcome, r.Source)
	}
	return fmt.Sprintf("%s (%s): %s", r.Outcome, r.Source, r.Reason)
}
