package store

import (
	"errors"
	"fmt"
)

// Kind classifies store failures so callers can pick their policy.
type Kind int

const (
	KindRead Kind = iota + 1
	KindCorrupt
	KindWrite
	KindDelete
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindCorrupt:
		return "corrupt"
	case KindWrite:
		return "write"
	case KindDelete:
		return "delete"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Error is the outcome of a failed store operation.
type Error struct {
	Op   string
	Kind Kind
	Date string
	Err  error
}

func (e *Error) Error() string {
	if e.Date != "" {
		return fmt.Sprintf("store %s %s (%s): %v", e.Op, e.Kind, e.Date, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or 0 if err is not a store error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// IsDegraded reports whether err left a usable (empty) result behind.
func IsDegraded(err error) bool {
	k := KindOf(err)
	return k == KindRead || k == KindCorrupt
}
