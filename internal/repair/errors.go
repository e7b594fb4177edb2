package repair

import (
	"errors"
	"fmt"
)

// Kind classifies a repair failure.
type Kind int

const (
	KindNotFound            Kind = iota + 1 // no capture pattern anywhere in the file
	KindStructural                          // candidate header runs past the available bytes
	KindUnrecoverableFormat                 // structural failure survived the single re-scan
	KindIO                                  // filesystem read/write/rename failure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindStructural:
		return "STRUCTURAL"
	case KindUnrecoverableFormat:
		return "UNRECOVERABLE_FORMAT"
	case KindIO:
		return "IO"
	default:
		return unknownString
	}
}

var (
	// ErrNotFound matches failures where no page could be located.
	ErrNotFound = errors.New("repair: sync pattern not found")
	// ErrStructural matches a candidate page whose header cannot be parsed.
	ErrStructural = errors.New("repair: structural error")
	// ErrUnrecoverableFormat matches a repair aborted after the re-scan also failed.
	ErrUnrecoverableFormat = errors.New("repair: unrecoverable format")
	// ErrIO matches filesystem failures.
	ErrIO = errors.New("repair: i/o failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindStructural:
		return ErrStructural
	case KindUnrecoverableFormat:
		return ErrUnrecoverableFormat
	case KindIO:
		return ErrIO
	default:
		return nil
	}
}

// RepairError represents an error that occurred during a repair run.
// errors.Is matches it against the sentinel of its Kind.
type RepairError struct {
	Kind    Kind   // Failure class
	Op      string // Pipeline step: "scan", "read", "validate", "patch", "truncate", ...
	Offset  int64  // Absolute file offset involved, -1 when not applicable
	Message string // Human-readable error message
	Cause   error  // Underlying error, if any
}

// Error implements the error interface.
func (e *RepairError) Error() string {
	msg := fmt.Sprintf("repair %s failed", e.Op)
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset 0x%X", e.Offset)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RepairError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for e's Kind.
func (e *RepairError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func ioError(op string, offset int64, cause error) *RepairError {
	return &RepairError{Kind: KindIO, Op: op, Offset: offset, Cause: cause}
}
