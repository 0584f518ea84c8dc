package nnsearch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/nnsearch/distance"
	"github.com/hupe1980/nnsearch/index"
)

// ErrorKind classifies failures.
type ErrorKind int

// Error kinds.
const (
	// KindEmptyStructure: a query that needs an element ran on an empty structure.
	KindEmptyStructure ErrorKind = iota + 1
	// KindInvalidConfiguration: the index variant rejected its configuration
	// or cannot work with the distance adapter.
	KindInvalidConfiguration
	// KindInvalidArgument: a query or element was malformed.
	KindInvalidArgument
	// KindBackend: the index engine reported a failure.
	KindBackend
)

func (k ErrorKind) String() string {
	switch k {
	case KindEmptyStructure:
		return "empty structure"
	case KindInvalidConfiguration:
		return "invalid configuration"
	case KindInvalidArgument:
		return "invalid argument"
	case KindBackend:
		return "backend failure"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

var (
	// ErrEmptyStructure matches errors of KindEmptyStructure.
	ErrEmptyStructure = errors.New("empty structure")

	// ErrInvalidConfiguration matches errors of KindInvalidConfiguration.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidArgument matches errors of KindInvalidArgument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBackend matches errors of KindBackend.
	ErrBackend = errors.New("backend failure")

	// ErrInvalidK is returned when k is negative.
	ErrInvalidK = errors.New("k must not be negative")

	// ErrNegativeRadius is returned when a radius is negative or NaN.
	ErrNegativeRadius = errors.New("radius must not be negative")

	// ErrNilDistance is returned when no distance adapter is given.
	ErrNilDistance = errors.New("distance adapter is nil")

	// ErrIncompatibleEqual is returned when the equality function passed
	// with WithEqual does not match the element type.
	ErrIncompatibleEqual = errors.New("equality function does not match the element type")

	// ErrIncompatibleClone is returned when the copy function passed with
	// WithClone does not match the element type.
	ErrIncompatibleClone = errors.New("clone function does not match the element type")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindEmptyStructure:
		return ErrEmptyStructure
	case KindInvalidConfiguration:
		return ErrInvalidConfiguration
	case KindInvalidArgument:
		return ErrInvalidArgument
	default:
		return ErrBackend
	}
}

// Error is the error returned by every operation of a Searcher.
// The cause can be accessed via errors.Unwrap.
type Error struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("nnsearch: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("nnsearch: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the kind of err, if it is or wraps an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func newError(op string, kind ErrorKind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// translateError classifies an error surfaced by op.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return err
	}

	switch {
	case errors.Is(err, ErrEmptyStructure):
		return newError(op, KindEmptyStructure, err)
	case errors.Is(err, index.ErrInvalidConfiguration):
		return newError(op, KindInvalidConfiguration, err)
	case errors.Is(err, distance.ErrDimensionMismatch),
		errors.Is(err, ErrInvalidK),
		errors.Is(err, ErrNegativeRadius),
		errors.Is(err, ErrNilDistance),
		errors.Is(err, ErrIncompatibleEqual),
		errors.Is(err, ErrIncompatibleClone):
		return newError(op, KindInvalidArgument, err)
	default:
		return newError(op, KindBackend, err)
	}
}
