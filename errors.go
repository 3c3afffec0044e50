package swiftslice

import (
	"errors"
	"fmt"

	"github.com/oleg578/swiftslice/internal/swiftcsv"
)

var (
	// ErrConfiguration reports an invalid combination of caller-supplied options.
	ErrConfiguration = errors.New("swiftslice: invalid configuration")
	// ErrSource reports that the named file could not be opened or read.
	ErrSource = errors.New("swiftslice: source unavailable")
	// ErrParse reports content that cannot be tokenized as CSV records.
	ErrParse = errors.New("swiftslice: malformed CSV")
	// ErrRange reports a slice bound outside the records of the source.
	ErrRange = errors.New("swiftslice: bound out of range")
	// ErrExtraction reports a slice that passed validation but could not be
	// satisfied while reading the records.
	ErrExtraction = errors.New("swiftslice: extraction failed")
)

// Error describes a failed operation. Kind is one of the package sentinels and
// Err carries the cause, so both errors.Is(err, ErrParse) and errors.As into a
// *swiftcsv.ParseError or *fs.PathError work on the same value.
type Error struct {
	Op   string
	Kind error
	Err  error
}

// Error formats the operation, the kind and the cause.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op string, kind error, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

func wrapError(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// readError classifies a failure coming out of the record reader.
func readError(op string, err error) error {
	var perr *swiftcsv.ParseError
	if errors.As(err, &perr) {
		return wrapError(op, ErrParse, err)
	}
	return wrapError(op, ErrSource, err)
}
