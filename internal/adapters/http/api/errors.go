package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// opError tags an error with the handler operation that produced it and,
// optionally, a sentinel kind for errors.Is.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	switch {
	case e.kind != nil && e.err != nil:
		return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
	case e.kind != nil:
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	default:
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
}

func (e *opError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

// Wrap annotates err with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

// WrapKind annotates err with op and marks it as kind.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// NewKind returns an error of the given kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}
