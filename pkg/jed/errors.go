package jed

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the parser wraps exactly one of them.
var (
	ErrFraming   = errors.New("jed: framing error")
	ErrGrammar   = errors.New("jed: grammar error")
	ErrIntegrity = errors.New("jed: integrity error")
)

// ErrMissingSTX is returned when the input holds no start-of-text byte.
var ErrMissingSTX = fmt.Errorf("%w: start marker (STX) not found", ErrFraming)

// RecordError reports a record that could not be decoded.
type RecordError struct {
	Line   int
	Record string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("jed: line %d: %s: %q", e.Line, e.Reason, e.Record)
}

func (e *RecordError) Unwrap() error { return ErrGrammar }

// ChecksumError indicates the fuse data does not sum to the declared C field.
type ChecksumError struct {
	Line     int
	Declared uint16
	Computed uint16
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("jed: wrong checksum: declared 0x%04X, computed 0x%04X", e.Declared, e.Computed)
}

func (e *ChecksumError) Unwrap() error { return ErrIntegrity }

// FuseCountError indicates the data areas do not cover the declared QF count.
type FuseCountError struct {
	Line     int
	Declared int
	Computed int
}

func (e *FuseCountError) Error() string {
	if e.Computed < e.Declared {
		return fmt.Sprintf("jed: not all fuses are programmed: declared %d, found %d", e.Declared, e.Computed)
	}
	return fmt.Sprintf("jed: more fuses programmed than declared: declared %d, found %d", e.Declared, e.Computed)
}

func (e *FuseCountError) Unwrap() error { return ErrIntegrity }

// ErrorLine returns the 1-based source line an error refers to, or 0 when the
// error carries no position.
func ErrorLine(err error) int {
	var rec *RecordError
	if errors.As(err, &rec) {
		return rec.Line
	}
	var sum *ChecksumError
	if errors.As(err, &sum) {
		return sum.Line
	}
	var cnt *FuseCountError
	if errors.As(err, &cnt) {
		return cnt.Line
	}
	return 0
}

func recordErr(f Frame, reason string) error {
	rec := ""
	if len(f.Lines) > 0 {
		rec = f.Lines[0]
	}
	return &RecordError{Line: f.Line, Record: rec, Reason: reason}
}
