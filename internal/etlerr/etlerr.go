// Package etlerr classifies pipeline failures so the entry point can report
// what kind of fault aborted a run.
//
// Classification never changes control flow: every error still propagates and
// terminates the run. Kind only makes the failure easier to diagnose.
package etlerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the coarse category of a pipeline failure.
type Kind int

const (
	// KindUnknown is reported for errors that were never classified.
	KindUnknown Kind = iota
	// KindIO covers unreadable files and directories.
	KindIO
	// KindParse covers malformed JSON and missing or mistyped record fields.
	KindParse
	// KindConstraint covers integrity violations reported by the database
	// (primary key, foreign key, NOT NULL, CHECK).
	KindConstraint
	// KindConfig covers invalid or incomplete configuration.
	KindConfig
	// KindDatabase covers every other database failure (connect, DDL, syntax).
	KindDatabase
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindConstraint:
		return "constraint"
	case KindConfig:
		return "config"
	case KindDatabase:
		return "database"
	default:
		return "unknown"
	}
}

// Error is a classified failure.
//
// Op names the operation that failed (e.g. "read song metadata", "insert
// songs"). Path, Line and Field are optional locators; Line is 1-based.
type Error struct {
	Kind  Kind
	Op    string
	Path  string
	Line  int
	Field string
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IO returns an I/O error for path.
func IO(op, path string, err error) error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}

// Parse returns a parse error located at path:line. field may be empty when
// the whole line is malformed.
func Parse(path string, line int, field string, err error) error {
	return &Error{Kind: KindParse, Path: path, Line: line, Field: field, Err: err}
}

// Constraint returns an integrity-violation error.
func Constraint(op string, err error) error {
	return &Error{Kind: KindConstraint, Op: op, Err: err}
}

// Database returns a generic database error.
func Database(op string, err error) error {
	return &Error{Kind: KindDatabase, Op: op, Err: err}
}

// Config returns a configuration error.
func Config(op string, err error) error {
	return &Error{Kind: KindConfig, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries a classified error of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// WithLocation fills Path and Line of a classified error that has none yet.
// Unclassified errors are returned unchanged.
func WithLocation(err error, path string, line int) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	if e.Path == "" {
		e.Path = path
	}
	if e.Line == 0 {
		e.Line = line
	}
	return err
}
