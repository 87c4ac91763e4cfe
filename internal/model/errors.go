package model

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindUsage   ErrorKind = "usage"
	KindConfig  ErrorKind = "config"
	KindNetwork ErrorKind = "network"
	KindParse   ErrorKind = "parse"
	KindIO      ErrorKind = "io"
)

// Error tags an error with the stage of the run that produced it.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

func Errorf(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost tagged error, or "" when err
// carries none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if KindOf(err) == KindUsage {
		return 2
	}
	return 1
}
