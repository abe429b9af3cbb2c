// Package checkpoint decorates errors with the file and line of the call
// site, building up something similar to a stack trace while the error
// travels up through the layers of the driver.
// Every error attached to a checkpoint stays visible to errors.Is and
// errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

type checkpoint struct {
	err  error
	prev error

	callerOk bool
	file     string
	line     int
}

// From wraps err in a new checkpoint carrying the caller information.
// It returns nil if err is nil.
func From(err error) error {
	// io.EOF and io.ErrUnexpectedEOF must stay comparable by identity.
	// https://github.com/golang/go/issues/39155
	if err == io.EOF {
		return io.EOF
	}
	if err == io.ErrUnexpectedEOF {
		return io.ErrUnexpectedEOF
	}

	if err == nil {
		return nil
	}

	_, file, line, ok := runtime.Caller(1)

	return &checkpoint{
		err:  err,
		prev: nil,

		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

// Wrap adds a checkpoint on top of prev and attaches err as an additional
// description of the checkpoint. It returns nil if prev is nil.
// The typical use is to wrap a low level failure with a predefined sentinel:
//  var ErrSomethingWentWrong = errors.New("something went wrong")
//  func someFunction() error {
//  	err := somethingLowLevel()
//  	return checkpoint.Wrap(err, ErrSomethingWentWrong)
//  }
// Afterwards errors.Is matches both the sentinel and the low level error:
//  errors.Is(err, ErrSomethingWentWrong) // true
func Wrap(prev, err error) error {
	// io.EOF must be returned as io.EOF directly, see From.
	if prev == io.EOF {
		return io.EOF
	}

	if prev == nil {
		return nil
	}

	_, file, line, ok := runtime.Caller(1)

	return &checkpoint{
		err:  err,
		prev: prev,

		callerOk: ok,
		file:     filepath.Base(file),
		line:     line,
	}
}

func (e *checkpoint) Error() string {
	if e.prev == nil {
		if e.callerOk {
			return fmt.Sprintf("File: %s:%d\n\t%v", e.file, e.line, e.err)
		}
		return fmt.Sprintf("File: unknown\n\t%v", e.err)
	}

	// Indent the previous error if it is not a checkpoint itself so that the
	// whole trace stays readable.
	prevErrString := e.prev.Error()
	if _, ok := e.prev.(*checkpoint); !ok {
		prevErrString = "File: unknown\n\t" + strings.ReplaceAll(prevErrString, "\n", "\n\t")
	}

	if e.callerOk {
		return fmt.Sprintf("File: %s:%d\n\t%v\n%v", e.file, e.line, e.err, prevErrString)
	}
	return fmt.Sprintf("File: unknown\n\t%v\n%v", e.err, prevErrString)
}

func (e *checkpoint) Unwrap() error {
	return e.prev
}

func (e *checkpoint) Is(target error) bool {
	return errors.Is(e.err, target)
}

func (e *checkpoint) As(target interface{}) bool {
	return errors.As(e.err, target)
}
