/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package vterrors provides errors that carry a gRPC code and a State.
//
// All errors raised by the routing and exchange layers are created here so
// that callers can branch on ErrState without matching message text. Wrap
// and Wrapf annotate an error while keeping its code and state.
//
// When LogErrStacks is set, formatting an error with %v also prints the
// call stack recorded when the error was created.
package vterrors

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc/codes"
)

// LogErrStacks controls whether printing errors includes the
// embedded stack trace in the output.
var LogErrStacks bool

type fundamental struct {
	msg   string
	code  codes.Code
	state State
	*stack
}

// New returns an error with the supplied message.
// New also records the stack trace at the point it was called.
func New(code codes.Code, message string) error {
	return &fundamental{
		msg:   message,
		code:  code,
		stack: callers(),
	}
}

// Errorf formats according to a format specifier and returns the string
// as a value that satisfies error.
// Errorf also records the stack trace at the point it was called.
func Errorf(code codes.Code, format string, args ...any) error {
	return &fundamental{
		msg:   fmt.Sprintf(format, args...),
		code:  code,
		stack: callers(),
	}
}

// NewErrorf formats according to a format specifier and returns an error
// carrying both a code and a State.
func NewErrorf(code codes.Code, state State, format string, args ...any) error {
	return &fundamental{
		msg:   fmt.Sprintf(format, args...),
		code:  code,
		state: state,
		stack: callers(),
	}
}

// NewState returns an error for state using its default code.
func NewState(state State, format string, args ...any) error {
	return &fundamental{
		msg:   fmt.Sprintf(format, args...),
		code:  state.Code(),
		state: state,
		stack: callers(),
	}
}

func (f *fundamental) Error() string { return f.msg }

func (f *fundamental) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			panicIfError(io.WriteString(s, "Code: "+f.code.String()+"\n"))
		}
		panicIfError(io.WriteString(s, f.msg))
		if LogErrStacks {
			f.stack.Format(s, verb)
		}
	case 's':
		panicIfError(io.WriteString(s, f.msg))
	case 'q':
		panicIfError(fmt.Fprintf(s, "%q", f.msg))
	}
}

// ErrorCode returns the gRPC code of the error.
func (f *fundamental) ErrorCode() codes.Code { return f.code }

// ErrorState returns the State of the error.
func (f *fundamental) ErrorState() State { return f.state }

// Code returns the error code if it's a vtError.
// If err is nil, it returns codes.OK.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var ec ErrorWithCode
	if errors.As(err, &ec) {
		return ec.ErrorCode()
	}
	// Handle some special cases.
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	return codes.Unknown
}

// ErrState returns the error state if it's a vtError.
// If err is nil, it returns Undefined.
func ErrState(err error) State {
	if err == nil {
		return Undefined
	}
	var es ErrorWithState
	if errors.As(err, &es) {
		return es.ErrorState()
	}
	return Undefined
}

// Is reports whether err carries state anywhere in its chain.
func Is(err error, state State) bool {
	return state != Undefined && ErrState(err) == state
}

// Wrap returns an error annotating err with a stack trace
// at the point Wrap is called, and the supplied message.
// If err is nil, Wrap returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrapping{
		cause: err,
		msg:   message,
		stack: callers(),
	}
}

// Wrapf returns an error annotating err with a stack trace
// at the point Wrapf is call, and the format specifier.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &wrapping{
		cause: err,
		msg:   fmt.Sprintf(format, args...),
		stack: callers(),
	}
}

type wrapping struct {
	cause error
	msg   string
	stack *stack
}

func (w *wrapping) Error() string { return w.msg + ": " + w.cause.Error() }
func (w *wrapping) Cause() error  { return w.cause }
func (w *wrapping) Unwrap() error { return w.cause }

func (w *wrapping) Format(s fmt.State, verb rune) {
	if rune('v') == verb {
		panicIfError(io.WriteString(s, w.Error()))
		if LogErrStacks {
			w.stack.Format(s, verb)
		}
		return
	}
	if rune('s') == verb || rune('q') == verb {
		panicIfError(io.WriteString(s, w.Error()))
	}
}

// since we can't return an error, let's panic if something goes wrong here
func panicIfError(_ int, err error) {
	if err != nil {
		panic(err)
	}
}

// RootCause returns the underlying cause of the error, if possible.
// An error value has a cause if it implements the following
// interface:
//
//	type causer interface {
//	       Cause() error
//	}
//
// If the error does not implement Cause, the original error will
// be returned. If the error is nil, nil will be returned without further
// investigation.
func RootCause(err error) error {
	for {
		cause := Cause(err)
		if cause == nil {
			return err
		}
		err = cause
	}
}

// Cause will return the immediate cause, if possible.
// An error value has a cause if it implements the following
// interface:
//
//	type causer interface {
//	       Cause() error
//	}
//
// If the error does not implement Cause, nil will be returned
func Cause(err error) error {
	type causer interface {
		Cause() error
	}

	causerObj, ok := err.(causer)
	if !ok {
		return nil
	}

	return causerObj.Cause()
}
