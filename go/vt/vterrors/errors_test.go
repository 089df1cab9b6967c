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

package vterrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "bind x"))
	assert.Nil(t, Wrapf(nil, "bind %s", "x"))

	poisoned := NewState(ChannelPoisoned, "exchange x poisoned")
	testcases := []struct {
		name     string
		err      error
		wantMsg  string
		wantCode codes.Code
	}{{
		name:     "plain",
		err:      Wrap(io.EOF, "reading lane 1"),
		wantMsg:  "reading lane 1: EOF",
		wantCode: codes.Unknown,
	}, {
		name:     "coded",
		err:      Wrap(New(codes.NotFound, "no exchange x"), "unbind"),
		wantMsg:  "unbind: no exchange x",
		wantCode: codes.NotFound,
	}, {
		name:     "formatted twice",
		err:      Wrapf(Wrapf(poisoned, "lane %d", 2), "node %d", 3),
		wantMsg:  "node 3: lane 2: exchange x poisoned",
		wantCode: codes.Aborted,
	}, {
		name:     "escaped percent",
		err:      Wrapf(io.EOF, "100%% read"),
		wantMsg:  "100% read: EOF",
		wantCode: codes.Unknown,
	}}
	for _, tcase := range testcases {
		t.Run(tcase.name, func(t *testing.T) {
			assert.Equal(t, tcase.wantMsg, tcase.err.Error())
			assert.Equal(t, tcase.wantCode, Code(tcase.err))
		})
	}
}

type typedNil struct{}

func (*typedNil) Error() string { return "typed nil" }

func TestCauses(t *testing.T) {
	root := New(codes.FailedPrecondition, "exchange x is finished")
	chain := Wrapf(Wrap(root, "write"), "producer %d", 1)

	assert.Nil(t, RootCause(nil))
	assert.Equal(t, (*typedNil)(nil), RootCause((*typedNil)(nil)))
	assert.Equal(t, io.EOF, RootCause(io.EOF))
	assert.Equal(t, root, RootCause(chain))
	assert.Equal(t, root, RootCause(root))
	assert.ErrorIs(t, chain, root)

	assert.Nil(t, Cause(nil))
	assert.Nil(t, Cause(root))
	assert.Nil(t, Cause(io.EOF))
	assert.Equal(t, root, Cause(Wrap(root, "once")))
}

//go:noinline
func bindFails() error { return Wrap(io.ErrNoProgress, "bind") }

//go:noinline
func openFails() error { return bindFails() }

func TestStackFormat(t *testing.T) {
	err := openFails()
	assert.NotContains(t, fmt.Sprintf("%v", err), "bindFails")

	LogErrStacks = true
	defer func() { LogErrStacks = false }()
	got := fmt.Sprintf("%v", err)
	assert.True(t, strings.HasPrefix(got, "bind: "), got)
	assert.Contains(t, got, "bindFails")
	assert.Contains(t, got, "openFails")
}

func TestCode(t *testing.T) {
	testcases := []struct {
		in   error
		want codes.Code
	}{{
		in:   nil,
		want: codes.OK,
	}, {
		in:   errors.New("generic"),
		want: codes.Unknown,
	}, {
		in:   New(codes.Canceled, "generic"),
		want: codes.Canceled,
	}, {
		in:   fmt.Errorf("std wrap: %w", New(codes.Aborted, "inner")),
		want: codes.Aborted,
	}, {
		in:   context.Canceled,
		want: codes.Canceled,
	}, {
		in:   context.DeadlineExceeded,
		want: codes.DeadlineExceeded,
	}}
	for _, tcase := range testcases {
		assert.Equal(t, tcase.want, Code(tcase.in), "Code(%v)", tcase.in)
	}
}

func TestStates(t *testing.T) {
	testcases := []struct {
		state State
		code  codes.Code
	}{
		{EmptyNodeSet, codes.InvalidArgument},
		{UnsupportedDistributionType, codes.Unimplemented},
		{ChannelBindConflict, codes.AlreadyExists},
		{ChannelPoisoned, codes.Aborted},
		{BackpressureTimeout, codes.DeadlineExceeded},
	}
	for _, tcase := range testcases {
		t.Run(tcase.state.String(), func(t *testing.T) {
			err := NewState(tcase.state, "boom %d", 1)
			assert.Equal(t, "boom 1", err.Error())
			assert.Equal(t, tcase.code, Code(err))
			assert.Equal(t, tcase.state, ErrState(err))
			assert.True(t, Is(Wrapf(err, "ctx"), tcase.state))
			assert.Equal(t, tcase.state, ErrState(Wrap(err, "outer")))
		})
	}
	assert.Equal(t, Undefined, ErrState(nil))
	assert.Equal(t, Undefined, ErrState(io.EOF))
	assert.False(t, Is(io.EOF, Undefined))
	assert.Equal(t, "Undefined", State(-3).String())
}

func TestWrapping(t *testing.T) {
	err1 := Errorf(codes.Unavailable, "foo")
	err2 := Wrapf(err1, "bar")
	err3 := Wrapf(err2, "baz")
	errorWithoutStack := fmt.Sprintf("%v", err3)

	LogErrStacks = true
	errorWithStack := fmt.Sprintf("%v", err3)
	LogErrStacks = false

	assert.Equal(t, "baz: bar: foo", err3.Error())
	assert.Equal(t, "baz: bar: foo", errorWithoutStack)
	assert.NotContains(t, errorWithoutStack, "TestWrapping")
	assert.Contains(t, errorWithStack, "baz: bar: foo")
	assert.Contains(t, errorWithStack, "TestWrapping")
	assert.Equal(t, "Code: Unavailable\nfoo", fmt.Sprintf("%+v", err1))
}

func TestGRPCRoundTrip(t *testing.T) {
	assert.Nil(t, ToGRPC(nil))
	assert.Nil(t, FromGRPC(nil))
	assert.Equal(t, io.EOF, FromGRPC(io.EOF))

	err := NewState(ChannelPoisoned, "lane 2 poisoned")
	gerr := ToGRPC(err)
	st, ok := status.FromError(gerr)
	require.True(t, ok)
	assert.Equal(t, codes.Aborted, st.Code())
	assert.Equal(t, "lane 2 poisoned", st.Message())

	back := FromGRPC(gerr)
	assert.Equal(t, codes.Aborted, Code(back))
	assert.Equal(t, ChannelPoisoned, ErrState(back))
	assert.Equal(t, "lane 2 poisoned", back.Error())

	long := New(codes.Internal, strings.Repeat("x", 9000))
	st, _ = status.FromError(ToGRPC(long))
	assert.Contains(t, st.Message(), "truncated")
	assert.Less(t, len(st.Message()), 9000)
}
