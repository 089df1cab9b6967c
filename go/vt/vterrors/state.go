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

import "google.golang.org/grpc/codes"

// State names a failure condition callers branch on, independently of
// the message text.
type State int

const (
	Undefined State = iota
	EmptyNodeSet
	UnsupportedDistributionType
	ChannelBindConflict
	ChannelPoisoned
	BackpressureTimeout

	NumOfStates
)

var stateInfo = [NumOfStates]struct {
	name string
	code codes.Code
}{
	Undefined:                   {"Undefined", codes.Unknown},
	EmptyNodeSet:                {"EmptyNodeSet", codes.InvalidArgument},
	UnsupportedDistributionType: {"UnsupportedDistributionType", codes.Unimplemented},
	ChannelBindConflict:         {"ChannelBindConflict", codes.AlreadyExists},
	ChannelPoisoned:             {"ChannelPoisoned", codes.Aborted},
	BackpressureTimeout:         {"BackpressureTimeout", codes.DeadlineExceeded},
}

func (s State) valid() bool { return s >= 0 && s < NumOfStates }

func (s State) String() string {
	if !s.valid() {
		return stateInfo[Undefined].name
	}
	return stateInfo[s].name
}

// Code is the gRPC code errors in this state are raised with.
func (s State) Code() codes.Code {
	if !s.valid() {
		return codes.Unknown
	}
	return stateInfo[s].code
}

// stateForCode returns the only state raised with code, or Undefined.
func stateForCode(code codes.Code) State {
	found := Undefined
	for s := Undefined + 1; s < NumOfStates; s++ {
		if stateInfo[s].code != code {
			continue
		}
		if found != Undefined {
			return Undefined
		}
		found = s
	}
	return found
}

// ErrorWithState is implemented by errors that carry a State.
type ErrorWithState interface {
	ErrorState() State
}

// ErrorWithCode is implemented by errors that carry a gRPC code.
type ErrorWithCode interface {
	ErrorCode() codes.Code
}
