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
	"errors"
	"io"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// grpcMessageLimit keeps messages under the 8 KiB trailer size most
// gRPC clients accept, with room left for the status framing.
const grpcMessageLimit = 8*1024 - 512

const truncatedSuffix = " [...] [remainder of the error is truncated because gRPC has a size limit on errors.]"

func grpcMessage(err error) string {
	msg := err.Error()
	if len(msg) > grpcMessageLimit {
		msg = msg[:grpcMessageLimit] + truncatedSuffix
	}
	return msg
}

// ToGRPC converts err into a gRPC status error that carries its code.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(Code(err), grpcMessage(err))
}

// FromGRPC turns a gRPC status error back into a vterrors error. io.EOF
// passes through so stream readers can keep comparing against it. The
// State is restored when a single state owns the code.
func FromGRPC(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	s, ok := status.FromError(err)
	if !ok {
		return NewErrorf(codes.Unknown, Undefined, "%s", err.Error())
	}
	return NewErrorf(s.Code(), stateForCode(s.Code()), "%s", s.Message())
}
