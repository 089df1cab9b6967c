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
	"fmt"
	"path"
	"runtime"
	"strconv"
)

// stack represents a stack of program counters.
type stack []uintptr

func callers() *stack {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	var st stack = pcs[0:n]
	return &st
}

func (s *stack) Format(st fmt.State, verb rune) {
	if s == nil || verb != 'v' {
		return
	}
	frames := runtime.CallersFrames(*s)
	for {
		frame, more := frames.Next()
		fn := frame.Function
		if fn == "" {
			fn = "unknown"
		}
		panicIfError(fmt.Fprintf(st, "\n%s\n\t%s:%s", fn, path.Base(frame.File), strconv.Itoa(frame.Line)))
		if !more {
			break
		}
	}
}
