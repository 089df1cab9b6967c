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

// Package utils holds helpers shared by the tests of this module.
package utils

import (
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// MustMatchFn returns a function failing the test when want and got
// differ. Unexported fields are compared, nil and empty slices and maps
// are equal, and fields whose path step is in ignoredFields, such as
// ".cursor", are skipped:
//
//	var mustMatch = utils.MustMatchFn(".cursor")
//	mustMatch(t, want, got, "locator")
func MustMatchFn(ignoredFields ...string) func(t testing.TB, want, got any, errMsg ...string) {
	opts := cmp.Options{
		cmp.Exporter(func(reflect.Type) bool { return true }),
		cmpopts.EquateEmpty(),
		ignorePaths(ignoredFields),
	}
	return func(t testing.TB, want, got any, errMsg ...string) {
		t.Helper()
		if diff := cmp.Diff(want, got, opts); diff != "" {
			t.Fatalf("%s (-want +got):\n%s", strings.Join(errMsg, " "), diff)
		}
	}
}

// MustMatch compares without ignoring any field.
var MustMatch = MustMatchFn()

func ignorePaths(names []string) cmp.Option {
	return cmp.FilterPath(func(p cmp.Path) bool {
		for _, step := range p {
			if slices.Contains(names, step.String()) {
				return true
			}
		}
		return false
	}, cmp.Ignore())
}
