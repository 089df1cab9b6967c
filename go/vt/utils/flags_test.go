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

package utils

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashed(t *testing.T) {
	assert.Equal(t, "lane-capacity", dashed("lane_capacity"))
	assert.Equal(t, "a-b-c", dashed("a-b_c"))
	assert.Equal(t, "example", dashed("example"))
}

// testFlagVar registers a flag through setter and checks it parses.
func testFlagVar[T any](t *testing.T, name string, def T, arg string, want T, setter func(fs *pflag.FlagSet, p *T, name string, def T, usage string)) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var value T
	setter(fs, &value, name, def, "usage")
	flagName := dashed(name)

	f := fs.Lookup(flagName)
	require.NotNil(t, f, "flag %q not registered", flagName)
	assert.Equal(t, def, value)

	require.NoError(t, fs.Parse([]string{"--" + flagName + "=" + arg}))
	assert.Equal(t, want, value)
}

func TestSetFlagVars(t *testing.T) {
	testFlagVar(t, "quantum", 100, "7", 7, SetFlagIntVar)
	testFlagVar(t, "strategy", "hash", "modulo", "modulo", SetFlagStringVar)
	testFlagVar(t, "poll-interval", time.Millisecond, "2s", 2*time.Second, SetFlagDurationVar)
	testFlagVar(t, "pause_threshold", 0.5, "0.75", 0.75, SetFlagFloat64Var)
	testFlagVar(t, "nodes", []string{"a"}, "x,y", []string{"x", "y"}, SetFlagStringSliceVar)
}

func TestNormalizeUnderscoresToDashes(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetNormalizeFunc(NormalizeUnderscoresToDashes)
	var n int
	SetFlagIntVar(fs, &n, "lane-capacity", 1, "usage")
	require.NoError(t, fs.Parse([]string{"--lane_capacity=5"}))
	assert.Equal(t, 5, n)

	assert.EqualValues(t, "log_dir", NormalizeUnderscoresToDashes(fs, "log_dir"))
	assert.EqualValues(t, "a-b_c", NormalizeUnderscoresToDashes(fs, "a-b_c"))

	var v maxFlag
	SetFlagVar(fs, &v, "max_rows", "usage")
	require.NoError(t, fs.Parse([]string{"--max-rows=3"}))
	assert.Equal(t, "3", v.String())
}

type maxFlag struct{ val string }

func (m *maxFlag) Set(s string) error { m.val = s; return nil }
func (m *maxFlag) String() string     { return m.val }
func (m *maxFlag) Type() string       { return "string" }
