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

// Package utils registers command line flags under their dashed names.
package utils

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"
)

// glogFlags keep their underscores: glog looks them up by those names.
var glogFlags = map[string]bool{
	"log_dir":          true,
	"log_link":         true,
	"log_backtrace_at": true,
}

func dashed(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

func register[T any](set func(*pflag.FlagSet, *T, string, T, string), fs *pflag.FlagSet, p *T, name string, def T, usage string) {
	set(fs, p, dashed(name), def, usage)
}

func SetFlagIntVar(fs *pflag.FlagSet, p *int, name string, def int, usage string) {
	register((*pflag.FlagSet).IntVar, fs, p, name, def, usage)
}

func SetFlagStringVar(fs *pflag.FlagSet, p *string, name string, def string, usage string) {
	register((*pflag.FlagSet).StringVar, fs, p, name, def, usage)
}

func SetFlagDurationVar(fs *pflag.FlagSet, p *time.Duration, name string, def time.Duration, usage string) {
	register((*pflag.FlagSet).DurationVar, fs, p, name, def, usage)
}

func SetFlagFloat64Var(fs *pflag.FlagSet, p *float64, name string, def float64, usage string) {
	register((*pflag.FlagSet).Float64Var, fs, p, name, def, usage)
}

func SetFlagStringSliceVar(fs *pflag.FlagSet, p *[]string, name string, def []string, usage string) {
	register((*pflag.FlagSet).StringSliceVar, fs, p, name, def, usage)
}

// SetFlagVar registers a flag implementing pflag.Value.
func SetFlagVar(fs *pflag.FlagSet, value pflag.Value, name, usage string) {
	fs.Var(value, dashed(name), usage)
}

var warned sync.Map

// NormalizeUnderscoresToDashes lets a flag registered as "lane-capacity"
// be given as "lane_capacity", with a warning the first time. Install it
// with fs.SetNormalizeFunc.
func NormalizeUnderscoresToDashes(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if glogFlags[name] || !strings.Contains(name, "_") || strings.Contains(name, "-") {
		return pflag.NormalizedName(name)
	}
	normalized := dashed(name)
	if _, seen := warned.LoadOrStore(name, true); !seen {
		fmt.Fprintf(os.Stderr, "flag --%s is deprecated, use --%s\n", name, normalized)
	}
	return pflag.NormalizedName(normalized)
}
