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

// Package log sends the logging of the module to glog, or to a slog
// handler once a structured format is picked with --log-fmt.
package log

import (
	"strconv"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/spf13/pflag"

	"vitess.io/distexchange/go/vt/utils"
)

// These forward to glog.
var (
	Flush = glog.Flush

	Info     = glog.Info
	Infof    = glog.Infof
	Warning  = glog.Warning
	Warningf = glog.Warningf
	Error    = glog.Error
	Errorf   = glog.Errorf
	Fatalf   = glog.Fatalf
	V        = glog.V
)

// Level is the glog verbosity level.
type Level = glog.Level

// RegisterFlags installs the logging flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	utils.SetFlagVar(fs, maxSizeFlag{}, "log-rotate-max-size", "size in bytes at which glog rotates its files")
	utils.SetFlagStringVar(fs, &settings.format, "log-fmt", settings.format, "structured log format: json, logfmt or console; glog is used while unset")
	utils.SetFlagStringVar(fs, &settings.level, "log-level", settings.level, "minimum structured log level: debug, info, warn or error")
}

// maxSizeFlag exposes glog.MaxSize, which glog reads atomically.
type maxSizeFlag struct{}

func (maxSizeFlag) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	atomic.StoreUint64(&glog.MaxSize, n)
	return nil
}

func (maxSizeFlag) String() string {
	return strconv.FormatUint(atomic.LoadUint64(&glog.MaxSize), 10)
}

func (maxSizeFlag) Type() string {
	return "uint64"
}
