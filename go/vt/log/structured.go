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

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
)

var settings = struct {
	format string
	level  string
}{
	format: "json",
	level:  "info",
}

// output is where structured records are written.
var output io.Writer = os.Stderr

// structured is the logger of the S functions. It is nil while they go
// to glog.
var structured atomic.Pointer[slog.Logger]

// Init switches the S functions to slog when --log-fmt was given on fs.
func Init(fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	if f := fs.Lookup("log-fmt"); f == nil || !f.Changed {
		return nil
	}
	level, err := parseLevel(settings.level)
	if err != nil {
		return err
	}
	h, err := newHandler(settings.format, &slog.HandlerOptions{AddSource: true, Level: level})
	if err != nil {
		return err
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	structured.Store(logger)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log-level %q: expected debug, info, warn or error", s)
	}
	return level, nil
}

func newHandler(format string, opts *slog.HandlerOptions) (slog.Handler, error) {
	switch strings.ToLower(format) {
	case "json":
		return slog.NewJSONHandler(output, opts), nil
	case "logfmt":
		return slog.NewTextHandler(output, opts), nil
	case "console":
		return tint.NewHandler(output, &tint.Options{
			AddSource:  opts.AddSource,
			Level:      opts.Level,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(output),
		}), nil
	}
	return nil, fmt.Errorf("invalid log-fmt %q: expected json, logfmt or console", format)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// Enabled reports whether a record at level would be written. Under glog,
// debug records need -v 1 or more.
func Enabled(level slog.Level) bool {
	if logger := structured.Load(); logger != nil {
		return logger.Enabled(context.Background(), level)
	}
	return level >= slog.LevelInfo || bool(glog.V(1))
}

// InfoS logs msg and its key-value pairs at the Info level.
func InfoS(msg string, args ...any) {
	emit(slog.LevelInfo, msg, args)
}

// WarnS logs msg and its key-value pairs at the Warn level.
func WarnS(msg string, args ...any) {
	emit(slog.LevelWarn, msg, args)
}

// DebugS logs msg and its key-value pairs at the Debug level.
func DebugS(msg string, args ...any) {
	emit(slog.LevelDebug, msg, args)
}

// ErrorS logs msg and its key-value pairs at the Error level.
func ErrorS(msg string, args ...any) {
	emit(slog.LevelError, msg, args)
}

// emit must be called directly by the exported S functions, so that the
// record points at their caller.
func emit(level slog.Level, msg string, args []any) {
	logger := structured.Load()
	if logger == nil {
		emitGlog(level, msg, args)
		return
	}
	ctx := context.Background()
	if !logger.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = logger.Handler().Handle(ctx, r)
}

func emitGlog(level slog.Level, msg string, args []any) {
	// Report the caller of the S function.
	const depth = 3
	line := glogLine(msg, args)
	switch {
	case level >= slog.LevelError:
		glog.ErrorDepth(depth, line)
	case level >= slog.LevelWarn:
		glog.WarningDepth(depth, line)
	case level >= slog.LevelInfo:
		glog.InfoDepth(depth, line)
	case bool(glog.V(1)):
		glog.InfoDepth(depth, line)
	}
}

// glogLine renders msg followed by its attributes as key=value.
func glogLine(msg string, args []any) string {
	r := slog.NewRecord(time.Time{}, slog.LevelInfo, msg, 0)
	r.Add(args...)
	var b strings.Builder
	b.WriteString(msg)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})
	return b.String()
}

// SetLogger sends the S functions to logger until the returned function
// is called.
func SetLogger(logger *slog.Logger) func() {
	if logger == nil {
		return func() {}
	}
	prevDefault := slog.Default()
	prev := structured.Swap(logger)
	slog.SetDefault(logger)
	return func() {
		slog.SetDefault(prevDefault)
		structured.Store(prev)
	}
}
