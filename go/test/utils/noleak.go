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
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// backgroundGoroutines live as long as the test binary.
var backgroundGoroutines = []goleak.Option{
	goleak.IgnoreTopFunction("github.com/golang/glog.(*fileSink).flushDaemon"),
	goleak.IgnoreTopFunction("github.com/golang/glog.(*loggingT).flushDaemon"),
	goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	goleak.IgnoreTopFunction("testing.tRunner.func1"),
}

// leakGrace is how long goroutines get to exit once a test is over.
const leakGrace = 2 * time.Second

// LeakCheckContext returns a context canceled when t finishes. A test
// that passed then fails if goroutines it started are still running.
func LeakCheckContext(t testing.TB) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	return leakCheck(t, ctx, cancel)
}

// LeakCheckContextTimeout is LeakCheckContext with a context also
// canceled after timeout.
func LeakCheckContextTimeout(t testing.TB, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	return leakCheck(t, ctx, cancel)
}

func leakCheck(t testing.TB, ctx context.Context, cancel context.CancelFunc) context.Context {
	t.Cleanup(func() {
		cancel()
		EnsureNoLeaks(t)
	})
	return ctx
}

// EnsureNoLeaks fails t if goroutines other than the background ones are
// running. It is a no-op for tests that already failed.
func EnsureNoLeaks(t testing.TB) {
	t.Helper()
	if t.Failed() {
		return
	}
	deadline := time.Now().Add(leakGrace)
	for {
		err := goleak.Find(backgroundGoroutines...)
		if err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal(err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
