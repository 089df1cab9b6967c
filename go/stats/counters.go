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

package stats

import (
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// helpText carries the description shared by every variable kind.
type helpText string

// Help returns the description of the variable.
func (h helpText) Help() string { return string(h) }

// Counter is a monotonic int64 published as an expvar.
type Counter struct {
	helpText
	n atomic.Int64
}

// NewCounter returns a Counter, published under name unless name is empty.
func NewCounter(name, help string) *Counter {
	c := &Counter{helpText: helpText(help)}
	publishNamed(name, c)
	return c
}

// Add increments the counter by delta.
func (c *Counter) Add(delta int64) { c.n.Add(delta) }

// Reset sets the counter back to zero.
func (c *Counter) Reset() { c.n.Store(0) }

// Get returns the current value.
func (c *Counter) Get() int64 { return c.n.Load() }

func (c *Counter) String() string { return strconv.FormatInt(c.Get(), 10) }

// Gauge is a Counter that may also be set directly or decremented.
type Gauge struct {
	Counter
}

// NewGauge returns a Gauge, published under name unless name is empty.
func NewGauge(name, help string) *Gauge {
	g := &Gauge{Counter: Counter{helpText: helpText(help)}}
	publishNamed(name, g)
	return g
}

// Set replaces the value of the gauge.
func (g *Gauge) Set(value int64) { g.n.Store(value) }

// labeled holds one int64 cell per tag of a single label dimension.
// Cells are created on first use and never removed except by ResetAll.
type labeled struct {
	helpText
	label string
	cells sync.Map // string -> *atomic.Int64
}

func newLabeled(help, label string, tags []string) *labeled {
	l := &labeled{helpText: helpText(help), label: label}
	for _, tag := range tags {
		l.cell(tag)
	}
	return l
}

func (l *labeled) cell(tag string) *atomic.Int64 {
	if v, ok := l.cells.Load(tag); ok {
		return v.(*atomic.Int64)
	}
	v, _ := l.cells.LoadOrStore(tag, new(atomic.Int64))
	return v.(*atomic.Int64)
}

// Add adds value to the cell for tag.
func (l *labeled) Add(tag string, value int64) { l.cell(tag).Add(value) }

// Reset zeroes the cell for tag.
func (l *labeled) Reset(tag string) { l.cell(tag).Store(0) }

// ResetAll drops every cell.
func (l *labeled) ResetAll() { l.cells.Clear() }

// Label returns the name of the label dimension.
func (l *labeled) Label() string { return l.label }

// Counts returns a snapshot of every cell.
func (l *labeled) Counts() map[string]int64 {
	out := make(map[string]int64)
	l.cells.Range(func(k, v any) bool {
		out[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	return out
}

// String renders the cells as a JSON object with sorted keys.
func (l *labeled) String() string {
	counts := l.Counts()
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	var b strings.Builder
	b.WriteByte('{')
	for i, tag := range tags {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Quote(tag))
		b.WriteString(": ")
		b.WriteString(strconv.FormatInt(counts[tag], 10))
	}
	b.WriteByte('}')
	return b.String()
}

// CountersWithSingleLabel counts events split by one label, for example
// rows routed per distribution strategy. Tags passed at construction are
// reported at zero before their first Add.
type CountersWithSingleLabel struct {
	*labeled
}

// NewCountersWithSingleLabel returns a CountersWithSingleLabel, published
// under name unless name is empty.
func NewCountersWithSingleLabel(name, help, label string, tags ...string) *CountersWithSingleLabel {
	c := &CountersWithSingleLabel{newLabeled(help, label, tags)}
	publishNamed(name, c)
	return c
}

// GaugesWithSingleLabel is the gauge flavour of CountersWithSingleLabel.
type GaugesWithSingleLabel struct {
	*labeled
}

// NewGaugesWithSingleLabel returns a GaugesWithSingleLabel, published
// under name unless name is empty.
func NewGaugesWithSingleLabel(name, help, label string, tags ...string) *GaugesWithSingleLabel {
	g := &GaugesWithSingleLabel{newLabeled(help, label, tags)}
	publishNamed(name, g)
	return g
}

// Set replaces the value for tag.
func (g *GaugesWithSingleLabel) Set(tag string, value int64) { g.cell(tag).Store(value) }

// GaugeFunc reports whatever F returns at read time.
type GaugeFunc struct {
	helpText
	F func() int64
}

// NewGaugeFunc returns a GaugeFunc, published under name unless name is empty.
func NewGaugeFunc(name, help string, f func() int64) *GaugeFunc {
	g := &GaugeFunc{helpText: helpText(help), F: f}
	publishNamed(name, g)
	return g
}

func (g *GaugeFunc) String() string { return strconv.FormatInt(g.F(), 10) }

func publishNamed(name string, v Variable) {
	if name != "" {
		publish(name, v)
	}
}
