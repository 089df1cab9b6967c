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
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	var gotname string
	var gotv *Counter
	Register(func(name string, v Variable) {
		if c, ok := v.(*Counter); ok && name == "TestCounterRows" {
			gotname, gotv = name, c
		}
	})
	v := NewCounter("TestCounterRows", "help")
	assert.Equal(t, "TestCounterRows", gotname)
	assert.Same(t, v, gotv)
	v.Add(1)
	v.Add(2)
	assert.EqualValues(t, 3, v.Get())
	assert.Equal(t, "3", v.String())
	v.Reset()
	assert.EqualValues(t, 0, v.Get())
	assert.Equal(t, "help", v.Help())
}

func TestGauge(t *testing.T) {
	v := NewGauge("", "help")
	v.Set(5)
	v.Add(-2)
	assert.EqualValues(t, 3, v.Get())
}

func TestCountersWithSingleLabel(t *testing.T) {
	c := NewCountersWithSingleLabel("TestCountersRouted", "help", "Strategy", "hash")
	assert.Equal(t, "Strategy", c.Label())
	assert.Equal(t, map[string]int64{"hash": 0}, c.Counts())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add("modulo", 1)
		}()
	}
	wg.Wait()
	c.Add("hash", 4)
	assert.Equal(t, map[string]int64{"hash": 4, "modulo": 10}, c.Counts())

	var decoded map[string]int64
	require.NoError(t, json.Unmarshal([]byte(c.String()), &decoded))
	assert.Equal(t, c.Counts(), decoded)

	c.Reset("hash")
	assert.EqualValues(t, 0, c.Counts()["hash"])
	c.ResetAll()
	assert.Empty(t, c.Counts())
}

func TestGaugesWithSingleLabel(t *testing.T) {
	g := NewGaugesWithSingleLabel("", "help", "Lane")
	g.Set("0", 7)
	g.Add("0", -1)
	assert.EqualValues(t, 6, g.Counts()["0"])
}

func TestGaugeFunc(t *testing.T) {
	var n atomic.Int64
	n.Store(9)
	g := NewGaugeFunc("", "help", n.Load)
	assert.Equal(t, "9", g.String())
}

func TestPublishTwicePanics(t *testing.T) {
	NewCounter("TestPublishTwice", "")
	assert.Panics(t, func() { NewCounter("TestPublishTwice", "") })
}

func TestToSnakeCase(t *testing.T) {
	var snakeCaseTest = []struct{ input, output string }{
		{"Camel", "camel"},
		{"CamelCase", "camel_case"},
		{"CamelCaseAgain", "camel_case_again"},
		{"CCamel", "c_camel"},
		{"CCCamel", "cc_camel"},
		{"CAMEL_CASE", "camel_case"},
		{"camel-case", "camel_case"},
		{"0", "0"},
		{"0.0", "0_0"},
		{"JSON", "json"},
		{"ExchangeRowsSpilled", "exchange_rows_spilled"},
	}

	for _, tt := range snakeCaseTest {
		assert.Equal(t, tt.output, toSnakeCase(tt.input), tt.input)
	}
}

func TestSnakeMemoize(t *testing.T) {
	key := "TestMemo"
	assert.Empty(t, snakeMemoizer.memo[key])
	toSnakeCase(key)
	assert.Equal(t, "test_memo", snakeMemoizer.memo[key])
}
