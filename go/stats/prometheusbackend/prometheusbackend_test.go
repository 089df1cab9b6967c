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

package prometheusbackend

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitess.io/distexchange/go/stats"
)

func TestPrometheusExport(t *testing.T) {
	reg := prometheus.NewRegistry()
	// Published before Init: replayed on registration.
	pauses := stats.NewCounter("PromTestPauses", "portal pauses")
	Init(reg, "xchg")

	active := stats.NewGauge("PromTestActive", "active producers")
	routed := stats.NewCountersWithSingleLabel("PromTestRouted", "rows routed", "Strategy")
	lanes := stats.NewGaugesWithSingleLabel("PromTestLaneDepth", "lane depth", "Lane")
	fn := stats.NewGaugeFunc("PromTestFunc", "func gauge", func() int64 { return 42 })
	_ = fn

	pauses.Add(2)
	active.Set(3)
	routed.Add("hash", 5)
	routed.Add("modulo", 1)
	lanes.Set("0", 4)

	expected := `
# HELP xchg_prom_test_pauses portal pauses
# TYPE xchg_prom_test_pauses counter
xchg_prom_test_pauses 2
# HELP xchg_prom_test_active active producers
# TYPE xchg_prom_test_active gauge
xchg_prom_test_active 3
# HELP xchg_prom_test_routed rows routed
# TYPE xchg_prom_test_routed counter
xchg_prom_test_routed{strategy="hash"} 5
xchg_prom_test_routed{strategy="modulo"} 1
# HELP xchg_prom_test_lane_depth lane depth
# TYPE xchg_prom_test_lane_depth gauge
xchg_prom_test_lane_depth{lane="0"} 4
# HELP xchg_prom_test_func func gauge
# TYPE xchg_prom_test_func gauge
xchg_prom_test_func 42
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"xchg_prom_test_pauses",
		"xchg_prom_test_active",
		"xchg_prom_test_routed",
		"xchg_prom_test_lane_depth",
		"xchg_prom_test_func",
	)
	require.NoError(t, err)
}

func TestBuildPromName(t *testing.T) {
	be := &PromBackend{namespace: "xchg"}
	assert.Equal(t, "xchg_rows_written", be.buildPromName("RowsWritten"))
	assert.Equal(t, "xchg_rows_written", be.buildPromName("xchg_rows_written"))
}
