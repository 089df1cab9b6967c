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

// Package prometheusbackend exports the variables of the stats package
// as Prometheus collectors.
package prometheusbackend

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"vitess.io/distexchange/go/stats"
	"vitess.io/distexchange/go/vt/log"
)

// labeledVar is satisfied by the single label counter and gauge kinds.
type labeledVar interface {
	stats.Variable
	Label() string
	Counts() map[string]int64
}

// PromBackend is a stats.NewVarHook that mirrors every published
// variable into a Prometheus registry.
type PromBackend struct {
	namespace string
	reg       prometheus.Registerer
}

// Init registers a backend for namespace on reg. Every stats variable
// published before or after the call is exported. A nil reg means
// prometheus.DefaultRegisterer.
func Init(reg prometheus.Registerer, namespace string) *PromBackend {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	be := &PromBackend{namespace: namespace, reg: reg}
	stats.Register(be.export)
	return be
}

func (be *PromBackend) export(name string, v stats.Variable) {
	c, ok := be.collectorFor(name, v)
	if !ok {
		log.Infof("prometheus: not exporting %s of unsupported type %T", name, v)
		return
	}
	var are prometheus.AlreadyRegisteredError
	if err := be.reg.Register(c); err != nil && !errors.As(err, &are) {
		log.Errorf("prometheus: cannot register %s: %v", name, err)
	}
}

func (be *PromBackend) collectorFor(name string, v stats.Variable) (prometheus.Collector, bool) {
	fq := be.buildPromName(name)
	switch st := v.(type) {
	case *stats.Gauge:
		return newValueCollector(fq, st.Help(), prometheus.GaugeValue, st.Get), true
	case *stats.Counter:
		return newValueCollector(fq, st.Help(), prometheus.CounterValue, st.Get), true
	case *stats.GaugeFunc:
		return newValueCollector(fq, st.Help(), prometheus.GaugeValue, st.F), true
	case *stats.GaugesWithSingleLabel:
		return newLabeledCollector(fq, st, prometheus.GaugeValue), true
	case *stats.CountersWithSingleLabel:
		return newLabeledCollector(fq, st, prometheus.CounterValue), true
	}
	return nil, false
}

// buildPromName prefixes the snake cased name with the namespace, once.
func (be *PromBackend) buildPromName(name string) string {
	s := strings.TrimPrefix(stats.GetSnakeName(name), be.namespace+"_")
	return prometheus.BuildFQName("", be.namespace, s)
}
