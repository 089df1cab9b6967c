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
	"github.com/prometheus/client_golang/prometheus"

	"vitess.io/distexchange/go/stats"
)

// valueCollector reports one unlabeled sample read from get.
type valueCollector struct {
	desc *prometheus.Desc
	vt   prometheus.ValueType
	get  func() int64
}

func newValueCollector(fqName, help string, vt prometheus.ValueType, get func() int64) *valueCollector {
	return &valueCollector{
		desc: prometheus.NewDesc(fqName, help, nil, nil),
		vt:   vt,
		get:  get,
	}
}

func (c *valueCollector) Describe(ch chan<- *prometheus.Desc) { ch <- c.desc }

func (c *valueCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, c.vt, float64(c.get()))
}

// labeledCollector reports one sample per tag of a labeledVar.
type labeledCollector struct {
	desc *prometheus.Desc
	vt   prometheus.ValueType
	v    labeledVar
}

func newLabeledCollector(fqName string, v labeledVar, vt prometheus.ValueType) *labeledCollector {
	label := stats.GetSnakeName(v.Label())
	return &labeledCollector{
		desc: prometheus.NewDesc(fqName, v.Help(), []string{label}, nil),
		vt:   vt,
		v:    v,
	}
}

func (c *labeledCollector) Describe(ch chan<- *prometheus.Desc) { ch <- c.desc }

func (c *labeledCollector) Collect(ch chan<- prometheus.Metric) {
	for tag, n := range c.v.Counts() {
		ch <- prometheus.MustNewConstMetric(c.desc, c.vt, float64(n), tag)
	}
}
