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

// Package portal drives the producers and consumers of distributed steps.
//
// A process opens a portal for every exchange it takes part in. The first
// participant to bind an exchange gets a ProducingPortal: it runs the
// sub-plan a quantum at a time, routes every row to its destination lane
// and keeps the rows for its own node in a hold store. The others get a
// ConsumingPortal reading their lane.
//
// Portals of one process are driven cooperatively from a single goroutine
// by a Scheduler. A consumer never blocks on its lane while the scheduler
// still holds producers that peers may be waiting for; it advances them
// instead.
package portal

import (
	"time"

	"github.com/spf13/pflag"

	"vitess.io/distexchange/go/vt/exchange"
	"vitess.io/distexchange/go/vt/utils"
)

// Config tunes the portal driver.
type Config struct {
	// Quantum is the number of rows a producer pulls from its sub-plan in
	// one advancement.
	Quantum int
	// LaneCapacity is the number of rows an exchange lane holds.
	LaneCapacity int
	// PauseOccupancy is the average lane fill ratio above which a producer
	// pauses.
	PauseOccupancy float64
	// WriteTimeout bounds the wait for room in a full lane before the row
	// is spilled.
	WriteTimeout time.Duration
	// PollInterval is how long a consumer sleeps when neither its lane nor
	// any local producer made progress.
	PollInterval time.Duration
	// DrainTimeout bounds how long a finished producer waits for its
	// consumers.
	DrainTimeout time.Duration
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		Quantum:        100,
		LaneCapacity:   64,
		PauseOccupancy: 0.5,
		PollInterval:   time.Millisecond,
		DrainTimeout:   10 * time.Second,
	}
}

// RegisterFlags installs the flags of c on fs, with the current values of
// c as defaults.
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	utils.SetFlagIntVar(fs, &c.Quantum, "portal-quantum", c.Quantum, "number of rows a producing portal executes before yielding")
	utils.SetFlagIntVar(fs, &c.LaneCapacity, "exchange-lane-capacity", c.LaneCapacity, "number of rows buffered on each exchange lane")
	utils.SetFlagFloat64Var(fs, &c.PauseOccupancy, "exchange-pause-occupancy", c.PauseOccupancy, "average lane fill ratio above which producers pause; 0 pauses as soon as every lane holds a row")
	utils.SetFlagDurationVar(fs, &c.WriteTimeout, "exchange-write-timeout", c.WriteTimeout, "how long a write waits for room in a full lane before the row is spilled")
	utils.SetFlagDurationVar(fs, &c.PollInterval, "portal-poll-interval", c.PollInterval, "sleep between polls when no portal made progress")
	utils.SetFlagDurationVar(fs, &c.DrainTimeout, "portal-drain-timeout", c.DrainTimeout, "how long a finished producer waits for its consumers")
}

// MemoryConfig returns the exchange settings of c.
func (c Config) MemoryConfig() exchange.MemoryConfig {
	return exchange.MemoryConfig{
		LaneCapacity:   c.LaneCapacity,
		PauseOccupancy: c.PauseOccupancy,
		WriteTimeout:   c.WriteTimeout,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Quantum <= 0 {
		c.Quantum = def.Quantum
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = def.DrainTimeout
	}
	return c
}
