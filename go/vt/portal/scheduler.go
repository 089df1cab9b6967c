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

package portal

import (
	"context"
	"errors"
	"slices"
	"time"

	"vitess.io/distexchange/go/vt/vterrors"
)

// Scheduler owns the producing portals of one process and advances them
// in turn. It is not safe for concurrent use: a process drives all its
// portals from one goroutine.
type Scheduler struct {
	cfg     Config
	portals []*ProducingPortal
}

// NewScheduler creates a scheduler whose portals use cfg.
func NewScheduler(cfg Config) *Scheduler {
	return &Scheduler{cfg: cfg.withDefaults()}
}

// Config returns the settings of the scheduler's portals.
func (s *Scheduler) Config() Config {
	return s.cfg
}

func (s *Scheduler) add(p *ProducingPortal) {
	s.portals = append(s.portals, p)
	activeProducers.Add(1)
}

func (s *Scheduler) remove(p *ProducingPortal) {
	i := slices.Index(s.portals, p)
	if i < 0 {
		return
	}
	s.portals = slices.Delete(s.portals, i, i+1)
	activeProducers.Add(-1)
}

// Len returns the number of producing portals.
func (s *Scheduler) Len() int {
	return len(s.portals)
}

// Portals returns the producing portals.
func (s *Scheduler) Portals() []*ProducingPortal {
	return slices.Clone(s.portals)
}

// AdvanceAll advances every producing portal once and reports whether any
// of them made progress. It stops at the first failure.
func (s *Scheduler) AdvanceAll(ctx context.Context) (bool, error) {
	progressed := false
	// Portals leave the list as they finish.
	for _, p := range slices.Clone(s.portals) {
		res, err := p.Advance(ctx)
		if err != nil {
			return progressed, err
		}
		if res != AdvancePaused {
			progressed = true
		}
	}
	return progressed, nil
}

// Drain advances the portals until all of them are done. It fails with
// BackpressureTimeout when timeout passes first.
func (s *Scheduler) Drain(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for s.Len() > 0 {
		progressed, err := s.AdvanceAll(ctx)
		if err != nil {
			return err
		}
		if s.Len() == 0 {
			break
		}
		if time.Now().After(deadline) {
			return vterrors.NewState(vterrors.BackpressureTimeout, "%d producing portals did not drain within %v", s.Len(), timeout)
		}
		if !progressed {
			if err := s.sleep(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// CloseAll closes every producing portal.
func (s *Scheduler) CloseAll() error {
	var errs []error
	for _, p := range slices.Clone(s.portals) {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) sleep(ctx context.Context) error {
	timer := time.NewTimer(s.cfg.PollInterval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
