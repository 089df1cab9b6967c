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
	"fmt"
	"time"

	"vitess.io/distexchange/go/vt/exchange"
	"vitess.io/distexchange/go/vt/log"
	"vitess.io/distexchange/go/vt/vterrors"
)

// State is the state of a producing portal.
type State int

// These are the portal states. Error is reachable from every state but
// Closed, and nothing leaves it.
const (
	Unbound State = iota
	Binding
	Producing
	Paused
	Draining
	Closed
	Error
)

var stateNames = []string{
	Unbound:   "unbound",
	Binding:   "binding",
	Producing: "producing",
	Paused:    "paused",
	Draining:  "draining",
	Closed:    "closed",
	Error:     "error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// AdvanceResult is the outcome of one advancement of a producing portal.
type AdvanceResult int

// These are the advancement outcomes.
const (
	// AdvanceProgressed means rows were produced or moved to the exchange.
	AdvanceProgressed AdvanceResult = iota
	// AdvancePaused means the portal did nothing: every lane had enough
	// rows, or the portal is waiting for its consumers to drain.
	AdvancePaused
	// AdvanceDone means the portal is finished or failed and has left its
	// scheduler.
	AdvanceDone
)

func (r AdvanceResult) String() string {
	switch r {
	case AdvanceProgressed:
		return "progressed"
	case AdvancePaused:
		return "paused"
	case AdvanceDone:
		return "done"
	}
	return fmt.Sprintf("advance(%d)", int(r))
}

// ProducingPortal runs the sub-plan of an exchange and distributes its
// rows.
type ProducingPortal struct {
	cfg     Config
	execID  exchange.ExecID
	channel exchange.Channel
	sched   *Scheduler
	plan    SubPlan
	dist    *Distributor

	state      State
	err        error
	finished   bool
	drainStart time.Time
}

func newProducingPortal(cfg Config, execID exchange.ExecID, channel exchange.Channel, sched *Scheduler, plan SubPlan, dist *Distributor) *ProducingPortal {
	return &ProducingPortal{
		cfg:     cfg,
		execID:  execID,
		channel: channel,
		sched:   sched,
		plan:    plan,
		dist:    dist,
		state:   Binding,
	}
}

// ExecID returns the exchange the portal produces.
func (p *ProducingPortal) ExecID() exchange.ExecID {
	return p.execID
}

// State returns the current state.
func (p *ProducingPortal) State() State {
	return p.state
}

// Err returns the failure that moved the portal to Error.
func (p *ProducingPortal) Err() error {
	return p.err
}

// Distributor returns the distributor of the portal.
func (p *ProducingPortal) Distributor() *Distributor {
	return p.dist
}

func (p *ProducingPortal) setState(s State) {
	if p.state == s {
		return
	}
	log.DebugS("producing portal state change", "exec", string(p.execID), "from", p.state.String(), "to", s.String())
	p.state = s
}

// Advance moves the portal one step forward. A failure resets the
// exchange, releases the portal and is returned; later calls return it
// again.
func (p *ProducingPortal) Advance(ctx context.Context) (AdvanceResult, error) {
	switch p.state {
	case Closed:
		return AdvanceDone, nil
	case Error:
		return AdvanceDone, p.err
	}
	res, err := p.advance(ctx)
	if err != nil {
		return AdvanceDone, p.fail(err)
	}
	return res, nil
}

func (p *ProducingPortal) advance(ctx context.Context) (AdvanceResult, error) {
	if p.state == Draining {
		return p.drain(ctx)
	}

	if _, err := p.dist.Flush(ctx); err != nil {
		return AdvanceDone, err
	}
	// With rows left for every reader, local and remote, producing more
	// only grows the buffers.
	if (!p.dist.HasSelf() || p.dist.Held() > 0) && p.channel.CanPause(p.execID) {
		if p.state != Paused {
			pauseCount.Add(1)
		}
		p.setState(Paused)
		return AdvancePaused, nil
	}
	p.setState(Producing)

	rows, done, err := p.plan.Next(ctx, p.cfg.Quantum)
	if err != nil {
		return AdvanceDone, err
	}
	for _, row := range rows {
		if err := p.dist.Receive(ctx, row); err != nil {
			return AdvanceDone, err
		}
	}
	rowsProduced.Add(int64(len(rows)))
	if done {
		if err := p.closePlan(); err != nil {
			return AdvanceDone, err
		}
		p.drainStart = time.Now()
		p.setState(Draining)
	}
	return AdvanceProgressed, nil
}

// drain pushes out the spilled rows, then waits for every consumer,
// local and remote, to read its last row.
func (p *ProducingPortal) drain(ctx context.Context) (AdvanceResult, error) {
	if time.Since(p.drainStart) > p.cfg.DrainTimeout {
		return AdvanceDone, vterrors.NewState(vterrors.BackpressureTimeout, "exchange %s: consumers did not drain within %v", p.execID, p.cfg.DrainTimeout)
	}
	if !p.finished {
		spilled := p.dist.Spilled()
		flushed, err := p.dist.Flush(ctx)
		if err != nil {
			return AdvanceDone, err
		}
		if !flushed {
			if p.dist.Spilled() < spilled {
				return AdvanceProgressed, nil
			}
			return AdvancePaused, nil
		}
		if err := p.channel.Finish(p.execID); err != nil {
			return AdvanceDone, err
		}
		p.finished = true
		return AdvanceProgressed, nil
	}
	if !p.channel.Drained(p.execID) || p.dist.Held() > 0 {
		return AdvancePaused, nil
	}

	total, self, other := p.dist.Counts()
	log.InfoS("producer done", "exec", string(p.execID), "rows", total, "self", self, "other", other)
	p.release()
	if err := p.channel.Unbind(p.execID); err != nil {
		return AdvanceDone, err
	}
	p.setState(Closed)
	portalsClosed.Add(1)
	return AdvanceDone, nil
}

func (p *ProducingPortal) closePlan() error {
	if p.plan == nil {
		return nil
	}
	plan := p.plan
	p.plan = nil
	return plan.Close()
}

// release frees local resources and leaves the scheduler.
func (p *ProducingPortal) release() {
	p.dist.Release()
	if p.sched != nil {
		p.sched.remove(p)
	}
}

// fail resets the exchange so that no peer waits on it, then releases
// the portal.
func (p *ProducingPortal) fail(err error) error {
	p.channel.Reset(p.execID, err)
	if closeErr := p.closePlan(); closeErr != nil {
		log.Warningf("exchange %s: closing sub-plan: %v", p.execID, closeErr)
	}
	p.release()
	if unbindErr := p.channel.Unbind(p.execID); unbindErr != nil {
		log.Warningf("exchange %s: unbind after failure: %v", p.execID, unbindErr)
	}
	p.err = vterrors.Wrapf(err, "producer of exchange %s", p.execID)
	p.setState(Error)
	portalsFailed.Add(1)
	log.ErrorS("producer failed", "exec", string(p.execID), "error", err)
	return p.err
}

// Fetch hands up to max rows routed to the producer's own node to recv,
// advancing the portal while the hold store is empty. max <= 0 fetches
// everything. It returns once the sub-plan is exhausted and the hold store
// emptied, leaving the drain of the remote lanes to the scheduler.
func (p *ProducingPortal) Fetch(ctx context.Context, max int, recv Receiver) (int, error) {
	n := 0
	for max <= 0 || n < max {
		if row, ok := p.dist.PopHeld(); ok {
			if err := recv.Receive(row); err != nil {
				return n, p.fail(err)
			}
			n++
			continue
		}
		switch p.state {
		case Error:
			return n, p.err
		case Draining, Closed:
			return n, nil
		}
		if !p.dist.HasSelf() {
			return n, nil
		}
		if _, err := p.Advance(ctx); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Done reports whether the local rows were all fetched.
func (p *ProducingPortal) Done() bool {
	switch p.state {
	case Draining, Closed, Error:
		return p.dist.Held() == 0
	}
	return !p.dist.HasSelf()
}

// Close abandons the portal. Lanes with unread rows or still waiting for
// rows are poisoned.
func (p *ProducingPortal) Close() error {
	switch p.state {
	case Closed, Error:
		return nil
	}
	closeErr := p.closePlan()
	p.release()
	err := p.channel.Unbind(p.execID)
	p.setState(Closed)
	portalsClosed.Add(1)
	if err != nil {
		return err
	}
	return closeErr
}
