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

	"vitess.io/distexchange/go/sqltypes"
	"vitess.io/distexchange/go/vt/distribution"
	"vitess.io/distexchange/go/vt/exchange"
	"vitess.io/distexchange/go/vt/locator"
	"vitess.io/distexchange/go/vt/log"
	"vitess.io/distexchange/go/vt/vterrors"
)

// Portal is the local end of an exchange.
type Portal interface {
	// Fetch hands up to max rows for the local node to recv and returns
	// how many it handed. max <= 0 fetches them all.
	Fetch(ctx context.Context, max int, recv Receiver) (int, error)
	// Done reports whether every row for the local node was fetched.
	Done() bool
	// Close abandons the portal.
	Close() error
}

var (
	_ Portal = (*ProducingPortal)(nil)
	_ Portal = (*ConsumingPortal)(nil)
)

// Step describes a distributed step as seen by one participant.
type Step struct {
	ExecID exchange.ExecID
	// Self is the node of the participant.
	Self distribution.NodeID
	// Consumers are the nodes reading the output of the step.
	Consumers []distribution.NodeID
	// Destinations are the nodes rows are routed to.
	Destinations []distribution.NodeID

	// Strategy routes produced rows over Destinations. DistKey is the
	// ordinal of the distribution column in produced rows and DistType its
	// type; both are ignored unless Strategy is Hash or Modulo.
	Strategy distribution.Strategy
	DistKey  int
	DistType sqltypes.Type

	// NewPlan builds the sub-plan. Only the producer calls it.
	NewPlan func(ctx context.Context) (SubPlan, error)
}

func (s *Step) locator() (*locator.Locator[int], int, error) {
	distKey := -1
	typ := sqltypes.Null
	if s.Strategy == distribution.Hash || s.Strategy == distribution.Modulo {
		distKey, typ = s.DistKey, s.DistType
	}
	loc, err := locator.NewIndexLocator(s.Strategy, locator.Insert, typ, len(s.Destinations))
	return loc, distKey, err
}

// Open binds the participant to the exchange of step. It returns a
// ProducingPortal, registered with sched, to the first participant and a
// ConsumingPortal to the others.
func Open(ctx context.Context, sched *Scheduler, channel exchange.Channel, step Step) (Portal, error) {
	// Routing errors have nothing to undo: check them before binding.
	loc, distKey, err := step.locator()
	if err != nil {
		return nil, vterrors.Wrapf(err, "exchange %s", step.ExecID)
	}

	binding, err := channel.Bind(ctx, step.ExecID, step.Self, step.Consumers, step.Destinations)
	if err != nil {
		return nil, err
	}
	if binding.Role == exchange.Consumer {
		portalsOpened.Add(exchange.Consumer.String(), 1)
		return &ConsumingPortal{
			execID:  step.ExecID,
			self:    step.Self,
			index:   binding.Index,
			channel: channel,
			sched:   sched,
		}, nil
	}

	plan, err := step.NewPlan(ctx)
	if err != nil {
		err = vterrors.Wrapf(err, "exchange %s", step.ExecID)
		channel.Reset(step.ExecID, err)
		if unbindErr := channel.Unbind(step.ExecID); unbindErr != nil {
			log.Warningf("exchange %s: unbind after failure: %v", step.ExecID, unbindErr)
		}
		return nil, err
	}
	dist := NewDistributor(channel, step.ExecID, binding, loc, distKey)
	p := newProducingPortal(sched.Config(), step.ExecID, channel, sched, plan, dist)
	sched.add(p)
	p.setState(Producing)
	portalsOpened.Add(exchange.Producer.String(), 1)
	log.InfoS("producer bound", "exec", string(step.ExecID), "node", step.Self.String(), "destinations", len(step.Destinations))
	return p, nil
}
