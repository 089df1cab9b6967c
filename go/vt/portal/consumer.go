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

	"vitess.io/distexchange/go/vt/distribution"
	"vitess.io/distexchange/go/vt/exchange"
	"vitess.io/distexchange/go/vt/vterrors"
)

// ConsumingPortal reads one lane of an exchange produced elsewhere.
type ConsumingPortal struct {
	execID  exchange.ExecID
	self    distribution.NodeID
	index   int
	channel exchange.Channel
	sched   *Scheduler

	done   bool
	closed bool
}

// ExecID returns the exchange the portal reads.
func (c *ConsumingPortal) ExecID() exchange.ExecID {
	return c.execID
}

// Index returns the lane the portal reads.
func (c *ConsumingPortal) Index() int {
	return c.index
}

// Fetch hands up to max rows of the lane to recv. max <= 0 fetches until
// the end of the lane.
//
// While the scheduler holds producing portals the lane is polled, and
// every producer is advanced when it is empty: a peer process may be
// waiting for those producers before it can fill this lane.
func (c *ConsumingPortal) Fetch(ctx context.Context, max int, recv Receiver) (int, error) {
	n := 0
	for !c.done && (max <= 0 || n < max) {
		row, status, err := c.channel.Read(ctx, c.execID, c.index, c.sched.Len() == 0)
		if err != nil {
			return n, c.fail(err)
		}
		switch status {
		case exchange.ReadRow:
			if err := recv.Receive(row); err != nil {
				return n, c.fail(err)
			}
			n++
		case exchange.EndOfLane:
			c.done = true
		case exchange.WouldBlock:
			progressed, err := c.sched.AdvanceAll(ctx)
			if err != nil {
				return n, c.fail(err)
			}
			if !progressed {
				if err := c.sched.sleep(ctx); err != nil {
					return n, c.fail(err)
				}
			}
		}
	}
	return n, nil
}

// fail makes sure the producer learns about err, unless it is the one
// that reported it.
func (c *ConsumingPortal) fail(err error) error {
	c.done = true
	if !vterrors.Is(err, vterrors.ChannelPoisoned) {
		c.channel.Reset(c.execID, err)
	}
	return err
}

// Done reports whether the end of the lane was reached.
func (c *ConsumingPortal) Done() bool {
	return c.done
}

// Close stops reading. A lane not read to its end is released so that the
// producer discards its rows.
func (c *ConsumingPortal) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if !c.done {
		c.channel.ReleaseConsumer(c.execID, c.self)
	}
	portalsClosed.Add(1)
	return nil
}
