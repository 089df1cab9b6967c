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
	"slices"

	"github.com/gammazero/deque"
	"google.golang.org/grpc/codes"

	"vitess.io/distexchange/go/sqltypes"
	"vitess.io/distexchange/go/vt/exchange"
	"vitess.io/distexchange/go/vt/locator"
	"vitess.io/distexchange/go/vt/vterrors"
)

// Distributor routes the rows of a producer to the lanes of its exchange.
//
// A row that does not fit its lane goes to the spill buffer of that lane,
// and so does every later row for the lane until the buffer is flushed, so
// that a lane receives rows in the order they were produced. Rows for the
// producer's own node go to the hold store.
type Distributor struct {
	channel exchange.Channel
	execID  exchange.ExecID
	loc     *locator.Locator[int]
	// distKey is the ordinal of the distribution column in produced rows,
	// or -1 when rows are not routed by value.
	distKey int
	consMap []int

	spill   []deque.Deque[sqltypes.Row]
	hold    deque.Deque[sqltypes.Row]
	hasSelf bool

	total, self, other int64
}

// NewDistributor creates a distributor writing to the lanes of binding.
// loc must route over the destinations the binding was created with. A nil
// loc broadcasts every row to every destination.
func NewDistributor(channel exchange.Channel, execID exchange.ExecID, binding *exchange.Binding, loc *locator.Locator[int], distKey int) *Distributor {
	lanes := 0
	for _, lane := range binding.ConsumerMap {
		lanes = max(lanes, lane+1)
	}
	return &Distributor{
		channel: channel,
		execID:  execID,
		loc:     loc,
		distKey: distKey,
		consMap: binding.ConsumerMap,
		spill:   make([]deque.Deque[sqltypes.Row], lanes),
		hasSelf: slices.Contains(binding.ConsumerMap, exchange.LaneSelf),
	}
}

// Receive routes row.
func (d *Distributor) Receive(ctx context.Context, row sqltypes.Row) error {
	dests, err := d.route(row)
	if err != nil {
		return err
	}
	d.total++
	for _, dest := range dests {
		switch lane := d.consMap[dest]; lane {
		case exchange.LaneNone:
		case exchange.LaneSelf:
			d.hold.PushBack(row)
			d.self++
		default:
			if err := d.write(ctx, lane, row); err != nil {
				return err
			}
			d.other++
		}
	}
	return nil
}

// route returns the destination indexes of row.
func (d *Distributor) route(row sqltypes.Row) ([]int, error) {
	if d.loc == nil {
		all := make([]int, len(d.consMap))
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	value := sqltypes.NULL
	if d.distKey >= 0 {
		if d.distKey >= len(row) {
			return nil, vterrors.Errorf(codes.InvalidArgument, "exchange %s: row has %d columns, distribution column is %d", d.execID, len(row), d.distKey)
		}
		value = row[d.distKey]
	}
	return d.loc.Route(value)
}

func (d *Distributor) write(ctx context.Context, lane int, row sqltypes.Row) error {
	if d.spill[lane].Len() > 0 {
		d.spill[lane].PushBack(row)
		rowsSpilled.Add(1)
		return nil
	}
	status, err := d.channel.Write(ctx, d.execID, lane, row)
	if err != nil {
		return err
	}
	switch status {
	case exchange.LaneFull:
		d.spill[lane].PushBack(row)
		rowsSpilled.Add(1)
	case exchange.Poisoned:
		return vterrors.NewState(vterrors.ChannelPoisoned, "exchange %s: lane %d was reset", d.execID, lane)
	}
	return nil
}

// Flush moves spilled rows to their lanes until the lanes are full. It
// reports whether every spill buffer is empty.
func (d *Distributor) Flush(ctx context.Context) (bool, error) {
	flushed := true
	for lane := range d.spill {
		buf := &d.spill[lane]
		for buf.Len() > 0 {
			status, err := d.channel.Write(ctx, d.execID, lane, buf.Front())
			if err != nil {
				return false, err
			}
			if status == exchange.Poisoned {
				return false, vterrors.NewState(vterrors.ChannelPoisoned, "exchange %s: lane %d was reset", d.execID, lane)
			}
			if status == exchange.LaneFull {
				break
			}
			buf.PopFront()
		}
		if buf.Len() > 0 {
			flushed = false
		}
	}
	return flushed, nil
}

// HasSelf reports whether the producer's own node receives rows.
func (d *Distributor) HasSelf() bool {
	return d.hasSelf
}

// Held returns the number of rows in the hold store.
func (d *Distributor) Held() int {
	return d.hold.Len()
}

// PopHeld removes the oldest row of the hold store.
func (d *Distributor) PopHeld() (sqltypes.Row, bool) {
	if d.hold.Len() == 0 {
		return nil, false
	}
	return d.hold.PopFront(), true
}

// Spilled returns the number of rows waiting in spill buffers.
func (d *Distributor) Spilled() int {
	n := 0
	for i := range d.spill {
		n += d.spill[i].Len()
	}
	return n
}

// Release drops every buffered row.
func (d *Distributor) Release() {
	for i := range d.spill {
		d.spill[i].Clear()
	}
	d.hold.Clear()
}

// Counts returns the number of rows routed, kept for the producer's own
// node and sent to other nodes.
func (d *Distributor) Counts() (total, self, other int64) {
	return d.total, d.self, d.other
}
