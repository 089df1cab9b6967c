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

// Package exchange moves rows from the producer of a sub-plan to the
// nodes that consume them.
//
// An exchange is identified by an ExecID. Every participant binds to it;
// the first one to bind becomes the producer and runs the sub-plan, the
// others become consumers and each reads the lane the producer fills for
// its node. A lane is a bounded FIFO: rows written to it are read in the
// same order.
package exchange

import (
	"context"
	"fmt"

	"vitess.io/distexchange/go/sqltypes"
	"vitess.io/distexchange/go/vt/distribution"
)

// ExecID names one exchange.
type ExecID string

// Role is the part a participant plays in an exchange.
type Role int

// These are the roles.
const (
	Producer Role = iota
	Consumer
)

func (r Role) String() string {
	switch r {
	case Producer:
		return "producer"
	case Consumer:
		return "consumer"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Markers used in a consumer map in place of a lane index.
const (
	// LaneSelf marks the destination served by the producer itself.
	LaneSelf = -1
	// LaneNone marks a destination nobody reads; rows for it are dropped.
	LaneNone = -2
)

// Binding is the outcome of Bind.
type Binding struct {
	Role Role
	// Index is the lane a consumer reads. It is LaneSelf for the producer.
	Index int
	// ConsumerMap is set for the producer only. It has one entry per
	// destination passed to Bind: the lane serving that destination,
	// LaneSelf or LaneNone.
	ConsumerMap []int
}

// ReadStatus is the outcome of a successful Read.
type ReadStatus int

// These are the read outcomes.
const (
	// ReadRow means a row was returned.
	ReadRow ReadStatus = iota
	// EndOfLane means the producer finished and every row was read.
	EndOfLane
	// WouldBlock means the lane is empty and the caller did not allow
	// blocking.
	WouldBlock
)

func (s ReadStatus) String() string {
	switch s {
	case ReadRow:
		return "row"
	case EndOfLane:
		return "end_of_lane"
	case WouldBlock:
		return "would_block"
	}
	return fmt.Sprintf("read_status(%d)", int(s))
}

// WriteStatus is the outcome of a successful Write.
type WriteStatus int

// These are the write outcomes.
const (
	// WriteOK means the row was queued, or dropped because the consumer
	// released its lane.
	WriteOK WriteStatus = iota
	// LaneFull means the lane had no room; the row was not queued.
	LaneFull
	// Poisoned means the lane was reset; the row was not queued.
	Poisoned
)

func (s WriteStatus) String() string {
	switch s {
	case WriteOK:
		return "ok"
	case LaneFull:
		return "lane_full"
	case Poisoned:
		return "poisoned"
	}
	return fmt.Sprintf("write_status(%d)", int(s))
}

// Channel is the transport between the producer of an exchange and its
// consumers.
//
// Only the producer calls Write, CanPause, Finish, Drained and Unbind.
// Reset may be called by any participant. Errors raised because a peer
// failed carry the ChannelPoisoned state.
type Channel interface {
	// Bind joins exchange execID as node self. consumers are the nodes
	// that will read the output, destinations the nodes a locator may
	// route rows to. A second producer for the same exchange, or a second
	// consumer for the same node, fails with ChannelBindConflict.
	Bind(ctx context.Context, execID ExecID, self distribution.NodeID, consumers, destinations []distribution.NodeID) (*Binding, error)

	// Read returns the next row of lane index. With allowBlock set it
	// waits for a row, the end of the lane, a reset or ctx.
	Read(ctx context.Context, execID ExecID, index int, allowBlock bool) (sqltypes.Row, ReadStatus, error)

	// Write queues row on lane index. It never waits longer than the
	// channel's write timeout.
	Write(ctx context.Context, execID ExecID, index int, row sqltypes.Row) (WriteStatus, error)

	// CanPause reports whether every lane still being read holds enough
	// unread rows for the producer to stop producing for a while.
	CanPause(execID ExecID) bool

	// Finish marks the end of data on every lane still being read.
	Finish(execID ExecID) error

	// Drained reports whether every lane has been read to its end or
	// released.
	Drained(execID ExecID) bool

	// Reset poisons every lane that is not done, discarding its rows.
	// Readers of those lanes fail with cause.
	Reset(execID ExecID, cause error)

	// ReleaseConsumer tells the producer that node will not read any more
	// rows. It may be called before the exchange is bound.
	ReleaseConsumer(execID ExecID, node distribution.NodeID)

	// Unbind releases the producer's binding. Lanes that were not drained
	// are poisoned first.
	Unbind(execID ExecID) error
}
