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

package exchange

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"google.golang.org/grpc/codes"

	"vitess.io/distexchange/go/sqltypes"
	"vitess.io/distexchange/go/stats"
	"vitess.io/distexchange/go/vt/distribution"
	"vitess.io/distexchange/go/vt/log"
	"vitess.io/distexchange/go/vt/vterrors"
)

var (
	bindCount   = stats.NewCountersWithSingleLabel("ExchangeBinds", "exchange bindings, by role", "Role")
	rowsWritten = stats.NewCounter("ExchangeRowsWritten", "rows queued on exchange lanes")
	rowsRead    = stats.NewCounter("ExchangeRowsRead", "rows read from exchange lanes")
	rowsDropped = stats.NewCounter("ExchangeRowsDropped", "rows discarded because their lane was released or reset")
	laneFull    = stats.NewCounter("ExchangeLaneFull", "writes refused because the lane was full")
	resetCount  = stats.NewCounter("ExchangeResets", "exchanges reset after a failure")
)

// errUnboundEarly poisons the lanes still holding rows when the producer
// goes away.
var errUnboundEarly = errors.New("producer unbound before the lane was drained")

// MemoryConfig tunes a MemoryChannel.
type MemoryConfig struct {
	// LaneCapacity is the number of rows a lane holds.
	LaneCapacity int
	// PauseOccupancy is the average fill ratio of the lanes above which
	// the producer may pause. Zero lets it pause as soon as every lane
	// holds a row.
	PauseOccupancy float64
	// WriteTimeout bounds how long Write waits for room in a full lane.
	// Zero makes a full lane fail the write at once.
	WriteTimeout time.Duration
}

// DefaultMemoryConfig returns the settings used when none are given.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		LaneCapacity:   64,
		PauseOccupancy: 0.5,
	}
}

type lane struct {
	node  distribution.NodeID
	state LaneState
	rows  deque.Deque[sqltypes.Row]
	bound bool
	cause error
	// notify is closed and replaced whenever the lane changes.
	notify chan struct{}
}

func (l *lane) wake() {
	close(l.notify)
	l.notify = make(chan struct{})
}

// discard empties the lane and moves it to state.
func (l *lane) discard(state LaneState) {
	rowsDropped.Add(int64(l.rows.Len()))
	l.rows.Clear()
	l.state = state
	l.wake()
}

type exchange struct {
	id       ExecID
	producer distribution.NodeID
	bound    bool
	unbound  bool
	lanes    []*lane
	// released holds the nodes that gave up before the producer bound.
	released []distribution.NodeID
}

func (ex *exchange) laneOf(node distribution.NodeID) int {
	for i, l := range ex.lanes {
		if l.node == node {
			return i
		}
	}
	return -1
}

func (ex *exchange) done() bool {
	for _, l := range ex.lanes {
		if l.state != LaneDone {
			return false
		}
	}
	return true
}

// MemoryChannel is a Channel whose participants live in the same process.
// It is safe for concurrent use.
type MemoryChannel struct {
	cfg MemoryConfig

	mu        sync.Mutex
	exchanges map[ExecID]*exchange
}

var _ Channel = (*MemoryChannel)(nil)

// NewMemoryChannel creates a MemoryChannel.
func NewMemoryChannel(cfg MemoryConfig) *MemoryChannel {
	if cfg.LaneCapacity <= 0 {
		cfg.LaneCapacity = DefaultMemoryConfig().LaneCapacity
	}
	return &MemoryChannel{
		cfg:       cfg,
		exchanges: make(map[ExecID]*exchange),
	}
}

// Bind is part of the Channel interface.
func (mc *MemoryChannel) Bind(ctx context.Context, execID ExecID, self distribution.NodeID, consumers, destinations []distribution.NodeID) (*Binding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()

	ex := mc.exchanges[execID]
	if ex == nil {
		ex = &exchange{id: execID}
		mc.exchanges[execID] = ex
	}
	if !ex.bound {
		return mc.bindProducer(ex, self, consumers, destinations), nil
	}
	return mc.bindConsumer(ex, self)
}

func (mc *MemoryChannel) bindProducer(ex *exchange, self distribution.NodeID, consumers, destinations []distribution.NodeID) *Binding {
	ex.bound = true
	ex.producer = self
	for _, node := range consumers {
		// The producer serves its own node without a lane.
		if node == self || ex.laneOf(node) >= 0 {
			continue
		}
		l := &lane{node: node, state: LaneEmpty, notify: make(chan struct{})}
		if slices.Contains(ex.released, node) {
			l.state = LaneDone
		}
		ex.lanes = append(ex.lanes, l)
	}
	ex.released = nil

	consMap := make([]int, len(destinations))
	for i, node := range destinations {
		switch idx := ex.laneOf(node); {
		case node == self && slices.Contains(consumers, self):
			consMap[i] = LaneSelf
		case idx >= 0 && ex.lanes[idx].state != LaneDone:
			consMap[i] = idx
		default:
			consMap[i] = LaneNone
		}
	}
	bindCount.Add(Producer.String(), 1)
	log.V(2).Infof("exchange %s: %v bound as producer with %d lanes", ex.id, self, len(ex.lanes))
	return &Binding{Role: Producer, Index: LaneSelf, ConsumerMap: consMap}
}

func (mc *MemoryChannel) bindConsumer(ex *exchange, self distribution.NodeID) (*Binding, error) {
	if self == ex.producer {
		return nil, vterrors.NewState(vterrors.ChannelBindConflict, "exchange %s already has a producer on %v", ex.id, self)
	}
	idx := ex.laneOf(self)
	if idx < 0 {
		return nil, vterrors.Errorf(codes.InvalidArgument, "exchange %s has no lane for %v", ex.id, self)
	}
	l := ex.lanes[idx]
	if l.bound {
		return nil, vterrors.NewState(vterrors.ChannelBindConflict, "exchange %s: lane %d already has a consumer", ex.id, idx)
	}
	if l.state == LaneDone && l.cause == nil {
		return nil, vterrors.Errorf(codes.FailedPrecondition, "exchange %s: %v released its lane", ex.id, self)
	}
	l.bound = true
	bindCount.Add(Consumer.String(), 1)
	log.V(2).Infof("exchange %s: %v bound as consumer of lane %d", ex.id, self, idx)
	return &Binding{Role: Consumer, Index: idx}, nil
}

// lane returns lane index of execID. mc.mu must be held.
func (mc *MemoryChannel) lane(execID ExecID, index int) (*exchange, *lane, error) {
	ex := mc.exchanges[execID]
	if ex == nil || !ex.bound {
		return nil, nil, vterrors.Errorf(codes.NotFound, "unknown exchange %s", execID)
	}
	if index < 0 || index >= len(ex.lanes) {
		return nil, nil, vterrors.Errorf(codes.InvalidArgument, "exchange %s has no lane %d", execID, index)
	}
	return ex, ex.lanes[index], nil
}

// forget drops ex once the producer is gone and no lane has anything
// left to report. mc.mu must be held.
func (mc *MemoryChannel) forget(ex *exchange) {
	if ex.unbound && ex.done() {
		delete(mc.exchanges, ex.id)
	}
}

func poisonedError(execID ExecID, index int, cause error) error {
	return vterrors.NewState(vterrors.ChannelPoisoned, "exchange %s lane %d was reset: %v", execID, index, cause)
}

// Read is part of the Channel interface.
func (mc *MemoryChannel) Read(ctx context.Context, execID ExecID, index int, allowBlock bool) (sqltypes.Row, ReadStatus, error) {
	for {
		mc.mu.Lock()
		ex, l, err := mc.lane(execID, index)
		if err != nil {
			mc.mu.Unlock()
			return nil, 0, err
		}
		switch cause := l.cause; l.state {
		case LanePoisoned:
			l.state = LaneDone
			mc.forget(ex)
			mc.mu.Unlock()
			return nil, 0, poisonedError(execID, index, cause)
		case LaneDone:
			mc.mu.Unlock()
			if cause != nil {
				return nil, 0, poisonedError(execID, index, cause)
			}
			return nil, EndOfLane, nil
		}
		if l.rows.Len() > 0 {
			row := l.rows.PopFront()
			if l.rows.Len() == 0 && l.state == LaneHasData {
				l.state = LaneEmpty
			}
			l.wake()
			mc.mu.Unlock()
			rowsRead.Add(1)
			return row, ReadRow, nil
		}
		if l.state == LaneClosed {
			l.state = LaneDone
			l.wake()
			mc.forget(ex)
			mc.mu.Unlock()
			return nil, EndOfLane, nil
		}
		if !allowBlock {
			mc.mu.Unlock()
			return nil, WouldBlock, nil
		}
		notify := l.notify
		mc.mu.Unlock()

		select {
		case <-notify:
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
}

// Write is part of the Channel interface.
func (mc *MemoryChannel) Write(ctx context.Context, execID ExecID, index int, row sqltypes.Row) (WriteStatus, error) {
	var deadline time.Time
	for {
		mc.mu.Lock()
		_, l, err := mc.lane(execID, index)
		if err != nil {
			mc.mu.Unlock()
			return 0, err
		}
		switch l.state {
		case LanePoisoned:
			mc.mu.Unlock()
			return Poisoned, nil
		case LaneDone:
			poisoned := l.cause != nil
			mc.mu.Unlock()
			if poisoned {
				return Poisoned, nil
			}
			rowsDropped.Add(1)
			return WriteOK, nil
		case LaneClosed:
			mc.mu.Unlock()
			return 0, vterrors.Errorf(codes.FailedPrecondition, "exchange %s: write to finished lane %d", execID, index)
		}
		if l.rows.Len() < mc.cfg.LaneCapacity {
			l.rows.PushBack(row)
			l.state = LaneHasData
			l.wake()
			mc.mu.Unlock()
			rowsWritten.Add(1)
			return WriteOK, nil
		}
		if deadline.IsZero() {
			deadline = time.Now().Add(mc.cfg.WriteTimeout)
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			mc.mu.Unlock()
			laneFull.Add(1)
			return LaneFull, nil
		}
		notify := l.notify
		mc.mu.Unlock()

		timer := time.NewTimer(remaining)
		select {
		case <-notify:
			timer.Stop()
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return 0, ctx.Err()
		}
	}
}

// CanPause is part of the Channel interface.
func (mc *MemoryChannel) CanPause(execID ExecID) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	ex := mc.exchanges[execID]
	if ex == nil || !ex.bound {
		return false
	}
	used, active := 0, 0
	for _, l := range ex.lanes {
		if l.state != LaneEmpty && l.state != LaneHasData {
			continue
		}
		if l.rows.Len() == 0 {
			return false
		}
		used += l.rows.Len()
		active++
	}
	if active == 0 {
		return false
	}
	if mc.cfg.PauseOccupancy <= 0 {
		return true
	}
	return float64(used)/float64(active) > mc.cfg.PauseOccupancy*float64(mc.cfg.LaneCapacity)
}

// Finish is part of the Channel interface.
func (mc *MemoryChannel) Finish(execID ExecID) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	ex := mc.exchanges[execID]
	if ex == nil || !ex.bound {
		return vterrors.Errorf(codes.NotFound, "unknown exchange %s", execID)
	}
	for _, l := range ex.lanes {
		if l.state == LaneEmpty || l.state == LaneHasData {
			l.state = LaneClosed
			l.wake()
		}
	}
	return nil
}

// Drained is part of the Channel interface.
func (mc *MemoryChannel) Drained(execID ExecID) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	ex := mc.exchanges[execID]
	return ex == nil || ex.done()
}

// Reset is part of the Channel interface.
func (mc *MemoryChannel) Reset(execID ExecID, cause error) {
	if cause == nil {
		cause = errors.New("exchange reset")
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	ex := mc.exchanges[execID]
	if ex == nil {
		return
	}
	poisoned := 0
	for _, l := range ex.lanes {
		if l.state == LaneDone {
			continue
		}
		l.cause = cause
		l.discard(LanePoisoned)
		poisoned++
	}
	resetCount.Add(1)
	log.Warningf("exchange %s reset, %d lanes poisoned: %v", execID, poisoned, cause)
}

// ReleaseConsumer is part of the Channel interface.
func (mc *MemoryChannel) ReleaseConsumer(execID ExecID, node distribution.NodeID) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	ex := mc.exchanges[execID]
	if ex == nil {
		ex = &exchange{id: execID}
		mc.exchanges[execID] = ex
	}
	if !ex.bound {
		if !slices.Contains(ex.released, node) {
			ex.released = append(ex.released, node)
		}
		return
	}
	idx := ex.laneOf(node)
	if idx < 0 {
		return
	}
	if l := ex.lanes[idx]; l.state != LaneDone {
		l.discard(LaneDone)
		log.V(2).Infof("exchange %s: %v released lane %d", execID, node, idx)
	}
	mc.forget(ex)
}

// Unbind is part of the Channel interface.
func (mc *MemoryChannel) Unbind(execID ExecID) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	ex := mc.exchanges[execID]
	if ex == nil || !ex.bound {
		return vterrors.Errorf(codes.NotFound, "unknown exchange %s", execID)
	}
	if ex.unbound {
		return nil
	}
	for i, l := range ex.lanes {
		if l.state == LaneDone || l.state == LanePoisoned {
			continue
		}
		l.cause = vterrors.Wrapf(errUnboundEarly, "lane %d", i)
		l.discard(LanePoisoned)
	}
	ex.unbound = true
	mc.forget(ex)
	return nil
}

// LaneState returns the state of lane index of execID.
func (mc *MemoryChannel) LaneState(execID ExecID, index int) (LaneState, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	_, l, err := mc.lane(execID, index)
	if err != nil {
		return 0, err
	}
	return l.state, nil
}

// Buffered returns the number of rows queued on the lanes of execID.
func (mc *MemoryChannel) Buffered(execID ExecID) int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	ex := mc.exchanges[execID]
	if ex == nil {
		return 0
	}
	n := 0
	for _, l := range ex.lanes {
		n += l.rows.Len()
	}
	return n
}

// Len returns the number of exchanges the channel tracks.
func (mc *MemoryChannel) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.exchanges)
}

// String describes the lanes of every exchange, for debugging.
func (mc *MemoryChannel) String() string {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	ids := make([]ExecID, 0, len(mc.exchanges))
	for id := range mc.exchanges {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	var out []byte
	for _, id := range ids {
		ex := mc.exchanges[id]
		out = fmt.Appendf(out, "%s producer=%v:", id, ex.producer)
		for i, l := range ex.lanes {
			out = fmt.Appendf(out, " [%d %v %v rows=%d]", i, l.node, l.state, l.rows.Len())
		}
		out = append(out, '\n')
	}
	return string(out)
}
