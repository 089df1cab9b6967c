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

// Package locator decides which nodes must receive or supply a row.
//
// A Locator is built once for a distribution strategy, an access mode and
// a list of output nodes, then asked repeatedly where a value goes. The
// output nodes can be anything: node ids, lane indexes or connection
// handles; Route returns elements of the list it was built with.
package locator

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"google.golang.org/grpc/codes"

	"vitess.io/distexchange/go/sqltypes"
	"vitess.io/distexchange/go/stats"
	"vitess.io/distexchange/go/vt/distribution"
	"vitess.io/distexchange/go/vt/vterrors"
)

// AccessMode is how the statement being routed touches the relation.
type AccessMode int

// These are the access modes.
const (
	Insert AccessMode = iota
	Update
	Read
	// ReadFQS is a read that is shipped whole to the nodes, where a
	// replicated relation must be read on all of them.
	ReadFQS
)

func (a AccessMode) String() string {
	switch a {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Read:
		return "read"
	case ReadFQS:
		return "read_fqs"
	}
	return fmt.Sprintf("access(%d)", int(a))
}

// ParseAccessMode returns the access mode named s.
func ParseAccessMode(s string) (AccessMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insert":
		return Insert, nil
	case "update":
		return Update, nil
	case "read":
		return Read, nil
	case "read_fqs", "read-fqs", "fqs":
		return ReadFQS, nil
	}
	return 0, vterrors.Errorf(codes.InvalidArgument, "unknown access mode %q", s)
}

var routedRows = stats.NewCountersWithSingleLabel("LocatorRowsRouted", "rows routed, by distribution strategy", "Strategy")

type options struct {
	cursor *distribution.RoundRobinCursor
	start  int
	intN   func(n int) int
}

// Option configures a Locator.
type Option func(*options)

// WithCursor makes a round robin locator advance c instead of a private
// cursor, so several locators can share one walk.
func WithCursor(c *distribution.RoundRobinCursor) Option {
	return func(o *options) { o.cursor = c }
}

// WithInitialCursor positions the private round robin cursor. The first
// route returns node pos+1.
func WithInitialCursor(pos int) Option {
	return func(o *options) { o.start = pos }
}

// WithRand replaces the random source used to pick a node for reads of
// replicated relations. intN must return a value in [0, n).
func WithRand(intN func(n int) int) Option {
	return func(o *options) { o.intN = intN }
}

// Locator routes values of one distribution column to nodes of type N.
// A Locator is not safe for concurrent use.
type Locator[N any] struct {
	strategy distribution.Strategy
	access   AccessMode
	typ      sqltypes.Type
	nodeMap  []N

	locate func(v sqltypes.Value) ([]N, error)

	hash   HashFunc
	width  int
	cursor *distribution.RoundRobinCursor
	intN   func(n int) int

	// results backs single node answers.
	results []N
}

// New builds a locator for strategy and access over nodeMap. typ is the
// type of the distribution column and is ignored unless strategy is Hash
// or Modulo.
//
// It fails with EmptyNodeSet when nodeMap is empty and with
// UnsupportedDistributionType for the None strategy or a column type the
// strategy cannot handle.
func New[N any](strategy distribution.Strategy, access AccessMode, typ sqltypes.Type, nodeMap []N, opts ...Option) (*Locator[N], error) {
	o := options{start: -1, intN: rand.IntN}
	for _, opt := range opts {
		opt(&o)
	}

	if access < Insert || access > ReadFQS {
		panic(fmt.Sprintf("locator: no routing for %v distribution with %v access", strategy, access))
	}
	switch strategy {
	case distribution.Replicated, distribution.RoundRobin, distribution.Hash, distribution.Modulo:
	default:
		return nil, vterrors.NewState(vterrors.UnsupportedDistributionType, "no locator for %v distribution", strategy)
	}
	if len(nodeMap) == 0 {
		return nil, vterrors.NewState(vterrors.EmptyNodeSet, "%v locator needs at least one node", strategy)
	}

	l := &Locator[N]{
		strategy: strategy,
		access:   access,
		typ:      typ,
		nodeMap:  nodeMap,
		intN:     o.intN,
		results:  make([]N, 1),
	}

	switch strategy {
	case distribution.Replicated:
		switch access {
		case Insert, Update, ReadFQS:
			l.locate = l.locateStatic
		case Read:
			l.locate = l.locateRandom
		}
	case distribution.RoundRobin:
		switch access {
		case Insert:
			l.cursor = o.cursor
			if l.cursor == nil {
				l.cursor = distribution.NewRoundRobinCursor(o.start)
			}
			l.locate = l.locateRoundRobin
		case Update, Read, ReadFQS:
			l.locate = l.locateStatic
		}
	case distribution.Hash:
		l.hash = hashFuncFor(typ)
		if l.hash == nil {
			return nil, vterrors.NewState(vterrors.UnsupportedDistributionType, "unsupported data type for hash locator: %v", typ)
		}
		l.locate = l.locateHash
	case distribution.Modulo:
		if !distribution.IsTypeModuloDistributable(typ) {
			return nil, vterrors.NewState(vterrors.UnsupportedDistributionType, "unsupported data type for modulo locator: %v", typ)
		}
		l.width = sqltypes.FixedWidth(typ)
		l.locate = l.locateModulo
	}
	return l, nil
}

// NewIndexLocator builds a locator that answers with node indexes in
// [0, count).
func NewIndexLocator(strategy distribution.Strategy, access AccessMode, typ sqltypes.Type, count int, opts ...Option) (*Locator[int], error) {
	indexes := make([]int, count)
	for i := range indexes {
		indexes[i] = i
	}
	return New(strategy, access, typ, indexes, opts...)
}

// ForDescriptor builds a locator that answers with the nodes of desc.
func ForDescriptor(desc *distribution.Descriptor, access AccessMode, opts ...Option) (*Locator[distribution.NodeID], error) {
	if err := Validate(desc); err != nil {
		return nil, err
	}
	var typ sqltypes.Type
	if desc.Column != nil {
		typ = desc.Column.Type
	}
	return New(desc.Strategy, access, typ, desc.Nodes, opts...)
}

// Validate checks desc and that its distribution column, if any, can be
// routed by its strategy.
func Validate(desc *distribution.Descriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}
	if desc.Strategy == distribution.None {
		return vterrors.NewState(vterrors.UnsupportedDistributionType, "relation %d is not distributed", desc.RelationID)
	}
	if desc.Strategy == distribution.Hash && !IsTypeHashDistributable(desc.Column.Type) {
		return vterrors.NewState(vterrors.UnsupportedDistributionType, "relation %d: column %s of type %v is not hash distributable", desc.RelationID, desc.Column.Name, desc.Column.Type)
	}
	return nil
}

// Route returns the nodes for a row whose distribution column holds v.
// The returned slice belongs to the locator: it is valid until the next
// call and must not be modified.
func (l *Locator[N]) Route(v sqltypes.Value) ([]N, error) {
	nodes, err := l.locate(v)
	if err != nil {
		return nil, err
	}
	routedRows.Add(l.strategy.String(), 1)
	return nodes, nil
}

// NodeCount returns the number of output nodes.
func (l *Locator[N]) NodeCount() int {
	return len(l.nodeMap)
}

// NodeMap returns the output nodes the locator was built with.
func (l *Locator[N]) NodeMap() []N {
	return l.nodeMap
}

// Strategy returns the distribution strategy.
func (l *Locator[N]) Strategy() distribution.Strategy {
	return l.strategy
}

// Access returns the access mode.
func (l *Locator[N]) Access() AccessMode {
	return l.access
}

func (l *Locator[N]) single(index int) []N {
	l.results[0] = l.nodeMap[index]
	return l.results
}

// locateStatic returns every node.
func (l *Locator[N]) locateStatic(sqltypes.Value) ([]N, error) {
	return l.nodeMap, nil
}

func (l *Locator[N]) locateRoundRobin(sqltypes.Value) ([]N, error) {
	return l.single(l.cursor.Next(len(l.nodeMap))), nil
}

func (l *Locator[N]) locateRandom(sqltypes.Value) ([]N, error) {
	return l.single(l.intN(len(l.nodeMap))), nil
}

// locateHash sends a null to the first node on insert, and to every node
// otherwise since it does not narrow the search.
func (l *Locator[N]) locateHash(v sqltypes.Value) ([]N, error) {
	if v.IsNull() {
		return l.nullNodes(), nil
	}
	v, err := l.coerce(v)
	if err != nil {
		return nil, err
	}
	h, err := l.hash(v)
	if err != nil {
		return nil, vterrors.Wrapf(err, "hash locator")
	}
	return l.single(int(Modulo(h, uint32(len(l.nodeMap))))), nil
}

func (l *Locator[N]) locateModulo(v sqltypes.Value) ([]N, error) {
	if v.IsNull() {
		return l.nullNodes(), nil
	}
	v, err := l.coerce(v)
	if err != nil {
		return nil, err
	}
	key, err := moduloKey(v, l.width)
	if err != nil {
		return nil, vterrors.Wrapf(err, "modulo locator")
	}
	return l.single(int(Modulo(key, uint32(len(l.nodeMap))))), nil
}

func (l *Locator[N]) nullNodes() []N {
	if l.access == Insert {
		return l.single(0)
	}
	return l.nodeMap
}

func (l *Locator[N]) coerce(v sqltypes.Value) (sqltypes.Value, error) {
	if v.Type() == l.typ {
		return v, nil
	}
	return sqltypes.Coerce(v, l.typ)
}

// moduloKey reads the low width bytes of the two's complement
// representation of v.
func moduloKey(v sqltypes.Value, width int) (uint32, error) {
	n, err := v.ToUint64()
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint32(n & 0xff), nil
	case 2:
		return uint32(n & 0xffff), nil
	case 4:
		return uint32(n), nil
	}
	return 0, vterrors.NewState(vterrors.UnsupportedDistributionType, "modulo key width %d is not 1, 2 or 4", width)
}
