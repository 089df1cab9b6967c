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

// Package distribution describes how the rows of a relation are spread
// across storage nodes.
package distribution

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"vitess.io/distexchange/go/sqltypes"
	"vitess.io/distexchange/go/vt/vterrors"
)

// NodeID identifies a storage node.
type NodeID int

func (n NodeID) String() string {
	return "dn" + strconv.Itoa(int(n))
}

// RelationID identifies a relation in the catalog.
type RelationID uint32

// Strategy is the distribution strategy of a relation.
type Strategy int

// These are the distribution strategies.
const (
	None Strategy = iota
	Replicated
	RoundRobin
	Hash
	Modulo
)

var strategyCodes = map[Strategy]byte{
	None:       'O',
	Replicated: 'R',
	RoundRobin: 'N',
	Hash:       'H',
	Modulo:     'M',
}

var strategyNames = map[Strategy]string{
	None:       "none",
	Replicated: "replicated",
	RoundRobin: "roundrobin",
	Hash:       "hash",
	Modulo:     "modulo",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(s)) + ")"
}

// Code returns the single-letter catalog code of the strategy.
func (s Strategy) Code() byte {
	return strategyCodes[s]
}

// ParseStrategy accepts a strategy name ("hash", "round_robin", ...) or its
// single-letter catalog code.
func ParseStrategy(s string) (Strategy, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if len(in) == 1 {
		for strategy, code := range strategyCodes {
			if in[0] == code|0x20 {
				return strategy, nil
			}
		}
	}
	in = strings.NewReplacer("_", "", "-", "", " ", "").Replace(in)
	for strategy, name := range strategyNames {
		if in == name {
			return strategy, nil
		}
	}
	return None, vterrors.NewState(vterrors.UnsupportedDistributionType, "unknown distribution strategy %q", s)
}

// Column is the distribution column of a Hash or Modulo relation.
type Column struct {
	Name    string
	Ordinal int
	Type    sqltypes.Type
}

// Descriptor is the distribution metadata of one relation.
type Descriptor struct {
	RelationID RelationID
	Strategy   Strategy
	// Column is set iff Strategy is Hash or Modulo.
	Column *Column
	// Nodes are ordered; position i is the node a hash or modulo of i
	// routes to.
	Nodes []NodeID
}

// IsDistributedByValue reports whether rows are placed by the value of
// the distribution column.
func (d *Descriptor) IsDistributedByValue() bool {
	return d.Strategy == Hash || d.Strategy == Modulo
}

// IsReplicated reports whether every node holds every row.
func (d *Descriptor) IsReplicated() bool {
	return d.Strategy == Replicated
}

// Validate checks the structural invariants of the descriptor and that a
// Modulo column has a fixed width of 1, 2 or 4 bytes.
func (d *Descriptor) Validate() error {
	switch d.Strategy {
	case Replicated, RoundRobin, Hash, Modulo:
	case None:
		return nil
	default:
		return vterrors.NewState(vterrors.UnsupportedDistributionType, "relation %d: unknown distribution strategy %d", d.RelationID, d.Strategy)
	}
	if len(d.Nodes) == 0 {
		return vterrors.NewState(vterrors.EmptyNodeSet, "relation %d: %v distribution needs at least one node", d.RelationID, d.Strategy)
	}
	if d.IsDistributedByValue() != (d.Column != nil) {
		if d.Column == nil {
			return vterrors.NewState(vterrors.UnsupportedDistributionType, "relation %d: %v distribution needs a distribution column", d.RelationID, d.Strategy)
		}
		return vterrors.NewState(vterrors.UnsupportedDistributionType, "relation %d: %v distribution cannot have a distribution column", d.RelationID, d.Strategy)
	}
	if d.Strategy == Modulo && !IsTypeModuloDistributable(d.Column.Type) {
		return vterrors.NewState(vterrors.UnsupportedDistributionType, "relation %d: column %s of type %v is not modulo distributable", d.RelationID, d.Column.Name, d.Column.Type)
	}
	return nil
}

// IsTypeModuloDistributable reports whether values of typ can be reduced
// by modulo: fixed width types of 1, 2 or 4 bytes.
func IsTypeModuloDistributable(typ sqltypes.Type) bool {
	switch typ {
	case sqltypes.Bool, sqltypes.Char, sqltypes.Int16, sqltypes.Int32, sqltypes.Date:
		return true
	}
	return false
}

// Copy returns a deep copy of the descriptor.
func (d *Descriptor) Copy() *Descriptor {
	if d == nil {
		return nil
	}
	out := *d
	if d.Column != nil {
		col := *d.Column
		out.Column = &col
	}
	out.Nodes = slices.Clone(d.Nodes)
	return &out
}

// Equal reports whether two descriptors describe the same placement.
// Node sets are compared without regard to order.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.RelationID != other.RelationID || d.Strategy != other.Strategy {
		return false
	}
	if (d.Column == nil) != (other.Column == nil) {
		return false
	}
	if d.Column != nil && d.Column.Ordinal != other.Column.Ordinal {
		return false
	}
	if len(d.Nodes) != len(other.Nodes) {
		return false
	}
	a, b := slices.Clone(d.Nodes), slices.Clone(other.Nodes)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

func (d *Descriptor) String() string {
	if d.Column != nil {
		return fmt.Sprintf("relation %d %v(%s) on %v", d.RelationID, d.Strategy, d.Column.Name, d.Nodes)
	}
	return fmt.Sprintf("relation %d %v on %v", d.RelationID, d.Strategy, d.Nodes)
}
