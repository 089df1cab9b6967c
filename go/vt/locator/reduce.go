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

package locator

import (
	"slices"

	"vitess.io/distexchange/go/sqltypes"
	"vitess.io/distexchange/go/vt/distribution"
	"vitess.io/distexchange/go/vt/vterrors"
)

// Expr is a node of a qualification tree. Only the shapes needed to find
// the value of a distribution column are modelled; anything else is an
// Opaque expression.
type Expr interface {
	isExpr()
}

// ColumnRef refers to column Ordinal of the relation at position Rel of
// the statement's relation list.
type ColumnRef struct {
	Rel     int
	Ordinal int
}

// Literal is a constant.
type Literal struct {
	Value sqltypes.Value
}

// Cast converts Expr to Type. An implicit cast between binary compatible
// types is transparent for routing.
type Cast struct {
	Expr     Expr
	Type     sqltypes.Type
	Implicit bool
}

// CompareOp is a comparison operator.
type CompareOp int

// These are the comparison operators.
const (
	Equal CompareOp = iota
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
)

// Comparison is a binary comparison.
type Comparison struct {
	Op          CompareOp
	Left, Right Expr
}

// And is a conjunction.
type And struct {
	Exprs []Expr
}

// Or is a disjunction.
type Or struct {
	Exprs []Expr
}

// Opaque is an expression whose value is not known when routing, such as
// a function call or a parameter.
type Opaque struct {
	Text string
}

func (*ColumnRef) isExpr()  {}
func (*Literal) isExpr()    {}
func (*Cast) isExpr()       {}
func (*Comparison) isExpr() {}
func (*And) isExpr()        {}
func (*Or) isExpr()         {}
func (*Opaque) isExpr()     {}

// ExecNodes is the outcome of routing a statement against one relation.
type ExecNodes struct {
	Strategy distribution.Strategy
	Access   AccessMode
	Nodes    []distribution.NodeID
}

// RouteOptions tune RelationNodes.
type RouteOptions struct {
	// Preferred nodes are read first for replicated relations.
	Preferred []distribution.NodeID
	// Cursor is advanced for round robin inserts. Without one every call
	// starts a fresh walk.
	Cursor *distribution.RoundRobinCursor
	// IntN replaces the random source.
	IntN func(n int) int
}

func (o *RouteOptions) locatorOptions() []Option {
	var opts []Option
	if o.Cursor != nil {
		opts = append(opts, WithCursor(o.Cursor))
	}
	if o.IntN != nil {
		opts = append(opts, WithRand(o.IntN))
	}
	return opts
}

// RelationNodes returns the nodes a statement with the given access must
// visit when the distribution column holds v. A null v means the value is
// unknown. A nil desc yields nil.
func RelationNodes(desc *distribution.Descriptor, v sqltypes.Value, access AccessMode, opts RouteOptions) (*ExecNodes, error) {
	if desc == nil {
		return nil, nil
	}
	exec := &ExecNodes{Strategy: desc.Strategy, Access: access}

	if desc.IsReplicated() && access == Read && len(opts.Preferred) > 0 {
		n, err := PreferredNode(desc.Nodes, opts.Preferred, opts.IntN)
		if err != nil {
			return nil, err
		}
		exec.Nodes = []distribution.NodeID{n}
		return exec, nil
	}

	loc, err := ForDescriptor(desc, access, opts.locatorOptions()...)
	if err != nil {
		return nil, err
	}
	nodes, err := loc.Route(v)
	if err != nil {
		return nil, vterrors.Wrapf(err, "relation %d", desc.RelationID)
	}
	exec.Nodes = slices.Clone(nodes)
	return exec, nil
}

// RelationNodesByQuals narrows the nodes of the relation at position rel
// using quals. When quals pin the distribution column to a constant, that
// constant is routed; otherwise the statement visits what a null routes to.
func RelationNodesByQuals(desc *distribution.Descriptor, rel int, quals Expr, access AccessMode, opts RouteOptions) (*ExecNodes, error) {
	if desc == nil {
		return nil, nil
	}
	value := sqltypes.NULL
	if desc.IsDistributedByValue() && desc.Column != nil {
		if e := FindDistColExpr(rel, desc.Column.Ordinal, quals); e != nil {
			v, ok, err := evalConst(e)
			if err != nil {
				return nil, err
			}
			if ok {
				if value, err = sqltypes.Coerce(v, desc.Column.Type); err != nil {
					return nil, vterrors.Wrapf(err, "relation %d: column %s", desc.RelationID, desc.Column.Name)
				}
			}
		}
	}
	return RelationNodes(desc, value, access, opts)
}

// FindDistColExpr searches the conjuncts of quals for
// <column> = <expr>, in either order, and returns expr. A disjunction
// never pins a column, so an OR at the top yields nil.
func FindDistColExpr(rel, ordinal int, quals Expr) Expr {
	for _, q := range conjuncts(quals, nil) {
		cmp, ok := q.(*Comparison)
		if !ok || cmp.Op != Equal {
			continue
		}
		left, right := stripImplicit(cmp.Left), stripImplicit(cmp.Right)

		var col *ColumnRef
		var other Expr
		if c, ok := left.(*ColumnRef); ok {
			col, other = c, right
		} else if c, ok := right.(*ColumnRef); ok {
			col, other = c, left
		} else {
			continue
		}
		if col.Rel != rel || col.Ordinal != ordinal {
			continue
		}
		return other
	}
	return nil
}

// conjuncts flattens nested ANDs.
func conjuncts(e Expr, out []Expr) []Expr {
	switch e := e.(type) {
	case nil:
		return out
	case *And:
		for _, sub := range e.Exprs {
			out = conjuncts(sub, out)
		}
		return out
	}
	return append(out, e)
}

func stripImplicit(e Expr) Expr {
	for {
		c, ok := e.(*Cast)
		if !ok || !c.Implicit {
			return e
		}
		e = c.Expr
	}
}

// evalConst folds e to a constant when it is a literal under any number of
// casts.
func evalConst(e Expr) (sqltypes.Value, bool, error) {
	switch e := e.(type) {
	case *Literal:
		return e.Value, true, nil
	case *Cast:
		v, ok, err := evalConst(e.Expr)
		if !ok || err != nil {
			return v, ok, err
		}
		v, err = sqltypes.Coerce(v, e.Type)
		if err != nil {
			return sqltypes.NULL, false, err
		}
		return v, true, nil
	}
	return sqltypes.NULL, false, nil
}
