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
)

// SubPlan is the local execution of a distributed step.
type SubPlan interface {
	// Next returns up to max rows. done is set once the plan has no more
	// rows; the last rows may come with it.
	Next(ctx context.Context, max int) (rows []sqltypes.Row, done bool, err error)
	// Close releases the plan.
	Close() error
}

// RowsPlan is a SubPlan serving a fixed list of rows.
type RowsPlan struct {
	rows   []sqltypes.Row
	pos    int
	closed bool
}

var _ SubPlan = (*RowsPlan)(nil)

// NewRowsPlan returns a plan producing rows in order.
func NewRowsPlan(rows []sqltypes.Row) *RowsPlan {
	return &RowsPlan{rows: rows}
}

// Next is part of the SubPlan interface.
func (p *RowsPlan) Next(ctx context.Context, max int) ([]sqltypes.Row, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	end := min(p.pos+max, len(p.rows))
	rows := p.rows[p.pos:end]
	p.pos = end
	return rows, p.pos == len(p.rows), nil
}

// Close is part of the SubPlan interface.
func (p *RowsPlan) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *RowsPlan) Closed() bool {
	return p.closed
}
