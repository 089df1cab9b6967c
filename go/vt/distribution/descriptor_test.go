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

package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitess.io/distexchange/go/sqltypes"
	"vitess.io/distexchange/go/test/utils"
	"vitess.io/distexchange/go/vt/vterrors"
)

func hashDesc() *Descriptor {
	return &Descriptor{
		RelationID: 16384,
		Strategy:   Hash,
		Column:     &Column{Name: "id", Ordinal: 0, Type: sqltypes.Int32},
		Nodes:      []NodeID{1, 2, 3},
	}
}

func TestParseStrategy(t *testing.T) {
	testcases := []struct {
		in   string
		want Strategy
	}{
		{"hash", Hash},
		{"H", Hash},
		{"m", Modulo},
		{"MODULO", Modulo},
		{"round_robin", RoundRobin},
		{"roundrobin", RoundRobin},
		{"N", RoundRobin},
		{"replicated", Replicated},
		{"R", Replicated},
		{"none", None},
	}
	for _, tcase := range testcases {
		got, err := ParseStrategy(tcase.in)
		require.NoError(t, err, tcase.in)
		assert.Equal(t, tcase.want, got, tcase.in)
	}
	_, err := ParseStrategy("range")
	assert.Equal(t, vterrors.UnsupportedDistributionType, vterrors.ErrState(err))

	assert.Equal(t, byte('H'), Hash.Code())
	assert.Equal(t, "modulo", Modulo.String())
	assert.Equal(t, "unknown(42)", Strategy(42).String())
}

func TestValidate(t *testing.T) {
	testcases := []struct {
		name  string
		desc  *Descriptor
		state vterrors.State
	}{{
		name: "hash ok",
		desc: hashDesc(),
	}, {
		name: "none needs nothing",
		desc: &Descriptor{Strategy: None},
	}, {
		name:  "empty nodes",
		desc:  &Descriptor{Strategy: Replicated},
		state: vterrors.EmptyNodeSet,
	}, {
		name:  "hash without column",
		desc:  &Descriptor{Strategy: Hash, Nodes: []NodeID{1}},
		state: vterrors.UnsupportedDistributionType,
	}, {
		name:  "round robin with column",
		desc:  &Descriptor{Strategy: RoundRobin, Nodes: []NodeID{1}, Column: &Column{Name: "a", Type: sqltypes.Int32}},
		state: vterrors.UnsupportedDistributionType,
	}, {
		name:  "modulo on int8",
		desc:  &Descriptor{Strategy: Modulo, Nodes: []NodeID{1}, Column: &Column{Name: "a", Type: sqltypes.Int64}},
		state: vterrors.UnsupportedDistributionType,
	}, {
		name: "modulo on date",
		desc: &Descriptor{Strategy: Modulo, Nodes: []NodeID{1}, Column: &Column{Name: "a", Type: sqltypes.Date}},
	}, {
		name:  "unknown strategy",
		desc:  &Descriptor{Strategy: Strategy(9), Nodes: []NodeID{1}},
		state: vterrors.UnsupportedDistributionType,
	}}
	for _, tcase := range testcases {
		t.Run(tcase.name, func(t *testing.T) {
			err := tcase.desc.Validate()
			if tcase.state == vterrors.Undefined {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tcase.state, vterrors.ErrState(err), "%v", err)
		})
	}
}

func TestModuloDistributableTypes(t *testing.T) {
	for _, typ := range []sqltypes.Type{sqltypes.Bool, sqltypes.Char, sqltypes.Int16, sqltypes.Int32, sqltypes.Date} {
		assert.True(t, IsTypeModuloDistributable(typ), typ.String())
	}
	for _, typ := range []sqltypes.Type{sqltypes.Int64, sqltypes.Oid, sqltypes.Float32, sqltypes.Text, sqltypes.Numeric} {
		assert.False(t, IsTypeModuloDistributable(typ), typ.String())
	}
}

func TestCopyAndEqual(t *testing.T) {
	d := hashDesc()
	c := d.Copy()
	assert.True(t, d.Equal(c))
	utils.MustMatch(t, d, c, "copy differs")
	assert.NotSame(t, d.Column, c.Column)

	c.Nodes[0] = 9
	c.Column.Name = "other"
	assert.Equal(t, NodeID(1), d.Nodes[0])
	assert.Equal(t, "id", d.Column.Name)

	reordered := hashDesc()
	reordered.Nodes = []NodeID{3, 1, 2}
	assert.True(t, d.Equal(reordered))

	// Column names do not matter, ordinals do.
	renamed := hashDesc()
	renamed.Column.Name = "renamed"
	assert.True(t, d.Equal(renamed))
	moved := hashDesc()
	moved.Column.Ordinal = 2
	assert.False(t, d.Equal(moved))

	fewer := hashDesc()
	fewer.Nodes = fewer.Nodes[:2]
	assert.False(t, d.Equal(fewer))

	rr := &Descriptor{RelationID: d.RelationID, Strategy: RoundRobin, Nodes: d.Nodes}
	assert.False(t, d.Equal(rr))

	var nilDesc *Descriptor
	assert.True(t, nilDesc.Equal(nil))
	assert.False(t, nilDesc.Equal(d))
	assert.Nil(t, nilDesc.Copy())

	assert.True(t, d.IsDistributedByValue())
	assert.False(t, d.IsReplicated())
	assert.Equal(t, "relation 16384 hash(id) on [dn1 dn2 dn3]", d.String())
}

func TestRoundRobinCursor(t *testing.T) {
	c := NewRoundRobinCursor(-1)
	var got []int
	for i := 0; i < 7; i++ {
		got = append(got, c.Next(3))
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, got)
	assert.Equal(t, 0, c.Position())

	c.Reset(1)
	assert.Equal(t, 2, c.Next(3))
	// A shrinking node list wraps.
	assert.Equal(t, 0, c.Next(2))
	assert.Equal(t, -1, c.Next(0))
}
