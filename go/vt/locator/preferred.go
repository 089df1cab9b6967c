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
	"math/rand/v2"
	"slices"

	"vitess.io/distexchange/go/vt/distribution"
	"vitess.io/distexchange/go/vt/vterrors"
)

// PreferredNode picks one node of nodes to read a replicated relation
// from. The first node, in the order of nodes, that also appears in
// preferred wins. Without a match a node is picked at random.
func PreferredNode(nodes, preferred []distribution.NodeID, intN func(n int) int) (distribution.NodeID, error) {
	if len(nodes) == 0 {
		return 0, vterrors.NewState(vterrors.EmptyNodeSet, "a list of nodes should have at least one node")
	}
	for _, n := range nodes {
		if slices.Contains(preferred, n) {
			return n, nil
		}
	}
	if intN == nil {
		intN = rand.IntN
	}
	return nodes[intN(len(nodes))], nil
}

// AnyNode picks a node of nodes, choosing at random among those that are
// also preferred, or among all of them when none is.
func AnyNode(nodes, preferred []distribution.NodeID, intN func(n int) int) (distribution.NodeID, error) {
	if len(nodes) == 0 {
		return 0, vterrors.NewState(vterrors.EmptyNodeSet, "a set of nodes should have at least one node")
	}
	var members []distribution.NodeID
	for _, p := range preferred {
		if slices.Contains(nodes, p) && !slices.Contains(members, p) {
			members = append(members, p)
		}
	}
	if len(members) == 0 {
		members = slices.Clone(nodes)
	}
	// Pick from a sorted set so the choice depends only on membership.
	slices.Sort(members)
	members = slices.Compact(members)
	if len(members) == 1 {
		return members[0], nil
	}
	if intN == nil {
		intN = rand.IntN
	}
	return members[intN(len(members))], nil
}
