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

// RoundRobinCursor is the position of a round robin walk over a node list.
// It has a single writer: callers that share one across goroutines must
// serialize access themselves.
type RoundRobinCursor struct {
	pos int
}

// NewRoundRobinCursor returns a cursor whose first Next returns start+1
// (modulo the node count). Start at -1 to begin with the first node.
func NewRoundRobinCursor(start int) *RoundRobinCursor {
	return &RoundRobinCursor{pos: start}
}

// Next advances the cursor over n nodes and returns the new position.
func (c *RoundRobinCursor) Next(n int) int {
	if n <= 0 {
		return -1
	}
	c.pos++
	if c.pos >= n || c.pos < 0 {
		c.pos = 0
	}
	return c.pos
}

// Position returns the last position handed out.
func (c *RoundRobinCursor) Position() int {
	return c.pos
}

// Reset moves the cursor so that the next call to Next returns pos+1.
func (c *RoundRobinCursor) Reset(pos int) {
	c.pos = pos
}
