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

import "fmt"

// LaneState is the state of one lane of an exchange.
type LaneState int

// These are the lane states.
const (
	// LaneEmpty is open and holds no rows.
	LaneEmpty LaneState = iota
	// LaneHasData is open and holds unread rows.
	LaneHasData
	// LaneClosed received its last row; unread rows may remain.
	LaneClosed
	// LaneDone was read to its end, or released by its consumer.
	LaneDone
	// LanePoisoned was reset; its reader has not observed the failure yet.
	LanePoisoned
)

var laneStateNames = []string{
	LaneEmpty:    "empty",
	LaneHasData:  "has_data",
	LaneClosed:   "closed",
	LaneDone:     "done",
	LanePoisoned: "poisoned",
}

func (s LaneState) String() string {
	if s < 0 || int(s) >= len(laneStateNames) {
		return fmt.Sprintf("lane_state(%d)", int(s))
	}
	return laneStateNames[s]
}
