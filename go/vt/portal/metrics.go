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

import "vitess.io/distexchange/go/stats"

var (
	portalsOpened   = stats.NewCountersWithSingleLabel("PortalsOpened", "portals opened, by role", "Role")
	portalsClosed   = stats.NewCounter("PortalsClosed", "portals closed")
	portalsFailed   = stats.NewCounter("PortalsFailed", "producing portals that failed and reset their exchange")
	rowsProduced    = stats.NewCounter("PortalRowsProduced", "rows pulled from sub-plans")
	rowsSpilled     = stats.NewCounter("PortalRowsSpilled", "rows kept in spill buffers because their lane was full")
	pauseCount      = stats.NewCounter("PortalPauses", "advancements skipped because every lane had enough rows")
	activeProducers = stats.NewGauge("PortalActiveProducers", "producing portals held by schedulers")
)
