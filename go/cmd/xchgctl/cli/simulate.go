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

package cli

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"

	"vitess.io/distexchange/go/sqltypes"
	"vitess.io/distexchange/go/vt/distribution"
	"vitess.io/distexchange/go/vt/exchange"
	"vitess.io/distexchange/go/vt/log"
	"vitess.io/distexchange/go/vt/portal"
	"vitess.io/distexchange/go/vt/utils"
	"vitess.io/distexchange/go/vt/vterrors"
)

var simulateOptions = struct {
	Nodes    int
	Rows     int
	Strategy string
	Timeout  time.Duration
}{
	Nodes:    4,
	Rows:     10000,
	Strategy: "hash",
	Timeout:  time.Minute,
}

// Simulate runs a redistribution between in-process nodes.
var Simulate = &cobra.Command{
	Use:   "simulate [--nodes <count>] [--rows <count>] [--strategy <strategy>]",
	Short: "Redistributes rows between in-process nodes and reports what every node received.",
	Long: "Every node scans its own rows and sends each of them through an exchange to the nodes " +
		"the strategy picks, while reading the rows the other nodes send to it. " +
		"All nodes run concurrently and share one in-memory exchange channel.",
	Args: cobra.NoArgs,
	RunE: commandSimulate,
}

// NodeReport is what one node did during a simulation.
type NodeReport struct {
	Node distribution.NodeID
	// Produced is the number of rows the node scanned.
	Produced int
	// Received is the number of rows routed to the node, Local of which
	// it produced itself.
	Received int
	Local    int
}

// RunSimulation runs every node of nodes as a goroutine. Node i produces
// rows numbered from i*rows, which are routed on their number.
func RunSimulation(ctx context.Context, cfg portal.Config, nodes []distribution.NodeID, rows int, strategy distribution.Strategy) ([]NodeReport, error) {
	if len(nodes) == 0 {
		return nil, vterrors.NewState(vterrors.EmptyNodeSet, "simulation needs at least one node")
	}
	channel := exchange.NewMemoryChannel(cfg.MemoryConfig())
	steps := make([]portal.Step, len(nodes))
	for i := range nodes {
		execID := exchange.ExecID(uuid.NewString())
		base := i * rows
		steps[i] = portal.Step{
			ExecID:       execID,
			Consumers:    nodes,
			Destinations: nodes,
			Strategy:     strategy,
			DistKey:      0,
			DistType:     sqltypes.Int32,
			NewPlan: func(ctx context.Context) (portal.SubPlan, error) {
				return portal.NewRowsPlan(scanRows(base, rows)), nil
			},
		}
	}

	var bound sync.WaitGroup
	bound.Add(len(nodes))
	reports := make([]NodeReport, len(nodes))
	g, gctx := errgroup.WithContext(ctx)
	for i, node := range nodes {
		g.Go(func() error {
			report, err := runNode(gctx, channel, cfg, node, i, steps, &bound)
			if err != nil {
				return vterrors.Wrapf(err, "node %v", node)
			}
			report.Produced = rows
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func scanRows(base, n int) []sqltypes.Row {
	rows := make([]sqltypes.Row, n)
	for i := range rows {
		rows[i] = sqltypes.Row{sqltypes.NewInt32(int32(base + i))}
	}
	return rows
}

// runNode produces steps[own] and consumes every other step. All
// producers bind before any consumer so that roles follow ownership.
func runNode(ctx context.Context, channel exchange.Channel, cfg portal.Config, self distribution.NodeID, own int, steps []portal.Step, bound *sync.WaitGroup) (NodeReport, error) {
	report := NodeReport{Node: self}
	sched := portal.NewScheduler(cfg)
	var consumers []portal.Portal
	defer func() {
		for _, c := range consumers {
			_ = c.Close()
		}
		if err := sched.CloseAll(); err != nil {
			log.Warningf("node %v: closing producers: %v", self, err)
		}
	}()

	step := steps[own]
	step.Self = self
	producer, err := portal.Open(ctx, sched, channel, step)
	bound.Done()
	if err != nil {
		return report, err
	}
	bound.Wait()

	for i, step := range steps {
		if i == own {
			continue
		}
		step.Self = self
		c, err := portal.Open(ctx, sched, channel, step)
		if err != nil {
			return report, err
		}
		consumers = append(consumers, c)
	}

	count := portal.ReceiverFunc(func(sqltypes.Row) error {
		report.Received++
		return nil
	})
	for _, c := range consumers {
		if _, err := c.Fetch(ctx, 0, count); err != nil {
			return report, err
		}
	}
	if report.Local, err = producer.Fetch(ctx, 0, count); err != nil {
		return report, err
	}
	if err := sched.Drain(ctx, sched.Config().DrainTimeout); err != nil {
		return report, err
	}
	log.InfoS("node done", "node", self.String(), "received", report.Received, "local", report.Local)
	return report, nil
}

func commandSimulate(cmd *cobra.Command, args []string) error {
	strategy, err := distribution.ParseStrategy(simulateOptions.Strategy)
	if err != nil {
		return err
	}
	if simulateOptions.Nodes <= 0 || simulateOptions.Rows < 0 {
		return vterrors.Errorf(codes.InvalidArgument, "need a positive node count and a non-negative row count")
	}
	if metricsAddr != "" {
		stop, err := serveMetrics(metricsAddr)
		if err != nil {
			return err
		}
		defer stop()
	}

	nodes := make([]distribution.NodeID, simulateOptions.Nodes)
	for i := range nodes {
		nodes[i] = distribution.NodeID(i + 1)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), simulateOptions.Timeout)
	defer cancel()

	start := time.Now()
	reports, err := RunSimulation(ctx, portalConfig, nodes, simulateOptions.Rows, strategy)
	if err != nil {
		return err
	}
	log.InfoS("simulation done", "strategy", strategy.String(), "nodes", len(nodes), "elapsed", time.Since(start).String())

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Node", "Produced", "Received", "Local")
	for _, r := range reports {
		row := []string{r.Node.String(), strconv.Itoa(r.Produced), strconv.Itoa(r.Received), strconv.Itoa(r.Local)}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func init() {
	fs := Simulate.Flags()
	utils.SetFlagIntVar(fs, &simulateOptions.Nodes, "nodes", simulateOptions.Nodes, "number of nodes")
	utils.SetFlagIntVar(fs, &simulateOptions.Rows, "rows", simulateOptions.Rows, "number of rows every node produces")
	utils.SetFlagStringVar(fs, &simulateOptions.Strategy, "strategy", simulateOptions.Strategy, "distribution strategy of the redistribution")
	utils.SetFlagDurationVar(fs, &simulateOptions.Timeout, "timeout", simulateOptions.Timeout, "how long the simulation may run")

	Main.AddCommand(Simulate)
}
