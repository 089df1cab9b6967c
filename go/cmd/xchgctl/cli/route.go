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
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"

	"vitess.io/distexchange/go/sqltypes"
	"vitess.io/distexchange/go/vt/distribution"
	"vitess.io/distexchange/go/vt/locator"
	"vitess.io/distexchange/go/vt/utils"
	"vitess.io/distexchange/go/vt/vterrors"
)

var routeOptions = struct {
	Strategy string
	Nodes    []string
	Type     string
	Access   string
}{
	Strategy: "hash",
	Nodes:    []string{"1", "2", "3", "4"},
	Type:     "int4",
	Access:   "insert",
}

// Route prints the nodes every value is routed to.
var Route = &cobra.Command{
	Use:   "route [--strategy <strategy>] [--nodes <id,...>] [--type <type>] [--access <mode>] <value> [<value>...]",
	Short: "Prints the nodes a distribution column value is routed to.",
	Example: "xchgctl route --strategy modulo --nodes 1,2,3 --type int4 7 8 NULL\n" +
		"xchgctl route --strategy replicated --access read 0",
	Args: cobra.MinimumNArgs(1),
	RunE: commandRoute,
}

func parseNodes(in []string) ([]distribution.NodeID, error) {
	nodes := make([]distribution.NodeID, 0, len(in))
	for _, s := range in {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, vterrors.Errorf(codes.InvalidArgument, "invalid node id %q", s)
		}
		nodes = append(nodes, distribution.NodeID(n))
	}
	return nodes, nil
}

// parseValue reads arg as a value of typ. NULL, in any case, is the
// null value.
func parseValue(typ sqltypes.Type, arg string) (sqltypes.Value, error) {
	if strings.EqualFold(arg, "null") {
		return sqltypes.NULL, nil
	}
	v, err := sqltypes.NewValue(typ, []byte(arg))
	if err != nil {
		return sqltypes.NULL, vterrors.Wrapf(err, "value %q", arg)
	}
	return v, nil
}

func joinNodes(nodes []distribution.NodeID) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ",")
}

func commandRoute(cmd *cobra.Command, args []string) error {
	strategy, err := distribution.ParseStrategy(routeOptions.Strategy)
	if err != nil {
		return err
	}
	access, err := locator.ParseAccessMode(routeOptions.Access)
	if err != nil {
		return err
	}
	typ, ok := sqltypes.TypeFromName(routeOptions.Type)
	if !ok {
		return vterrors.Errorf(codes.InvalidArgument, "unknown type %q", routeOptions.Type)
	}
	nodes, err := parseNodes(routeOptions.Nodes)
	if err != nil {
		return err
	}
	loc, err := locator.New(strategy, access, typ, nodes)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Value", "Nodes")
	for _, arg := range args {
		v, err := parseValue(typ, arg)
		if err != nil {
			return err
		}
		dests, err := loc.Route(v)
		if err != nil {
			return fmt.Errorf("routing %v: %w", v, err)
		}
		if err := table.Append([]string{v.String(), joinNodes(dests)}); err != nil {
			return err
		}
	}
	return table.Render()
}

func init() {
	fs := Route.Flags()
	utils.SetFlagStringVar(fs, &routeOptions.Strategy, "strategy", routeOptions.Strategy, "distribution strategy: replicated, roundrobin, hash or modulo")
	utils.SetFlagStringSliceVar(fs, &routeOptions.Nodes, "nodes", routeOptions.Nodes, "ids of the nodes the relation is distributed over, in order")
	utils.SetFlagStringVar(fs, &routeOptions.Type, "type", routeOptions.Type, "type of the distribution column")
	utils.SetFlagStringVar(fs, &routeOptions.Access, "access", routeOptions.Access, "access mode: insert, update, read or read_fqs")

	Main.AddCommand(Route)
}
