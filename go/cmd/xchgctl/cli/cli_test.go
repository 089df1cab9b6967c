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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitess.io/distexchange/go/test/utils"
	"vitess.io/distexchange/go/vt/distribution"
	"vitess.io/distexchange/go/vt/portal"
	"vitess.io/distexchange/go/vt/vterrors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	Main.SetOut(&out)
	Main.SetErr(&out)
	Main.SetArgs(args)
	err := Main.ExecuteContext(context.Background())
	return out.String(), err
}

// lineWith returns the first output line containing s.
func lineWith(out, s string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, s) {
			return line
		}
	}
	return ""
}

func TestRouteCommand(t *testing.T) {
	out, err := run(t, "route", "--strategy", "modulo", "--nodes", "1,2,3", "--type", "int4", "--access", "insert", "7", "9", "NULL")
	require.NoError(t, err)
	assert.Contains(t, lineWith(out, "INT4(7)"), "dn2")
	assert.Contains(t, lineWith(out, "INT4(9)"), "dn1")
	assert.Contains(t, lineWith(out, "NULL"), "dn1")

	out, err = run(t, "route", "--strategy", "replicated", "--nodes", "4,5", "--access", "update", "1")
	require.NoError(t, err)
	assert.Contains(t, lineWith(out, "INT4(1)"), "dn4,dn5")
}

func TestRouteCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"strategy", []string{"--strategy", "range", "--access", "insert", "1"}, "unknown distribution strategy"},
		{"access", []string{"--strategy", "hash", "--access", "merge", "1"}, "unknown access mode"},
		{"type", []string{"--access", "insert", "--type", "geometry", "1"}, "unknown type"},
		{"nodes", []string{"--type", "int4", "--nodes", "a,b", "1"}, "invalid node id"},
		{"value", []string{"--nodes", "1,2", "abc"}, "value \"abc\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				routeOptions.Strategy, routeOptions.Access, routeOptions.Type = "hash", "insert", "int4"
				routeOptions.Nodes = []string{"1", "2", "3", "4"}
			}()
			_, err := run(t, append([]string{"route"}, tt.args...)...)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := run(t, "route", "--strategy", "hash", "--type", "float8", "--nodes", "1", "1.5")
	assert.Equal(t, vterrors.UnsupportedDistributionType, vterrors.ErrState(err))
	routeOptions.Type = "int4"
}

func TestRunSimulation(t *testing.T) {
	ctx := utils.LeakCheckContextTimeout(t, 30*time.Second)
	cfg := portal.DefaultConfig()
	cfg.LaneCapacity = 16
	cfg.Quantum = 32
	nodes := []distribution.NodeID{1, 2, 3}
	const rows = 600

	tests := []struct {
		strategy distribution.Strategy
		check    func(t *testing.T, r NodeReport)
	}{
		{distribution.Modulo, func(t *testing.T, r NodeReport) {
			assert.Equal(t, rows, r.Received)
			assert.Equal(t, rows/len(nodes), r.Local)
		}},
		{distribution.RoundRobin, func(t *testing.T, r NodeReport) {
			assert.Equal(t, rows, r.Received)
			assert.Equal(t, rows/len(nodes), r.Local)
		}},
		{distribution.Replicated, func(t *testing.T, r NodeReport) {
			assert.Equal(t, rows*len(nodes), r.Received)
			assert.Equal(t, rows, r.Local)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			reports, err := RunSimulation(ctx, cfg, nodes, rows, tt.strategy)
			require.NoError(t, err)
			require.Len(t, reports, len(nodes))
			for i, r := range reports {
				assert.Equal(t, nodes[i], r.Node)
				assert.Equal(t, rows, r.Produced)
				tt.check(t, r)
			}
		})
	}

	reports, err := RunSimulation(ctx, cfg, nodes, rows, distribution.Hash)
	require.NoError(t, err)
	total := 0
	for _, r := range reports {
		total += r.Received
	}
	assert.Equal(t, rows*len(nodes), total)

	_, err = RunSimulation(ctx, cfg, nil, rows, distribution.Hash)
	assert.Equal(t, vterrors.EmptyNodeSet, vterrors.ErrState(err))
}

func TestSimulateCommand(t *testing.T) {
	defer utils.EnsureNoLeaks(t)
	out, err := run(t, "simulate", "--nodes", "2", "--rows", "50", "--strategy", "modulo")
	require.NoError(t, err)
	assert.Contains(t, lineWith(out, "dn1"), "50")
	assert.Contains(t, lineWith(out, "dn2"), "25")

	_, err = run(t, "simulate", "--nodes", "0")
	assert.ErrorContains(t, err, "positive node count")
	simulateOptions.Nodes = 4
}

func TestLoadConfig(t *testing.T) {
	newFlags := func() (*pflag.FlagSet, *int, *[]string) {
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		quantum := fs.Int("portal-quantum", 100, "")
		nodes := fs.StringSlice("nodes", []string{"1"}, "")
		fs.String("config", "", "")
		return fs, quantum, nodes
	}

	t.Setenv("XCHG_PORTAL_QUANTUM", "7")
	fs, quantum, nodes := newFlags()
	require.NoError(t, loadConfig(fs, ""))
	assert.Equal(t, 7, *quantum)
	assert.Equal(t, []string{"1"}, *nodes)

	// The command line wins over the environment.
	fs, quantum, _ = newFlags()
	require.NoError(t, fs.Parse([]string{"--portal-quantum", "3"}))
	require.NoError(t, loadConfig(fs, ""))
	assert.Equal(t, 3, *quantum)

	// The environment wins over the file.
	file := filepath.Join(t.TempDir(), "xchg.yaml")
	require.NoError(t, os.WriteFile(file, []byte("portal-quantum: 9\nnodes: [2, 3]\n"), 0o600))
	fs, quantum, nodes = newFlags()
	require.NoError(t, loadConfig(fs, file))
	assert.Equal(t, 7, *quantum)
	assert.Equal(t, []string{"2", "3"}, *nodes)

	t.Setenv("XCHG_PORTAL_QUANTUM", "many")
	fs, _, _ = newFlags()
	assert.ErrorContains(t, loadConfig(fs, ""), "--portal-quantum")

	fs, _, _ = newFlags()
	assert.ErrorContains(t, loadConfig(fs, filepath.Join(t.TempDir(), "missing.yaml")), "reading config file")
}
