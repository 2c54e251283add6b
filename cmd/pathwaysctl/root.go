package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/OFFIS-RIT/pathways/backend/pkg/graph"
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"

	"github.com/spf13/cobra"
)

type cli struct {
	out        io.Writer
	openSource func(ctx context.Context) (source.RecordSource, func(), error)
	loadGraph  func(ctx context.Context) (*graph.Graph, error)
	parallel   int

	format string
}

func newRootCmd(app *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "pathwaysctl",
		Short:         "Inspect the theory-of-change graph",
		Long:          "Export snapshots of the record store and query the entity graph, its groupings and pathways",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&app.format, "format", "text", "Output format (text, json)")

	root.AddCommand(
		newSnapshotCmd(app),
		newStatsCmd(app),
		newGroupsCmd(app),
		newPathwayCmd(app),
		newReportCmd(app),
	)
	return root
}

func (c *cli) json() bool {
	return c.format == "json"
}

func (c *cli) writeJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
