package main

import (
	"github.com/OFFIS-RIT/pathways/backend/pkg/source"

	"github.com/spf13/cobra"
)

func newStatsCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Load the graph and print entity counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := app.loadGraph(cmd.Context())
			if err != nil {
				return err
			}
			stats := g.Stats()
			if app.json() {
				return app.writeJSON(stats)
			}

			app.printf("organizations       %d\n", stats.Organizations)
			app.printf("worldviews          %d\n", stats.Worldviews)
			app.printf("outcomes            %d\n", stats.Outcomes)
			app.printf("problem categories  %d\n", stats.ProblemCategories)
			app.printf("problems            %d\n", stats.Problems)
			app.printf("projects            %d\n", stats.Projects)
			app.printf("dropped references  %d\n", stats.Dropped)
			app.printf("slug collisions     %d\n", stats.Collisions)
			app.printf("schema issues       %d\n", stats.Issues)
			return nil
		},
	}
}

func newReportCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the data quality findings of a load",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := app.loadGraph(cmd.Context())
			if err != nil {
				return err
			}
			if app.json() {
				return app.writeJSON(g.Report)
			}

			for _, d := range g.Report.Dropped {
				app.printf("dropped    %s/%s %s -> %s %s\n", d.Table, d.RecordID, d.Field, d.Target, d.LinkedID)
			}
			for _, table := range source.AllTables {
				for _, c := range g.Report.Collisions[table] {
					app.printf("collision  %s %q owned by %s, taken by %s\n", table, c.Slug, c.Owner, c.Record)
				}
			}
			for _, issue := range g.Report.Issues {
				app.printf("issue      %s\n", issue)
			}
			if g.Report.Clean() {
				app.printf("no findings\n")
			}
			return nil
		},
	}
}
