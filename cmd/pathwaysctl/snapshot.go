package main

import (
	"errors"

	"github.com/OFFIS-RIT/pathways/backend/pkg/source"
	sourceio "github.com/OFFIS-RIT/pathways/backend/pkg/source/io"

	"github.com/spf13/cobra"
)

func newSnapshotCmd(app *cli) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export every table of the configured source",
		Long:  "Fetch every table of the configured source and write them to a JSON or YAML file, picked by extension",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}

			src, closeSource, err := app.openSource(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSource()

			snap, err := source.Export(cmd.Context(), src, app.parallel)
			if err != nil {
				return err
			}
			if err := sourceio.NewFileSource(out).Write(snap); err != nil {
				return err
			}

			if app.json() {
				counts := make(map[source.Table]int, len(snap.Tables))
				for t, records := range snap.Tables {
					counts[t] = len(records)
				}
				return app.writeJSON(map[string]any{"path": out, "fetched_at": snap.FetchedAt, "records": counts})
			}
			for _, t := range source.AllTables {
				app.printf("%-22s %d\n", t, len(snap.Tables[t]))
			}
			app.printf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Snapshot file (.json, .yaml or .yml)")
	return cmd
}
