package main

import (
	"strings"

	"github.com/OFFIS-RIT/pathways/backend/pkg/aggregate"

	"github.com/spf13/cobra"
)

func newGroupsCmd(app *cli) *cobra.Command {
	var (
		top      int
		fallback string
	)

	cmd := &cobra.Command{
		Use:       "groups VIEW",
		Short:     "Group entities by a field",
		Long:      "Group entities by a field and print the groups by descending size. Views: " + strings.Join(aggregate.Views, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: aggregate.Views,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := app.loadGraph(cmd.Context())
			if err != nil {
				return err
			}

			var opts []aggregate.Option
			if fallback != "" {
				opts = append(opts, aggregate.WithFallback(fallback))
			}
			groups, err := aggregate.GroupView(g, args[0], top, opts...)
			if err != nil {
				return err
			}
			if app.json() {
				return app.writeJSON(groups)
			}

			for _, group := range groups {
				bar := strings.Repeat("#", int(group.Intensity*20+0.5))
				app.printf("%-30s %4d %s\n", group.Key, group.Count, bar)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 0, "Keep only the N largest groups (0 keeps all)")
	cmd.Flags().StringVar(&fallback, "fallback", aggregate.DefaultFallback, "Group name for entities without a value")
	return cmd
}
