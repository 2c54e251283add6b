package main

import (
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/pathways/backend/pkg/common"
	"github.com/OFFIS-RIT/pathways/backend/pkg/pathway"

	"github.com/spf13/cobra"
)

func newPathwayCmd(app *cli) *cobra.Command {
	var sel pathway.Selection

	cmd := &cobra.Command{
		Use:   "pathway",
		Short: "Evaluate a pathway selection",
		Long:  "Select worldviews, outcomes and problems stage by stage and print what is relevant at each stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := pathway.Restore(sel)
			if err != nil {
				return err
			}
			g, err := app.loadGraph(cmd.Context())
			if err != nil {
				return err
			}

			view := pathway.NewExplorer(g).Evaluate(state)
			if app.json() {
				return app.writeJSON(view)
			}

			printStage(app, "outcomes", view.Outcomes.Computed, len(view.Outcomes.Items), func(i int) string {
				o := view.Outcomes.Items[i]
				return fmt.Sprintf("%s  %s (%s)", o.Slug, o.Name, relevanceSummary(o.Relevance, state.Selected(pathway.StageWorldview)))
			})
			printStage(app, "problems", view.Problems.Computed, len(view.Problems.Items), func(i int) string {
				p := view.Problems.Items[i]
				return fmt.Sprintf("%s  %s", p.Slug, p.Name)
			})
			printStage(app, "projects", view.Projects.Computed, len(view.Projects.Items), func(i int) string {
				p := view.Projects.Items[i]
				return fmt.Sprintf("%s  %s", p.Slug, p.Name)
			})
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&sel.Worldviews, "worldview", nil, "Worldview slugs")
	cmd.Flags().StringSliceVar(&sel.Outcomes, "outcome", nil, "Outcome slugs")
	cmd.Flags().StringSliceVar(&sel.Problems, "problem", nil, "Problem slugs")
	cmd.Flags().StringSliceVar(&sel.Relevance, "relevance", nil, "Relevance levels to keep (High, Medium, Low)")
	return cmd
}

func printStage(app *cli, name string, computed bool, n int, line func(i int) string) {
	switch {
	case !computed:
		app.printf("%s: not computed\n", name)
	case n == 0:
		app.printf("%s: no items\n", name)
	default:
		app.printf("%s:\n", name)
		for i := 0; i < n; i++ {
			app.printf("  %s\n", line(i))
		}
	}
}

func relevanceSummary(relevance map[string]common.RelevanceLevel, worldviews []string) string {
	parts := make([]string, 0, len(worldviews))
	for _, wv := range worldviews {
		if level, ok := relevance[wv]; ok {
			parts = append(parts, wv+": "+string(level))
		}
	}
	return strings.Join(parts, ", ")
}
