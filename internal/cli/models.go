package cli

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type modelsCommander struct {
	root *rootCommander
}

func newModelsCmd(root *rootCommander) *cobra.Command {
	cmder := &modelsCommander{root: root}

	return &cobra.Command{
		Use:   "models [model-id]",
		Short: "List models, or show one model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return cmder.retrieve(cmd.Context(), cmd, args[0])
			}
			return cmder.list(cmd.Context(), cmd)
		},
	}
}

func (c *modelsCommander) list(ctx context.Context, cmd *cobra.Command) error {
	models, err := c.root.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("could not list models: %w", err)
	}
	if c.root.printJSON(cmd, models) {
		return nil
	}

	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tOWNED BY\tCREATED")
	for _, model := range models {
		fmt.Fprintf(w, "%s\t%s\t%s\n", model.ID, model.OwnedBy, model.CreatedAt().UTC().Format("2006-01-02"))
	}
	return w.Flush()
}

func (c *modelsCommander) retrieve(ctx context.Context, cmd *cobra.Command, id string) error {
	model, err := c.root.client.RetrieveModel(ctx, id)
	if err != nil {
		return fmt.Errorf("could not retrieve model %s: %w", id, err)
	}
	if c.root.printJSON(cmd, model) {
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (owned by %s, created %s)\n", model.ID, model.OwnedBy, model.CreatedAt().UTC().Format("2006-01-02"))
	return nil
}
