package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/openai-go"
)

type editCommander struct {
	root        *rootCommander
	model       string
	instruction string
}

func newEditCmd(root *rootCommander) *cobra.Command {
	cmder := &editCommander{root: root}

	cmd := &cobra.Command{
		Use:   "edit --instruction <text> [input...]",
		Short: "Rewrite input following an instruction (deprecated endpoint)",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return cmder.run(cmd, input)
		},
	}

	cmd.Flags().StringVarP(&cmder.model, "model", "m", "text-davinci-edit-001", "Edit model")
	cmd.Flags().StringVarP(&cmder.instruction, "instruction", "i", "", "How to edit the input")
	_ = cmd.MarkFlagRequired("instruction")

	return cmd
}

func (c *editCommander) run(cmd *cobra.Command, input string) error {
	response, err := c.root.client.CreateEdit(cmd.Context(), openai.NewEditArguments(c.model, input, c.instruction))
	if err != nil {
		return fmt.Errorf("edit failed: %w", err)
	}
	if c.root.printJSON(cmd, response) {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), response.String())
	return nil
}
