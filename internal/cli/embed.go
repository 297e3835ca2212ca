package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/openai-go"
)

// previewDimensions is how many vector components plain output shows.
const previewDimensions = 4

type embedCommander struct {
	root  *rootCommander
	model string
}

func newEmbedCmd(root *rootCommander) *cobra.Command {
	cmder := &embedCommander{root: root}

	cmd := &cobra.Command{
		Use:   "embed [input...]",
		Short: "Create embeddings; each argument is embedded separately",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := args
			if len(inputs) == 0 {
				input, err := readInput(cmd, nil)
				if err != nil {
					return err
				}
				inputs = nonEmptyLines(input)
			}
			return cmder.run(cmd, inputs)
		},
	}

	cmd.Flags().StringVarP(&cmder.model, "model", "m", "text-embedding-3-small", "Embedding model")

	return cmd
}

func (c *embedCommander) run(cmd *cobra.Command, inputs []string) error {
	response, err := c.root.client.CreateEmbeddings(cmd.Context(), openai.NewEmbeddingsArguments(c.model, inputs...))
	if err != nil {
		return fmt.Errorf("embeddings failed: %w", err)
	}
	if c.root.printJSON(cmd, response) {
		return nil
	}

	out := cmd.OutOrStdout()
	for _, embedding := range response.Data {
		preview := embedding.Embedding
		if len(preview) > previewDimensions {
			preview = preview[:previewDimensions]
		}
		parts := make([]string, len(preview))
		for i, value := range preview {
			parts[i] = fmt.Sprintf("%.4f", value)
		}
		suffix := ""
		if len(embedding.Embedding) > previewDimensions {
			suffix = ", ..."
		}
		fmt.Fprintf(out, "%d\t%d dims\t[%s%s]\n", embedding.Index, len(embedding.Embedding), strings.Join(parts, ", "), suffix)
	}
	return nil
}

// nonEmptyLines splits piped input into one embedding input per line. Blank
// lines are dropped because the API rejects empty inputs.
func nonEmptyLines(input string) []string {
	var lines []string
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
