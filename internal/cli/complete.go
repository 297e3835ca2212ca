package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/openai-go"
)

type completeCommander struct {
	root      *rootCommander
	model     string
	maxTokens int
	stop      []string
	stream    bool
}

func newCompleteCmd(root *rootCommander) *cobra.Command {
	cmder := &completeCommander{root: root}

	cmd := &cobra.Command{
		Use:   "complete [prompt...]",
		Short: "Create a legacy text completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), cmd, prompt)
		},
	}

	cmd.Flags().StringVarP(&cmder.model, "model", "m", "gpt-3.5-turbo-instruct", "Completion model")
	cmd.Flags().IntVar(&cmder.maxTokens, "max-tokens", 0, "Maximum tokens to generate")
	cmd.Flags().StringSliceVar(&cmder.stop, "stop", nil, "Stop sequences")
	cmd.Flags().BoolVar(&cmder.stream, "stream", false, "Print the completion as it is generated")

	return cmd
}

func (c *completeCommander) run(ctx context.Context, cmd *cobra.Command, prompt string) error {
	args := openai.NewCompletionArguments(c.model, prompt)
	if c.maxTokens > 0 {
		args = args.WithMaxTokens(c.maxTokens)
	}
	if len(c.stop) > 0 {
		args = args.WithStop(c.stop...)
	}

	if c.stream && !c.root.jsonOutput {
		return c.runStream(ctx, cmd, args)
	}

	var (
		response *openai.CompletionResponse
		err      error
	)
	if c.stream {
		stream, streamErr := c.root.client.CreateCompletionStream(ctx, args)
		if streamErr != nil {
			return fmt.Errorf("completion failed: %w", streamErr)
		}
		response, err = stream.Collect()
	} else {
		response, err = c.root.client.CreateCompletion(ctx, args)
	}
	if err != nil {
		return fmt.Errorf("completion failed: %w", err)
	}

	if c.root.printJSON(cmd, response) {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), response.String())
	return nil
}

func (c *completeCommander) runStream(ctx context.Context, cmd *cobra.Command, args openai.CompletionArguments) error {
	stream, err := c.root.client.CreateCompletionStream(ctx, args)
	if err != nil {
		return fmt.Errorf("completion failed: %w", err)
	}
	out := cmd.OutOrStdout()
	for event, err := range stream.Iter() {
		if err != nil {
			fmt.Fprintln(out)
			return fmt.Errorf("completion stream failed: %w", err)
		}
		fmt.Fprint(out, event.String())
	}
	fmt.Fprintln(out)
	return nil
}
