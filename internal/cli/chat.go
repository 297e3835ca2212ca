package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/openai-go"
)

const chatLongDesc string = `Send a prompt to a chat model and print the reply.

The prompt is taken from the arguments, or from stdin when none are given.

Examples:
  openai chat "Write a haiku about Go"
  openai chat --stream --model gpt-4o --max-tokens 200 "Explain SSE"
  cat notes.txt | openai chat --system "Summarize in three bullets"`

type chatCommander struct {
	root        *rootCommander
	model       string
	system      string
	stream      bool
	temperature float32
	maxTokens   int
}

func newChatCmd(root *rootCommander) *cobra.Command {
	cmder := &chatCommander{root: root}

	cmd := &cobra.Command{
		Use:   "chat [prompt...]",
		Short: "Create a chat completion",
		Long:  chatLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return cmder.run(cmd.Context(), cmd, prompt)
		},
	}

	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model to use (default from config)")
	cmd.Flags().StringVarP(&cmder.system, "system", "s", "", "System message sent before the prompt")
	cmd.Flags().BoolVar(&cmder.stream, "stream", false, "Print the reply as it is generated")
	cmd.Flags().Float32VarP(&cmder.temperature, "temperature", "t", 0, "Sampling temperature")
	cmd.Flags().IntVar(&cmder.maxTokens, "max-tokens", 0, "Maximum tokens to generate")

	return cmd
}

func (c *chatCommander) arguments(cmd *cobra.Command, prompt string) openai.ChatArguments {
	var messages []openai.Message
	if c.system != "" {
		messages = append(messages, openai.SystemMessage(c.system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	args := openai.NewChatArguments(c.root.model(c.model), messages...)
	if cmd.Flags().Changed("temperature") {
		args = args.WithTemperature(c.temperature)
	}
	if c.maxTokens > 0 {
		args = args.WithMaxTokens(c.maxTokens)
	}
	return args
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command, prompt string) error {
	args := c.arguments(cmd, prompt)

	if c.stream {
		return c.runStream(ctx, cmd, args)
	}

	completion, err := c.root.client.CreateChat(ctx, args)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	if c.root.printJSON(cmd, completion) {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), completion.String())
	return nil
}

func (c *chatCommander) runStream(ctx context.Context, cmd *cobra.Command, args openai.ChatArguments) error {
	stream, err := c.root.client.CreateChatStream(ctx, args)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	if c.root.jsonOutput {
		completion, err := stream.Collect()
		if err != nil {
			return fmt.Errorf("chat stream failed: %w", err)
		}
		c.root.printJSON(cmd, completion)
		return nil
	}

	out := cmd.OutOrStdout()
	for chunk, err := range stream.Iter() {
		if err != nil {
			fmt.Fprintln(out)
			return fmt.Errorf("chat stream failed: %w", err)
		}
		fmt.Fprint(out, chunk.String())
	}
	fmt.Fprintln(out)
	return nil
}
