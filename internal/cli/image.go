package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/openai-go"
)

type imageCommander struct {
	root   *rootCommander
	n      int
	size   string
	format string
}

func newImageCmd(root *rootCommander) *cobra.Command {
	cmder := &imageCommander{root: root}

	cmd := &cobra.Command{
		Use:   "image [prompt...]",
		Short: "Generate images and print their URLs or base64 payloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return cmder.run(cmd, prompt)
		},
	}

	cmd.Flags().IntVarP(&cmder.n, "n", "n", 1, "Number of images")
	cmd.Flags().StringVar(&cmder.size, "size", string(openai.ImageSize1024), "Image size: 256x256, 512x512 or 1024x1024")
	cmd.Flags().StringVar(&cmder.format, "format", string(openai.ImageFormatURL), "Response format: url or b64_json")

	return cmd
}

func (c *imageCommander) run(cmd *cobra.Command, prompt string) error {
	size := openai.ImageSize(c.size)
	switch size {
	case openai.ImageSize256, openai.ImageSize512, openai.ImageSize1024:
	default:
		return fmt.Errorf("invalid --size %q", c.size)
	}
	format := openai.ImageResponseFormat(c.format)
	if format != openai.ImageFormatURL && format != openai.ImageFormatBase64 {
		return fmt.Errorf("invalid --format %q", c.format)
	}

	args := openai.NewImageArguments(prompt).WithN(c.n).WithSize(size).WithResponseFormat(format)
	images, err := c.root.client.CreateImage(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}
	if c.root.printJSON(cmd, images) {
		return nil
	}
	for _, image := range images {
		fmt.Fprintln(cmd.OutOrStdout(), image)
	}
	return nil
}
