// Package cli implements the openai command-line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leofalp/openai-go"
	"github.com/leofalp/openai-go/internal/config"
	"github.com/leofalp/openai-go/internal/utils"
	"github.com/leofalp/openai-go/observability/slogobs"
)

const rootLongDesc string = `Command-line access to the OpenAI API.

Settings come from --config (YAML), a .env file in the working directory
and OPENAI_* environment variables; flags override all of them.

Examples:
  openai models
  openai chat --system "Answer briefly" "What is the capital of Italy?"
  echo "Hello" | openai embed --json`

// rootCommander carries the global flags and the client built from them.
type rootCommander struct {
	configPath string
	apiKey     string
	baseURL    string
	logLevel   string
	logFormat  string
	jsonOutput bool

	cfg    *config.Config
	client *openai.Client
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &rootCommander{}

	cmd := &cobra.Command{
		Use:           "openai",
		Short:         "Call the OpenAI API from the command line",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return root.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&root.configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVar(&root.apiKey, "api-key", "", "API key (overrides "+config.EnvAPIKey+")")
	flags.StringVar(&root.baseURL, "base-url", "", "API base URL (overrides "+config.EnvBaseURL+")")
	flags.StringVar(&root.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	flags.StringVar(&root.logFormat, "log-format", "", "Log format: text or json")
	flags.BoolVar(&root.jsonOutput, "json", false, "Print full responses as JSON")

	cmd.AddCommand(
		newModelsCmd(root),
		newChatCmd(root),
		newCompleteCmd(root),
		newEditCmd(root),
		newEmbedCmd(root),
		newImageCmd(root),
	)
	return cmd
}

// Execute runs the command tree and reports errors on stderr.
func Execute(ctx context.Context) int {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func (r *rootCommander) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		cfg.APIKey = r.apiKey
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = r.baseURL
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = r.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = r.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	observer := cfg.NewObserver(slogobs.WithOutput(cmd.ErrOrStderr()))
	r.cfg = cfg
	r.client = cfg.NewClient().WithObserver(observer)
	return nil
}

// printJSON writes v as indented JSON when --json is set and reports whether
// it did.
func (r *rootCommander) printJSON(cmd *cobra.Command, v any) bool {
	if !r.jsonOutput {
		return false
	}
	fmt.Fprintln(cmd.OutOrStdout(), utils.JSONToString(v, true))
	return true
}

// model returns the --model flag value, or the configured default.
func (r *rootCommander) model(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return r.cfg.Model
}

// readInput joins args, or reads stdin when there are none and stdin is not
// an interactive terminal.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", fmt.Errorf("no input: pass it as arguments or pipe it on stdin")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	input := strings.TrimSpace(string(data))
	if input == "" {
		return "", fmt.Errorf("no input: pass it as arguments or pipe it on stdin")
	}
	return input, nil
}
