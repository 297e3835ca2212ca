// Command openai calls the OpenAI API from the command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/leofalp/openai-go/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
