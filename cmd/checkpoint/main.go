package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := cli.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		var silent *cli.SilentError
		if !errors.As(err, &silent) {
			fmt.Fprintln(rootCmd.ErrOrStderr(), cli.FormatError(err))
		}
		os.Exit(cli.ExitCode(err))
	}
}
