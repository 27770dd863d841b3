// Package cli implements the checkpoint command tree.
package cli

import (
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/checkpoint"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// NewRootCmd builds the checkpoint command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Record progress checkpoints of a development session in git",
		Long: `checkpoint records the progress of a development session as a series of
categorised checkpoints. Each checkpoint snapshots the progress, performance
and security documents into .checkpoint/checkpoints, commits pending changes
with a category prefix and pushes once enough commits have accumulated.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		// Unknown commands fall through to the usage text instead of an error.
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	for _, c := range checkpoint.Categories() {
		cmd.AddCommand(newCategoryCmd(c))
	}
	cmd.AddCommand(newDispatchCmd())
	cmd.AddCommand(newPushCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}
