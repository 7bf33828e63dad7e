package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// logger is injected by Execute and shared by all commands.
var logger = zap.NewNop()

// Persistent flags shared across commands.
var (
	flagBasePath string
	flagExclude  []string
	flagVerbose  bool
)

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "ctxcopy",
	Short: "ctxcopy aggregates project files into pasteable context",
	Long: `ctxcopy resolves files, folders, and glob patterns into a single
formatted text artifact — to the clipboard, a file, or one file per
selection — for pasting into chat tools, documentation, or reviews.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&flagBasePath, "base-path", "p", ".", "Base directory to operate in")
	RootCmd.PersistentFlags().StringSliceVarP(&flagExclude, "exclude", "e", nil, "Additional ignore patterns (gitignore syntax)")
	RootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command with the provided logger.
func Execute(l *zap.Logger) error {
	if l != nil {
		logger = l
	}
	return RootCmd.Execute()
}
