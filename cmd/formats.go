package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ctxcopy/pkg/format"
)

func init() {
	formatsCmd := &cobra.Command{
		Use:   "formats",
		Short: "List available output formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Available output formats:")
			for _, name := range format.Names() {
				f, err := format.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-10s -> %s\n", name, f.Extension())
			}
			return nil
		},
	}
	RootCmd.AddCommand(formatsCmd)
}
