package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"ctxcopy/pkg/aggregate"
	"ctxcopy/pkg/config"
	"ctxcopy/pkg/format"
)

func init() {
	RootCmd.AddCommand(newFormatCmd("markdown", "Aggregate selected files as markdown"))
	RootCmd.AddCommand(newFormatCmd("txt", "Aggregate selected files as plain text"))
}

// newFormatCmd builds one format-first command (markdown, txt). Paths may be
// literal files/folders or glob patterns; with no paths the current
// directory is aggregated.
func newFormatCmd(name, short string) *cobra.Command {
	var (
		output     string
		outputDir  string
		ext        string
		maxWorkers int
	)

	cmd := &cobra.Command{
		Use:   name + " [paths...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(cmd, args, name, output, outputDir, ext, maxWorkers)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path; default is the clipboard")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Write one artifact per selection into this directory")
	cmd.Flags().StringVar(&ext, "ext", "", "Artifact extension for --output-dir (default per format)")
	cmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Concurrent file readers (0 = one per CPU)")
	return cmd
}

func runCopy(cmd *cobra.Command, args []string, formatName, output, outputDir, ext string, maxWorkers int) error {
	cfg, err := config.Load(flagBasePath, logger)
	if err != nil {
		return err
	}
	if maxWorkers <= 0 {
		maxWorkers = cfg.Limits.MaxWorkers
	}

	exclude := append(append([]string{}, cfg.Defaults.Exclude...), flagExclude...)
	if ext == "" {
		ext = cfg.Defaults.Extension
	}

	result, runErr := aggregate.Run(cmd.Context(), aggregate.Request{
		Selection:     args,
		BaseDir:       flagBasePath,
		Exclude:       exclude,
		MaxFileSizeKB: cfg.Limits.MaxFileSizeKB,
		MaxWorkers:    maxWorkers,
		ReadTimeout:   cfg.ReadTimeout(),
		Languages:     cfg.Languages,
	}, logger)

	if result != nil {
		defer fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
	}
	if runErr != nil {
		return runErr
	}

	formatter, err := format.Get(formatName)
	if err != nil {
		return err
	}

	switch {
	case outputDir != "":
		written, errs := format.WriteDir(outputDir, result.Documents, formatter, ext, logger)
		for _, werr := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", werr)
		}
		if written == 0 {
			return fmt.Errorf("failed to write any output artifact to %s", outputDir)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d context file(s) written to %s\n", written, outputDir)

	case output != "":
		content := formatter.Render(result.Combined())
		if err := format.WriteFile(output, content, logger); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Content from %d file(s) written to %s\n", result.Readable, output)

	default:
		content := formatter.Render(result.Combined())
		if err := clipboard.WriteAll(content); err != nil {
			return fmt.Errorf("failed to copy to clipboard (use --output instead): %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Content from %d file(s) copied to clipboard\n", result.Readable)
	}

	return nil
}
