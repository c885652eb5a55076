package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/salesimport/internal/core"
)

type templateOptions struct {
	mode   string
	format string
	output string
}

func newTemplateCmd() *cobra.Command {
	var opts templateOptions

	cmd := &cobra.Command{
		Use:   "template [MODE]",
		Short: "Write a blank import template (products, customers, sales or full)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.mode = args[0]
			}
			return runTemplate(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "xlsx", "Output format: xlsx or csv")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: the template's suggested name, - for stdout)")

	return cmd
}

func runTemplate(out io.Writer, opts templateOptions) error {
	mode, err := core.ParseTemplateMode(opts.mode)
	if err != nil {
		return withCode(exitUsage, err)
	}
	format, err := core.ParseTemplateFormat(opts.format)
	if err != nil {
		return withCode(exitUsage, err)
	}

	data, err := core.GenerateTemplate(mode, format)
	if err != nil {
		return err
	}

	if opts.output == "-" {
		_, err := out.Write(data)
		return err
	}
	path := opts.output
	if path == "" {
		path = mode.FileName(format)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}
