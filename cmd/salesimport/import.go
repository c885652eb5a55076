package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/salesimport/internal/application"
	"github.com/JonMunkholm/salesimport/internal/config"
	"github.com/JonMunkholm/salesimport/internal/core"
	"github.com/JonMunkholm/salesimport/internal/logging"
)

type importOptions struct {
	path   string
	kind   string
	dryRun bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import an .xlsx or .csv worksheet",
		Long: "Import reads the first sheet of FILE, maps its columns and creates or\n" +
			"updates categories, products, customers and sales. The result is\n" +
			"printed as JSON. With --dry-run nothing is written to the database.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.path = args[0]
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "auto", "Columns to consider: auto, products, customers or sales")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Reconcile against an empty in-memory store instead of the database")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, opts importOptions) error {
	kind, err := core.ParseImportKind(opts.kind)
	if err != nil {
		return withCode(exitUsage, err)
	}
	data, err := os.ReadFile(opts.path)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("read %s: %w", opts.path, err))
	}

	if opts.dryRun {
		if err := os.Setenv("STORE_DRIVER", config.StoreDriverMemory); err != nil {
			return err
		}
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := application.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	req := core.ImportRequest{
		ImportID: uuid.NewString(),
		FileName: filepath.Base(opts.path),
		Data:     data,
		Kind:     kind,
	}
	logger := logging.ForImport(ctx, req.ImportID, req.FileName)
	logger.Info("import started", "kind", kind, "dry_run", opts.dryRun)

	ctx, cancel := context.WithTimeout(ctx, cfg.Import.Timeout)
	defer cancel()

	res := app.Service.Import(ctx, req)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if !res.Success {
		return fmt.Errorf("import failed: %s", res.Message)
	}
	return nil
}
