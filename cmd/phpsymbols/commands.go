package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/phpsymbols/internal/mcp"
	"github.com/dshills/phpsymbols/internal/storage"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "phpsymbols [roots...]",
		Short: "PHP symbol tables and go-to-definition over MCP",
		Long: `phpsymbols indexes PHP sources into per-document symbol tables and serves
exact, substring and go-to-definition queries over the Model Context Protocol on stdio.

Directories given as arguments are indexed in the background at startup.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, args)
		},
	}
	root.SetVersionTemplate(versionText())
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	serve := &cobra.Command{
		Use:   "serve [roots...]",
		Short: "Serve MCP tools on stdio (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, args)
		},
	}
	root.AddCommand(serve, newIndexCmd(&configPath), newVersionCmd())
	return root
}

func runServe(parent context.Context, configPath string, roots []string) error {
	if parent == nil {
		parent = context.Background()
	}
	a, err := newApp(configPath, true)
	if err != nil {
		return err
	}
	defer a.Close()

	a.log.Info("server starting",
		"version", version,
		"build_mode", storage.BuildMode,
		"driver", storage.DriverName,
		"catalog", a.catalog != nil,
		"watch", a.watcher != nil)

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, root := range roots {
		if a.watcher != nil {
			if err := a.watcher.Add(root); err != nil {
				a.log.Warn("failed to watch directory", "path", root, "error", err)
			}
		}
		go func(root string) {
			if _, err := a.workspace.IndexDirectory(ctx, root); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error("startup indexing failed", "path", root, "error", err)
			}
		}(root)
	}

	var opts []mcp.Option
	if a.watcher != nil {
		opts = append(opts, mcp.WithWatcher(a.watcher))
	}
	server := mcp.NewServer(a.workspace, a.catalog, a.log, opts...)

	errChan := make(chan error, 1)
	go func() {
		a.log.Info("MCP server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server error: %w", err)
		}
	}
	a.log.Info("server stopped")
	return nil
}

func newIndexCmd(configPath *string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "index <dir>",
		Short: "Index a directory once and print statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			stats, err := a.workspace.IndexDirectory(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"files_indexed":     stats.FilesIndexed,
					"files_skipped":     stats.FilesSkipped,
					"files_failed":      stats.FilesFailed,
					"symbols_extracted": stats.SymbolsExtracted,
					"duration_ms":       stats.Duration.Milliseconds(),
					"errors":            stats.ErrorMessages,
				})
			}
			fmt.Fprintf(out, "Files indexed:     %d\n", stats.FilesIndexed)
			fmt.Fprintf(out, "Files skipped:     %d\n", stats.FilesSkipped)
			fmt.Fprintf(out, "Files failed:      %d\n", stats.FilesFailed)
			fmt.Fprintf(out, "Symbols extracted: %d\n", stats.SymbolsExtracted)
			fmt.Fprintf(out, "Duration:          %s\n", stats.Duration)
			for _, msg := range stats.ErrorMessages {
				fmt.Fprintf(out, "  %s\n", msg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionText())
		},
	}
}

func versionText() string {
	return fmt.Sprintf("phpsymbols\nVersion: %s\nBuild Time: %s\nBuild Mode: %s\nSQLite Driver: %s\nGo: %s %s/%s\n",
		version, buildTime, storage.BuildMode, storage.DriverName, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
