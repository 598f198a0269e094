package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edwinsyarief/kessoku/internal/codegen"
)

const watchDebounce = 200 * time.Millisecond

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate Go source from a schema file",
	Example: `  kessokugen generate --schema schema.yaml
  kessokugen generate --schema schema.yaml --out schema_generated.go --watch`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("schema", "s", "", "schema file to read")
	generateCmd.Flags().StringP("out", "o", "",
		"output file (default: <schema>_generated.go)")
	generateCmd.Flags().BoolP("watch", "w", false,
		"regenerate whenever the schema changes")

	_ = viper.BindPFlag("schema", generateCmd.Flags().Lookup("schema"))
	_ = viper.BindPFlag("out", generateCmd.Flags().Lookup("out"))
	_ = viper.BindPFlag("watch", generateCmd.Flags().Lookup("watch"))

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	schema := viper.GetString("schema")
	if schema == "" {
		return eris.New("no schema given; pass --schema or set KESSOKUGEN_SCHEMA")
	}
	out := outputPath(schema, viper.GetString("out"))

	if err := generate(schema, out); err != nil {
		return err
	}
	if !viper.GetBool("watch") {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watch(ctx, schema, out)
}

// outputPath returns out, or the schema path with its extension replaced by
// _generated.go when out is empty.
func outputPath(schema, out string) string {
	if out != "" {
		return out
	}
	return strings.TrimSuffix(schema, filepath.Ext(schema)) + "_generated.go"
}

func generate(schema, out string) error {
	start := time.Now()
	changed, err := codegen.GenerateFile(schema, out)
	if err != nil {
		return err
	}
	logger.Debug("generated",
		"schema", schema,
		"out", out,
		"changed", changed,
		"elapsed", time.Since(start))
	if changed {
		logger.Info("wrote " + out)
	}
	return nil
}

// watch regenerates out whenever schema changes until ctx is done. Errors in
// the schema are logged and watching continues.
func watch(ctx context.Context, schema, out string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return eris.Wrap(err, "creating fsnotify watcher")
	}
	defer fsw.Close()

	// Editors often replace the file, so watch the directory.
	dir := filepath.Dir(schema)
	if err := fsw.Add(dir); err != nil {
		return eris.Wrapf(err, "watching directory %s", dir)
	}
	logger.Info("watching " + schema)

	target := filepath.Clean(schema)
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target ||
				event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(watchDebounce)

		case <-timer.C:
			if err := generate(schema, out); err != nil {
				logger.Error("generation failed", "schema", schema, "err", err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}
