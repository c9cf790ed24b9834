package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	cfgpkg "github.com/KaramelBytes/evdash/internal/config"
	"github.com/KaramelBytes/evdash/internal/dataset"
	"github.com/KaramelBytes/evdash/internal/utils"
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var (
	// Global flags (override config if set)
	cfgFile        string
	debug          bool
	flagSource     string
	flagSourceKind string
	flagTable      string
	flagSheet      string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "evdash",
	Short: "evdash: compare electric vehicle specifications",
	Long: `evdash loads an EV specification table (CSV, XLSX, SQLite or PostgreSQL), lets you
narrow it down by brand, drivetrain and model, and presents the selection as a table,
charts and a report, either in a browser dashboard or from the command line.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.evdash/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug output")
	pf.StringVar(&flagSource, "source", "", "data source: file path or DSN (overrides config)")
	pf.StringVar(&flagSourceKind, "source-kind", "", "source kind: auto|csv|xlsx|sqlite|postgres")
	pf.StringVar(&flagTable, "table", "", "SQL table holding the vehicles")
	pf.StringVar(&flagSheet, "sheet", "", "XLSX sheet name (default: first sheet)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("source") && flagSource != "" {
		cfg.Source = flagSource
	}
	if f.Changed("source-kind") && flagSourceKind != "" {
		cfg.SourceKind = flagSourceKind
	}
	if f.Changed("table") && flagTable != "" {
		cfg.SourceTable = flagTable
	}
	if f.Changed("sheet") {
		cfg.SheetName = flagSheet
	}
	if debug {
		fmt.Fprintf(os.Stderr, "[debug] source=%s kind=%s table=%s sheet=%q\n", cfg.Source, cfg.SourceKind, cfg.SourceTable, cfg.SheetName)
	}
}

// currentConfig returns the loaded configuration, loading it if a command ran
// without OnInitialize (tests call rootCmd.Execute directly).
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

// dataSource builds the dataset source from configuration. A relative file
// path that does not exist is looked up in parent directories.
func dataSource(c *cfgpkg.Global) dataset.Source {
	src := dataset.Source{
		Kind:       c.SourceKind,
		Location:   c.Source,
		Table:      c.SourceTable,
		SheetName:  c.SheetName,
		SheetIndex: c.SheetIndex,
		Options: dataset.Options{
			Delimiter:          c.DelimiterRune(),
			DecimalSeparator:   c.DecimalRune(),
			ThousandsSeparator: c.ThousandsRune(),
		},
	}
	if src.ResolvedKind() == dataset.KindPostgres || filepath.IsAbs(src.Location) {
		return src
	}
	if _, err := os.Stat(src.Location); errors.Is(err, fs.ErrNotExist) {
		if found, err := utils.FindUp("", src.Location); err == nil {
			if debug {
				fmt.Fprintf(os.Stderr, "[debug] using %s\n", found)
			}
			src.Location = found
		}
	}
	return src
}

// loadDataset reads the configured source. Failures are fatal for every command.
func loadDataset(cmd *cobra.Command) (*dataset.Dataset, dataset.Source, error) {
	src := dataSource(currentConfig())
	ds, err := dataset.Load(cmd.Context(), src)
	if err != nil {
		return nil, src, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	return ds, src, nil
}
