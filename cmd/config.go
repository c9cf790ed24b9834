package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/evdash/internal/config"
	"github.com/KaramelBytes/evdash/internal/dataset"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set evdash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		for _, key := range cfgpkg.Keys {
			v, _ := configValue(c, key)
			fmt.Fprintf(out, "%s: %s\n", key, v)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := currentConfig()
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		c.Sanitize()
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func configValue(c *cfgpkg.Global, key string) (string, bool) {
	switch key {
	case "source":
		return maskDSN(c.Source), true
	case "source_kind":
		return c.SourceKind, true
	case "source_table":
		return c.SourceTable, true
	case "sheet_name":
		return c.SheetName, true
	case "sheet_index":
		return strconv.Itoa(c.SheetIndex), true
	case "delimiter":
		return c.Delimiter, true
	case "decimal_separator":
		return c.DecimalSeparator, true
	case "thousands_separator":
		return c.ThousandsSeparator, true
	case "sample_size":
		return strconv.Itoa(c.SampleSize), true
	case "listen_addr":
		return c.ListenAddr, true
	case "read_timeout_sec":
		return strconv.Itoa(c.ReadTimeoutSec), true
	case "write_timeout_sec":
		return strconv.Itoa(c.WriteTimeoutSec), true
	case "public_url":
		return c.PublicURL, true
	case "chart_width":
		return strconv.Itoa(c.ChartWidth), true
	case "chart_height":
		return strconv.Itoa(c.ChartHeight), true
	case "output_dir":
		return c.OutputDir, true
	}
	return "", false
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return 0, fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		return i, nil
	}
	var err error
	switch key {
	case "source":
		c.Source = val
	case "source_kind":
		switch k := strings.ToLower(val); k {
		case dataset.KindAuto, dataset.KindCSV, dataset.KindXLSX, dataset.KindSQLite, dataset.KindPostgres:
			c.SourceKind = k
		default:
			return fmt.Errorf("invalid source_kind: %s (use auto|csv|xlsx|sqlite|postgres)", val)
		}
	case "source_table":
		c.SourceTable = val
	case "sheet_name":
		c.SheetName = val
	case "sheet_index":
		c.SheetIndex, err = atoi()
	case "delimiter":
		c.Delimiter = val
	case "decimal_separator":
		switch val {
		case ".", "dot":
			c.DecimalSeparator = "."
		case ",", "comma":
			c.DecimalSeparator = ","
		default:
			return fmt.Errorf("invalid decimal_separator: %s (use '.'|'comma')", val)
		}
	case "thousands_separator":
		switch val {
		case "", "none":
			c.ThousandsSeparator = ""
		case ",", ".", "'":
			c.ThousandsSeparator = val
		case " ", "space":
			c.ThousandsSeparator = "space"
		default:
			return fmt.Errorf("invalid thousands_separator: %s (use ','|'.'|'space'|none)", val)
		}
	case "sample_size":
		c.SampleSize, err = atoi()
	case "listen_addr":
		c.ListenAddr = val
	case "read_timeout_sec":
		c.ReadTimeoutSec, err = atoi()
	case "write_timeout_sec":
		c.WriteTimeoutSec, err = atoi()
	case "public_url":
		c.PublicURL = val
	case "chart_width":
		c.ChartWidth, err = atoi()
	case "chart_height":
		c.ChartHeight, err = atoi()
	case "output_dir":
		c.OutputDir = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

// maskDSN hides the password of a postgres URL.
func maskDSN(s string) string {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return s
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return s
	}
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return s
	}
	return scheme + "://" + user + ":****@" + host
}
