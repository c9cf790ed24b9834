package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Data source
	Source             string `mapstructure:"source" yaml:"source"`
	SourceKind         string `mapstructure:"source_kind" yaml:"source_kind"`
	SourceTable        string `mapstructure:"source_table" yaml:"source_table"`
	SheetName          string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex         int    `mapstructure:"sheet_index" yaml:"sheet_index"`
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"` // empty strips nothing

	// Default selection
	SampleSize int `mapstructure:"sample_size" yaml:"sample_size"`

	// HTTP dashboard
	ListenAddr      string `mapstructure:"listen_addr" yaml:"listen_addr"`
	ReadTimeoutSec  int    `mapstructure:"read_timeout_sec" yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `mapstructure:"write_timeout_sec" yaml:"write_timeout_sec"`
	PublicURL       string `mapstructure:"public_url" yaml:"public_url"`

	// Static charts
	ChartWidth  int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int    `mapstructure:"chart_height" yaml:"chart_height"`
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"source", "source_kind", "source_table", "sheet_name", "sheet_index",
	"delimiter", "decimal_separator", "thousands_separator", "sample_size",
	"listen_addr", "read_timeout_sec", "write_timeout_sec", "public_url",
	"chart_width", "chart_height", "output_dir",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source", "cleaned_data.csv")
	v.SetDefault("source_kind", "auto")
	v.SetDefault("source_table", "vehicles")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", ".")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("sample_size", 5)
	// HTTP defaults
	v.SetDefault("listen_addr", ":8765")
	v.SetDefault("read_timeout_sec", 15)
	v.SetDefault("write_timeout_sec", 30)
	v.SetDefault("public_url", "http://localhost:8765")
	// Chart defaults
	v.SetDefault("chart_width", 1024)
	v.SetDefault("chart_height", 600)
	v.SetDefault("output_dir", "charts")
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Dir returns ~/.evdash.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".evdash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.evdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EVDASH")
	v.AutomaticEnv()
	setDefaults(v)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Sanitize()
	return &c, nil
}

// Sanitize clamps out-of-range values back to defaults.
func (c *Global) Sanitize() {
	d := Defaults()
	c.Source = strings.TrimSpace(c.Source)
	if c.Source == "" {
		c.Source = d.Source
	}
	if c.SourceKind == "" {
		c.SourceKind = d.SourceKind
	}
	if c.SourceTable == "" {
		c.SourceTable = d.SourceTable
	}
	if c.SheetIndex <= 0 {
		c.SheetIndex = d.SheetIndex
	}
	if c.SampleSize <= 0 {
		c.SampleSize = d.SampleSize
	}
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.ReadTimeoutSec <= 0 {
		c.ReadTimeoutSec = d.ReadTimeoutSec
	}
	if c.WriteTimeoutSec <= 0 {
		c.WriteTimeoutSec = d.WriteTimeoutSec
	}
	if c.PublicURL == "" {
		c.PublicURL = d.PublicURL
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	if c.ChartWidth <= 0 {
		c.ChartWidth = d.ChartWidth
	}
	if c.ChartHeight <= 0 {
		c.ChartHeight = d.ChartHeight
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
}

// DelimiterRune returns the configured CSV delimiter, 0 for auto. "tab" and
// "\t" both select a tab.
func (c *Global) DelimiterRune() rune {
	switch s := c.Delimiter; strings.ToLower(s) {
	case "":
		return 0
	case "tab", `\t`, "\t":
		return '\t'
	default:
		return []rune(s)[0]
	}
}

// DecimalRune returns the configured decimal separator, '.' by default.
func (c *Global) DecimalRune() rune {
	if c.DecimalSeparator == "" {
		return '.'
	}
	return []rune(c.DecimalSeparator)[0]
}

// ThousandsRune returns the configured thousands separator, 0 for none.
// "space" selects a blank.
func (c *Global) ThousandsRune() rune {
	switch s := c.ThousandsSeparator; strings.ToLower(s) {
	case "":
		return 0
	case "space":
		return ' '
	default:
		return []rune(s)[0]
	}
}
