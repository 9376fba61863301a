package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/formfit/formfit/internal/sizing"
)

// Interface is the contract for accessing application configuration, so
// commands and services can be handed a mock in tests.
type Interface interface {
	Logger() LoggerConfig
	Sizing() SizingConfig
	Browser() BrowserConfig
	Output() OutputConfig
	Concurrency() int

	// Sizing setters, driven by CLI flags.
	SetSizingBaseSelector(string)
	SetSizingFilterSelector(string)
	SetSizingArrowWidth(string)

	// Browser setters.
	SetBrowserHeadless(bool)
	SetBrowserNavigationTimeout(time.Duration)

	// Output setters.
	SetOutputPath(string)
	SetOutputReportPath(string)

	SetConcurrency(int)
}

// Config holds the entire application configuration. Callers outside this
// package receive it as Interface so tests can substitute a mock.
type Config struct {
	LoggerCfg      LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	SizingCfg      SizingConfig  `mapstructure:"sizing" yaml:"sizing"`
	BrowserCfg     BrowserConfig `mapstructure:"browser" yaml:"browser"`
	OutputCfg      OutputConfig  `mapstructure:"output" yaml:"output"`
	ConcurrencyCfg int           `mapstructure:"concurrency" yaml:"concurrency"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Sizing() SizingConfig   { return c.SizingCfg }
func (c *Config) Browser() BrowserConfig { return c.BrowserCfg }
func (c *Config) Output() OutputConfig   { return c.OutputCfg }
func (c *Config) Concurrency() int       { return c.ConcurrencyCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetSizingBaseSelector(s string)   { c.SizingCfg.BaseSelector = s }
func (c *Config) SetSizingFilterSelector(s string) { c.SizingCfg.FilterSelector = s }
func (c *Config) SetSizingArrowWidth(s string)     { c.SizingCfg.ArrowWidth = s }

func (c *Config) SetBrowserHeadless(b bool) { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserNavigationTimeout(d time.Duration) {
	c.BrowserCfg.NavigationTimeout = d
}

func (c *Config) SetOutputPath(p string)       { c.OutputCfg.Path = p }
func (c *Config) SetOutputReportPath(p string) { c.OutputCfg.ReportPath = p }

func (c *Config) SetConcurrency(n int) { c.ConcurrencyCfg = n }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// SizingConfig carries the selector set and arrow allowance handed to the
// sizing engine.
type SizingConfig struct {
	BaseSelector   string `mapstructure:"base_selector" yaml:"base_selector"`
	FilterSelector string `mapstructure:"filter_selector" yaml:"filter_selector"`
	ArrowWidth     string `mapstructure:"arrow_width" yaml:"arrow_width"`
}

// EngineConfig converts to the sizing engine's own configuration type.
func (s SizingConfig) EngineConfig() sizing.Config {
	return sizing.Config{
		BaseSelector:   s.BaseSelector,
		FilterSelector: s.FilterSelector,
		ArrowWidth:     s.ArrowWidth,
	}
}

// BrowserConfig holds settings for browser-backed documents.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Args              []string      `mapstructure:"args" yaml:"args"`
}

// OutputConfig controls where results land. Path receives the resized
// document (empty means stdout); ReportPath receives the JSON sizing report.
type OutputConfig struct {
	Path       string `mapstructure:"path" yaml:"path"`
	ReportPath string `mapstructure:"report_path" yaml:"report_path"`
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the defaults below.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "formfit")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Sizing --
	v.SetDefault("sizing.base_selector", sizing.DefaultBaseSelector)
	v.SetDefault("sizing.filter_selector", sizing.DefaultFilterSelector)
	v.SetDefault("sizing.arrow_width", sizing.DefaultArrowWidth)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigation_timeout", "90s")
	v.SetDefault("browser.ignore_tls_errors", false)

	// -- Output --
	v.SetDefault("output.path", "")
	v.SetDefault("output.report_path", "")

	v.SetDefault("concurrency", 4)
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.ConcurrencyCfg <= 0 {
		return fmt.Errorf("concurrency must be a positive integer")
	}
	if c.BrowserCfg.NavigationTimeout <= 0 {
		return fmt.Errorf("browser.navigation_timeout must be a positive duration")
	}
	if c.SizingCfg.BaseSelector == "" {
		return fmt.Errorf("sizing.base_selector must not be empty")
	}
	return nil
}
