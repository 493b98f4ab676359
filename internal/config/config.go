package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort            = 8000
	DefaultHost            = "0.0.0.0"
	DefaultLogLevel        = "info"
	DefaultMaxTemplateSize = 50 * 1024 * 1024 // 50MB
	DefaultTemplateName    = "ssa-3373-formatted-blank.pdf"

	// Font fitting defaults, in points
	DefaultMaxFontSize = 11.0
	DefaultMinFontSize = 6.0
	DefaultFontStep    = 0.5

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the form filler service
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Template configuration
	TemplateDirectory string
	DefaultTemplate   string
	MaxTemplateSize   int64 // Maximum template file size in bytes

	// Text fitting configuration
	MaxFontSize float64
	MinFontSize float64
	FontStep    float64

	// Application configuration
	Version     string
	ServiceName string
	LogLevel    string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:              ModeServer,
		Host:              DefaultHost,
		Port:              DefaultPort,
		TemplateDirectory: filepath.Join(currentDir, "templates"),
		DefaultTemplate:   DefaultTemplateName,
		MaxTemplateSize:   DefaultMaxTemplateSize,
		MaxFontSize:       DefaultMaxFontSize,
		MinFontSize:       DefaultMinFontSize,
		FontStep:          DefaultFontStep,
		Version:           "1.0.0",
		ServiceName:       "ssa-form-filler",
		LogLevel:          DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand the templates directory if needed
	if cfg.TemplateDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.TemplateDirectory); err == nil {
			cfg.TemplateDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("SSA_FILLER")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("templates", cfg.TemplateDirectory)
	viper.SetDefault("template", cfg.DefaultTemplate)
	viper.SetDefault("maxtemplatesize", cfg.MaxTemplateSize)
	viper.SetDefault("maxfontsize", cfg.MaxFontSize)
	viper.SetDefault("minfontsize", cfg.MinFontSize)
	viper.SetDefault("fontstep", cfg.FontStep)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'server' for the HTTP API, 'stdio' for MCP standard I/O")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("templates", cfg.TemplateDirectory, "Directory containing PDF form templates")
	pflag.String("template", cfg.DefaultTemplate, "Default template file name")
	pflag.Int64("maxtemplatesize", cfg.MaxTemplateSize, "Maximum template file size in bytes")
	pflag.Float64("maxfontsize", cfg.MaxFontSize, "Largest font size used when fitting field text (points)")
	pflag.Float64("minfontsize", cfg.MinFontSize, "Smallest font size used when fitting field text (points)")
	pflag.Float64("fontstep", cfg.FontStep, "Font size step used when shrinking field text (points)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("templates", pflag.Lookup("templates"))
	_ = viper.BindPFlag("template", pflag.Lookup("template"))
	_ = viper.BindPFlag("maxtemplatesize", pflag.Lookup("maxtemplatesize"))
	_ = viper.BindPFlag("maxfontsize", pflag.Lookup("maxfontsize"))
	_ = viper.BindPFlag("minfontsize", pflag.Lookup("minfontsize"))
	_ = viper.BindPFlag("fontstep", pflag.Lookup("fontstep"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nSSA Form Filler - fills SSA-3373 PDF form templates with line-limited text\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          # HTTP server on :8000, ./templates\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --templates=/srv/forms --port=8080       # custom templates dir and port\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --templates=/srv/forms      # MCP stdio mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  SSA_FILLER_MODE             Run mode\n")
		fmt.Fprintf(os.Stderr, "  SSA_FILLER_HOST             Server host\n")
		fmt.Fprintf(os.Stderr, "  SSA_FILLER_PORT             Server port\n")
		fmt.Fprintf(os.Stderr, "  SSA_FILLER_TEMPLATES        Template directory\n")
		fmt.Fprintf(os.Stderr, "  SSA_FILLER_TEMPLATE         Default template name\n")
		fmt.Fprintf(os.Stderr, "  SSA_FILLER_MAXTEMPLATESIZE  Maximum template file size\n")
		fmt.Fprintf(os.Stderr, "  SSA_FILLER_LOGLEVEL         Log level\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.TemplateDirectory = viper.GetString("templates")
	cfg.DefaultTemplate = viper.GetString("template")
	cfg.MaxTemplateSize = viper.GetInt64("maxtemplatesize")
	cfg.MaxFontSize = viper.GetFloat64("maxfontsize")
	cfg.MinFontSize = viper.GetFloat64("minfontsize")
	cfg.FontStep = viper.GetFloat64("fontstep")
	cfg.LogLevel = viper.GetString("loglevel")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate template directory
	if c.TemplateDirectory == "" {
		return errors.New("template directory cannot be empty")
	}

	// Check if the template directory exists, create if it doesn't
	if _, err := os.Stat(c.TemplateDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.TemplateDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create template directory %s: %w", c.TemplateDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access template directory %s: %w", c.TemplateDirectory, err)
	}

	if c.DefaultTemplate == "" {
		return errors.New("default template name cannot be empty")
	}

	// Validate max template size
	if c.MaxTemplateSize <= 0 {
		return errors.New("maximum template size must be positive")
	}

	// Validate font fitting range
	if c.MinFontSize <= 0 {
		return errors.New("minimum font size must be positive")
	}
	if c.MaxFontSize < c.MinFontSize {
		return errors.New("maximum font size must not be smaller than minimum font size")
	}
	if c.FontStep <= 0 {
		return errors.New("font step must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, TemplateDirectory: %s, DefaultTemplate: %s, LogLevel: %s}",
		c.Mode, c.Host, c.Port, c.TemplateDirectory, c.DefaultTemplate, c.LogLevel)
}

// IsServerMode returns true if the service runs the HTTP API
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the service runs in MCP stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
