package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test default values
	if cfg.Mode != "server" {
		t.Errorf("Expected default mode to be 'server', got '%s'", cfg.Mode)
	}

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Expected default host to be '0.0.0.0', got '%s'", cfg.Host)
	}

	if cfg.Port != 8000 {
		t.Errorf("Expected default port to be 8000, got %d", cfg.Port)
	}

	if cfg.Version != "1.0.0" {
		t.Errorf("Expected default version to be '1.0.0', got '%s'", cfg.Version)
	}

	if cfg.ServiceName != "ssa-form-filler" {
		t.Errorf("Expected default service name to be 'ssa-form-filler', got '%s'", cfg.ServiceName)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.DefaultTemplate != "ssa-3373-formatted-blank.pdf" {
		t.Errorf("Expected default template to be 'ssa-3373-formatted-blank.pdf', got '%s'", cfg.DefaultTemplate)
	}

	if cfg.MaxTemplateSize != 50*1024*1024 {
		t.Errorf("Expected default max template size to be 50MB, got %d", cfg.MaxTemplateSize)
	}

	if cfg.MaxFontSize != 11.0 || cfg.MinFontSize != 6.0 || cfg.FontStep != 0.5 {
		t.Errorf("Expected default font range 11/6/0.5, got %v/%v/%v",
			cfg.MaxFontSize, cfg.MinFontSize, cfg.FontStep)
	}

	// Test that the template directory defaults to ./templates
	currentDir, _ := os.Getwd()
	expected := filepath.Join(currentDir, "templates")
	if cfg.TemplateDirectory != expected {
		t.Errorf("Expected default template directory to be '%s', got '%s'", expected, cfg.TemplateDirectory)
	}
}

func TestConfigValidate(t *testing.T) {
	tmpDir := t.TempDir()

	valid := func() *Config {
		return &Config{
			Mode:              ModeServer,
			Host:              "127.0.0.1",
			Port:              8000,
			TemplateDirectory: tmpDir,
			DefaultTemplate:   "form.pdf",
			MaxTemplateSize:   1024,
			MaxFontSize:       11,
			MinFontSize:       6,
			FontStep:          0.5,
			LogLevel:          "info",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config - server mode",
			mutate: func(*Config) {},
		},
		{
			name: "valid config - stdio mode",
			mutate: func(c *Config) {
				c.Mode = ModeStdio
			},
		},
		{
			name: "invalid mode",
			mutate: func(c *Config) {
				c.Mode = "invalid"
			},
			wantErr: "mode must be",
		},
		{
			name: "invalid port - too low (server mode)",
			mutate: func(c *Config) {
				c.Port = 0
			},
			wantErr: "port must be",
		},
		{
			name: "invalid port - too high (server mode)",
			mutate: func(c *Config) {
				c.Port = 70000
			},
			wantErr: "port must be",
		},
		{
			name: "invalid port ignored in stdio mode",
			mutate: func(c *Config) {
				c.Mode = ModeStdio
				c.Port = 0
			},
		},
		{
			name: "empty template directory",
			mutate: func(c *Config) {
				c.TemplateDirectory = ""
			},
			wantErr: "template directory",
		},
		{
			name: "empty default template",
			mutate: func(c *Config) {
				c.DefaultTemplate = ""
			},
			wantErr: "default template",
		},
		{
			name: "non-positive max template size",
			mutate: func(c *Config) {
				c.MaxTemplateSize = 0
			},
			wantErr: "maximum template size",
		},
		{
			name: "non-positive min font size",
			mutate: func(c *Config) {
				c.MinFontSize = 0
			},
			wantErr: "minimum font size",
		},
		{
			name: "max font size below min",
			mutate: func(c *Config) {
				c.MaxFontSize = 5
			},
			wantErr: "maximum font size",
		},
		{
			name: "non-positive font step",
			mutate: func(c *Config) {
				c.FontStep = 0
			},
			wantErr: "font step",
		},
		{
			name: "invalid log level",
			mutate: func(c *Config) {
				c.LogLevel = "verbose"
			},
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCreatesMissingTemplateDirectory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TemplateDirectory = filepath.Join(t.TempDir(), "nested", "templates")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	info, err := os.Stat(cfg.TemplateDirectory)
	if err != nil {
		t.Fatalf("template directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", cfg.TemplateDirectory)
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{Host: "127.0.0.1", Port: 8000}
	if got := cfg.Address(); got != "127.0.0.1:8000" {
		t.Errorf("Address() = %q, want '127.0.0.1:8000'", got)
	}
}

func TestConfigModeHelpers(t *testing.T) {
	cfg := &Config{Mode: ModeServer}
	if !cfg.IsServerMode() || cfg.IsStdioMode() {
		t.Error("expected server mode helpers to report server mode")
	}

	cfg.Mode = ModeStdio
	if cfg.IsServerMode() || !cfg.IsStdioMode() {
		t.Error("expected mode helpers to report stdio mode")
	}
}

func TestConfigIsDebug(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	if !cfg.IsDebug() {
		t.Error("expected IsDebug() to be true for debug log level")
	}

	cfg.LogLevel = "info"
	if cfg.IsDebug() {
		t.Error("expected IsDebug() to be false for info log level")
	}
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.String()

	for _, want := range []string{"Mode: server", "Port: 8000", "ssa-3373-formatted-blank.pdf"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, want it to contain %q", s, want)
		}
	}
}
