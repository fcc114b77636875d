package crashpad

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"

	"github.com/bahamoth/crashpad-go/handler"
)

// inProcessHandler reports whether this platform runs the crash handler
// inside the client process instead of as a separate executable.
var inProcessHandler = runtime.GOOS == "ios"

// Config describes where the Crashpad handler lives, where it stores
// crash dumps and metrics, and where reports are uploaded.
type Config struct {
	// HandlerPath is the crash handler executable. Empty means
	// "discover it" (see handlerPath).
	HandlerPath string `env:"CRASHPAD_HANDLER"`

	// DatabasePath is the crash database directory. The directory
	// layout inside is owned by Crashpad.
	DatabasePath string `env:"CRASHPAD_DATABASE_DIR"`

	// MetricsPath is the metrics directory. May be empty.
	MetricsPath string `env:"CRASHPAD_METRICS_DIR"`

	// URL receives uploaded crash reports. Empty disables upload.
	URL string `env:"CRASHPAD_URL"`
}

// NewConfig returns a Config with the database and metrics directories
// placed next to the running executable.
func NewConfig() Config {
	exeDir := "."
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	return Config{
		DatabasePath: filepath.Join(exeDir, "crashpad_db"),
		MetricsPath:  filepath.Join(exeDir, "crashpad_metrics"),
	}
}

// ConfigFromEnv returns NewConfig overridden by the CRASHPAD_*
// environment variables.
func ConfigFromEnv() (Config, error) {
	cfg := NewConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, invalidConfig(fmt.Sprintf("parse environment: %v", err))
	}
	return cfg, nil
}

// handlerPath resolves the handler executable for this config.
//
// Search order:
//  1. Explicit path in the config. Returned even if the file does not
//     exist so the caller gets a precise diagnostic.
//  2. CRASHPAD_HANDLER environment variable.
//  3. Same directory as the executable.
//  4. dist/bin, where crashpad-build installs the handler.
//  5. Current working directory.
//
// On iOS the handler is in-process and the path is always empty.
func (c Config) handlerPath() (string, error) {
	if inProcessHandler {
		return "", nil
	}

	if c.HandlerPath != "" {
		return c.HandlerPath, nil
	}

	path, err := handler.Locate()
	if err != nil {
		return "", invalidConfig(fmt.Sprintf(
			"handler %q not found; searched config path, CRASHPAD_HANDLER, executable directory, dist/bin, working directory",
			handler.Basename()))
	}
	return path, nil
}

// ConfigBuilder assembles a Config with chainable setters.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder starts from NewConfig defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: NewConfig()}
}

func (b *ConfigBuilder) HandlerPath(path string) *ConfigBuilder {
	b.config.HandlerPath = path
	return b
}

func (b *ConfigBuilder) DatabasePath(path string) *ConfigBuilder {
	b.config.DatabasePath = path
	return b
}

func (b *ConfigBuilder) MetricsPath(path string) *ConfigBuilder {
	b.config.MetricsPath = path
	return b
}

func (b *ConfigBuilder) URL(url string) *ConfigBuilder {
	b.config.URL = url
	return b
}

func (b *ConfigBuilder) Build() Config {
	return b.config
}
