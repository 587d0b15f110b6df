// Package config loads create-v1-app settings from .create-v1-app.yaml and
// CREATE_V1_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/simonhull/create-v1-app/internal/apperr"
	"github.com/simonhull/create-v1-app/internal/cleanup"
	"github.com/simonhull/create-v1-app/internal/manifest"
	"github.com/simonhull/create-v1-app/pkg/exec"
	"github.com/spf13/viper"
)

// FileName is the config file name without extension.
const FileName = ".create-v1-app"

// EnvPrefix prefixes every environment override, e.g. CREATE_V1_INSTALL_JOBS.
const EnvPrefix = "CREATE_V1"

// Config holds every setting. Command-line flags override it.
type Config struct {
	PackageManager string        `mapstructure:"package_manager" yaml:"package_manager"`
	Templates      string        `mapstructure:"templates" yaml:"templates"`
	Install        InstallConfig `mapstructure:"install" yaml:"install"`
	Cleanup        CleanupConfig `mapstructure:"cleanup" yaml:"cleanup"`
	Git            GitConfig     `mapstructure:"git" yaml:"git"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`

	// File is the config file that was read, empty if none.
	File string `mapstructure:"-" yaml:"-"`
}

// InstallConfig controls the dependency install phase.
type InstallConfig struct {
	Skip        bool          `mapstructure:"skip" yaml:"skip"`
	Jobs        int           `mapstructure:"jobs" yaml:"jobs"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	GracePeriod time.Duration `mapstructure:"grace_period" yaml:"grace_period"`
}

// CleanupConfig controls rollback.
type CleanupConfig struct {
	Order string `mapstructure:"order" yaml:"order"`
}

// GitConfig controls repository initialization of new projects.
type GitConfig struct {
	Init bool `mapstructure:"init" yaml:"init"`
}

// LoadOptions configures Load.
type LoadOptions struct {
	File        string   // explicit config file; must exist when set
	SearchPaths []string // defaults to "." and "$HOME"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("package_manager", manifest.DefaultManager)
	v.SetDefault("templates", "")
	v.SetDefault("install.skip", false)
	v.SetDefault("install.jobs", 0)
	v.SetDefault("install.timeout", time.Duration(0))
	v.SetDefault("install.grace_period", exec.DefaultGracePeriod)
	v.SetDefault("cleanup.order", cleanup.Reverse.String())
	v.SetDefault("git.init", false)
	v.SetDefault("log_level", "warn")
}

// Load reads the config file, if any, applies environment overrides and
// validates the result. A missing config file is not an error.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = []string{".", "$HOME"}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, &apperr.ConfigError{Msg: "failed to read config", Err: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &apperr.ConfigError{Msg: "invalid config", Err: err}
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		PackageManager: manifest.DefaultManager,
		Install:        InstallConfig{GracePeriod: exec.DefaultGracePeriod},
		Cleanup:        CleanupConfig{Order: cleanup.Reverse.String()},
		LogLevel:       "warn",
	}
}

// Validate reports the first invalid setting as a ConfigError.
func (c *Config) Validate() error {
	if _, err := manifest.LookupManager(c.PackageManager); err != nil {
		return err
	}
	if _, err := cleanup.ParseOrder(c.Cleanup.Order); err != nil {
		return &apperr.ConfigError{Msg: "cleanup.order", Err: err}
	}
	if c.Install.Jobs < 0 {
		return apperr.Configf("install.jobs must not be negative, got %d", c.Install.Jobs)
	}
	if c.Install.Timeout < 0 || c.Install.GracePeriod < 0 {
		return apperr.Configf("install durations must not be negative")
	}
	return nil
}

// CleanupOrder returns the parsed cleanup order.
func (c *Config) CleanupOrder() cleanup.Order {
	o, _ := cleanup.ParseOrder(c.Cleanup.Order)
	return o
}

func (c *Config) String() string {
	src := c.File
	if src == "" {
		src = "defaults"
	}
	return fmt.Sprintf("config(%s): package_manager=%s templates=%q install.jobs=%d cleanup.order=%s",
		src, c.PackageManager, c.Templates, c.Install.Jobs, c.Cleanup.Order)
}
