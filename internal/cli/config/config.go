package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/apischema/internal/generator"
	"github.com/conduit-lang/apischema/internal/pipeline"
	"github.com/conduit-lang/apischema/internal/schema"
	utilstrings "github.com/conduit-lang/apischema/internal/util/strings"
)

// FileName is the configuration file looked up in the working directory
const FileName = "apischema"

// EnvPrefix prefixes environment overrides (APISCHEMA_GENERATED_DIR, ...)
const EnvPrefix = "APISCHEMA"

// Config represents the apischema configuration
type Config struct {
	SourceDirectories []string     `mapstructure:"source_directories"`
	GeneratedDir      string       `mapstructure:"generated_dir"`
	APITypes          []string     `mapstructure:"api_types"`
	Renderer          string       `mapstructure:"renderer"`
	Debug             bool         `mapstructure:"debug"`
	LogLevel          string       `mapstructure:"log_level"`
	Layers            LayersConfig `mapstructure:"layers"`

	// File is the configuration file that was read, empty when defaults were used
	File string `mapstructure:"-"`
}

// LayersConfig holds the path markers used to detect layers
type LayersConfig struct {
	Project []string `mapstructure:"project"`
	Feature []string `mapstructure:"feature"`
}

// Defaults mirror the conventional project layout
var (
	DefaultSourceDirectories = []string{"src/Spryker", "src/SprykerFeature", "src/Pyz"}
	DefaultAPITypes          = []string{"backend", "storefront"}
)

const (
	DefaultGeneratedDir = "src/Generated/Api"
	DefaultRenderer     = "php"
	DefaultLogLevel     = "warn"
)

// Load reads apischema.yml from the working directory
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom reads apischema.yml (or .yaml) from dir, applying defaults and
// APISCHEMA_ environment overrides.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault(pipeline.ConfigKeySourceDirectories, DefaultSourceDirectories)
	v.SetDefault("generated_dir", DefaultGeneratedDir)
	v.SetDefault("api_types", DefaultAPITypes)
	v.SetDefault("renderer", DefaultRenderer)
	v.SetDefault("debug", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("layers.project", schema.DefaultProjectMarkers)
	v.SetDefault("layers.feature", schema.DefaultFeatureMarkers)

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	// Env overrides of list keys arrive as one space separated string
	cfg.SourceDirectories = splitList(cfg.SourceDirectories)
	cfg.APITypes = splitList(cfg.APITypes)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	cfg.resolvePaths(dir)

	return &cfg, nil
}

// Pipeline returns the orchestrator configuration
func (c *Config) Pipeline() pipeline.Config {
	return pipeline.Config{
		SourceDirectories: c.SourceDirectories,
		GeneratedDir:      c.GeneratedDir,
		Renderer:          c.Renderer,
		ProjectMarkers:    c.Layers.Project,
		FeatureMarkers:    c.Layers.Feature,
	}
}

// ResolveAPIType matches requested against the configured api types case
// insensitively and returns the configured spelling.
func (c *Config) ResolveAPIType(requested string) (string, bool) {
	return utilstrings.FindMatchingConfiguredType(requested, c.APITypes)
}

// NewLogger builds the zap logger described by debug and log_level. A
// logger that cannot be built degrades to a no-op logger.
func (c *Config) NewLogger() *zap.Logger {
	var zc zap.Config
	if c.Debug {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		level = zapcore.WarnLevel
	}
	if c.Debug {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// resolvePaths anchors relative directories at the config directory
func (c *Config) resolvePaths(dir string) {
	base := dir
	if c.File != "" {
		base = filepath.Dir(c.File)
	}
	for i, src := range c.SourceDirectories {
		if !filepath.IsAbs(src) {
			c.SourceDirectories[i] = filepath.Join(base, src)
		}
	}
	if !filepath.IsAbs(c.GeneratedDir) {
		c.GeneratedDir = filepath.Join(base, c.GeneratedDir)
	}
}

// GetProjectRoot walks up from the working directory to the first
// directory holding apischema.yml.
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, ext := range []string{".yml", ".yaml"} {
			if _, err := os.Stat(filepath.Join(dir, FileName+ext)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s.yml found in the working directory or its parents", FileName)
		}
		dir = parent
	}
}

func validateConfig(cfg *Config) error {
	if len(cfg.SourceDirectories) == 0 {
		return fmt.Errorf("%s must list at least one directory", pipeline.ConfigKeySourceDirectories)
	}
	if strings.TrimSpace(cfg.GeneratedDir) == "" {
		return fmt.Errorf("generated_dir must not be empty")
	}
	if len(cfg.APITypes) == 0 {
		return fmt.Errorf("api_types must list at least one api type")
	}
	for _, t := range cfg.APITypes {
		if strings.TrimSpace(t) == "" || strings.ContainsAny(t, `/\ `) {
			return fmt.Errorf("api_types contains an invalid entry %q", t)
		}
	}

	names := generator.DefaultRegistry().Names()
	found := false
	for _, n := range names {
		if n == cfg.Renderer {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("renderer must be one of %s, got: %s", strings.Join(names, ", "), cfg.Renderer)
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level %q is not a valid level", cfg.LogLevel)
	}
	return nil
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, field := range strings.Fields(item) {
			out = append(out, strings.TrimSuffix(field, ","))
		}
	}
	return out
}
