package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// TagOrder defines how matched version tags are ordered before pairing
type TagOrder string

const (
	OrderGit    TagOrder = "git"
	OrderSemver TagOrder = "semver"
)

// Built-in defaults used when no configuration file is given
const (
	DefaultRepoDir   = "."
	DefaultPrefix    = "v5"
	DefaultBaseline  = "4.27.0"
	DefaultAssetDir  = "decomoji"
	DefaultAssetExt  = ".png"
	DefaultOutputDir = "./scripts/manager/configs"
)

// Config represents the complete manifestgen configuration
type Config struct {
	Repo   RepoConfig   `yaml:"repo"`
	Tags   TagsConfig   `yaml:"tags"`
	Assets AssetsConfig `yaml:"assets"`
	Output OutputConfig `yaml:"output"`
}

// RepoConfig configures the git working tree to inspect
type RepoConfig struct {
	Dir string `yaml:"dir"`
}

// TagsConfig configures tag enumeration
type TagsConfig struct {
	Prefix   string   `yaml:"prefix"`
	Baseline string   `yaml:"baseline"`
	Order    TagOrder `yaml:"order"`
}

// AssetsConfig configures which paths count as assets
type AssetsConfig struct {
	Dir string `yaml:"dir"`
	Ext string `yaml:"ext"`
}

// OutputConfig configures where manifests are written
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Indent bool   `yaml:"indent"`
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.expandEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// expandEnv expands environment variables in path-like string fields
func (c *Config) expandEnv() {
	c.Repo.Dir = os.ExpandEnv(c.Repo.Dir)
	c.Output.Dir = os.ExpandEnv(c.Output.Dir)
}

// applyDefaults fills in zero-value fields with the built-in defaults.
func (c *Config) applyDefaults() {
	if c.Repo.Dir == "" {
		c.Repo.Dir = DefaultRepoDir
	}
	if c.Tags.Prefix == "" {
		c.Tags.Prefix = DefaultPrefix
	}
	if c.Tags.Baseline == "" {
		c.Tags.Baseline = DefaultBaseline
	}
	if c.Tags.Order == "" {
		c.Tags.Order = OrderGit
	}
	if c.Assets.Dir == "" {
		c.Assets.Dir = DefaultAssetDir
	}
	if c.Assets.Ext == "" {
		c.Assets.Ext = DefaultAssetExt
	}
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Repo.Dir == "" {
		return fmt.Errorf("repo.dir is required")
	}

	if c.Tags.Prefix == "" {
		return fmt.Errorf("tags.prefix is required")
	}
	if _, err := regexp.Compile(c.Tags.Prefix); err != nil {
		return fmt.Errorf("tags.prefix is not a valid pattern: %w", err)
	}
	if c.Tags.Baseline == "" {
		return fmt.Errorf("tags.baseline is required")
	}

	switch c.Tags.Order {
	case OrderGit, OrderSemver:
		// valid
	default:
		return fmt.Errorf("invalid tags.order: %s (must be git or semver)", c.Tags.Order)
	}

	if c.Assets.Dir == "" {
		return fmt.Errorf("assets.dir is required")
	}
	if strings.Contains(c.Assets.Dir, `\`) {
		return fmt.Errorf("assets.dir must use forward slashes: %s", c.Assets.Dir)
	}
	if !strings.HasPrefix(c.Assets.Ext, ".") || len(c.Assets.Ext) < 2 {
		return fmt.Errorf("assets.ext must start with a dot: %q", c.Assets.Ext)
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}

	return nil
}
