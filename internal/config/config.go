// Package config provides configuration loading and validation for hostsgen.
// It handles reading configuration from files, providing defaults, and
// clamping user-supplied resolution parameters to sane bounds.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zumuvik/updater-hosts/internal/filesys"
)

var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNoConfig is returned when the configuration file is not found.
	ErrNoConfig = errors.New("configuration file not found")
)

const (
	// DefaultConfigPath is the default path for the configuration file,
	// relative to the user's home directory.
	DefaultConfigPath = ".hostsgen/config.yaml"
	// DefaultInputFile is the domain list read when none is specified.
	DefaultInputFile = "general.txt"
	// DefaultOutputFile is where the generated hosts file is written.
	DefaultOutputFile = "hosts"
	// DefaultDNSTimeout is the default per-lookup timeout. Zero in a loaded
	// config means "choose from batch size".
	DefaultDNSTimeout = 3 * time.Second

	// MinWorkers and MaxWorkers bound the user-supplied worker count.
	MinWorkers = 1
	MaxWorkers = 200
	// MinDNSTimeout and MaxDNSTimeout bound the user-supplied lookup timeout.
	MinDNSTimeout = 1 * time.Second
	MaxDNSTimeout = 10 * time.Second
)

// Config holds the application configuration.
type Config struct {
	Resolve ResolveConfig `yaml:"resolve"`
	Output  OutputConfig  `yaml:"output"`
}

// ResolveConfig holds resolution-related configuration.
type ResolveConfig struct {
	// Timeout is the per-lookup timeout. Zero means auto-select by batch size.
	Timeout time.Duration `yaml:"dns_timeout"`
	// Workers is the worker pool size. Zero means auto-select by batch size.
	Workers int `yaml:"workers"`
	// SimilarFallback enables the similar-domain and TLD-variant fallbacks
	// for domains that fail direct resolution.
	SimilarFallback bool `yaml:"similar_fallback"`
	// AlternateDNS enables lookups through public recursive resolvers when
	// the system resolver gives no answer.
	AlternateDNS bool `yaml:"alternate_dns"`
}

// OutputConfig holds output-related configuration.
type OutputConfig struct {
	Input string `yaml:"input"`
	Path  string `yaml:"path"`
}

// Provider defines the interface for loading configuration.
type Provider interface {
	Load() (*Config, error)
}

// FSProvider implements Provider using the local filesystem.
type FSProvider struct {
	fs   filesys.ReadWriteFS
	path string
}

var _ Provider = (*FSProvider)(nil)

// New creates a new configuration provider using the default configuration
// path under the user's home directory. If the home directory cannot be
// determined, it falls back to the current directory.
func New() Provider {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not determine home directory: %v\n", err)
		home = ""
	}
	return NewWithPath(filesys.OS(), filepath.Join(home, DefaultConfigPath))
}

// NewWithPath creates a new provider with a specific config path.
func NewWithPath(fs filesys.ReadWriteFS, path string) Provider {
	return &FSProvider{
		fs:   fs,
		path: path,
	}
}

// Default returns a default configuration with preset values.
// This is used when no configuration file exists.
func Default() *Config {
	return &Config{
		Resolve: ResolveConfig{
			Timeout:         0, // auto
			Workers:         0, // auto
			SimilarFallback: true,
			AlternateDNS:    true,
		},
		Output: OutputConfig{
			Input: DefaultInputFile,
			Path:  DefaultOutputFile,
		},
	}
}

// Load loads the configuration from the specified path.
func (p *FSProvider) Load() (*Config, error) {
	_ = p.ensureConfigDir()

	cfg, err := p.loadAndParse()
	if err != nil {
		if errors.Is(err, ErrNoConfig) {
			return Default(), nil
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg.Clamp()
	return cfg, nil
}

// Validate checks the configuration for values the loader cannot repair.
// Out-of-range workers and timeouts are not errors; Clamp fixes those.
func (c *Config) Validate() error {
	if c.Resolve.Timeout < 0 {
		return errors.New("dns timeout cannot be negative")
	}
	if c.Resolve.Workers < 0 {
		return errors.New("worker count cannot be negative")
	}
	if c.Output.Path == "" {
		return errors.New("output path cannot be empty")
	}
	return nil
}

// Clamp forces user-supplied resolution parameters into their valid ranges.
// Zero values are left alone: they mean "auto-select by batch size".
func (c *Config) Clamp() {
	if c.Resolve.Workers != 0 {
		c.Resolve.Workers = ClampWorkers(c.Resolve.Workers)
	}
	if c.Resolve.Timeout != 0 {
		c.Resolve.Timeout = ClampTimeout(c.Resolve.Timeout)
	}
}

// ClampWorkers bounds a worker count to [MinWorkers, MaxWorkers].
func ClampWorkers(n int) int {
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// ClampTimeout bounds a lookup timeout to [MinDNSTimeout, MaxDNSTimeout].
func ClampTimeout(d time.Duration) time.Duration {
	if d < MinDNSTimeout {
		return MinDNSTimeout
	}
	if d > MaxDNSTimeout {
		return MaxDNSTimeout
	}
	return d
}

func (p *FSProvider) ensureConfigDir() error {
	dir := filepath.Dir(p.path)
	if _, err := p.fs.Stat(dir); os.IsNotExist(err) {
		if err := p.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	return nil
}

func (p *FSProvider) loadAndParse() (*Config, error) {
	f, err := p.fs.Open(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoConfig
		}
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	cfg := Default()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding config file: %w", err)
	}

	return cfg, nil
}
