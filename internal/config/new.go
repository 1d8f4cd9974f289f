package config

import (
	"fmt"

	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/atlanticdynamic/kindling/internal/config/loader"
	"github.com/atlanticdynamic/kindling/internal/interpolation"
	"github.com/caarlos0/env/v11"
)

// envOverrides are the process level settings that win over every file.
type envOverrides struct {
	BasePath    string `env:"KINDLING_BASE_PATH"`
	PublicPath  string `env:"KINDLING_PUBLIC_PATH"`
	Timezone    string `env:"KINDLING_TIMEZONE"`
	ProjectName string `env:"KINDLING_PROJECT_NAME"`
	DevMode     *bool  `env:"KINDLING_DEV_MODE"`
}

// NewConfig loads the files with LoadConfig and validates the result.
func NewConfig(paths ...string) (*AppConfig, error) {
	cfg, err := LoadConfig(paths...)
	if err != nil {
		return nil, err
	}
	return validated(cfg)
}

// LoadConfig loads the files in order, deep-merging each one over the previous,
// then applies environment overrides. The result is not validated so callers
// can adjust it first.
func LoadConfig(paths ...string) (*AppConfig, error) {
	var tree map[string]any
	for _, path := range paths {
		data, err := loader.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errz.ErrFailedToLoadConfig, err)
		}
		tree = DeepMerge(tree, data)
	}
	return LoadConfigFromTree(tree)
}

// NewConfigFromBytes loads a single document.
func NewConfigFromBytes(data []byte, format loader.Format) (*AppConfig, error) {
	tree, err := loader.Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errz.ErrFailedToLoadConfig, err)
	}
	return NewConfigFromTree(tree)
}

// NewConfigFromTree builds a validated config from an already decoded tree.
func NewConfigFromTree(tree map[string]any) (*AppConfig, error) {
	cfg, err := LoadConfigFromTree(tree)
	if err != nil {
		return nil, err
	}
	return validated(cfg)
}

// LoadConfigFromTree builds an unvalidated config from a decoded tree. String
// values are expanded with ${VAR} and ${VAR:default} references first.
func LoadConfigFromTree(tree map[string]any) (*AppConfig, error) {
	if err := interpolation.ExpandTree(tree); err != nil {
		return nil, fmt.Errorf("%w: %w", errz.ErrFailedToLoadConfig, err)
	}

	cfg := New()
	if err := cfg.Merge(tree); err != nil {
		return nil, fmt.Errorf("%w: %w", errz.ErrFailedToLoadConfig, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("%w: %w", errz.ErrFailedToLoadConfig, err)
	}
	return cfg, nil
}

func validated(cfg *AppConfig) (*AppConfig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errz.ErrFailedToValidateConfig, err)
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.BasePath != "" {
		if err := c.SetBasePath(o.BasePath); err != nil {
			return err
		}
	}
	if o.PublicPath != "" {
		if err := c.SetPublicPath(o.PublicPath); err != nil {
			return err
		}
	}
	if o.Timezone != "" {
		c.Timezone = o.Timezone
	}
	if o.ProjectName != "" {
		c.ProjectName = o.ProjectName
	}
	if o.DevMode != nil {
		c.DevMode = *o.DevMode
	}
	return nil
}
