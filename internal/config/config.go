package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// DefaultFileName is the configuration file looked up when none is given.
const DefaultFileName = "docsite.yaml"

// Load loads, normalizes, defaults and validates the site configuration at configPath.
//
// Variables from a .env file next to the configuration are loaded first and
// ${VAR} references in the YAML are expanded before decoding.
func Load(configPath string) (*SiteConfig, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "cannot resolve configuration path").
			Fatal().WithContext("path", configPath).Build()
	}

	if _, statErr := os.Stat(absPath); os.IsNotExist(statErr) {
		return nil, errors.ConfigError("configuration file not found").WithContext("path", configPath).Build()
	}

	if loaded, envErr := loadEnvFiles(filepath.Dir(absPath)); envErr != nil {
		slog.Warn("Failed to load .env file", logfields.Error(envErr))
	} else if loaded != "" {
		slog.Debug("Loaded environment variables", logfields.Path(loaded))
	}

	data, err := os.ReadFile(absPath) // #nosec G304 -- path supplied by the operator
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration file").
			Fatal().WithContext("path", configPath).Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.Root = filepath.Dir(absPath)
	return cfg, nil
}

// Parse decodes configuration bytes and runs the normalize, defaults and
// validate passes. Root is left empty; callers resolving paths should set it.
func Parse(data []byte) (*SiteConfig, error) {
	expanded := os.ExpandEnv(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)

	var cfg SiteConfig
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse site configuration").
			Fatal().UserAction().Build()
	}

	warnings, err := normalize(&cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		slog.Warn("config normalization", slog.String("detail", w))
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolvePath resolves p against the configuration root.
func (c *SiteConfig) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}

// DocsDir is the absolute default-locale content directory.
func (c *SiteConfig) DocsDir() string { return c.ResolvePath(c.Docs.Path) }

// SidebarFile is the absolute sidebar declaration path.
func (c *SiteConfig) SidebarFile() string { return c.ResolvePath(c.Docs.SidebarPath) }

// OutDir is the absolute output directory.
func (c *SiteConfig) OutDir() string { return c.ResolvePath(c.Build.OutDir) }

// StateDir is the absolute state directory.
func (c *SiteConfig) StateDir() string { return c.ResolvePath(c.Build.StateDir) }

// LocaleDocsDir returns the content directory for a translated locale.
func (c *SiteConfig) LocaleDocsDir(locale string) string {
	if locale == c.I18n.DefaultLocale {
		return c.DocsDir()
	}
	return c.ResolvePath(filepath.Join(c.Docs.I18nPath, locale, "docusaurus-plugin-content-docs", "current"))
}

// Init writes the example configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.NewError(errors.CategoryConfig, "configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}

	data, err := yaml.Marshal(ExampleConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).Build()
	}
	return nil
}
