package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read by ReadConfig when present and no configFile
// option is given.
const DefaultConfigFile = ".schemaguard.yaml"

// supportedContentTypes maps content types to their decoder.
var supportedContentTypes = map[string]format{
	"yaml": formatYAML,
	"yml":  formatYAML,
	"json": formatJSON,
}

// Config is the normalized registry configuration.
type Config struct {
	// SchemaBasePath is the repository root scanned for schema files.
	SchemaBasePath string `mapstructure:"schemaBasePath"`
	// ContentTypes lists the materialized file variants; index 0 is the
	// primary variant used for compatibility checks.
	ContentTypes []string `mapstructure:"contentTypes"`
	// CurrentName is the file name of the floating current schema.
	CurrentName string `mapstructure:"currentName"`
	// SchemaTitleField names the field holding the logical schema title.
	SchemaTitleField string `mapstructure:"schemaTitleField"`
	// SchemaVersionField names the field whose last path segment is the
	// version of the current schema.
	SchemaVersionField string `mapstructure:"schemaVersionField"`
	LogLevel           string `mapstructure:"logLevel"`
}

// DefaultConfig returns the configuration used for unset options.
func DefaultConfig() Config {
	return Config{
		SchemaBasePath:     ".",
		ContentTypes:       []string{"yaml", "json"},
		CurrentName:        "current.yaml",
		SchemaTitleField:   "title",
		SchemaVersionField: "$id",
		LogLevel:           "warn",
	}
}

// PrimaryContentType is the variant compatibility is checked on.
func (c *Config) PrimaryContentType() string {
	if len(c.ContentTypes) == 0 {
		return ""
	}
	return c.ContentTypes[0]
}

// Level parses LogLevel.
func (c *Config) Level() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.WarnLevel
	}
	return lvl
}

// ConfigError reports an invalid option value.
type ConfigError struct {
	Option string
	Value  any
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("registry: invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("registry: invalid %s %v: %v", e.Option, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ReadConfig normalizes options into a Config. Values are layered as
// defaults, then the YAML config file, then options. The "configFile" option
// selects the file; without it DefaultConfigFile is used when it exists.
func ReadConfig(options map[string]any) (*Config, error) {
	file, explicit := DefaultConfigFile, false
	if v, ok := options["configFile"].(string); ok && v != "" {
		file, explicit = v, true
	}
	values, err := readConfigFile(file)
	if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return nil, &ConfigError{Option: "configFile", Value: file, Err: err}
	}
	if values == nil {
		values = map[string]any{}
	}
	for k, v := range options {
		if k == "configFile" {
			continue
		}
		values[k] = v
	}

	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	if err := dec.Decode(values); err != nil {
		return nil, &ConfigError{Err: err}
	}
	// mergo treats an empty slice as unset; an explicit empty list is an error.
	if raw, set := values["contentTypes"]; set && len(cfg.ContentTypes) == 0 {
		return nil, &ConfigError{Option: "contentTypes", Value: raw, Err: errors.New("at least one content type is required")}
	}
	if err := mergo.Merge(&cfg, DefaultConfig()); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return values, nil
}

func (c *Config) normalize() error {
	types := make([]string, 0, len(c.ContentTypes))
	seen := map[string]bool{}
	for _, ct := range c.ContentTypes {
		ct = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ct), "."))
		if ct == "" || seen[ct] {
			continue
		}
		if _, ok := supportedContentTypes[ct]; !ok {
			return &ConfigError{Option: "contentTypes", Value: ct, Err: errors.New("unsupported content type")}
		}
		seen[ct] = true
		types = append(types, ct)
	}
	if len(types) == 0 {
		return &ConfigError{Option: "contentTypes", Value: c.ContentTypes, Err: errors.New("at least one content type is required")}
	}
	c.ContentTypes = types

	abs, err := filepath.Abs(c.SchemaBasePath)
	if err != nil {
		return &ConfigError{Option: "schemaBasePath", Value: c.SchemaBasePath, Err: err}
	}
	c.SchemaBasePath = abs

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return &ConfigError{Option: "logLevel", Value: c.LogLevel, Err: err}
	}
	return nil
}
