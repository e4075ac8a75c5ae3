package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultEnvFile      = ".env"
	defaultContentDir   = "data"
	defaultOutputDir    = "dist"
	defaultBusinessFile = "business.yaml"
	defaultWorkers      = 4
	defaultLinkLimit    = 6
	defaultLang         = "en"
	defaultLogLevel     = "info"
	maxWorkers          = 64
)

// Config captures all build configuration organised by concern.
type Config struct {
	Content ContentConfig
	Output  OutputConfig
	Build   BuildConfig
	Log     LogConfig
}

// ContentConfig locates the data files the registries are built from.
type ContentConfig struct {
	Dir          string
	BusinessFile string
	Lang         string
}

// OutputConfig controls where generated pages are written.
type OutputConfig struct {
	Dir string
}

// BuildConfig tunes the batch build.
type BuildConfig struct {
	Workers   int
	LinkLimit int
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string
}

// BusinessPath returns the business profile path. Relative business file names are
// resolved inside the content directory.
func (c ContentConfig) BusinessPath() string {
	if filepath.IsAbs(c.BusinessFile) {
		return c.BusinessFile
	}
	return filepath.Join(c.Dir, c.BusinessFile)
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the build configuration by combining defaults, .env overrides
// and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	var invalid []string
	intField := func(key, name string, fallback int) int {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			return fallback
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			invalid = append(invalid, name)
			return fallback
		}
		return parsed
	}

	cfg := Config{
		Content: ContentConfig{
			Dir:          stringWithDefault(lookup, "SITE_CONTENT_DIR", defaultContentDir),
			BusinessFile: stringWithDefault(lookup, "SITE_BUSINESS_FILE", defaultBusinessFile),
			Lang:         strings.ToLower(stringWithDefault(lookup, "SITE_LANG", defaultLang)),
		},
		Output: OutputConfig{
			Dir: stringWithDefault(lookup, "SITE_OUTPUT_DIR", defaultOutputDir),
		},
		Build: BuildConfig{
			Workers:   intField("SITE_WORKERS", "Build.Workers", defaultWorkers),
			LinkLimit: intField("SITE_LINK_LIMIT", "Build.LinkLimit", defaultLinkLimit),
		},
		Log: LogConfig{
			Level: strings.ToLower(stringWithDefault(lookup, "SITE_LOG_LEVEL", defaultLogLevel)),
		},
	}

	if err := validateConfig(cfg, invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	missing := append([]string(nil), invalid...)

	if strings.TrimSpace(cfg.Content.Dir) == "" {
		missing = append(missing, "Content.Dir")
	}
	if strings.TrimSpace(cfg.Content.BusinessFile) == "" {
		missing = append(missing, "Content.BusinessFile")
	}
	if strings.TrimSpace(cfg.Output.Dir) == "" {
		missing = append(missing, "Output.Dir")
	}
	if cfg.Build.Workers <= 0 || cfg.Build.Workers > maxWorkers {
		missing = append(missing, "Build.Workers")
	}
	if cfg.Build.LinkLimit <= 0 {
		missing = append(missing, "Build.LinkLimit")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		missing = append(missing, "Log.Level")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: dedupe(missing)}
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		values[key] = strings.Trim(value, "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}
