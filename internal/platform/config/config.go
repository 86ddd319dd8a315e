package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultEnvFile           = ".env"
	defaultAdminAddr         = ":8080"
	defaultWebAddr           = ":8081"
	defaultReadTimeout       = 10 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultBasePath          = "/admin"
	defaultEnvironment       = "development"
	defaultEditorIdleTimeout = 2 * time.Hour
	defaultAPIBaseURL        = "https://api.github.com"
	defaultBranch            = "main"
	defaultCatalogPath       = "products.json"
	defaultConfigPath        = "config.json"
	defaultWriteMode         = "loaded"
	defaultStore             = "github"
	defaultContentDir        = "."

	settingsFileKey = "CMS_SETTINGS_FILE"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server     ServerConfig
	Admin      AdminConfig
	Repository RepositoryConfig
	Site       SiteConfig
	LogLevel   string
	LogFile    string
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	AdminAddr    string
	WebAddr      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// AdminConfig configures the admin dashboard.
type AdminConfig struct {
	BasePath          string
	Environment       string
	SessionHashKey    string
	SessionBlockKey   string
	CookieSecure      bool
	EditorIdleTimeout time.Duration
	// SessionIdleTimeout signs the operator out after this much inactivity.
	// Zero keeps the credential until the cookie lifetime ends.
	SessionIdleTimeout time.Duration
}

// RepositoryConfig addresses the remote document store.
type RepositoryConfig struct {
	Store       string
	APIBaseURL  string
	Owner       string
	Name        string
	Branch      string
	CatalogPath string
	ConfigPath  string
	WriteMode   string
	SeedDir     string
}

// SiteConfig configures the public renderer.
type SiteConfig struct {
	ContentDir   string
	ContentURL   string
	TemplatesDir string
	CanonicalURL string
	DevMode      bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
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
	settingsFile string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithSettingsFile sets the YAML settings file. It takes precedence over
// CMS_SETTINGS_FILE.
func WithSettingsFile(path string) Option {
	return func(o *loaderOptions) {
		o.settingsFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, the YAML settings file,
// .env overrides, environment variables and explicit maps, in increasing
// order of precedence.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	_ = ctx
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

	lookupEnv := func(key string) (string, bool) {
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

	settingsPath := options.settingsFile
	if settingsPath == "" {
		settingsPath, _ = lookupEnv(settingsFileKey)
	}
	fileValues, err := loadSettingsFile(settingsPath)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if value, ok := lookupEnv(key); ok {
			return value, true
		}
		value, ok := fileValues[key]
		return value, ok
	}

	cfg := Config{
		LogLevel: stringWithDefault(lookup, "LOG_LEVEL", "info"),
		LogFile:  stringWithDefault(lookup, "CMS_LOG_FILE", ""),
		Server: ServerConfig{
			AdminAddr:    stringWithDefault(lookup, "CMS_ADMIN_ADDR", defaultAdminAddr),
			WebAddr:      stringWithDefault(lookup, "CMS_WEB_ADDR", defaultWebAddr),
			ReadTimeout:  durationWithDefault(lookup, "CMS_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "CMS_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "CMS_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Admin: AdminConfig{
			BasePath:           stringWithDefault(lookup, "CMS_ADMIN_BASE_PATH", defaultBasePath),
			Environment:        stringWithDefault(lookup, "CMS_ENVIRONMENT", defaultEnvironment),
			SessionHashKey:     stringWithDefault(lookup, "CMS_SESSION_HASH_KEY", ""),
			SessionBlockKey:    stringWithDefault(lookup, "CMS_SESSION_BLOCK_KEY", ""),
			CookieSecure:       boolWithDefault(lookup, "CMS_COOKIE_SECURE", false),
			EditorIdleTimeout:  durationWithDefault(lookup, "CMS_EDITOR_IDLE_TIMEOUT", defaultEditorIdleTimeout),
			SessionIdleTimeout: durationWithDefault(lookup, "CMS_SESSION_IDLE_TIMEOUT", 0),
		},
		Repository: RepositoryConfig{
			Store:       strings.ToLower(stringWithDefault(lookup, "CMS_STORE", defaultStore)),
			APIBaseURL:  stringWithDefault(lookup, "CMS_API_BASE_URL", defaultAPIBaseURL),
			Owner:       stringWithDefault(lookup, "CMS_REPO_OWNER", ""),
			Name:        stringWithDefault(lookup, "CMS_REPO_NAME", ""),
			Branch:      stringWithDefault(lookup, "CMS_REPO_BRANCH", defaultBranch),
			CatalogPath: stringWithDefault(lookup, "CMS_CATALOG_PATH", defaultCatalogPath),
			ConfigPath:  stringWithDefault(lookup, "CMS_CONFIG_PATH", defaultConfigPath),
			WriteMode:   strings.ToLower(stringWithDefault(lookup, "CMS_WRITE_MODE", defaultWriteMode)),
			SeedDir:     stringWithDefault(lookup, "CMS_SEED_DIR", ""),
		},
		Site: SiteConfig{
			ContentDir:   stringWithDefault(lookup, "CMS_CONTENT_DIR", defaultContentDir),
			ContentURL:   stringWithDefault(lookup, "CMS_CONTENT_URL", ""),
			TemplatesDir: stringWithDefault(lookup, "CMS_TEMPLATES_DIR", ""),
			CanonicalURL: stringWithDefault(lookup, "CMS_CANONICAL_URL", ""),
			DevMode:      boolWithDefault(lookup, "CMS_WEB_DEV", false),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidateAdmin checks the fields only the admin binary needs.
func (c Config) ValidateAdmin() error {
	var missing []string
	if c.Repository.Store == "github" {
		if strings.TrimSpace(c.Repository.Owner) == "" {
			missing = append(missing, "Repository.Owner")
		}
		if strings.TrimSpace(c.Repository.Name) == "" {
			missing = append(missing, "Repository.Name")
		}
	}
	if c.Repository.Store == "memory" && strings.TrimSpace(c.Repository.SeedDir) == "" {
		missing = append(missing, "Repository.SeedDir")
	}
	if key := c.Admin.SessionHashKey; key != "" && len(key) < 32 {
		missing = append(missing, "Admin.SessionHashKey")
	}
	if key := c.Admin.SessionBlockKey; key != "" && len(key) != 16 && len(key) != 24 && len(key) != 32 {
		missing = append(missing, "Admin.SessionBlockKey")
	}
	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if strings.TrimSpace(cfg.Server.AdminAddr) == "" {
		missing = append(missing, "Server.AdminAddr")
	}
	if strings.TrimSpace(cfg.Server.WebAddr) == "" {
		missing = append(missing, "Server.WebAddr")
	}
	if strings.TrimSpace(cfg.Repository.Branch) == "" {
		missing = append(missing, "Repository.Branch")
	}
	switch cfg.Repository.WriteMode {
	case "loaded", "refetch":
	default:
		missing = append(missing, "Repository.WriteMode")
	}
	switch cfg.Repository.Store {
	case "github", "memory":
	default:
		missing = append(missing, "Repository.Store")
	}
	if cfg.Admin.EditorIdleTimeout <= 0 {
		missing = append(missing, "Admin.EditorIdleTimeout")
	}
	if cfg.Admin.SessionIdleTimeout < 0 {
		missing = append(missing, "Admin.SessionIdleTimeout")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	if _, err := os.Stat(absPath); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	values, err := godotenv.Read(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

// settingsFile is the YAML layout accepted by CMS_SETTINGS_FILE.
type settingsFile struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	Server   struct {
		AdminAddr string `yaml:"admin_addr"`
		WebAddr   string `yaml:"web_addr"`
	} `yaml:"server"`
	Admin struct {
		BasePath    string `yaml:"base_path"`
		Environment string `yaml:"environment"`
	} `yaml:"admin"`
	Repository struct {
		Store       string `yaml:"store"`
		APIBaseURL  string `yaml:"api_base_url"`
		Owner       string `yaml:"owner"`
		Name        string `yaml:"name"`
		Branch      string `yaml:"branch"`
		CatalogPath string `yaml:"catalog_path"`
		ConfigPath  string `yaml:"config_path"`
		WriteMode   string `yaml:"write_mode"`
		SeedDir     string `yaml:"seed_dir"`
	} `yaml:"repository"`
	Site struct {
		ContentDir   string `yaml:"content_dir"`
		ContentURL   string `yaml:"content_url"`
		CanonicalURL string `yaml:"canonical_url"`
	} `yaml:"site"`
}

func loadSettingsFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return map[string]string{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: unable to read settings %s: %w", path, err)
	}
	var file settingsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("config: failed parsing settings %s: %w", path, err)
	}

	values := map[string]string{
		"LOG_LEVEL":           file.LogLevel,
		"CMS_LOG_FILE":        file.LogFile,
		"CMS_ADMIN_ADDR":      file.Server.AdminAddr,
		"CMS_WEB_ADDR":        file.Server.WebAddr,
		"CMS_ADMIN_BASE_PATH": file.Admin.BasePath,
		"CMS_ENVIRONMENT":     file.Admin.Environment,
		"CMS_STORE":           file.Repository.Store,
		"CMS_API_BASE_URL":    file.Repository.APIBaseURL,
		"CMS_REPO_OWNER":      file.Repository.Owner,
		"CMS_REPO_NAME":       file.Repository.Name,
		"CMS_REPO_BRANCH":     file.Repository.Branch,
		"CMS_CATALOG_PATH":    file.Repository.CatalogPath,
		"CMS_CONFIG_PATH":     file.Repository.ConfigPath,
		"CMS_WRITE_MODE":      file.Repository.WriteMode,
		"CMS_SEED_DIR":        file.Repository.SeedDir,
		"CMS_CONTENT_DIR":     file.Site.ContentDir,
		"CMS_CONTENT_URL":     file.Site.ContentURL,
		"CMS_CANONICAL_URL":   file.Site.CanonicalURL,
	}
	for key, value := range values {
		if strings.TrimSpace(value) == "" {
			delete(values, key)
		}
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		switch strings.ToLower(value) {
		case "yes", "on":
			return true
		case "no", "off":
			return false
		}
	}
	return fallback
}
