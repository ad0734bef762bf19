package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the searchstate service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Search   SearchConfig   `yaml:"search"`
	Session  SessionConfig  `yaml:"session"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds request state and backend parameter settings.
type SearchConfig struct {
	Namespace             string          `yaml:"namespace"`
	PersistentPaths       []string        `yaml:"persistent_paths"`
	DefaultResultsPerPage int             `yaml:"default_results_per_page"`
	MaxResultsPerPage     int             `yaml:"max_results_per_page"`
	QueryFields           FieldListConfig `yaml:"query_fields"`
	Phrase                FieldListConfig `yaml:"phrase"`
	BigramPhrase          FieldListConfig `yaml:"bigram_phrase"`
	TrigramPhrase         FieldListConfig `yaml:"trigram_phrase"`
}

// FieldListConfig configures one weighted field list, e.g. "title^2.0, content^0.5".
type FieldListConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Fields    string `yaml:"fields"`
	Delimiter string `yaml:"delimiter"` // default ","
}

// IsEnabled implements fieldlist.Source.
func (f FieldListConfig) IsEnabled() bool { return f.Enabled }

// ConfiguredFields implements fieldlist.Source.
func (f FieldListConfig) ConfiguredFields() string { return f.Fields }

// SessionConfig holds session persistence settings.
type SessionConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
	TTLSec    int    `yaml:"ttl_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references first.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Search.Namespace == "" {
		c.Search.Namespace = "tx_solr"
	}
	if len(c.Search.PersistentPaths) == 0 {
		c.Search.PersistentPaths = []string{"q", c.Search.Namespace + ":filter"}
	}
	if c.Search.DefaultResultsPerPage <= 0 {
		c.Search.DefaultResultsPerPage = 10
	}
	if c.Search.MaxResultsPerPage <= 0 {
		c.Search.MaxResultsPerPage = 100
	}
	if c.Session.KeyPrefix == "" {
		c.Session.KeyPrefix = "searchstate:"
	}
	if c.Session.TTLSec <= 0 {
		c.Session.TTLSec = 1800
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if strings.Contains(c.Search.Namespace, ":") {
		return fmt.Errorf("search.namespace must not contain ':', got %q", c.Search.Namespace)
	}
	if c.Search.DefaultResultsPerPage > c.Search.MaxResultsPerPage {
		return fmt.Errorf(
			"search.default_results_per_page (%d) exceeds search.max_results_per_page (%d)",
			c.Search.DefaultResultsPerPage, c.Search.MaxResultsPerPage,
		)
	}
	lists := map[string]FieldListConfig{
		"query_fields":   c.Search.QueryFields,
		"phrase":         c.Search.Phrase,
		"bigram_phrase":  c.Search.BigramPhrase,
		"trigram_phrase": c.Search.TrigramPhrase,
	}
	for name, l := range lists {
		if l.Enabled && strings.TrimSpace(l.Fields) == "" {
			return fmt.Errorf("search.%s.fields is required when enabled", name)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
