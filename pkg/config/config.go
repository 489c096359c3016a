// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < .env < env < flags
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/openearth/openclimate/pkg/errors"
)

const envPrefix = "OPENCLIMATE_"

// Config holds all openclimate configuration.
type Config struct {
	Version int `yaml:"version"`

	API       APIConfig       `yaml:"api"`
	Output    OutputConfig    `yaml:"output"`
	Storage   StorageConfig   `yaml:"storage"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// APIConfig controls how the OpenClimate API is reached.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Version        string        `yaml:"version"` // path prefix, e.g. /api/v1
	Timeout        time.Duration `yaml:"timeout"` // per request
	MaxConcurrency int           `yaml:"max_concurrency"`
	UserAgent      string        `yaml:"user_agent"`
	IgnoreWarnings bool          `yaml:"ignore_warnings"`
}

// OutputConfig controls default export behavior.
type OutputConfig struct {
	Format      string `yaml:"format"`      // table | csv | json | parquet | arrow | xlsx
	Dir         string `yaml:"dir"`         // empty = stdout for text formats
	Compression string `yaml:"compression"` // snappy | zstd | gzip | lz4 | none
}

// StorageConfig groups the optional export destinations.
type StorageConfig struct {
	S3       S3Config       `yaml:"s3"`
	Redis    RedisConfig    `yaml:"redis"`
	DuckDB   DuckDBConfig   `yaml:"duckdb"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// S3Config for S3 or S3-compatible object stores.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	UsePathStyle    bool   `yaml:"use_path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Prefix          string `yaml:"prefix"`
}

// RedisConfig for the Redis table store.
type RedisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DuckDBConfig for the embedded DuckDB store.
type DuckDBConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig for the Postgres store.
type PostgresConfig struct {
	DSN    string `yaml:"dsn"`
	Schema string `yaml:"schema"`
}

// TelemetryConfig for optional OTLP tracing.
type TelemetryConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Endpoint      string  `yaml:"endpoint"`
	ServiceName   string  `yaml:"service_name"`
	SamplingRatio float64 `yaml:"sampling_ratio"`
	Insecure      bool    `yaml:"insecure"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			BaseURL:   "https://openclimate.openearth.dev",
			Version:   "/api/v1",
			Timeout:   30 * time.Second,
			UserAgent: "openclimate-go",
		},
		Output: OutputConfig{
			Format:      "table",
			Compression: "snappy",
		},
		Storage: StorageConfig{
			S3: S3Config{
				Region: "us-east-1",
				Prefix: "openclimate/",
			},
			Redis: RedisConfig{
				Address: "localhost:6379",
				Prefix:  "openclimate:",
				TTL:     24 * time.Hour,
				Timeout: 5 * time.Second,
			},
			Postgres: PostgresConfig{
				Schema: "public",
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:       false,
			Endpoint:      "localhost:4317",
			ServiceName:   "openclimate",
			SamplingRatio: 1.0,
			Insecure:      true,
		},
	}
}

// Server returns the API root every request path is appended to.
func (c *Config) Server() string {
	return strings.TrimRight(c.API.BaseURL, "/") + c.API.Version
}

var validFormats = map[string]bool{
	"table": true, "csv": true, "json": true, "parquet": true, "arrow": true, "xlsx": true,
}

var validCompression = map[string]bool{
	"": true, "none": true, "snappy": true, "gzip": true, "zstd": true, "lz4": true,
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Newf(errors.CodeInvalidConfig, "api.base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if c.API.Version != "" && !strings.HasPrefix(c.API.Version, "/") {
		return errors.Newf(errors.CodeInvalidConfig, "api.version %q must start with /", c.API.Version)
	}
	if c.API.Timeout < 0 {
		return errors.New(errors.CodeInvalidConfig, "api.timeout must not be negative")
	}
	if c.API.MaxConcurrency < 0 {
		return errors.New(errors.CodeInvalidConfig, "api.max_concurrency must not be negative")
	}
	if !validFormats[c.Output.Format] {
		return errors.Newf(errors.CodeInvalidConfig, "unknown output.format %q", c.Output.Format)
	}
	if !validCompression[c.Output.Compression] {
		return errors.Newf(errors.CodeInvalidConfig, "unknown output.compression %q", c.Output.Compression)
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return errors.New(errors.CodeInvalidConfig, "telemetry.sampling_ratio must be within [0, 1]")
	}
	return nil
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu      sync.RWMutex
	config  *Config
	paths   []string // Paths that were loaded
	search  []string
	envFile string
	lookup  func(string) (string, bool)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithPaths replaces the default config file search path.
func WithPaths(paths ...string) ManagerOption {
	return func(m *Manager) {
		m.search = paths
	}
}

// WithEnvFile sets the dotenv file overlaid before the process environment.
// An empty name disables the overlay.
func WithEnvFile(name string) ManagerOption {
	return func(m *Manager) {
		m.envFile = name
	}
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) ManagerOption {
	return func(m *Manager) {
		m.lookup = fn
	}
}

// NewManager creates a new configuration manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		config:  Default(),
		search:  defaultPaths(),
		envFile: ".env",
		lookup:  os.LookupEnv,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = Default()
	m.paths = nil

	for _, path := range m.search {
		if err := m.loadFile(path); err != nil {
			if !os.IsNotExist(err) {
				return errors.Wrapf(err, errors.CodeInvalidConfig, "failed to load %s", path)
			}
		} else {
			m.paths = append(m.paths, path)
		}
	}

	dotenv := map[string]string{}
	if m.envFile != "" {
		values, err := godotenv.Read(m.envFile)
		if err == nil {
			dotenv = values
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.CodeInvalidConfig, "failed to read %s", m.envFile)
		}
	}

	return m.loadEnv(func(key string) (string, bool) {
		if v, ok := m.lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
}

func defaultPaths() []string {
	var paths []string

	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/openclimate/config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".openclimate", "config.yaml"))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".openclimate.yaml"))
	}

	return paths
}

// loadFile loads a single config file and merges it.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return err
	}

	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config.
func (m *Manager) merge(src *Config) {
	dst := m.config

	// API
	setString(&dst.API.BaseURL, src.API.BaseURL)
	setString(&dst.API.Version, src.API.Version)
	setString(&dst.API.UserAgent, src.API.UserAgent)
	if src.API.Timeout != 0 {
		dst.API.Timeout = src.API.Timeout
	}
	if src.API.MaxConcurrency != 0 {
		dst.API.MaxConcurrency = src.API.MaxConcurrency
	}
	if src.API.IgnoreWarnings {
		dst.API.IgnoreWarnings = true
	}

	// Output
	setString(&dst.Output.Format, src.Output.Format)
	setString(&dst.Output.Dir, src.Output.Dir)
	setString(&dst.Output.Compression, src.Output.Compression)

	// Storage
	s3 := src.Storage.S3
	setString(&dst.Storage.S3.Bucket, s3.Bucket)
	setString(&dst.Storage.S3.Region, s3.Region)
	setString(&dst.Storage.S3.Endpoint, s3.Endpoint)
	setString(&dst.Storage.S3.AccessKeyID, s3.AccessKeyID)
	setString(&dst.Storage.S3.SecretAccessKey, s3.SecretAccessKey)
	setString(&dst.Storage.S3.Prefix, s3.Prefix)
	if s3.UsePathStyle {
		dst.Storage.S3.UsePathStyle = true
	}

	rd := src.Storage.Redis
	setString(&dst.Storage.Redis.Address, rd.Address)
	setString(&dst.Storage.Redis.Password, rd.Password)
	setString(&dst.Storage.Redis.Prefix, rd.Prefix)
	if rd.DB != 0 {
		dst.Storage.Redis.DB = rd.DB
	}
	if rd.TTL != 0 {
		dst.Storage.Redis.TTL = rd.TTL
	}
	if rd.Timeout != 0 {
		dst.Storage.Redis.Timeout = rd.Timeout
	}

	setString(&dst.Storage.DuckDB.Path, src.Storage.DuckDB.Path)
	setString(&dst.Storage.Postgres.DSN, src.Storage.Postgres.DSN)
	setString(&dst.Storage.Postgres.Schema, src.Storage.Postgres.Schema)

	// Telemetry
	if src.Telemetry.Enabled {
		dst.Telemetry.Enabled = true
	}
	if src.Telemetry.Insecure {
		dst.Telemetry.Insecure = true
	}
	setString(&dst.Telemetry.Endpoint, src.Telemetry.Endpoint)
	setString(&dst.Telemetry.ServiceName, src.Telemetry.ServiceName)
	if src.Telemetry.SamplingRatio != 0 {
		dst.Telemetry.SamplingRatio = src.Telemetry.SamplingRatio
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// loadEnv applies OPENCLIMATE_* variables.
func (m *Manager) loadEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		return v, ok && v != ""
	}

	if v, ok := get("BASE_URL"); ok {
		m.config.API.BaseURL = v
	}
	if v, ok := get("API_VERSION"); ok {
		m.config.API.Version = v
	}
	if v, ok := get("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, errors.CodeInvalidConfig, "invalid %sTIMEOUT", envPrefix)
		}
		m.config.API.Timeout = d
	}
	if v, ok := get("MAX_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, errors.CodeInvalidConfig, "invalid %sMAX_CONCURRENCY", envPrefix)
		}
		m.config.API.MaxConcurrency = n
	}
	if v, ok := get("IGNORE_WARNINGS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, errors.CodeInvalidConfig, "invalid %sIGNORE_WARNINGS", envPrefix)
		}
		m.config.API.IgnoreWarnings = b
	}
	if v, ok := get("FORMAT"); ok {
		m.config.Output.Format = v
	}
	if v, ok := get("OUTPUT_DIR"); ok {
		m.config.Output.Dir = v
	}
	if v, ok := get("COMPRESSION"); ok {
		m.config.Output.Compression = v
	}
	if v, ok := get("S3_BUCKET"); ok {
		m.config.Storage.S3.Bucket = v
	}
	if v, ok := get("S3_ENDPOINT"); ok {
		m.config.Storage.S3.Endpoint = v
		m.config.Storage.S3.UsePathStyle = true
	}
	if v, ok := get("REDIS_ADDR"); ok {
		m.config.Storage.Redis.Address = v
	}
	if v, ok := get("REDIS_PASSWORD"); ok {
		m.config.Storage.Redis.Password = v
	}
	if v, ok := get("DUCKDB_PATH"); ok {
		m.config.Storage.DuckDB.Path = v
	}
	if v, ok := get("POSTGRES_DSN"); ok {
		m.config.Storage.Postgres.DSN = v
	}
	if v, ok := get("OTLP_ENDPOINT"); ok {
		m.config.Telemetry.Endpoint = v
		m.config.Telemetry.Enabled = true
	}
	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".openclimate")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}

// Dump renders the current config as YAML.
func (m *Manager) Dump() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}
