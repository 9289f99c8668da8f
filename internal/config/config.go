package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/orgrank/internal/ranking"
)

// Index backends.
const (
	BackendMemory = "memory"
	BackendValkey = "valkey"
)

// Embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"
)

// Config holds the orgrank service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Search    SearchConfig    `yaml:"search"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Reference ReferenceConfig `yaml:"reference"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json, console (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Valkey/Redis connection settings.
// Required only when the index or the embedding cache lives there.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider            string      `yaml:"provider"` // openai, local (default: local)
	APIKey              string      `yaml:"api_key"`
	BaseURL             string      `yaml:"base_url"`
	Model               string      `yaml:"model"`
	Dimensions          int         `yaml:"dimensions"`
	QueryInstruction    string      `yaml:"query_instruction"`
	DocumentInstruction string      `yaml:"document_instruction"`
	Cache               CacheConfig `yaml:"cache"`
	Quota               QuotaConfig `yaml:"quota"`
}

// CacheConfig controls the Valkey-backed embedding cache.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled"`
	TTLHours int  `yaml:"ttl_hours"` // 0 = no expiry
}

// QuotaConfig caps daily embedding tokens.
type QuotaConfig struct {
	DailyTokenLimit int64  `yaml:"daily_token_limit"` // 0 = unlimited
	Action          string `yaml:"action"`            // "reject" | "warn" (default)
}

// IndexConfig selects the vector index backend.
type IndexConfig struct {
	Backend         string `yaml:"backend"` // memory, valkey (default: memory)
	Name            string `yaml:"name"`
	KeyPrefix       string `yaml:"key_prefix"`
	BuildTimeoutSec int    `yaml:"build_timeout_sec"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
}

// CatalogConfig locates the org catalog file.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// SearchConfig holds request limits and pipeline defaults.
type SearchConfig struct {
	TimeoutMs          int     `yaml:"timeout_ms"`
	DefaultLimit       int     `yaml:"default_limit"`
	MaxLimit           int     `yaml:"max_limit"`
	DefaultTopK        int     `yaml:"default_top_k"`
	MaxTopK            int     `yaml:"max_top_k"`
	DefaultRadiusMiles float64 `yaml:"default_radius_miles"`
	FallbackQuery      string  `yaml:"fallback_query"`
}

// RankingConfig holds the blend coefficients.
// Weights omitted from the file keep their default; an explicit 0 is honored.
type RankingConfig struct {
	Overrides      ranking.WeightOverrides `yaml:"weights"`
	PopularityHalf float64                 `yaml:"popularity_half"`

	// Weights is Overrides applied over the defaults, filled by ApplyDefaults.
	Weights ranking.Weights `yaml:"-"`
}

// ReferenceConfig extends the built-in lookup tables.
type ReferenceConfig struct {
	ZipCodes map[string][2]float64 `yaml:"zip_codes"` // zip -> [lat, lon]
	Causes   map[string][]string   `yaml:"causes"`    // canonical tag -> synonyms
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse expands env variables, decodes YAML, applies defaults and validates.
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
	c.applyEmbeddingDefaults()
	c.applyIndexDefaults()
	c.applySearchDefaults()
	if c.Catalog.Path == "" {
		c.Catalog.Path = "data/orgs.json"
	}
	c.Ranking.Weights = c.Ranking.Overrides.Apply(ranking.DefaultWeights())
	if c.Ranking.PopularityHalf <= 0 {
		c.Ranking.PopularityHalf = ranking.DefaultPopularityHalf
	}
}

func (c *Config) applyEmbeddingDefaults() {
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderLocal
	}
	if c.Embedding.Quota.Action == "" {
		c.Embedding.Quota.Action = "warn"
	}
	if c.Embedding.Provider == ProviderLocal && c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 256
	}
}

func (c *Config) applyIndexDefaults() {
	if c.Index.Backend == "" {
		c.Index.Backend = BackendMemory
	}
	if c.Index.Name == "" {
		c.Index.Name = "orgrank_orgs"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "orgrank:org:"
	}
	if c.Index.BuildTimeoutSec <= 0 {
		c.Index.BuildTimeoutSec = 120
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
}

func (c *Config) applySearchDefaults() {
	s := &c.Search
	if s.TimeoutMs <= 0 {
		s.TimeoutMs = 5000
	}
	if s.DefaultLimit <= 0 {
		s.DefaultLimit = 10
	}
	if s.MaxLimit <= 0 {
		s.MaxLimit = 50
	}
	if s.DefaultTopK <= 0 {
		s.DefaultTopK = 100
	}
	if s.MaxTopK <= 0 {
		s.MaxTopK = 500
	}
	if s.DefaultRadiusMiles <= 0 {
		s.DefaultRadiusMiles = 25
	}
	if s.FallbackQuery == "" {
		s.FallbackQuery = "nonprofit"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.NeedsDatabase() && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required for index.backend=%s or embedding.cache", c.Index.Backend)
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	switch c.Index.Backend {
	case BackendMemory, BackendValkey:
	default:
		return fmt.Errorf("index.backend must be %q or %q, got %q", BackendMemory, BackendValkey, c.Index.Backend)
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.Ranking.Weights.Validate(); err != nil {
		return fmt.Errorf("ranking.weights: %w", err)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be \"json\" or \"console\", got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	e := c.Embedding
	switch e.Provider {
	case ProviderLocal:
	case ProviderOpenAI:
		if e.APIKey == "" {
			return fmt.Errorf("embedding.api_key is required for provider %q", ProviderOpenAI)
		}
		if e.Model == "" {
			return fmt.Errorf("embedding.model is required for provider %q", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q", ProviderOpenAI, ProviderLocal, e.Provider)
	}
	switch e.Quota.Action {
	case "warn", "reject":
	default:
		return fmt.Errorf("embedding.quota.action must be \"warn\" or \"reject\", got %q", e.Quota.Action)
	}
	return nil
}

func (c *Config) validateSearch() error {
	s := c.Search
	if s.DefaultLimit > s.MaxLimit {
		return fmt.Errorf("search.default_limit (%d) exceeds search.max_limit (%d)", s.DefaultLimit, s.MaxLimit)
	}
	if s.DefaultTopK > s.MaxTopK {
		return fmt.Errorf("search.default_top_k (%d) exceeds search.max_top_k (%d)", s.DefaultTopK, s.MaxTopK)
	}
	if s.MaxLimit > s.MaxTopK {
		return fmt.Errorf("search.max_limit (%d) exceeds search.max_top_k (%d)", s.MaxLimit, s.MaxTopK)
	}
	if s.DefaultRadiusMiles > 200 {
		return fmt.Errorf("search.default_radius_miles must be at most 200, got %v", s.DefaultRadiusMiles)
	}
	return nil
}

// NeedsDatabase reports whether any configured component talks to Valkey.
func (c *Config) NeedsDatabase() bool {
	return c.Index.Backend == BackendValkey || c.Embedding.Cache.Enabled
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

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
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
