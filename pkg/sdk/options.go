package orgrank

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/orgrank/internal/domain/geo"
	"github.com/kailas-cloud/orgrank/internal/ranking"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	catalogPath string
	records     []Record

	driver   string // "valkey" or "redis"; empty keeps the index in memory
	addrs    []string
	password string

	indexName       string
	hnswM           int
	hnswEFConstruct int

	embedder   Embedder
	dimensions int

	weights        ranking.Weights
	popularityHalf float64
	defaultRadius  float64
	searchTimeout  time.Duration
	zips           map[string]geo.Point
	causes         map[string][]string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCatalogFile loads records from a catalog JSON file ({"nonprofits": [...]}).
func WithCatalogFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogPath = path
	})
}

// WithRecords uses the given records as the catalog. Ignored when WithCatalogFile is set.
func WithRecords(records []Record) Option {
	return optionFunc(func(c *clientConfig) {
		c.records = records
	})
}

// WithValkey keeps the vector index in a Valkey instance with valkey-search.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis keeps the vector index in a Redis instance with RediSearch.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithIndexName names the FT index (Valkey/Redis only).
func WithIndexName(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexName = name
	})
}

// WithHNSW switches the Valkey/Redis index from FLAT to HNSW.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithEmbedder sets the text embedding provider.
// Without it an offline hashing embedder is used.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithDimensions sets the width of the built-in hashing embedder.
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithWeights overrides blend coefficients. Zero values keep the default.
func WithWeights(semantic, geoWeight, trust, popularity float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.weights = c.weights.Merge(ranking.Weights{
			Semantic:   semantic,
			Geo:        geoWeight,
			Trust:      trust,
			Popularity: popularity,
		})
	})
}

// WithDefaultRadius sets the radius used when a location resolves without one.
func WithDefaultRadius(miles float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultRadius = miles
	})
}

// WithSearchTimeout bounds the nearest-neighbour call of each search.
func WithSearchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchTimeout = d
	})
}

// WithZipCode adds or replaces one zip code in the reference table.
func WithZipCode(zip string, lat, lon float64) Option {
	return optionFunc(func(c *clientConfig) {
		if c.zips == nil {
			c.zips = make(map[string]geo.Point)
		}
		c.zips[zip] = geo.Point{Lat: lat, Lon: lon}
	})
}

// WithCauseSynonyms adds or replaces a canonical cause and its synonyms.
func WithCauseSynonyms(canonical string, synonyms ...string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.causes == nil {
			c.causes = make(map[string][]string)
		}
		c.causes[canonical] = synonyms
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
