package searchstate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	password string

	namespace       string
	persistentPaths []string
	queryFields     string
	phraseFields    string
	bigramFields    string
	trigramFields   string

	defaultResultsPerPage int
	maxResultsPerPage     int

	keyPrefix string
	ttl       time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		defaultResultsPerPage: 10,
		maxResultsPerPage:     100,
		keyPrefix:             "searchstate:",
		ttl:                   30 * time.Minute,
	}
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
// The connection uses RESP2.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithNamespace sets the argument namespace. Default: "tx_solr".
func WithNamespace(ns string) Option {
	return optionFunc(func(c *clientConfig) {
		c.namespace = ns
	})
}

// WithPersistentPaths sets the colon-delimited argument paths that survive
// into persistent-only sub-requests. Default: "q" and "<namespace>:filter".
func WithPersistentPaths(paths ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.persistentPaths = paths
	})
}

// WithQueryFields enables the qf parameter, e.g. "title^5.0, content^0.4".
func WithQueryFields(fields string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryFields = fields
	})
}

// WithPhraseFields enables the pf parameter.
func WithPhraseFields(fields string) Option {
	return optionFunc(func(c *clientConfig) {
		c.phraseFields = fields
	})
}

// WithBigramPhraseFields enables the pf2 parameter.
func WithBigramPhraseFields(fields string) Option {
	return optionFunc(func(c *clientConfig) {
		c.bigramFields = fields
	})
}

// WithTrigramPhraseFields enables the pf3 parameter.
func WithTrigramPhraseFields(fields string) Option {
	return optionFunc(func(c *clientConfig) {
		c.trigramFields = fields
	})
}

// WithResultsPerPage sets the default and maximum page size. Defaults: 10 and 100.
func WithResultsPerPage(def, maxRows int) Option {
	return optionFunc(func(c *clientConfig) {
		if def > 0 {
			c.defaultResultsPerPage = def
		}
		if maxRows > 0 {
			c.maxResultsPerPage = maxRows
		}
	})
}

// WithSessionTTL sets how long an idle session is kept. Default: 30 minutes.
func WithSessionTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	})
}

// WithKeyPrefix sets the key prefix of stored sessions. Default: "searchstate:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
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
