// Package fluent is a fluent HTTP request builder with typed response
// decoding.
//
// A request is assembled through chainable configuration calls and
// dispatched either synchronously or with a callback:
//
//	resp, err := fluent.Request[Article]("https://example.com/articles/{id}").
//		Variable("id", 1).
//		Bearer(token).
//		Get(ctx)
//
// The response body is decoded according to the type parameter: []byte
// returns the raw payload, string decodes it as text, fluent.None skips
// decoding entirely, and any other type is unmarshalled through the
// configured structured-data collaborator (encoding/json by default).
package fluent

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultTimeout bounds requests sent through the default client.
const DefaultTimeout = 30 * time.Second

// Doer is the transport collaborator. *http.Client satisfies it, as does
// anything else that can execute a single HTTP round trip.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// None is a target shape declaring that no decoded body is wanted.
// Responses for Builder[None] always report an absent body.
type None struct{}

// Config carries the collaborators a Builder dispatches through. The
// zero value is usable: a default http.Client, encoding/json, and
// unbounded asynchronous dispatch.
type Config struct {
	// Client executes requests. Defaults to an http.Client with
	// DefaultTimeout.
	Client Doer

	// Marshal and Unmarshal are the structured-data collaborator.
	// Default to encoding/json.
	Marshal   func(v any) ([]byte, error)
	Unmarshal func(data []byte, v any) error

	// MaxInFlightAsync bounds concurrently dispatched asynchronous
	// requests. Zero or negative means unbounded. Each Config tracks its
	// own budget; unrelated Configs never share one. Builders created
	// through Request share the process default's budget, and RequestWith
	// callers share one by reusing a Config prepared with WithAsyncLimit.
	MaxInFlightAsync int64

	// asyncLimiter enforces MaxInFlightAsync. Set by WithAsyncLimit, or
	// lazily when the Config enters SetDefault or RequestWith; copies
	// made after that point share it.
	asyncLimiter *semaphore.Weighted
}

// WithAsyncLimit returns a copy of c whose asynchronous dispatches are
// bounded to n in flight. All builders created from the returned Config,
// or from copies of it, share one budget.
func (c Config) WithAsyncLimit(n int64) Config {
	c.MaxInFlightAsync = n
	if n > 0 {
		c.asyncLimiter = semaphore.NewWeighted(n)
	} else {
		c.asyncLimiter = nil
	}
	return c
}

// withLimiter backfills the limiter for Configs built as plain literals
// with MaxInFlightAsync set.
func (c Config) withLimiter() Config {
	if c.MaxInFlightAsync > 0 && c.asyncLimiter == nil {
		c.asyncLimiter = semaphore.NewWeighted(c.MaxInFlightAsync)
	}
	return c
}

func (c Config) client() Doer {
	if c.Client != nil {
		return c.Client
	}
	return defaultHTTPClient
}

func (c Config) marshal() func(any) ([]byte, error) {
	if c.Marshal != nil {
		return c.Marshal
	}
	return json.Marshal
}

func (c Config) unmarshal() func([]byte, any) error {
	if c.Unmarshal != nil {
		return c.Unmarshal
	}
	return json.Unmarshal
}

var defaultHTTPClient = &http.Client{Timeout: DefaultTimeout}

// defaultConfig is the optional process-wide default, replaced only
// through SetDefault.
var defaultConfig atomic.Pointer[Config]

// SetDefault replaces the process-wide default Config used by New and
// Request. Builders created before the call keep the config they were
// constructed with.
func SetDefault(cfg Config) {
	cfg = cfg.withLimiter()
	defaultConfig.Store(&cfg)
}

func currentDefault() Config {
	if cfg := defaultConfig.Load(); cfg != nil {
		return *cfg
	}
	return Config{}
}

// New starts a request whose response body is returned as raw bytes.
func New(url string) *Builder[[]byte] {
	return Request[[]byte](url)
}

// Request starts a request with a declared response type, using the
// process-wide default Config. The url may contain {name} path variables
// and an embedded query string.
func Request[T any](url string) *Builder[T] {
	return RequestWith[T](currentDefault(), url)
}

// RequestWith starts a request with an explicit Config.
func RequestWith[T any](cfg Config, url string) *Builder[T] {
	return &Builder[T]{cfg: cfg.withLimiter(), url: url, vars: make(map[string]any)}
}
