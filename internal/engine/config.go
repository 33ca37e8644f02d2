package engine

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultRequestTimeout bounds a single request when no timeout is configured
	DefaultRequestTimeout = 10 * time.Second
	// DefaultMaxPoolSize caps concurrently open connections when unconfigured
	DefaultMaxPoolSize = 50
	// DefaultUserAgent is sent when the configuration leaves UserAgent empty
	DefaultUserAgent = "stresscli/0.1.0"

	// MaxConcurrentUsers is the validation ceiling for virtual users
	MaxConcurrentUsers = 1000
	// MaxRequestsPerUser is the validation ceiling for requests per virtual user
	MaxRequestsPerUser = 10000
	// MaxPlannedRequests is the validation ceiling for a whole run
	MaxPlannedRequests = 1000000
	// MaxPoolSizeLimit is the validation ceiling for the connection pool
	MaxPoolSizeLimit = 1000
)

// Config describes a single stress test run. It is treated as immutable once
// a run has started: the planned request count is fixed at Start.
type Config struct {
	// TargetURL is the URL every request is sent to. Must be http or https.
	TargetURL string

	// Method is the HTTP method (GET, POST, PUT, DELETE, HEAD, PATCH, OPTIONS).
	Method string

	// ConcurrentUsers is the number of simulated clients. Each client issues
	// its requests strictly in sequence; clients run in parallel.
	ConcurrentUsers int

	// RequestsPerUser is how many requests each virtual user issues.
	RequestsPerUser int

	// RequestTimeout bounds each individual request. There is no run-wide
	// wall clock cap beyond what the configuration implies.
	RequestTimeout time.Duration

	// RequestDelay is the pause between a user's successive requests.
	RequestDelay time.Duration

	// Headers are added to every request.
	Headers map[string]string

	// Body is sent as the request body when non-empty.
	Body string

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// FollowRedirects controls whether 3xx responses are followed.
	FollowRedirects bool

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// MaxPoolSize caps concurrently open outbound connections. It bounds real
	// parallelism regardless of ConcurrentUsers.
	MaxPoolSize int
}

// NewConfig returns a Config for targetURL with documented defaults applied.
func NewConfig(targetURL string) *Config {
	return &Config{
		TargetURL:       targetURL,
		Method:          http.MethodGet,
		ConcurrentUsers: 10,
		RequestsPerUser: 5,
		RequestTimeout:  DefaultRequestTimeout,
		RequestDelay:    0,
		UserAgent:       DefaultUserAgent,
		FollowRedirects: true,
		MaxPoolSize:     DefaultMaxPoolSize,
	}
}

// ConfigError reports an invalid configuration detected before any request
// is dispatched. It is the only error the engine ever returns to a caller;
// everything after dispatch is recorded as a Measurement instead.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func configErrf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

var validMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodHead:    true,
	http.MethodPatch:   true,
	http.MethodOptions: true,
}

// Validate checks the configuration. A nil return means the run may start.
func (c *Config) Validate() error {
	u, err := url.Parse(c.TargetURL)
	if err != nil {
		return configErrf("url", "not a valid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return configErrf("url", "scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return configErrf("url", "missing host")
	}
	if c.Method != "" && !validMethods[c.Method] {
		return configErrf("method", "unsupported HTTP method %q", c.Method)
	}
	if c.ConcurrentUsers <= 0 {
		return configErrf("users", "must be greater than 0")
	}
	if c.ConcurrentUsers > MaxConcurrentUsers {
		return configErrf("users", "cannot exceed %d", MaxConcurrentUsers)
	}
	if c.RequestsPerUser <= 0 {
		return configErrf("requests", "must be greater than 0")
	}
	if c.RequestsPerUser > MaxRequestsPerUser {
		return configErrf("requests", "cannot exceed %d", MaxRequestsPerUser)
	}
	if c.PlannedRequests() > MaxPlannedRequests {
		return configErrf("requests", "total planned requests cannot exceed %d", MaxPlannedRequests)
	}
	if c.RequestTimeout <= 0 {
		return configErrf("timeout", "must be greater than 0")
	}
	if c.RequestDelay < 0 {
		return configErrf("delay", "cannot be negative")
	}
	if c.MaxPoolSize <= 0 {
		return configErrf("pool", "must be greater than 0")
	}
	if c.MaxPoolSize > MaxPoolSizeLimit {
		return configErrf("pool", "cannot exceed %d", MaxPoolSizeLimit)
	}
	return nil
}

// PlannedRequests returns the total number of requests the run will issue.
func (c *Config) PlannedRequests() int {
	return c.ConcurrentUsers * c.RequestsPerUser
}

// EffectiveMethod returns the configured method, or GET when unset.
func (c *Config) EffectiveMethod() string {
	if c.Method == "" {
		return http.MethodGet
	}
	return c.Method
}

// EffectiveUserAgent returns the configured user agent, or the default.
func (c *Config) EffectiveUserAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}

// Parallelism is the real concurrency bound: the smaller of the configured
// user count and the connection pool size.
func (c *Config) Parallelism() int {
	if c.ConcurrentUsers < c.MaxPoolSize {
		return c.ConcurrentUsers
	}
	return c.MaxPoolSize
}
