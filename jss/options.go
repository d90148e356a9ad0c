package jss

import (
	"net/http"
	"time"
)

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL     string
	server      string
	port        int
	username    string
	password    string
	httpClient  *http.Client
	timeout     time.Duration
	userAgent   string
	insecureTLS bool
	rateLimit   float64
	rateBurst   int
	history     historyConfig
}

// WithServer sets the JSS hostname. The base URL becomes https://server:port.
func WithServer(server string) ClientOption {
	return func(c *clientConfig) {
		c.server = server
	}
}

// WithPort sets the JSS port used with WithServer. Defaults to 8443.
func WithPort(port int) ClientOption {
	return func(c *clientConfig) {
		c.port = port
	}
}

// WithBaseURL sets the full API base URL, overriding WithServer and WithPort.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithCredentials sets the API account.
func WithCredentials(username, password string) ClientOption {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the default request timeout.
// Note: This option is ignored when WithHTTPClient is used;
// set the timeout directly on the provided client instead.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithInsecureTLS disables certificate verification, for servers with self-signed
// certificates. Ignored when WithHTTPClient is used.
func WithInsecureTLS() ClientOption {
	return func(c *clientConfig) {
		c.insecureTLS = true
	}
}

// WithRateLimit limits requests to perSecond, allowing bursts of burst requests.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *clientConfig) {
		c.rateLimit = perSecond
		c.rateBurst = burst
	}
}

// WithHistoryPath sets the path of the object history endpoint.
func WithHistoryPath(path string) ClientOption {
	return func(c *clientConfig) {
		c.history.path = path
	}
}

// WithHistoryUser sets the username recorded on automatic history entries.
// Defaults to the API account.
func WithHistoryUser(username string) ClientOption {
	return func(c *clientConfig) {
		c.history.username = username
	}
}

// WithoutHistory stops writes from recording history entries.
func WithoutHistory() ClientOption {
	return func(c *clientConfig) {
		c.history.disabled = true
	}
}

// RequestOption configures individual API requests.
type RequestOption func(*requestConfig)

type requestConfig struct {
	headers http.Header
}

func newRequestConfig() *requestConfig {
	return &requestConfig{
		headers: make(http.Header),
	}
}

func (r *requestConfig) apply(opts ...RequestOption) {
	for _, opt := range opts {
		opt(r)
	}
}

// WithHeader adds a custom header to a request.
func WithHeader(key, value string) RequestOption {
	return func(r *requestConfig) {
		r.headers.Set(key, value)
	}
}
