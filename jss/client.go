// Package jss provides a Go client for the Jamf Pro (JSS) Classic REST API.
//
// Resource types are described by Resource values such as AdvancedUserSearches;
// one generic ObjectService performs CRUD and history operations for any of them.
//
// Basic usage:
//
//	client, err := jss.NewClient(
//	    jss.WithServer("casper.example.com"),
//	    jss.WithCredentials(user, password),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	searches := client.Objects(jss.AdvancedUserSearches)
//	summaries, err := searches.List(ctx)
//	...
//	search, err := searches.FetchByName(ctx, "Staff")
//	if err != nil {
//	    var notFound *jss.NotFoundError
//	    if errors.As(err, &notFound) {
//	        // Handle not found
//	    }
//	}
package jss

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/jsskit/jss-contract-tests/jss/internal/api"
	"github.com/jsskit/jss-contract-tests/jss/internal/auth"
)

// Default configuration values.
const (
	defaultTimeout = 30 * time.Second
	DefaultPort    = 8443
)

// Client is the JSS API client.
type Client struct {
	transport *api.Transport
	history   historyConfig
}

// NewClient creates a new JSS client with the given options.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		timeout: defaultTimeout,
		port:    DefaultPort,
		history: historyConfig{path: defaultHistoryPath},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	baseURL := cfg.baseURL
	if baseURL == "" && cfg.server != "" {
		baseURL = fmt.Sprintf("https://%s:%d", cfg.server, cfg.port)
	}
	if baseURL == "" {
		return nil, ErrNoServer
	}

	creds := &auth.Credentials{
		Username: cfg.username,
		Password: cfg.password,
	}
	if !creds.Valid() {
		return nil, ErrNoCredentials
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.timeout,
		}
		if cfg.insecureTLS {
			httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
	}

	transport, err := api.NewTransport(baseURL, creds, httpClient)
	if err != nil {
		return nil, err
	}

	if cfg.userAgent != "" {
		transport.UserAgent = cfg.userAgent
	}
	if cfg.rateLimit > 0 {
		burst := cfg.rateBurst
		if burst < 1 {
			burst = 1
		}
		transport.Limiter = rate.NewLimiter(rate.Limit(cfg.rateLimit), burst)
	}

	if cfg.history.username == "" {
		cfg.history.username = cfg.username
	}

	return &Client{
		transport: transport,
		history:   cfg.history,
	}, nil
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.transport.BaseURL.String()
}

// Username returns the API account name.
func (c *Client) Username() string {
	return c.transport.Credentials.Username
}

// Objects returns the service for one resource type.
func (c *Client) Objects(r *Resource) *ObjectService {
	return &ObjectService{
		resource:  r,
		transport: c.transport,
		history:   &c.history,
	}
}

// ServerInfo describes the JSS and the API account's view of it.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`

	// Privileges is kept as returned; its shape varies between JSS versions.
	Privileges ldvalue.Value `json:"privileges"`
}

// ServerInfo queries the account the client is authenticated as. It is the
// cheapest authenticated request the Classic API offers, so it doubles as a
// connection check.
func (c *Client) ServerInfo(ctx context.Context, opts ...RequestOption) (*ServerInfo, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result struct {
		User ServerInfo `json:"user"`
	}
	resp, err := c.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    classicAPIPrefix + "/jssuser",
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	return &result.User, nil
}
