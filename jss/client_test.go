package jss_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsskit/jss-contract-tests/jss"
	"github.com/jsskit/jss-contract-tests/jss/jsstest"
)

func newTestClient(t *testing.T, srv *jsstest.Server, opts ...jss.ClientOption) *jss.Client {
	t.Helper()
	opts = append([]jss.ClientOption{
		jss.WithBaseURL(srv.URL),
		jss.WithCredentials(jsstest.Username, jsstest.Password),
	}, opts...)
	client, err := jss.NewClient(opts...)
	require.NoError(t, err)
	return client
}

func TestNewClientBuildsBaseURLFromServerAndPort(t *testing.T) {
	client, err := jss.NewClient(
		jss.WithServer("casper.example.com"),
		jss.WithCredentials("api", "pw"),
	)
	require.NoError(t, err)
	assert.Equal(t, "https://casper.example.com:8443", client.BaseURL())
	assert.Equal(t, "api", client.Username())

	client, err = jss.NewClient(
		jss.WithServer("casper.example.com"),
		jss.WithPort(443),
		jss.WithCredentials("api", "pw"),
	)
	require.NoError(t, err)
	assert.Equal(t, "https://casper.example.com:443", client.BaseURL())
}

func TestNewClientRequiresServerAndCredentials(t *testing.T) {
	_, err := jss.NewClient(jss.WithCredentials("api", "pw"))
	assert.ErrorIs(t, err, jss.ErrNoServer)

	_, err = jss.NewClient(jss.WithServer("casper.example.com"))
	assert.ErrorIs(t, err, jss.ErrNoCredentials)

	_, err = jss.NewClient(jss.WithServer("casper.example.com"), jss.WithCredentials("api", ""))
	assert.ErrorIs(t, err, jss.ErrNoCredentials)

	_, err = jss.NewClient(jss.WithBaseURL("casper.example.com"), jss.WithCredentials("api", "pw"))
	assert.Error(t, err)
}

func TestServerInfo(t *testing.T) {
	srv := jsstest.NewServer()
	defer srv.Close()

	info, err := newTestClient(t, srv).ServerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, jsstest.Username, info.Name)
	assert.Equal(t, jsstest.Version, info.Version)
	assert.Equal(t, 2, info.Privileges.Count())
}

func TestServerInfoWithBadPassword(t *testing.T) {
	srv := jsstest.NewServer()
	defer srv.Close()

	client, err := jss.NewClient(jss.WithBaseURL(srv.URL), jss.WithCredentials(jsstest.Username, "wrong"))
	require.NoError(t, err)

	_, err = client.ServerInfo(context.Background())
	var authErr *jss.AuthenticationError
	require.True(t, errors.As(err, &authErr), "expected AuthenticationError, got %v", err)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Equal(t, "The request requires user authentication", authErr.Message)
}

func TestRequestHeaders(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithJSONResponse(map[string]any{"user": map[string]any{"name": "api"}}, nil))

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		client, err := jss.NewClient(
			jss.WithBaseURL(server.URL),
			jss.WithCredentials("api", "pw"),
			jss.WithUserAgent("casper-checker/2.0"),
		)
		require.NoError(t, err)

		_, err = client.ServerInfo(context.Background(), jss.WithHeader("X-Trace", "abc"))
		require.NoError(t, err)

		req := <-requestsCh
		assert.Equal(t, "GET", req.Request.Method)
		assert.Equal(t, "/JSSResource/jssuser", req.Request.URL.Path)
		assert.Equal(t, "application/json", req.Request.Header.Get("Accept"))
		assert.Equal(t, "casper-checker/2.0", req.Request.Header.Get("User-Agent"))
		assert.Equal(t, "abc", req.Request.Header.Get("X-Trace"))
		user, pass, ok := req.Request.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "api", user)
		assert.Equal(t, "pw", pass)
	})
}

func TestInsecureTLS(t *testing.T) {
	server := httptest.NewTLSServer(
		httphelpers.HandlerWithJSONResponse(map[string]any{"user": map[string]any{"name": "api"}}, nil))
	defer server.Close()

	strict, err := jss.NewClient(jss.WithBaseURL(server.URL), jss.WithCredentials("api", "pw"))
	require.NoError(t, err)
	_, err = strict.ServerInfo(context.Background())
	assert.Error(t, err)

	insecure, err := jss.NewClient(jss.WithBaseURL(server.URL), jss.WithCredentials("api", "pw"), jss.WithInsecureTLS())
	require.NoError(t, err)
	info, err := insecure.ServerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "api", info.Name)
}

func TestRateLimitHonorsContextDeadline(t *testing.T) {
	srv := jsstest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv, jss.WithRateLimit(0.01, 1))

	_, err := client.ServerInfo(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.ServerInfo(ctx)
	assert.ErrorContains(t, err, "rate limiter")
}

func TestServerErrorStatus(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(http.StatusServiceUnavailable, nil, []byte("<html><body><p>Maintenance</p></body></html>"))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		client, err := jss.NewClient(jss.WithBaseURL(server.URL), jss.WithCredentials("api", "pw"))
		require.NoError(t, err)

		_, err = client.ServerInfo(context.Background())
		var serverErr *jss.ServerError
		require.True(t, errors.As(err, &serverErr))
		assert.Equal(t, "Maintenance", serverErr.Message)

		var apiErr *jss.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	})
}
