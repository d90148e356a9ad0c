package main

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/jsskit/jss-contract-tests/jss"
	"github.com/jsskit/jss-contract-tests/jss/jsstest"
	"github.com/jsskit/jss-contract-tests/settings"
)

type commandEnv struct {
	cacheDir string
}

// setupCommandEnv isolates a command run: a mock keychain, an empty home and cache
// directory, and a system config naming production, if given.
func setupCommandEnv(t *testing.T, productionServer string) *commandEnv {
	keyring.MockInit()
	dir := t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "home"))
	cacheDir := filepath.Join(dir, "cache")
	t.Setenv("XDG_CACHE_HOME", cacheDir)

	path := filepath.Join(dir, "system.yaml")
	if productionServer != "" {
		require.NoError(t, os.WriteFile(path, []byte("api_server_name: "+productionServer+"\n"), 0o600))
	}
	old := systemConfigPath
	systemConfigPath = path
	t.Cleanup(func() { systemConfigPath = old })

	return &commandEnv{cacheDir: cacheDir}
}

func (e *commandEnv) lockPath() string {
	return filepath.Join(e.cacheDir, settings.KeychainService, "run.lock")
}

func serverHost(t *testing.T, srv *jsstest.Server) string {
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return u.Hostname()
}

// saveLogin stores the fake server's login in the keychain, as a first run would.
func saveLogin(t *testing.T, srv *jsstest.Server) {
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	require.NoError(t, settings.NewKeychain().Save(settings.AccountAPI, settings.SavedLogin{
		Server:   u.Hostname(),
		Port:     port,
		User:     jsstest.Username,
		Password: jsstest.Password,
	}))
}

// stdin returns a pipe that yields answer and then EOF.
func stdin(t *testing.T, answer string) *os.File {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(answer)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func execute(t *testing.T, in *os.File, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCommand(in, &out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDeclinedProductionPromptRunsNothing(t *testing.T) {
	srv := jsstest.NewTLSServer()
	defer srv.Close()
	env := setupCommandEnv(t, serverHost(t, srv))
	saveLogin(t, srv)

	for _, answer := range []string{"n\n", "yes\n", ""} {
		out, err := execute(t, stdin(t, answer), "--insecure", "categories")
		require.NoError(t, err, "answer %q", answer)

		assert.Contains(t, out, "Are you sure? (y/n)")
		assert.Contains(t, out, "Not running tests.")
		assert.NotContains(t, out, "Running ")
	}
	assert.Equal(t, 0, srv.Count(jss.Categories))
	assert.Empty(t, srv.HistoryEntries())
	assert.NoFileExists(t, env.lockPath())
}

func TestConfirmedProductionPromptRunsSuites(t *testing.T) {
	srv := jsstest.NewTLSServer()
	defer srv.Close()
	setupCommandEnv(t, serverHost(t, srv))
	saveLogin(t, srv)

	out, err := execute(t, stdin(t, "y\n"), "--insecure", "categories_spec", "connection")
	require.NoError(t, err, out)

	assert.Contains(t, out, "Are you sure? (y/n)")
	assert.Contains(t, out, "Running categories\n")
	assert.Contains(t, out, "Running connection\n")
	assert.Contains(t, out, "All 2 suites passed")
	assert.Equal(t, 0, srv.Count(jss.Categories), "suites should clean up what they create")
	assert.NotEmpty(t, srv.HistoryEntries())
}

func TestNonProductionServerIsNotConfirmed(t *testing.T) {
	srv := jsstest.NewTLSServer()
	defer srv.Close()
	setupCommandEnv(t, "casper.example.com")
	saveLogin(t, srv)

	out, err := execute(t, stdin(t, ""), "--insecure", "connection")
	require.NoError(t, err, out)
	assert.NotContains(t, out, "Are you sure?")
	assert.Contains(t, out, "All 1 suites passed")
}

func TestNoUserIsFatal(t *testing.T) {
	setupCommandEnv(t, "")

	out, err := execute(t, stdin(t, ""), "--server", "casper.example.com")
	assert.ErrorIs(t, err, settings.ErrNoUser)
	assert.NotContains(t, out, "API:")
	assert.NotContains(t, out, "Running ")
}

func TestSavedDataExitsWithoutRunning(t *testing.T) {
	srv := jsstest.NewTLSServer()
	defer srv.Close()
	env := setupCommandEnv(t, "")
	saveLogin(t, srv)

	out, err := execute(t, stdin(t, ""), "-d")
	require.NoError(t, err)
	assert.Contains(t, out, jsstest.Username)
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, jsstest.Password)
	assert.NotContains(t, out, "API:")
	assert.NoFileExists(t, env.lockPath())
}

func TestHelpExitsWithoutRunning(t *testing.T) {
	for _, flag := range []string{"-h", "--help", "-H"} {
		t.Run(flag, func(t *testing.T) {
			setupCommandEnv(t, "")

			out, err := execute(t, stdin(t, ""), flag)
			require.NoError(t, err)
			assert.Contains(t, out, "Usage:")
			assert.Contains(t, out, "--db-server")
			assert.NotContains(t, out, "API:")
		})
	}
}
