package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseParams(t *testing.T, args ...string) (*commandParams, *pflag.FlagSet) {
	var params commandParams
	fs := pflag.NewFlagSet("jss-contract-tests", pflag.ContinueOnError)
	params.addFlags(fs)
	require.NoError(t, fs.Parse(args))
	params.finish(fs, fs.Args())
	return &params, fs
}

func TestConnectionFlags(t *testing.T) {
	p, _ := parseParams(t, "-s", "casper.example.com", "-p", "8444", "-u", "api-tester",
		"-S", "db.example.com", "-U", "jamf")

	assert.Equal(t, "casper.example.com", p.api.Server)
	assert.Equal(t, 8444, p.api.Port.OrElse(0))
	assert.Equal(t, "api-tester", p.api.User)
	assert.Equal(t, "db.example.com", p.db.Server)
	assert.False(t, p.db.Port.IsDefined())
	assert.Equal(t, "jamf", p.db.User)
}

func TestPortsUnsetWhenNotGiven(t *testing.T) {
	p, _ := parseParams(t)
	assert.False(t, p.api.Port.IsDefined())
	assert.False(t, p.db.Port.IsDefined())
}

func TestSuitesFromPositionalArgs(t *testing.T) {
	p, _ := parseParams(t, "--debug", "categories", "advanced_user_search_spec")
	assert.True(t, p.debug)
	assert.Equal(t, []string{"categories", "advanced_user_search_spec"}, p.suites)
}

func TestHiddenAliases(t *testing.T) {
	p, fs := parseParams(t, "-i", "/opt/gems", "-H")
	assert.Equal(t, "/opt/gems", p.gemDir)
	assert.True(t, p.help)
	assert.True(t, fs.Lookup(gemDirAliasFlag).Hidden)
	assert.True(t, fs.Lookup(helpAliasFlag).Hidden)

	p, _ = parseParams(t, "-g", "/opt/gems")
	assert.Equal(t, "/opt/gems", p.gemDir)
}

func TestFilterFlagsAreRepeatable(t *testing.T) {
	p, _ := parseParams(t, "--run", "categories", "--run", "searches", "--skip", "delete")
	assert.Equal(t, []string{"categories", "searches"}, p.filters.MustMatch.Values())
	assert.Equal(t, []string{"delete"}, p.filters.MustNotMatch.Values())
}

func TestInvalidRegexIsRejected(t *testing.T) {
	var params commandParams
	fs := pflag.NewFlagSet("jss-contract-tests", pflag.ContinueOnError)
	params.addFlags(fs)
	assert.Error(t, fs.Parse([]string{"--run", "("}))
}

func TestRerunCommand(t *testing.T) {
	p, fs := parseParams(t, "-s", "casper.example.com", "-u", "api-tester", "--debug",
		"--run", "fields stay", "-d=false", "-g", "/opt/gems", "categories", "computers")

	cmd := p.rerunCommand("jss-contract-tests", fs, []string{"categories"})
	assert.Equal(t,
		"jss-contract-tests --debug=true '--run=fields stay' --server=casper.example.com --user=api-tester categories",
		cmd)
}

func TestRerunCommandWithNoFlags(t *testing.T) {
	p, fs := parseParams(t)
	assert.Equal(t, "jss-contract-tests searches_spec",
		p.rerunCommand("jss-contract-tests", fs, []string{"searches_spec"}))
}

func TestCommandBuilderQuotes(t *testing.T) {
	var b commandBuilder
	b.add("echo", "it's", "plain")
	assert.Equal(t, `echo 'it'"'"'s' plain`, b.String())
}
