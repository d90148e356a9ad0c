package main

import (
	"strings"

	"github.com/alessio/shellescape"
	"github.com/spf13/pflag"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/jsskit/jss-contract-tests/framework"
	"github.com/jsskit/jss-contract-tests/settings"
)

const (
	gemDirAliasFlag = "gem-dir-alias"
	helpAliasFlag   = "help-alias"
)

type commandParams struct {
	api       settings.Overrides
	db        settings.Overrides
	apiPort   int
	dbPort    int
	gemDir    string
	savedData bool
	help      bool
	filters   framework.RegexFilters
	debug     bool
	debugAll  bool
	rateLimit float64
	insecure  bool
	suites    []string
}

func (c *commandParams) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.api.Server, "server", "s", "", "JSS API server hostname")
	fs.IntVarP(&c.apiPort, "port", "p", 0, "JSS API port (default 8443)")
	fs.StringVarP(&c.api.User, "user", "u", "", "JSS API user; a new user is prompted for a password and saved")
	fs.StringVarP(&c.db.Server, "db-server", "S", "", "JSS database server hostname")
	fs.IntVarP(&c.dbPort, "db-port", "P", 0, "JSS database port (default 3306)")
	fs.StringVarP(&c.db.User, "db-user", "U", "", "JSS database user; a new user is prompted for a password and saved")
	fs.BoolVarP(&c.savedData, "saved-data", "d", false, "show the connection data saved in the keychain and exit")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.Float64Var(&c.rateLimit, "rate-limit", 0, "maximum API requests per second (0 for no limit)")
	fs.BoolVar(&c.insecure, "insecure", false, "do not verify the server's TLS certificate")

	fs.StringVarP(&c.gemDir, "gem-dir", "g", "", "ignored; kept for compatibility with older scripts")
	fs.StringVarP(&c.gemDir, gemDirAliasFlag, "i", "", "")
	fs.BoolVarP(&c.help, helpAliasFlag, "H", false, "")
	_ = fs.MarkHidden(gemDirAliasFlag)
	_ = fs.MarkHidden(helpAliasFlag)
}

// finish copies values that can only be read once parsing is done.
func (c *commandParams) finish(fs *pflag.FlagSet, args []string) {
	if fs.Changed("port") {
		c.api.Port = ldvalue.NewOptionalInt(c.apiPort)
	}
	if fs.Changed("db-port") {
		c.db.Port = ldvalue.NewOptionalInt(c.dbPort)
	}
	c.suites = args
}

// rerunCommand builds a command line that runs only the given suites with the same
// connection and filter flags.
func (c *commandParams) rerunCommand(program string, fs *pflag.FlagSet, suites []string) string {
	var b commandBuilder
	b.add(program)
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "saved-data", "gem-dir", gemDirAliasFlag, helpAliasFlag:
		case "run":
			for _, v := range c.filters.MustMatch.Values() {
				b.add("--run=" + v)
			}
		case "skip":
			for _, v := range c.filters.MustNotMatch.Values() {
				b.add("--skip=" + v)
			}
		default:
			b.add("--" + f.Name + "=" + f.Value.String())
		}
	})
	b.add(suites...)
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
