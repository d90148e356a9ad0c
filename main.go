package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jsskit/jss-contract-tests/framework"
	"github.com/jsskit/jss-contract-tests/jss"
	"github.com/jsskit/jss-contract-tests/jsstests"
	"github.com/jsskit/jss-contract-tests/settings"
)

const defaultDBPort = 3306

// systemConfigPath is the system-wide config file, which also names the production server.
var systemConfigPath = settings.SystemConfigPath

var errTestsFailed = errors.New("tests failed")

func main() {
	cmd := newRootCommand(os.Stdin, os.Stdout)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand(in *os.File, out io.Writer) *cobra.Command {
	var params commandParams
	cmd := &cobra.Command{
		Use:   "jss-contract-tests [flags] [suite ...]",
		Short: "Run contract tests against a live JSS",
		Long: `Runs contract test suites against the Classic API of a live JSS.

Suites are named on the command line, with or without a "_spec" suffix. With no
names, every suite runs. Connection settings come from the keychain, then the
flags, then ` + settings.SystemConfigPath + ` and ~/.jss-contract-tests.yaml.

Examples:
  # First run: save the API user and password to the keychain
  jss-contract-tests --server casper.example.com --user api-tester

  # Later runs reuse the saved login
  jss-contract-tests advanced_user_search categories`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			params.finish(cmd.Flags(), args)
			if params.help {
				return cmd.Help()
			}
			return runTests(cmd, &params, in, out)
		},
	}
	cmd.SetOut(out)
	params.addFlags(cmd.Flags())
	return cmd
}

func runTests(cmd *cobra.Command, params *commandParams, in *os.File, out io.Writer) error {
	if params.gemDir != "" {
		fmt.Fprintf(out, "Warning: --gem-dir is ignored; the API library is built into this program\n")
	}

	keychain := settings.NewKeychain()
	if params.savedData {
		return settings.WriteSavedData(out, keychain)
	}

	userConfig, err := settings.UserConfigPath()
	if err != nil {
		return err
	}
	cfg, err := settings.LoadConfig(systemConfigPath, userConfig)
	if err != nil {
		return err
	}

	resolver := &settings.Resolver{
		Keychain: keychain,
		Prompt:   settings.TerminalPasswordPrompt(in, out),
	}
	apiConn, err := resolver.Resolve(settings.Request{
		Account:     settings.AccountAPI,
		Label:       "API",
		Flags:       params.api,
		FileServer:  cfg.Merged.APIServerName,
		FilePort:    cfg.Merged.APIServerPort,
		DefaultPort: jss.DefaultPort,
	})
	if err != nil {
		return err
	}
	dbConn, err := resolver.Resolve(settings.Request{
		Account:     settings.AccountDB,
		Label:       "database",
		Flags:       params.db,
		FileServer:  cfg.Merged.DBServerName,
		FilePort:    cfg.Merged.DBServerPort,
		DefaultPort: defaultDBPort,
		Optional:    true,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "API:      %s\n", apiConn)
	fmt.Fprintf(out, "Database: %s\n\n", dbConn)

	if settings.IsProduction(apiConn.Server, cfg.System) {
		ok, err := settings.ConfirmProduction(in, out, apiConn.Server)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Not running tests.")
			return nil
		}
	}

	lockPath, err := settings.DefaultLockPath()
	if err != nil {
		return err
	}
	lock, err := settings.AcquireRunLock(lockPath)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	clientOpts := []jss.ClientOption{
		jss.WithServer(apiConn.Server),
		jss.WithPort(apiConn.Port),
		jss.WithCredentials(apiConn.User, apiConn.Password),
	}
	if params.rateLimit > 0 {
		clientOpts = append(clientOpts, jss.WithRateLimit(params.rateLimit, 1))
	}
	if params.insecure {
		clientOpts = append(clientOpts, jss.WithInsecureTLS())
	}
	client, err := jss.NewClient(clientOpts...)
	if err != nil {
		return errors.Wrap(err, "creating API client")
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(out, "", log.LstdFlags)
	}

	registry := jsstests.NewSuiteRegistry(client, mainDebugLogger)
	framework.PrintFilterDescription(out, params.filters)

	testLogger := &ConsoleTestLogger{
		Out:                  out,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	results := framework.RunSuites(registry, params.suites, params.filters.AsFilter, testLogger, out)

	printResults(out, results, func(failed []string) string {
		return params.rerunCommand(filepath.Base(os.Args[0]), cmd.Flags(), failed)
	})
	if !framework.AllOK(results) {
		return errTestsFailed
	}
	return nil
}
