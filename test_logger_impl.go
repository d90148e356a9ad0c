package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/jsskit/jss-contract-tests/framework"
)

var (
	failColor = color.New(color.FgRed, color.Bold)
	skipColor = color.New(color.FgYellow)
	passColor = color.New(color.FgGreen)
	nameColor = color.New(color.Bold)
)

type ConsoleTestLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	fmt.Fprintf(c.Out, "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		failColor.Fprintf(c.Out, "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	if failed {
		failColor.Fprintf(c.Out, "  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Out, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == "" {
		skipColor.Fprintf(c.Out, "  SKIPPED: %s\n", id)
	} else {
		skipColor.Fprintf(c.Out, "  SKIPPED: %s (%s)\n", id, reason)
	}
}

func (c *ConsoleTestLogger) SuiteFinished(result framework.SuiteResult) {
	passed, failed, skipped := result.Results.Counts()
	fmt.Fprintln(c.Out)
	nameColor.Fprintf(c.Out, "%s: ", result.Name)
	summaryColor(result.Results).Fprintf(c.Out, "%d passed, %d failed, %d skipped\n\n", passed, failed, skipped)
}

func summaryColor(r framework.Results) *color.Color {
	if !r.OK() {
		return failColor
	}
	return passColor
}

// printResults prints the failures of every suite and, if there were any, a
// command line for running just the failed suites again.
func printResults(out io.Writer, results []framework.SuiteResult, rerun func(failed []string) string) {
	var failedSuites []string
	totalPassed, totalFailed, totalSkipped := 0, 0, 0
	for _, r := range results {
		passed, failed, skipped := r.Results.Counts()
		totalPassed += passed
		totalFailed += failed
		totalSkipped += skipped
		if r.Results.OK() {
			continue
		}
		failedSuites = append(failedSuites, r.Name)
		for _, f := range r.Results.Failures {
			for _, err := range f.Errors {
				failColor.Fprintf(out, "%s\n", framework.TestFailure{ID: f.TestID, Err: err})
			}
		}
	}

	if len(failedSuites) == 0 {
		passColor.Fprintf(out, "All %d suites passed (%d tests, %d skipped)\n", len(results), totalPassed, totalSkipped)
		return
	}
	failColor.Fprintf(out, "%d of %d suites failed (%d passed, %d failed, %d skipped)\n",
		len(failedSuites), len(results), totalPassed, totalFailed, totalSkipped)
	fmt.Fprintln(out, "Re-run the failed suites with:")
	fmt.Fprintf(out, "  %s\n", rerun(failedSuites))
}
