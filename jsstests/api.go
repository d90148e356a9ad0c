package jsstests

import (
	"context"
	"fmt"
	"time"

	"github.com/jsskit/jss-contract-tests/framework"
	"github.com/jsskit/jss-contract-tests/jss"
)

const defaultTestTimeout = 2 * time.Minute

type environment struct {
	client      *jss.Client
	debugLogger framework.Logger
	timeout     time.Duration
}

// T represents a test or subtest in our JSS test suites.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is outside
// of the Go test runner, with debug logging provided by the lower-level framework package.
//
// To make test assertions, you can use the assert and require packages, passing the *T as if it were
// a *testing.T.
type T struct {
	context *framework.Context
	env     *environment
	ctx     context.Context
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(&T{context: c, env: t.env})
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test, and also goes to the main debug log.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
	framework.LoggerWithPrefix(t.env.debugLogger, fmt.Sprintf("[%s] ", t.context.ID())).Printf(format, args...)
}

// Defer schedules fn to run when this test ends, even if it failed.
func (t *T) Defer(fn func()) {
	t.context.Defer(fn)
}

// Skip stops the test without failing it.
func (t *T) Skip(reason string) {
	t.context.SkipWithReason(reason)
}

// Client returns the API client all tests share.
func (t *T) Client() *jss.Client {
	return t.env.client
}

// Ctx returns a context that expires when the test has run too long. It is cancelled
// when the test ends.
func (t *T) Ctx() context.Context {
	if t.ctx == nil {
		ctx, cancel := context.WithTimeout(context.Background(), t.env.timeout)
		t.ctx = ctx
		t.Defer(cancel)
	}
	return t.ctx
}
