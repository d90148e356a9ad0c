package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context is the state of one running test. It behaves like a *testing.T: failing
// or skipping a test unwinds it with a panic that Run recovers from.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	deferred    []func()
}

// Run executes action as the root of a new test run and returns only the results
// of that run. Nothing is shared between calls.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	c.guard(func() { action(c) })

	for len(c.deferred) > 0 {
		last := len(c.deferred) - 1
		fn := c.deferred[last]
		c.deferred = c.deferred[:last]
		c.guard(fn)
	}

	// The root context only shows up in results if something failed outside any subtest.
	if len(c.id.Path) == 0 && !c.failed {
		return
	}
	result := TestResult{TestID: c.id, Errors: c.errors, Skipped: c.skipped && !c.failed}
	c.env.results.Tests = append(c.env.results.Tests, result)
	if c.failed {
		c.env.results.Failures = append(c.env.results.Failures, result)
	}
}

func (c *Context) guard(fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var addError error
		if _, ok := r.(*Context); ok {
			if c.skipped {
				return
			}
			if len(c.errors) == 0 {
				addError = errors.New("test failed with no failure message")
			}
		} else {
			addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
		}
		c.failed = true
		if addError != nil {
			c.errors = append(c.errors, addError)
			c.env.testLogger.TestError(c.id, addError)
		}
	}()
	fn()
}

func (c *Context) ID() TestID {
	return c.id
}

// Run starts a subtest. It returns after the subtest and its deferred functions finish.
func (c *Context) Run(name string, action func(*Context)) {
	id := c.id.Plus(name)

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.results.Tests = append(c.env.results.Tests, TestResult{TestID: id, Skipped: true})
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.skipped && !c1.failed {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

// Errorf marks the test as failed and continues.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

// FailNow marks the test as failed and stops it.
func (c *Context) FailNow() {
	c.failed = true
	panic(c)
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Defer schedules fn to run when the test ends, whether it passed or not. Deferred
// functions run last-in first-out, and may themselves report failures.
func (c *Context) Defer(fn func()) {
	c.deferred = append(c.deferred, fn)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

// testify's assertion messages start with a blank line and indent every line with a
// tab, which reads badly in console output.
func reformatError(err error) error {
	s := strings.TrimLeft(err.Error(), "\n")
	if !strings.Contains(s, "\t") {
		return err
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "\t")
	}
	return errors.New(strings.Join(lines, "\n"))
}
