package framework

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const suiteSuffix = "_spec"

// SuiteRegistry maps suite names to the functions that run them.
type SuiteRegistry struct {
	suites map[string]func(*Context)
}

func NewSuiteRegistry() *SuiteRegistry {
	return &SuiteRegistry{suites: make(map[string]func(*Context))}
}

// Register adds a suite. Registering the same name twice is a programming error.
func (r *SuiteRegistry) Register(name string, action func(*Context)) {
	if _, exists := r.suites[name]; exists {
		panic(fmt.Sprintf("suite %q registered twice", name))
	}
	r.suites[name] = action
}

// Names returns every registered suite name, sorted.
func (r *SuiteRegistry) Names() []string {
	names := make([]string, 0, len(r.suites))
	for name := range r.suites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves suite names given on the command line. A trailing "_spec" is
// optional. With no names, every suite is selected in name order. Requested names
// keep their order and duplicates are dropped.
func (r *SuiteRegistry) Select(requested []string) (selected, unknown []string) {
	if len(requested) == 0 {
		return r.Names(), nil
	}
	seen := make(map[string]bool)
	for _, raw := range requested {
		name := SuiteName(raw)
		if _, ok := r.suites[name]; !ok {
			unknown = append(unknown, raw)
			continue
		}
		if !seen[name] {
			seen[name] = true
			selected = append(selected, name)
		}
	}
	return selected, unknown
}

// SuiteName normalizes a suite name as typed by a user.
func SuiteName(raw string) string {
	name := strings.TrimSuffix(raw, ".rb")
	return strings.TrimSuffix(name, suiteSuffix)
}

type SuiteResult struct {
	Name    string
	Results Results
}

// SuiteReporter can be implemented by a TestLogger that wants to know when each
// suite ends.
type SuiteReporter interface {
	SuiteFinished(result SuiteResult)
}

// RunSuites runs the requested suites one after another. Each suite gets its own Run,
// so no test from one suite appears in the results of another. Unknown names are
// reported to out and skipped.
func RunSuites(
	registry *SuiteRegistry,
	requested []string,
	filter Filter,
	testLogger TestLogger,
	out io.Writer,
) []SuiteResult {
	selected, unknown := registry.Select(requested)
	for _, name := range unknown {
		fmt.Fprintf(out, "Skipping unknown spec %q\n", name)
	}

	results := make([]SuiteResult, 0, len(selected))
	for _, name := range selected {
		action := registry.suites[name]
		fmt.Fprintf(out, "Running %s\n", name)
		r := Run(filter, testLogger, func(c *Context) {
			c.Run(name, action)
		})
		result := SuiteResult{Name: name, Results: r}
		if reporter, ok := testLogger.(SuiteReporter); ok {
			reporter.SuiteFinished(result)
		}
		results = append(results, result)
	}
	return results
}

// AllOK reports whether every suite passed.
func AllOK(results []SuiteResult) bool {
	for _, r := range results {
		if !r.Results.OK() {
			return false
		}
	}
	return true
}
