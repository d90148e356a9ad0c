// Package framework contains the low-level implementation of the test harness
// infrastructure, independent of what is being tested.
//
// The general model is:
//
// 1. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results.
//
// 2. Tests are grouped into named suites held in a SuiteRegistry. Each suite is run on
// its own, so its results are reported independently of every other suite.
//
// The domain-specific code that knows what is being tested is responsible for building
// the registry and for providing a domain-specific test API on top of the test context.
package framework
