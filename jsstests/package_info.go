// Package jsstests contains the JSS contract test suites themselves and their supporting API.
//
// Test harness infrastructure that is not specific to the JSS, such as test contexts,
// filters, and running suites in isolation, is in the lower-level framework package.
package jsstests
