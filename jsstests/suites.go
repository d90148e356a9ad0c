package jsstests

import (
	"github.com/jsskit/jss-contract-tests/framework"
	"github.com/jsskit/jss-contract-tests/jss"
)

// NewSuiteRegistry returns every suite, run against the server client talks to.
func NewSuiteRegistry(client *jss.Client, debugLogger framework.Logger) *framework.SuiteRegistry {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	env := &environment{
		client:      client,
		debugLogger: debugLogger,
		timeout:     defaultTestTimeout,
	}

	r := framework.NewSuiteRegistry()
	r.Register("advanced_computer_search", env.suite(searchTests(jss.AdvancedComputerSearches)))
	r.Register("advanced_mobile_device_search", env.suite(searchTests(jss.AdvancedMobileDeviceSearches)))
	r.Register("advanced_user_search", env.suite(searchTests(jss.AdvancedUserSearches)))
	r.Register("categories", env.suite(DoCategoryTests))
	r.Register("computers", env.suite(readOnlyTests(jss.Computers)))
	r.Register("connection", env.suite(DoConnectionTests))
	r.Register("mobile_devices", env.suite(readOnlyTests(jss.MobileDevices)))
	r.Register("policies", env.suite(readOnlyTests(jss.Policies)))
	return r
}

func (e *environment) suite(action func(*T)) func(*framework.Context) {
	return func(c *framework.Context) {
		action(&T{context: c, env: e})
	}
}
