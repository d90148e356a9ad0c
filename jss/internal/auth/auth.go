// Package auth provides JSS Classic API authentication.
package auth

import "net/http"

// Credentials holds the account used for HTTP basic authentication.
type Credentials struct {
	Username string
	Password string
}

// Apply adds authentication headers to an HTTP request.
func (c *Credentials) Apply(req *http.Request) {
	if c == nil {
		return
	}
	req.SetBasicAuth(c.Username, c.Password)
}

// Valid reports whether credentials are configured.
func (c *Credentials) Valid() bool {
	return c != nil && c.Username != "" && c.Password != ""
}
