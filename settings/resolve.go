package settings

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var (
	ErrNoUser   = errors.New("no user given and none saved in the keychain; use --user")
	ErrNoServer = errors.New("no server given, configured, or saved in the keychain; use --server")
)

// PasswordPrompter asks the user for a password without echoing it.
type PasswordPrompter func(prompt string) (string, error)

// Overrides are the connection values given on the command line.
type Overrides struct {
	Server string
	Port   ldvalue.OptionalInt
	User   string
}

// Connection is a fully resolved login.
type Connection struct {
	Server   string
	Port     int
	User     string
	Password string
}

func (c Connection) IsSet() bool {
	return c.User != ""
}

func (c Connection) String() string {
	if !c.IsSet() {
		return "(none)"
	}
	return fmt.Sprintf("%s@%s:%d", c.User, c.Server, c.Port)
}

// Request describes one login to resolve.
type Request struct {
	Account     string
	Label       string
	Flags       Overrides
	FileServer  string
	FilePort    int
	DefaultPort int

	// Optional logins resolve to an empty Connection instead of ErrNoUser.
	Optional bool
}

// Resolver combines keychain, flags and config files into a Connection.
type Resolver struct {
	Keychain *Keychain
	Prompt   PasswordPrompter
}

// Resolve picks each value from the keychain first, then flags, then the config
// files. A flag user that differs from the saved one is a new login: the saved entry
// is ignored, the password is prompted for, and the result is saved.
func (r *Resolver) Resolve(req Request) (Connection, error) {
	saved, err := r.Keychain.Load(req.Account)
	if err != nil {
		return Connection{}, err
	}

	newUser := req.Flags.User != "" && (saved == nil || saved.User != req.Flags.User)
	if !newUser && saved == nil {
		if req.Optional {
			return Connection{}, nil
		}
		return Connection{}, ErrNoUser
	}

	conn := Connection{
		Server: firstNonEmpty(req.Flags.Server, req.FileServer),
		Port:   req.Flags.Port.OrElse(firstNonZero(req.FilePort, req.DefaultPort)),
	}
	if !newUser {
		conn.Server = firstNonEmpty(saved.Server, conn.Server)
		conn.Port = firstNonZero(saved.Port, conn.Port)
		conn.User = saved.User
		conn.Password = saved.Password
	} else {
		conn.User = req.Flags.User
	}
	if conn.Server == "" {
		return Connection{}, errors.WithMessagef(ErrNoServer, "%s connection", req.Label)
	}

	if conn.Password == "" {
		if r.Prompt == nil {
			return Connection{}, errors.Errorf("no password for %s user %s", req.Label, conn.User)
		}
		password, err := r.Prompt(fmt.Sprintf("%s password for %s@%s: ", req.Label, conn.User, conn.Server))
		if err != nil {
			return Connection{}, errors.Wrap(err, "reading password")
		}
		conn.Password = password

		err = r.Keychain.Save(req.Account, SavedLogin{
			Server:   conn.Server,
			Port:     conn.Port,
			User:     conn.User,
			Password: conn.Password,
		})
		if err != nil {
			return Connection{}, err
		}
	}

	return conn, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
