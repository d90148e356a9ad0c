package settings

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/zalando/go-keyring"
)

// Keychain service and accounts the harness stores logins under.
const (
	KeychainService = "jss-contract-tests"
	AccountAPI      = "api"
	AccountDB       = "db"
)

// SavedLogin is what the keychain holds for one account.
type SavedLogin struct {
	Server   string `json:"server" yaml:"server"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
}

// Keychain reads and writes saved logins in the OS secure store.
type Keychain struct {
	service string
}

func NewKeychain() *Keychain {
	return &Keychain{service: KeychainService}
}

// Load returns the login saved for account, or nil if there is none.
func (k *Keychain) Load(account string) (*SavedLogin, error) {
	secret, err := keyring.Get(k.service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s login from keychain", account)
	}

	var login SavedLogin
	if err := json.Unmarshal([]byte(secret), &login); err != nil {
		return nil, errors.Wrapf(err, "keychain entry for %s is not a saved login", account)
	}
	return &login, nil
}

// Save replaces the login saved for account.
func (k *Keychain) Save(account string, login SavedLogin) error {
	data, err := json.Marshal(login)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := keyring.Set(k.service, account, string(data)); err != nil {
		return errors.Wrapf(err, "saving %s login to keychain", account)
	}
	return nil
}
