package settings

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const maskedPassword = "********"

// WriteSavedData prints the keychain logins as YAML with passwords masked.
func WriteSavedData(out io.Writer, k *Keychain) error {
	saved := make(map[string]*SavedLogin)
	for _, account := range []string{AccountAPI, AccountDB} {
		login, err := k.Load(account)
		if err != nil {
			return err
		}
		if login != nil && login.Password != "" {
			login.Password = maskedPassword
		}
		saved[account] = login
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(saved); err != nil {
		return errors.Wrap(err, "writing saved data")
	}
	return errors.WithStack(enc.Close())
}
