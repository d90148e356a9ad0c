package settings

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestWriteSavedDataMasksPasswords(t *testing.T) {
	keyring.MockInit()
	k := NewKeychain()
	require.NoError(t, k.Save(AccountAPI, SavedLogin{
		Server: "casper.example.com", Port: 8443, User: "api-tester", Password: "hunter2",
	}))

	var out bytes.Buffer
	require.NoError(t, WriteSavedData(&out, k))

	text := out.String()
	assert.Contains(t, text, "server: casper.example.com")
	assert.Contains(t, text, "user: api-tester")
	assert.Contains(t, text, "********")
	assert.NotContains(t, text, "hunter2")
	assert.Contains(t, text, "db: null")
}
