package jsstests

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoConnectionTests(t *T) {
	t.Run("server info", func(t *T) {
		info, err := t.Client().ServerInfo(t.Ctx())
		require.NoError(t, err)
		t.Debug("JSS version %s", info.Version)
		assert.NotEmpty(t, info.Version)
		assert.Equal(t, t.Client().Username(), info.Name)
	})
}
