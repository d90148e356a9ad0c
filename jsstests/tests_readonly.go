package jsstests

import (
	"fmt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsskit/jss-contract-tests/jss"
)

// readOnlyTests never write, so they are safe for inventory and policies that real
// devices depend on.
func readOnlyTests(r *jss.Resource) func(*T) {
	first := func(t *T) jss.Summary {
		list, err := t.Client().Objects(r).List(t.Ctx())
		require.NoError(t, err)
		if len(list) == 0 {
			t.Skip(fmt.Sprintf("no %s objects on server", r.Path))
		}
		return list[0]
	}

	return func(t *T) {
		t.Run("list", func(t *T) {
			list, err := t.Client().Objects(r).List(t.Ctx())
			require.NoError(t, err)
			t.Debug("server has %d %s objects", len(list), r.Path)
			for _, s := range list {
				assert.Greater(t, s.ID, 0)
			}
		})

		t.Run("fetch first by id", func(t *T) {
			summary := first(t)
			obj, err := t.Client().Objects(r).Fetch(t.Ctx(), summary.ID)
			require.NoError(t, err)
			assert.Equal(t, summary.ID, obj.ID())
			assert.Equal(t, summary.Name, obj.Name())
		})

		t.Run("fetch first by name", func(t *T) {
			summary := first(t)
			obj, err := t.Client().Objects(r).FetchByName(t.Ctx(), summary.Name)
			require.NoError(t, err)
			assert.Equal(t, summary.ID, obj.ID())
		})

		t.Run("fields stay within whitelist", func(t *T) {
			summary := first(t)
			obj, err := t.Client().Objects(r).Fetch(t.Ctx(), summary.ID)
			require.NoError(t, err)
			AssertFieldsWithinWhitelist(t, obj)
		})

		t.Run("history", func(t *T) {
			summary := first(t)
			entries, err := t.Client().Objects(r).History(t.Ctx(), summary.ID)
			require.NoError(t, err)
			for _, e := range entries {
				assert.Equal(t, r.HistoryObjectType, e.ObjectType)
			}
		})

		t.Run("missing id", func(t *T) {
			_, err := t.Client().Objects(r).Fetch(t.Ctx(), 999999999)
			RequireNotFound(t, err)
		})
	}
}
