package jsstests

import (
	"errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/jsskit/jss-contract-tests/jss"
)

func newCategory(t *T, priority int) *jss.Object {
	category := jss.NewObject(jss.Categories, UniqueName("category"))
	require.NoError(t, category.Set("priority", ldvalue.Int(priority)))
	CreateObject(t, category)
	return category
}

func DoCategoryTests(t *T) {
	t.Run("round trip", func(t *T) {
		svc := t.Client().Objects(jss.Categories)
		category := newCategory(t, 9)

		fetched, err := svc.Fetch(t.Ctx(), category.ID())
		require.NoError(t, err)
		assert.Equal(t, category.Name(), fetched.Name())
		assert.Equal(t, "9", ValueText(fetched.Get("priority")))
		AssertFieldsWithinWhitelist(t, fetched)

		require.NoError(t, fetched.Set("priority", ldvalue.Int(3)))
		require.NoError(t, svc.Update(t.Ctx(), fetched))

		refetched, err := svc.FetchByName(t.Ctx(), category.Name())
		require.NoError(t, err)
		assert.Equal(t, "3", ValueText(refetched.Get("priority")))

		require.NoError(t, svc.Delete(t.Ctx(), category.ID()))
		_, err = svc.Fetch(t.Ctx(), category.ID())
		RequireNotFound(t, err)
	})

	t.Run("rename", func(t *T) {
		svc := t.Client().Objects(jss.Categories)
		category := newCategory(t, 5)
		newName := UniqueName("category")

		require.NoError(t, category.Set("name", ldvalue.String(newName)))
		require.NoError(t, svc.Update(t.Ctx(), category))

		fetched, err := svc.FetchByName(t.Ctx(), newName)
		require.NoError(t, err)
		assert.Equal(t, category.ID(), fetched.ID())
	})

	t.Run("duplicate name is rejected", func(t *T) {
		category := newCategory(t, 1)

		dup := jss.NewObject(jss.Categories, category.Name())
		id, err := t.Client().Objects(jss.Categories).Create(t.Ctx(), dup)
		if id > 0 {
			t.Defer(func() { deleteIfPresent(t, t.Client().Objects(jss.Categories), id) })
		}
		var conflict *jss.ConflictError
		assert.True(t, errors.As(err, &conflict), "expected conflict error, got: %v", err)
	})

	t.Run("unknown field is rejected locally", func(t *T) {
		category := jss.NewObject(jss.Categories, UniqueName("category"))
		err := category.Set("colour", ldvalue.String("blue"))
		var validation *jss.ValidationError
		assert.True(t, errors.As(err, &validation), "expected validation error, got: %v", err)
	})

	t.Run("history records each write", func(t *T) {
		svc := t.Client().Objects(jss.Categories)
		category := newCategory(t, 2)
		require.NoError(t, svc.Update(t.Ctx(), category))

		entries, err := svc.History(t.Ctx(), category.ID())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(entries), 2)
	})
}
