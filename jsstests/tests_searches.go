package jsstests

import (
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/jsskit/jss-contract-tests/jss"
)

// searchCriterionField is a criterion every JSS accepts for each search type.
func searchCriterionField(r *jss.Resource) string {
	switch r {
	case jss.AdvancedComputerSearches:
		return "Computer Name"
	case jss.AdvancedMobileDeviceSearches:
		return "Display Name"
	default:
		return "Username"
	}
}

func criteria(r *jss.Resource, value string) ldvalue.Value {
	return ldvalue.ArrayOf(
		ldvalue.ObjectBuild().
			Set("name", ldvalue.String(searchCriterionField(r))).
			Set("priority", ldvalue.Int(0)).
			Set("and_or", ldvalue.String("and")).
			Set("search_type", ldvalue.String("like")).
			Set("value", ldvalue.String(value)).
			Build(),
	)
}

func newSearch(t *T, r *jss.Resource) *jss.Object {
	search := jss.NewObject(r, UniqueName(r.Kind))
	require.NoError(t, search.Set("criteria", criteria(r, namePrefix)))
	require.NoError(t, search.Set("display_fields", ldvalue.ArrayOf(
		ldvalue.ObjectBuild().Set("name", ldvalue.String(searchCriterionField(r))).Build(),
	)))
	CreateObject(t, search)
	return search
}

func searchTests(r *jss.Resource) func(*T) {
	return func(t *T) {
		t.Run("create and fetch by id", func(t *T) {
			search := newSearch(t, r)
			fetched, err := t.Client().Objects(r).Fetch(t.Ctx(), search.ID())
			require.NoError(t, err)
			assert.Equal(t, search.ID(), fetched.ID())
			assert.Equal(t, search.Name(), fetched.Name())
		})

		t.Run("fetch by name", func(t *T) {
			search := newSearch(t, r)
			fetched, err := t.Client().Objects(r).FetchByName(t.Ctx(), search.Name())
			require.NoError(t, err)
			assert.Equal(t, search.ID(), fetched.ID())
		})

		t.Run("appears in list", func(t *T) {
			search := newSearch(t, r)
			list, err := t.Client().Objects(r).List(t.Ctx())
			require.NoError(t, err)
			assert.Contains(t, list, jss.Summary{ID: search.ID(), Name: search.Name()})
		})

		t.Run("fields stay within whitelist", func(t *T) {
			search := newSearch(t, r)
			fetched, err := t.Client().Objects(r).Fetch(t.Ctx(), search.ID())
			require.NoError(t, err)
			AssertFieldsWithinWhitelist(t, fetched)
		})

		t.Run("update criteria", func(t *T) {
			search := newSearch(t, r)
			require.NoError(t, search.Set("criteria", criteria(r, "updated")))
			require.NoError(t, t.Client().Objects(r).Update(t.Ctx(), search))

			fetched, err := t.Client().Objects(r).Fetch(t.Ctx(), search.ID())
			require.NoError(t, err)
			got := fetched.Get("criteria")
			require.Equal(t, 1, got.Count(), "criteria: %s", got.JSONString())
			assert.Equal(t, "updated", ValueText(got.GetByIndex(0).GetByKey("value")))
			assert.Equal(t, searchCriterionField(r), ValueText(got.GetByIndex(0).GetByKey("name")))
		})

		t.Run("results carry id fields", func(t *T) {
			search := newSearch(t, r)
			results, err := t.Client().Objects(r).SearchResults(t.Ctx(), search.ID())
			require.NoError(t, err)
			t.Debug("search returned %d results", len(results))
			for _, res := range results {
				assert.Greater(t, res.ID, 0)
				for _, f := range r.ResultIDFields {
					assert.False(t, res.Fields.GetByKey(f).IsNull(), "result %d has no %s", res.ID, f)
				}
			}
		})

		t.Run("history records creation", func(t *T) {
			search := newSearch(t, r)
			entries, err := t.Client().Objects(r).History(t.Ctx(), search.ID())
			require.NoError(t, err)

			found := false
			for _, e := range entries {
				assert.Equal(t, r.HistoryObjectType, e.ObjectType)
				if strings.Contains(e.Notes, "created") {
					found = true
				}
			}
			assert.True(t, found, "no creation entry among %d history entries", len(entries))
		})

		t.Run("delete", func(t *T) {
			search := newSearch(t, r)
			svc := t.Client().Objects(r)
			require.NoError(t, svc.Delete(t.Ctx(), search.ID()))

			_, err := svc.Fetch(t.Ctx(), search.ID())
			RequireNotFound(t, err)
		})
	}
}
