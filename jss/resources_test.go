package jss_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsskit/jss-contract-tests/jss"
)

func TestResourceDescriptors(t *testing.T) {
	seenTypes := make(map[int]string)
	seenPaths := make(map[string]bool)

	for _, r := range jss.Resources() {
		t.Run(r.Path, func(t *testing.T) {
			assert.NotEmpty(t, r.Kind)
			assert.NotEmpty(t, r.ListKey)
			assert.NotEmpty(t, r.ObjectKey)
			assert.NotEmpty(t, r.ValidFieldKeys)
			assert.Greater(t, r.HistoryObjectType, 0)

			assert.False(t, seenPaths[r.Path], "duplicate path")
			seenPaths[r.Path] = true
			if other, dup := seenTypes[r.HistoryObjectType]; dup {
				assert.Fail(t, "duplicate history object type", "shared with %s", other)
			}
			seenTypes[r.HistoryObjectType] = r.Path

			if r.IsSearch() {
				assert.Contains(t, r.ResultIDFields, "id")
				assert.Contains(t, r.ResultIDFields, "name")
				assert.True(t, r.IsValidField(r.ResultListKey))
				assert.True(t, r.IsValidField("criteria"))
				assert.Contains(t, r.ArrayElements, r.ResultListKey)
			}

			found, ok := jss.LookupResource(r.Path)
			assert.True(t, ok)
			assert.Same(t, r, found)
		})
	}
}

func TestResourcesSortedByPath(t *testing.T) {
	var paths []string
	for _, r := range jss.Resources() {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{
		"advancedcomputersearches",
		"advancedmobiledevicesearches",
		"advancedusersearches",
		"categories",
		"computers",
		"mobiledevices",
		"policies",
	}, paths)
}

func TestSearchResultKinds(t *testing.T) {
	assert.Same(t, jss.Computers, jss.AdvancedComputerSearches.ResultKind)
	assert.Same(t, jss.MobileDevices, jss.AdvancedMobileDeviceSearches.ResultKind)
	assert.Same(t, jss.Users, jss.AdvancedUserSearches.ResultKind)
	assert.False(t, jss.Categories.IsSearch())
}

func TestLookupUnknownResource(t *testing.T) {
	_, ok := jss.LookupResource("users")
	assert.False(t, ok)
	_, ok = jss.LookupResource("printers")
	assert.False(t, ok)
}
