package jsstests

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/jsskit/jss-contract-tests/jss"
)

const namePrefix = "jss-contract-tests"

// UniqueName returns a name no other object on the server should have.
func UniqueName(kind string) string {
	return namePrefix + " " + kind + " " + uuid.NewString()
}

// CreateObject saves obj and schedules its deletion for the end of the test. The test
// fails immediately if the object cannot be created.
func CreateObject(t *T, obj *jss.Object) int {
	svc := t.Client().Objects(obj.Resource())
	id, err := svc.Create(t.Ctx(), obj)
	if id > 0 {
		t.Debug("created %s %d %q", obj.Resource(), id, obj.Name())
		t.Defer(func() { deleteIfPresent(t, svc, id) })
	}
	require.NoError(t, err, "creating %s %q", obj.Resource(), obj.Name())
	return id
}

func deleteIfPresent(t *T, svc *jss.ObjectService, id int) {
	err := svc.Delete(t.Ctx(), id)
	var notFound *jss.NotFoundError
	switch {
	case err == nil:
		t.Debug("deleted %s %d", svc.Resource(), id)
	case errors.As(err, &notFound):
	default:
		t.Errorf("cleanup of %s %d failed: %s", svc.Resource(), id, err)
	}
}

// RequireNotFound fails the test unless err is a NotFoundError.
func RequireNotFound(t *T, err error) {
	var notFound *jss.NotFoundError
	require.Error(t, err, "expected object to be gone")
	require.True(t, errors.As(err, &notFound), "expected not found error, got: %s", err)
}

// AssertFieldsWithinWhitelist reports fields the server returned that the resource
// descriptor does not know about.
func AssertFieldsWithinWhitelist(t *T, obj *jss.Object) {
	r := obj.Resource()
	var unknown []string
	for _, key := range obj.Data().Keys() {
		if key != "id" && !r.IsValidField(key) {
			unknown = append(unknown, key)
		}
	}
	assert.Empty(t, unknown, "%s has fields that are not in its whitelist", r)
}

// ValueText renders a scalar field the same whether the API sent it as a JSON
// number or as a string.
func ValueText(v ldvalue.Value) string {
	if v.Type() == ldvalue.StringType {
		return v.StringValue()
	}
	return strings.Trim(v.JSONString(), `"`)
}
