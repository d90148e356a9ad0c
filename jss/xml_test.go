package jss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestEncodeXMLSortsKeysAndNamesArrayItems(t *testing.T) {
	search := ldvalue.ObjectBuild().
		Set("name", ldvalue.String("Staff & Faculty")).
		Set("criteria", ldvalue.ArrayOf(
			ldvalue.ObjectBuild().
				Set("name", ldvalue.String("Username")).
				Set("priority", ldvalue.Int(0)).
				Set("and_or", ldvalue.String("and")).
				Build(),
		)).
		Set("display_fields", ldvalue.ArrayOf(
			ldvalue.ObjectBuild().Set("name", ldvalue.String("Email Address")).Build(),
		)).
		Set("site", ldvalue.ObjectBuild().Set("id", ldvalue.Int(-1)).Build()).
		Build()

	data, err := EncodeXML("advanced_user_search", search, AdvancedUserSearches.ArrayElements)
	require.NoError(t, err)
	assert.Equal(t,
		"<advanced_user_search>"+
			"<criteria><criterion><and_or>and</and_or><name>Username</name><priority>0</priority></criterion></criteria>"+
			"<display_fields><display_field><name>Email Address</name></display_field></display_fields>"+
			"<name>Staff &amp; Faculty</name>"+
			"<site><id>-1</id></site>"+
			"</advanced_user_search>",
		string(data))
}

func TestEncodeXMLScalars(t *testing.T) {
	value := ldvalue.ObjectBuild().
		Set("enabled", ldvalue.Bool(true)).
		Set("ratio", ldvalue.Float64(0.25)).
		Set("missing", ldvalue.Null()).
		Set("packages", ldvalue.ArrayOf(ldvalue.String("a"), ldvalue.String("b"))).
		Build()

	data, err := EncodeXML("policy", value, nil)
	require.NoError(t, err)
	assert.Equal(t,
		"<policy><enabled>true</enabled><missing></missing>"+
			"<packages><package>a</package><package>b</package></packages>"+
			"<ratio>0.25</ratio></policy>",
		string(data))
}

func TestEncodeXMLRequiresObject(t *testing.T) {
	_, err := EncodeXML("category", ldvalue.String("x"), nil)
	assert.Error(t, err)
}

func TestDecodeXML(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<advanced_computer_search>
  <id>4</id>
  <name>Laptops</name>
  <criteria>
    <size>2</size>
    <criterion><name>Model</name><priority>0</priority></criterion>
    <criterion><name>Serial Number</name><priority>1</priority></criterion>
  </criteria>
  <display_fields/>
  <site><id>-1</id><name>None</name></site>
</advanced_computer_search>`

	root, value, err := DecodeXML([]byte(doc), AdvancedComputerSearches.ArrayElements)
	require.NoError(t, err)
	assert.Equal(t, "advanced_computer_search", root)

	assert.Equal(t, "4", value.GetByKey("id").StringValue())
	assert.Equal(t, "Laptops", value.GetByKey("name").StringValue())

	criteria := value.GetByKey("criteria")
	require.Equal(t, ldvalue.ArrayType, criteria.Type())
	require.Equal(t, 2, criteria.Count())
	assert.Equal(t, "Serial Number", criteria.GetByIndex(1).GetByKey("name").StringValue())
	assert.Equal(t, "1", criteria.GetByIndex(1).GetByKey("priority").StringValue())

	assert.Equal(t, ldvalue.ArrayType, value.GetByKey("display_fields").Type())
	assert.Equal(t, 0, value.GetByKey("display_fields").Count())
	assert.Equal(t, "None", value.GetByKey("site").GetByKey("name").StringValue())
}

func TestDecodeXMLGroupsRepeatedSiblings(t *testing.T) {
	_, value, err := DecodeXML([]byte(`<policy><package>a</package><package>b</package><name>p</name></policy>`), nil)
	require.NoError(t, err)
	assert.True(t, ldvalue.ArrayOf(ldvalue.String("a"), ldvalue.String("b")).Equal(value.GetByKey("package")),
		"got %s", value.JSONString())
	assert.Equal(t, "p", value.GetByKey("name").StringValue())
}

func TestDecodeXMLEmptyRoot(t *testing.T) {
	root, value, err := DecodeXML([]byte(`<category/>`), nil)
	require.NoError(t, err)
	assert.Equal(t, "category", root)
	assert.Equal(t, ldvalue.ObjectType, value.Type())
	assert.Equal(t, 0, value.Count())
}

func TestDecodeXMLErrors(t *testing.T) {
	_, _, err := DecodeXML([]byte(``), nil)
	assert.Error(t, err)

	_, _, err = DecodeXML([]byte(`<a></b>`), nil)
	assert.Error(t, err)

	_, _, err = DecodeXML([]byte(`<a/><b/>`), nil)
	assert.Error(t, err)
}

func TestEncodedSearchDecodesToSameShape(t *testing.T) {
	search := ldvalue.ObjectBuild().
		Set("name", ldvalue.String("Phones")).
		Set("criteria", ldvalue.ArrayOf(
			ldvalue.ObjectBuild().Set("name", ldvalue.String("Model")).Build(),
			ldvalue.ObjectBuild().Set("name", ldvalue.String("OS Version")).Build(),
		)).
		Build()

	data, err := EncodeXML(AdvancedMobileDeviceSearches.ObjectKey, search, AdvancedMobileDeviceSearches.ArrayElements)
	require.NoError(t, err)

	root, decoded, err := DecodeXML(data, AdvancedMobileDeviceSearches.ArrayElements)
	require.NoError(t, err)
	assert.Equal(t, AdvancedMobileDeviceSearches.ObjectKey, root)
	assert.True(t, search.Equal(decoded), "got %s", decoded.JSONString())
}
