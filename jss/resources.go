package jss

import (
	"slices"
	"sort"
)

// Resource describes one JSS Classic API resource type: where it lives, how its
// JSON and XML are keyed, and how it is identified in object history.
//
// Resources are defined once as package variables and must not be modified.
type Resource struct {
	// Kind is a human readable name used in errors and test output.
	Kind string

	// Path is the collection path segment under /JSSResource.
	Path string

	// ListKey is the JSON key of the list returned for the collection.
	ListKey string

	// ObjectKey is the JSON key, and XML root element, of a single object.
	ObjectKey string

	// ValidFieldKeys are the fields, besides id and name, the API accepts for this type.
	ValidFieldKeys []string

	// ResultKind is the resource type that results of a search within this resource
	// belong to. Nil for resources that are not searches.
	ResultKind *Resource

	// ResultListKey is the field of a search holding its result rows.
	ResultListKey string

	// ResultIDFields are present on every search result row, in display order.
	ResultIDFields []string

	// HistoryObjectType identifies this type in object history entries.
	HistoryObjectType int

	// GeneralSubset names the subset holding id and name, for types that nest them.
	GeneralSubset string

	// ArrayElements maps an array field to the XML element name of its items.
	ArrayElements map[string]string
}

// IsSearch reports whether the resource is an advanced search with result rows.
func (r *Resource) IsSearch() bool {
	return r.ResultKind != nil && r.ResultListKey != ""
}

// IsValidField reports whether field may be set on objects of this type.
func (r *Resource) IsValidField(field string) bool {
	return field == "name" || slices.Contains(r.ValidFieldKeys, field)
}

func (r *Resource) String() string {
	return r.Kind
}

var (
	Computers = &Resource{
		Kind:              "computer",
		Path:              "computers",
		ListKey:           "computers",
		ObjectKey:         "computer",
		ValidFieldKeys:    []string{"general", "location", "purchasing", "hardware", "software", "extension_attributes", "groups_accounts", "configuration_profiles"},
		HistoryObjectType: 1,
		GeneralSubset:     "general",
		ArrayElements: map[string]string{
			"extension_attributes":   "extension_attribute",
			"configuration_profiles": "configuration_profile",
		},
	}

	MobileDevices = &Resource{
		Kind:              "mobile device",
		Path:              "mobiledevices",
		ListKey:           "mobile_devices",
		ObjectKey:         "mobile_device",
		ValidFieldKeys:    []string{"general", "location", "purchasing", "applications", "certificates", "configuration_profiles", "extension_attributes", "mobile_device_groups", "network", "security"},
		HistoryObjectType: 21,
		GeneralSubset:     "general",
		ArrayElements: map[string]string{
			"applications":           "application",
			"certificates":           "certificate",
			"configuration_profiles": "configuration_profile",
			"extension_attributes":   "extension_attribute",
			"mobile_device_groups":   "mobile_device_group",
		},
	}

	Users = &Resource{
		Kind:      "user",
		Path:      "users",
		ListKey:   "users",
		ObjectKey: "user",
	}

	Policies = &Resource{
		Kind:              "policy",
		Path:              "policies",
		ListKey:           "policies",
		ObjectKey:         "policy",
		ValidFieldKeys:    []string{"general", "scope", "self_service", "package_configuration", "scripts", "printers", "dock_items", "account_maintenance", "maintenance", "files_processes", "user_interaction", "reboot", "disk_encryption"},
		HistoryObjectType: 3,
		GeneralSubset:     "general",
		ArrayElements: map[string]string{
			"scripts":    "script",
			"printers":   "printer",
			"dock_items": "dock_item",
			"packages":   "package",
		},
	}

	Categories = &Resource{
		Kind:              "category",
		Path:              "categories",
		ListKey:           "categories",
		ObjectKey:         "category",
		ValidFieldKeys:    []string{"priority"},
		HistoryObjectType: 72,
	}

	AdvancedComputerSearches = &Resource{
		Kind:              "advanced computer search",
		Path:              "advancedcomputersearches",
		ListKey:           "advanced_computer_searches",
		ObjectKey:         "advanced_computer_search",
		ValidFieldKeys:    []string{"criteria", "display_fields", "computers"},
		ResultKind:        Computers,
		ResultListKey:     "computers",
		ResultIDFields:    []string{"id", "name", "udid"},
		HistoryObjectType: 53,
		ArrayElements:     searchArrayElements("computers", "computer"),
	}

	AdvancedMobileDeviceSearches = &Resource{
		Kind:              "advanced mobile device search",
		Path:              "advancedmobiledevicesearches",
		ListKey:           "advanced_mobile_device_searches",
		ObjectKey:         "advanced_mobile_device_search",
		ValidFieldKeys:    []string{"criteria", "display_fields", "mobile_devices"},
		ResultKind:        MobileDevices,
		ResultListKey:     "mobile_devices",
		ResultIDFields:    []string{"id", "name", "udid"},
		HistoryObjectType: 54,
		ArrayElements:     searchArrayElements("mobile_devices", "mobile_device"),
	}

	AdvancedUserSearches = &Resource{
		Kind:              "advanced user search",
		Path:              "advancedusersearches",
		ListKey:           "advanced_user_searches",
		ObjectKey:         "advanced_user_search",
		ValidFieldKeys:    []string{"criteria", "display_fields", "users"},
		ResultKind:        Users,
		ResultListKey:     "users",
		ResultIDFields:    []string{"id", "name"},
		HistoryObjectType: 55,
		ArrayElements:     searchArrayElements("users", "user"),
	}
)

func searchArrayElements(resultListKey, resultElement string) map[string]string {
	return map[string]string{
		"criteria":       "criterion",
		"display_fields": "display_field",
		resultListKey:    resultElement,
	}
}

// allResources lists the types with full CRUD and history support. Users is only
// referenced as the result type of user searches.
var allResources = []*Resource{
	AdvancedComputerSearches,
	AdvancedMobileDeviceSearches,
	AdvancedUserSearches,
	Categories,
	Computers,
	MobileDevices,
	Policies,
}

// Resources returns every supported resource type, sorted by path.
func Resources() []*Resource {
	out := slices.Clone(allResources)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// LookupResource returns the resource type with the given collection path.
func LookupResource(path string) (*Resource, bool) {
	for _, r := range allResources {
		if r.Path == path {
			return r, true
		}
	}
	return nil, false
}
