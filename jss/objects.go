package jss

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/jsskit/jss-contract-tests/jss/internal/api"
)

const classicAPIPrefix = "/JSSResource"

// Object is a single JSS object of some resource type. Its fields are kept as
// the JSON value the API returned.
type Object struct {
	resource *Resource
	data     ldvalue.Value
}

// NewObject creates a local object of the given type that has not been saved yet.
func NewObject(r *Resource, name string) *Object {
	o := &Object{resource: r, data: ldvalue.ObjectBuild().Build()}
	o.setIdentity("name", ldvalue.String(name))
	return o
}

func newObjectFromData(r *Resource, data ldvalue.Value) *Object {
	return &Object{resource: r, data: data}
}

// Resource returns the object's resource type.
func (o *Object) Resource() *Resource {
	return o.resource
}

// Data returns all fields of the object.
func (o *Object) Data() ldvalue.Value {
	return o.data
}

// ID returns the object's id, or 0 if it has not been created.
func (o *Object) ID() int {
	return intValue(o.identity().GetByKey("id"))
}

// Name returns the object's name.
func (o *Object) Name() string {
	return o.identity().GetByKey("name").StringValue()
}

// Get returns a top-level field of the object.
func (o *Object) Get(field string) ldvalue.Value {
	return o.data.GetByKey(field)
}

// Set replaces a top-level field. Only "name" and the resource's valid field keys
// are accepted.
func (o *Object) Set(field string, value ldvalue.Value) error {
	if !o.resource.IsValidField(field) {
		return localValidationError(field, "%q is not a valid field of %s", field, o.resource.Kind)
	}
	if field == "name" {
		o.setIdentity("name", value)
		return nil
	}
	o.data = withKey(o.data, field, value)
	return nil
}

func (o *Object) identity() ldvalue.Value {
	if o.resource.GeneralSubset != "" {
		return o.data.GetByKey(o.resource.GeneralSubset)
	}
	return o.data
}

func (o *Object) setIdentity(key string, value ldvalue.Value) {
	if subset := o.resource.GeneralSubset; subset != "" {
		o.data = withKey(o.data, subset, withKey(o.data.GetByKey(subset), key, value))
		return
	}
	o.data = withKey(o.data, key, value)
}

// withKey returns a copy of obj with key set to value. A non-object obj is
// treated as empty.
func withKey(obj ldvalue.Value, key string, value ldvalue.Value) ldvalue.Value {
	b := ldvalue.ObjectBuild()
	if obj.Type() == ldvalue.ObjectType {
		for _, k := range obj.Keys() {
			if k != key {
				b.Set(k, obj.GetByKey(k))
			}
		}
	}
	b.Set(key, value)
	return b.Build()
}

// intValue reads an id that may arrive as a JSON number or, from XML, a string.
func intValue(v ldvalue.Value) int {
	switch v.Type() {
	case ldvalue.NumberType:
		return v.IntValue()
	case ldvalue.StringType:
		n, err := strconv.Atoi(v.StringValue())
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Summary is one entry of a resource list.
type Summary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ObjectService provides CRUD and history operations for one resource type.
type ObjectService struct {
	resource  *Resource
	transport *api.Transport
	history   *historyConfig
}

// Resource returns the resource type this service operates on.
func (s *ObjectService) Resource() *Resource {
	return s.resource
}

func (s *ObjectService) collectionPath() string {
	return classicAPIPrefix + "/" + s.resource.Path
}

func (s *ObjectService) idPath(id int) string {
	return s.collectionPath() + "/id/" + strconv.Itoa(id)
}

func (s *ObjectService) notFound(id string) error {
	return &NotFoundError{
		APIError:     APIError{StatusCode: http.StatusNotFound, Message: s.resource.Kind + " not found"},
		ResourceType: s.resource.Kind,
		ResourceID:   id,
	}
}

func validateID(id int) error {
	if id <= 0 {
		return localValidationError("id", "id must be positive, got %d", id)
	}
	return nil
}

// List returns summaries of every object of this type, in the order the API sent them.
func (s *ObjectService) List(ctx context.Context, opts ...RequestOption) ([]Summary, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var raw map[string]json.RawMessage
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    s.collectionPath(),
		Headers: reqCfg.headers,
	}, &raw)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	list, ok := raw[s.resource.ListKey]
	if !ok {
		return nil, &InvalidDataError{ResourceType: s.resource.Kind, Message: "response has no " + s.resource.ListKey}
	}
	summaries := make([]Summary, 0)
	if err := json.Unmarshal(list, &summaries); err != nil {
		return nil, fmt.Errorf("unmarshaling %s: %w", s.resource.ListKey, err)
	}
	return summaries, nil
}

// Fetch retrieves a single object by id.
func (s *ObjectService) Fetch(ctx context.Context, id int, opts ...RequestOption) (*Object, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.fetch(ctx, s.idPath(id), strconv.Itoa(id), opts)
}

// FetchByName retrieves a single object by its exact name.
func (s *ObjectService) FetchByName(ctx context.Context, name string, opts ...RequestOption) (*Object, error) {
	if name == "" {
		return nil, localValidationError("name", "%s name cannot be empty", s.resource.Kind)
	}
	// Dot segments survive escaping and would be cleaned out of the request path.
	if name == "." || name == ".." {
		return nil, localValidationError("name", "%s name %q cannot be looked up", s.resource.Kind, name)
	}
	return s.fetch(ctx, s.collectionPath()+"/name/"+url.PathEscape(name), name, opts)
}

func (s *ObjectService) fetch(ctx context.Context, path, ident string, opts []RequestOption) (*Object, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var raw ldvalue.Value
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    path,
		Headers: reqCfg.headers,
	}, &raw)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, s.notFound(ident)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	data := raw.GetByKey(s.resource.ObjectKey)
	if data.Type() != ldvalue.ObjectType {
		return nil, &InvalidDataError{ResourceType: s.resource.Kind, Message: "response has no " + s.resource.ObjectKey}
	}
	return newObjectFromData(s.resource, data), nil
}

// Create saves a new object and returns its assigned id. The id is also set on obj.
func (s *ObjectService) Create(ctx context.Context, obj *Object, opts ...RequestOption) (int, error) {
	if err := s.checkObject(obj); err != nil {
		return 0, err
	}
	if obj.Name() == "" {
		return 0, localValidationError("name", "%s name is required", s.resource.Kind)
	}

	body, err := EncodeXML(s.resource.ObjectKey, obj.data, s.resource.ArrayElements)
	if err != nil {
		return 0, err
	}

	resp, err := s.write(ctx, http.MethodPost, s.idPath(0), body, opts)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return 0, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	id, err := parseWriteResponse(resp.Body)
	if err != nil {
		return 0, &InvalidDataError{ResourceType: s.resource.Kind, Message: err.Error()}
	}
	obj.setIdentity("id", ldvalue.Int(id))

	return id, s.recordHistory(ctx, id, "created")
}

// Update saves the fields of an existing object.
func (s *ObjectService) Update(ctx context.Context, obj *Object, opts ...RequestOption) error {
	if err := s.checkObject(obj); err != nil {
		return err
	}
	id := obj.ID()
	if err := validateID(id); err != nil {
		return err
	}

	body, err := EncodeXML(s.resource.ObjectKey, obj.data, s.resource.ArrayElements)
	if err != nil {
		return err
	}

	resp, err := s.write(ctx, http.MethodPut, s.idPath(id), body, opts)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return s.notFound(strconv.Itoa(id))
	}

	return s.recordHistory(ctx, id, "updated")
}

// Delete removes an object by id.
func (s *ObjectService) Delete(ctx context.Context, id int, opts ...RequestOption) error {
	if err := validateID(id); err != nil {
		return err
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	resp, err := s.transport.Do(ctx, &api.Request{
		Method:  http.MethodDelete,
		Path:    s.idPath(id),
		Headers: reqCfg.headers,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return s.notFound(strconv.Itoa(id))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	return s.recordHistory(ctx, id, "deleted")
}

func (s *ObjectService) checkObject(obj *Object) error {
	if obj == nil {
		return localValidationError("", "%s cannot be nil", s.resource.Kind)
	}
	if obj.resource != s.resource {
		return localValidationError("", "object is a %s, not a %s", obj.resource.Kind, s.resource.Kind)
	}
	return nil
}

// write sends an XML body and maps error statuses other than 404, which callers
// report with their own identifier.
func (s *ObjectService) write(ctx context.Context, method, path string, body []byte, opts []RequestOption) (*api.Response, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	resp, err := s.transport.Do(ctx, &api.Request{
		Method:      method,
		Path:        path,
		Body:        body,
		ContentType: "application/xml",
		Headers:     reqCfg.headers,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}
	return resp, nil
}

// parseWriteResponse reads the id from a POST or PUT reply such as
// <advanced_user_search><id>12</id></advanced_user_search>.
func parseWriteResponse(body []byte) (int, error) {
	var reply struct {
		ID string `xml:"id"`
	}
	if err := xml.Unmarshal(body, &reply); err != nil {
		return 0, fmt.Errorf("reading id from write response: %w", err)
	}
	id, err := strconv.Atoi(reply.ID)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("write response has no valid id: %q", reply.ID)
	}
	return id, nil
}
