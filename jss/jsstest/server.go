// Package jsstest provides an in-memory JSS that speaks the same Classic API
// contract as the jss client, for tests.
package jsstest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/jsskit/jss-contract-tests/jss"
)

// Default credentials accepted by a new Server.
const (
	Username = "api-tester"
	Password = "secret"
	Version  = "10.50.0-t1700000000"
)

// Server is a fake JSS. All state is in memory and lost on Close.
type Server struct {
	*httptest.Server

	lock    sync.Mutex
	objects map[string]map[int]ldvalue.Value
	nextID  int
	history []jss.HistoryEntry
}

// NewServer starts a fake JSS with no objects.
func NewServer() *Server {
	return newServer(httptest.NewServer)
}

// NewTLSServer is like NewServer but serves HTTPS with a self-signed certificate,
// as most JSS installations do.
func NewTLSServer() *Server {
	return newServer(httptest.NewTLSServer)
}

func newServer(start func(http.Handler) *httptest.Server) *Server {
	s := &Server{
		objects: make(map[string]map[int]ldvalue.Value),
		nextID:  1,
	}
	s.Server = start(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requireAuth)

	r.Get("/JSSResource/jssuser", s.handleJSSUser)
	r.Route("/JSSResource/{resource}", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/id/{id}", s.handleFetchByID)
		r.Get("/name/{name}", s.handleFetchByName)
		r.Post("/id/{id}", s.handleCreate)
		r.Put("/id/{id}", s.handleUpdate)
		r.Delete("/id/{id}", s.handleDelete)
	})
	r.Get("/api/v1/object-history", s.handleHistoryList)
	r.Post("/api/v1/object-history", s.handleHistoryAdd)

	return r
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != Username || pass != Password {
			writeHTMLError(w, http.StatusUnauthorized, "The request requires user authentication")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Seed stores an object directly, bypassing the API, and returns its id.
// name is set on the object's identity fields.
func (s *Server) Seed(r *jss.Resource, name string, fields ldvalue.Value) int {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := s.allocateID()
	data := fields
	if data.Type() != ldvalue.ObjectType {
		data = ldvalue.ObjectBuild().Build()
	}
	data = setIdentity(r, data, "id", ldvalue.Int(id))
	data = setIdentity(r, data, "name", ldvalue.String(name))
	s.store(r)[id] = data
	return id
}

// HistoryEntries returns every history entry recorded so far.
func (s *Server) HistoryEntries() []jss.HistoryEntry {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]jss.HistoryEntry(nil), s.history...)
}

// Count returns the number of stored objects of a type.
func (s *Server) Count(r *jss.Resource) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.objects[r.Path])
}

func (s *Server) allocateID() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) store(r *jss.Resource) map[int]ldvalue.Value {
	m, ok := s.objects[r.Path]
	if !ok {
		m = make(map[int]ldvalue.Value)
		s.objects[r.Path] = m
	}
	return m
}

func (s *Server) resource(w http.ResponseWriter, req *http.Request) (*jss.Resource, bool) {
	path := chi.URLParam(req, "resource")
	if path == jss.Users.Path {
		return jss.Users, true
	}
	r, ok := jss.LookupResource(path)
	if !ok {
		writeHTMLError(w, http.StatusNotFound, "The server has not found anything matching the request URI")
	}
	return r, ok
}

func (s *Server) handleJSSUser(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"name":       Username,
			"version":    Version,
			"privileges": []string{"Read Computers", "Create Advanced User Searches"},
		},
	})
}

func (s *Server) handleList(w http.ResponseWriter, req *http.Request) {
	r, ok := s.resource(w, req)
	if !ok {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	ids := sortedIDs(s.objects[r.Path])
	list := ldvalue.ArrayBuild()
	for _, id := range ids {
		data := s.objects[r.Path][id]
		list.Add(ldvalue.ObjectBuild().
			Set("id", ldvalue.Int(id)).
			Set("name", identity(r, data).GetByKey("name")).
			Build())
	}
	writeJSON(w, http.StatusOK, ldvalue.ObjectBuild().Set(r.ListKey, list.Build()).Build())
}

func (s *Server) handleFetchByID(w http.ResponseWriter, req *http.Request) {
	r, ok := s.resource(w, req)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(req, "id"))
	if err != nil {
		writeHTMLError(w, http.StatusNotFound, "The server has not found anything matching the request URI")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	data, ok := s.objects[r.Path][id]
	if !ok {
		writeHTMLError(w, http.StatusNotFound, "The server has not found anything matching the request URI")
		return
	}
	s.writeObject(w, r, data)
}

func (s *Server) handleFetchByName(w http.ResponseWriter, req *http.Request) {
	r, ok := s.resource(w, req)
	if !ok {
		return
	}
	name := chi.URLParam(req, "name")
	if req.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	id, found := s.findByName(r, name)
	if !found {
		writeHTMLError(w, http.StatusNotFound, "The server has not found anything matching the request URI")
		return
	}
	s.writeObject(w, r, s.objects[r.Path][id])
}

// writeObject must be called with the lock held. Searches get their result rows
// filled in from the stored objects of the result type, ignoring criteria.
func (s *Server) writeObject(w http.ResponseWriter, r *jss.Resource, data ldvalue.Value) {
	if r.IsSearch() {
		rows := ldvalue.ArrayBuild()
		results := s.objects[r.ResultKind.Path]
		for _, id := range sortedIDs(results) {
			ident := identity(r.ResultKind, results[id])
			row := ldvalue.ObjectBuild()
			for _, f := range r.ResultIDFields {
				switch f {
				case "id":
					row.Set(f, ldvalue.Int(id))
				case "udid":
					udid := ident.GetByKey("udid")
					if udid.IsNull() {
						udid = ldvalue.String(fmt.Sprintf("00000000-0000-0000-0000-%012d", id))
					}
					row.Set(f, udid)
				default:
					row.Set(f, ident.GetByKey(f))
				}
			}
			rows.Add(row.Build())
		}
		data = withKey(data, r.ResultListKey, rows.Build())
	}
	writeJSON(w, http.StatusOK, ldvalue.ObjectBuild().Set(r.ObjectKey, data).Build())
}

func (s *Server) handleCreate(w http.ResponseWriter, req *http.Request) {
	r, ok := s.resource(w, req)
	if !ok {
		return
	}
	if chi.URLParam(req, "id") != "0" {
		writeHTMLError(w, http.StatusConflict, "Error: Unable to create object with a specific id")
		return
	}
	data, ok := readXMLBody(w, req, r)
	if !ok {
		return
	}
	name := identity(r, data).GetByKey("name").StringValue()
	if name == "" {
		writeHTMLError(w, http.StatusConflict, "Error: Problem with name")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, dup := s.findByName(r, name); dup {
		writeHTMLError(w, http.StatusConflict, "Error: Duplicate name")
		return
	}
	id := s.allocateID()
	s.store(r)[id] = setIdentity(r, data, "id", ldvalue.Int(id))
	writeWriteReply(w, r, id)
}

func (s *Server) handleUpdate(w http.ResponseWriter, req *http.Request) {
	r, ok := s.resource(w, req)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(req, "id"))
	if err != nil {
		writeHTMLError(w, http.StatusNotFound, "The server has not found anything matching the request URI")
		return
	}
	changes, ok := readXMLBody(w, req, r)
	if !ok {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	current, found := s.objects[r.Path][id]
	if !found {
		writeHTMLError(w, http.StatusNotFound, "The server has not found anything matching the request URI")
		return
	}
	newName := identity(r, changes).GetByKey("name").StringValue()
	if other, dup := s.findByName(r, newName); dup && other != id {
		writeHTMLError(w, http.StatusConflict, "Error: Duplicate name")
		return
	}

	for _, k := range changes.Keys() {
		v := changes.GetByKey(k)
		if k == r.GeneralSubset {
			merged := current.GetByKey(k)
			for _, sk := range v.Keys() {
				merged = withKey(merged, sk, v.GetByKey(sk))
			}
			v = merged
		}
		current = withKey(current, k, v)
	}
	s.objects[r.Path][id] = setIdentity(r, current, "id", ldvalue.Int(id))
	writeWriteReply(w, r, id)
}

func (s *Server) handleDelete(w http.ResponseWriter, req *http.Request) {
	r, ok := s.resource(w, req)
	if !ok {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(req, "id"))

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, found := s.objects[r.Path][id]; err != nil || !found {
		writeHTMLError(w, http.StatusNotFound, "The server has not found anything matching the request URI")
		return
	}
	delete(s.objects[r.Path], id)
	writeWriteReply(w, r, id)
}

func (s *Server) handleHistoryList(w http.ResponseWriter, req *http.Request) {
	objectType, _ := strconv.Atoi(req.URL.Query().Get("objectType"))
	objectID, _ := strconv.Atoi(req.URL.Query().Get("objectId"))

	s.lock.Lock()
	defer s.lock.Unlock()

	results := make([]jss.HistoryEntry, 0)
	for _, e := range s.history {
		if e.ObjectType == objectType && e.ObjectID == objectID {
			results = append(results, e)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalCount": len(results),
		"results":    results,
	})
}

func (s *Server) handleHistoryAdd(w http.ResponseWriter, req *http.Request) {
	var entry jss.HistoryEntry
	if err := json.NewDecoder(req.Body).Decode(&entry); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"httpStatus": 400, "message": err.Error()})
		return
	}
	if entry.ObjectType <= 0 || entry.ObjectID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"httpStatus": 400, "message": "objectType and objectId are required"})
		return
	}
	entry.Date = time.Now().UTC().Truncate(time.Second)

	s.lock.Lock()
	s.history = append(s.history, entry)
	s.lock.Unlock()

	w.WriteHeader(http.StatusCreated)
}

// findByName must be called with the lock held.
func (s *Server) findByName(r *jss.Resource, name string) (int, bool) {
	for id, data := range s.objects[r.Path] {
		if identity(r, data).GetByKey("name").StringValue() == name {
			return id, true
		}
	}
	return 0, false
}

func readXMLBody(w http.ResponseWriter, req *http.Request, r *jss.Resource) (ldvalue.Value, bool) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		writeHTMLError(w, http.StatusBadRequest, "Bad Request")
		return ldvalue.Null(), false
	}
	root, data, err := jss.DecodeXML(body, r.ArrayElements)
	if err != nil || root != r.ObjectKey {
		writeHTMLError(w, http.StatusBadRequest, "Bad Request")
		return ldvalue.Null(), false
	}
	return data, true
}

func writeWriteReply(w http.ResponseWriter, r *jss.Resource, id int) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusCreated)
	_, _ = fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><%s><id>%d</id></%s>`, r.ObjectKey, id, r.ObjectKey)
}

func writeHTMLError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html;charset=UTF-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, "<html><head><title>Status page</title></head><body><h1>%s</h1><p>%s</p></body></html>",
		http.StatusText(status), message)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sortedIDs(m map[int]ldvalue.Value) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func identity(r *jss.Resource, data ldvalue.Value) ldvalue.Value {
	if r.GeneralSubset != "" {
		return data.GetByKey(r.GeneralSubset)
	}
	return data
}

func setIdentity(r *jss.Resource, data ldvalue.Value, key string, value ldvalue.Value) ldvalue.Value {
	if r.GeneralSubset != "" {
		return withKey(data, r.GeneralSubset, withKey(data.GetByKey(r.GeneralSubset), key, value))
	}
	return withKey(data, key, value)
}

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
