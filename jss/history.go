package jss

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jsskit/jss-contract-tests/jss/internal/api"
)

const defaultHistoryPath = "/api/v1/object-history"

// HistoryEntry is one audit record the JSS keeps for an object.
type HistoryEntry struct {
	ObjectType int       `json:"objectType"`
	ObjectID   int       `json:"objectId"`
	Username   string    `json:"username"`
	Notes      string    `json:"notes,omitempty"`
	Details    string    `json:"details,omitempty"`
	Date       time.Time `json:"date,omitzero"`
}

type historyPage struct {
	TotalCount int            `json:"totalCount"`
	Results    []HistoryEntry `json:"results"`
}

type historyConfig struct {
	path     string
	username string
	disabled bool
}

// History returns the history entries recorded for an object, oldest first.
func (s *ObjectService) History(ctx context.Context, id int, opts ...RequestOption) ([]HistoryEntry, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var page historyPage
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method: http.MethodGet,
		Path:   s.history.path,
		Query: url.Values{
			"objectType": {strconv.Itoa(s.resource.HistoryObjectType)},
			"objectId":   {strconv.Itoa(id)},
		},
		Headers: reqCfg.headers,
	}, &page)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseError(resp.StatusCode, resp.Body, resp.Headers)
	}

	if page.Results == nil {
		page.Results = []HistoryEntry{}
	}
	return page.Results, nil
}

// AddHistoryEntry records an entry for an object. ObjectType and ObjectID are
// filled in from the service and id; Username defaults to the configured history user.
func (s *ObjectService) AddHistoryEntry(ctx context.Context, id int, entry HistoryEntry, opts ...RequestOption) error {
	if err := validateID(id); err != nil {
		return err
	}
	if entry.Notes == "" && entry.Details == "" {
		return localValidationError("notes", "history entry needs notes or details")
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	entry.ObjectType = s.resource.HistoryObjectType
	entry.ObjectID = id
	if entry.Username == "" {
		entry.Username = s.history.username
	}

	req, err := api.JSONRequest(http.MethodPost, s.history.path, entry)
	if err != nil {
		return err
	}
	req.Headers = reqCfg.headers

	resp, err := s.transport.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp.StatusCode, resp.Body, resp.Headers)
	}
	return nil
}

// recordHistory writes the automatic entry that follows a successful write.
func (s *ObjectService) recordHistory(ctx context.Context, id int, action string) error {
	if s.history.disabled {
		return nil
	}
	err := s.AddHistoryEntry(ctx, id, HistoryEntry{
		Notes: fmt.Sprintf("%s %s via API", s.resource.Kind, action),
	})
	if err != nil {
		return &HistoryError{ObjectType: s.resource.HistoryObjectType, ObjectID: id, Err: err}
	}
	return nil
}
