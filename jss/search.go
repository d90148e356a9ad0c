package jss

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Export formats accepted by ExportResults.
const (
	ExportCSV = "csv"
	ExportTab = "tab"
)

// SearchResult is one row of an advanced search's results.
type SearchResult struct {
	ID   int
	Name string

	// Fields holds every column of the row, including the id fields.
	Fields ldvalue.Value
}

// SearchResults runs an advanced search on the server and returns its rows. The
// JSS evaluates the search each time it is fetched.
func (s *ObjectService) SearchResults(ctx context.Context, id int, opts ...RequestOption) ([]SearchResult, error) {
	if !s.resource.IsSearch() {
		return nil, localValidationError("", "%s is not an advanced search", s.resource.Kind)
	}

	search, err := s.Fetch(ctx, id, opts...)
	if err != nil {
		return nil, err
	}
	return s.resultsOf(search)
}

func (s *ObjectService) resultsOf(search *Object) ([]SearchResult, error) {
	rows := search.Get(s.resource.ResultListKey)
	results := make([]SearchResult, 0, rows.Count())
	if rows.IsNull() {
		return results, nil
	}
	if rows.Type() != ldvalue.ArrayType {
		return nil, &InvalidDataError{ResourceType: s.resource.Kind, Message: s.resource.ResultListKey + " is not a list"}
	}

	for i := 0; i < rows.Count(); i++ {
		row := rows.GetByIndex(i)
		for _, f := range s.resource.ResultIDFields {
			if row.GetByKey(f).IsNull() {
				return nil, &InvalidDataError{
					ResourceType: s.resource.Kind,
					Message:      fmt.Sprintf("result %d has no %s", i, f),
				}
			}
		}
		results = append(results, SearchResult{
			ID:     intValue(row.GetByKey("id")),
			Name:   row.GetByKey("name").StringValue(),
			Fields: row,
		})
	}
	return results, nil
}

// DisplayFieldNames returns the column names a search is configured to show.
func DisplayFieldNames(search *Object) []string {
	fields := search.Get("display_fields")
	names := make([]string, 0, fields.Count())
	for i := 0; i < fields.Count(); i++ {
		if name := fields.GetByIndex(i).GetByKey("name").StringValue(); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ExportResults writes search results as a table. The header is the resource's
// result id fields followed by columns; format is ExportCSV or ExportTab.
func ExportResults(w io.Writer, r *Resource, results []SearchResult, columns []string, format string) error {
	cw := csv.NewWriter(w)
	switch format {
	case ExportCSV:
	case ExportTab:
		cw.Comma = '\t'
	default:
		return localValidationError("format", "unknown export format %q", format)
	}

	header := append(append([]string{}, r.ResultIDFields...), columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}
	for _, res := range results {
		record := make([]string, len(header))
		for i, col := range header {
			record[i] = cellText(res.Fields.GetByKey(exportKey(col)))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing export row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportKey maps a display field name such as "Computer Name" to the JSON key
// the API uses for it in result rows ("Computer_Name").
func exportKey(column string) string {
	out := []rune(column)
	for i, c := range out {
		if c == ' ' {
			out[i] = '_'
		}
	}
	return string(out)
}

func cellText(v ldvalue.Value) string {
	switch v.Type() {
	case ldvalue.NullType:
		return ""
	case ldvalue.ObjectType, ldvalue.ArrayType:
		return v.JSONString()
	default:
		return scalarText(v)
	}
}
