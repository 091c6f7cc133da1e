package persistence

import "strings"

// sortWhitelist maps user-facing sort keys to ORDER BY expressions. Only
// keys present in columns reach SQL.
type sortWhitelist struct {
	columns  map[string]string
	fallback string
	// tiebreak is appended to every clause so paging is stable
	tiebreak []string
}

// eventSorts backs GET /api/events?sortBy=&sortOrder=
var eventSorts = sortWhitelist{
	columns: map[string]string{
		"date":       "events.date",
		"price":      "events.price",
		"popularity": "ticket_count",
	},
	fallback: "date",
	tiebreak: []string{"events.date ASC", "events.id ASC"},
}

// sortDirection accepts asc in any case; everything else sorts descending
func sortDirection(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

func (w sortWhitelist) clause(key, dir string) string {
	column, ok := w.columns[strings.TrimSpace(key)]
	if !ok {
		column = w.columns[w.fallback]
	}
	parts := []string{column + " " + sortDirection(dir)}
	for _, t := range w.tiebreak {
		if !strings.HasPrefix(t, column+" ") {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ", ")
}

func eventOrderClause(sortBy, sortOrder string) string {
	return eventSorts.clause(sortBy, sortOrder)
}
