package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortDirection(t *testing.T) {
	for in, want := range map[string]string{
		"":                         "DESC",
		"asc":                      "ASC",
		"  Asc ":                   "ASC",
		"desc":                     "DESC",
		"sideways":                 "DESC",
		"ASC; DROP TABLE users;--": "DESC",
	} {
		assert.Equal(t, want, sortDirection(in), "input %q", in)
	}
}

func TestEventOrderClause(t *testing.T) {
	tests := []struct {
		sortBy, order, want string
	}{
		{"date", "asc", "events.date ASC, events.id ASC"},
		{"date", "", "events.date DESC, events.id ASC"},
		{"price", "desc", "events.price DESC, events.date ASC, events.id ASC"},
		{" popularity ", "desc", "ticket_count DESC, events.date ASC, events.id ASC"},
		{"", "asc", "events.date ASC, events.id ASC"},
		{"PRICE", "asc", "events.date ASC, events.id ASC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, eventOrderClause(tt.sortBy, tt.order), "sortBy=%q order=%q", tt.sortBy, tt.order)
	}
}

func TestEventOrderClause_RejectsInjection(t *testing.T) {
	payloads := []string{
		"date; DROP TABLE events;--",
		"price' OR '1'='1",
		"date UNION SELECT * FROM users",
		"date, (SELECT password FROM users)",
		"CASE WHEN 1=1 THEN price ELSE date END",
		"date/**/;DROP TABLE events",
		"date\n; DROP TABLE events",
	}
	for _, p := range payloads {
		assert.Equal(t, "events.date DESC, events.id ASC", eventOrderClause(p, p), "payload %q", p)
	}
}
