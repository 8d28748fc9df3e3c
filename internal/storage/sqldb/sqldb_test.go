package sqldb

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name     string
		numbered bool
		query    string
		expected string
	}{
		{
			name:     "question marks kept",
			query:    "SELECT id FROM students WHERE id = ? AND classroom = ?",
			expected: "SELECT id FROM students WHERE id = ? AND classroom = ?",
		},
		{
			name:     "numbered placeholders",
			numbered: true,
			query:    "SELECT id FROM students WHERE id = ? AND classroom = ?",
			expected: "SELECT id FROM students WHERE id = $1 AND classroom = $2",
		},
		{
			name:     "no placeholders",
			numbered: true,
			query:    "SELECT COUNT(*) FROM students",
			expected: "SELECT COUNT(*) FROM students",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			d := Dialect{NumberedPlaceholders: tt.numbered}
			c.Assert(d.Rebind(tt.query), qt.Equals, tt.expected)
		})
	}
}

func TestContainsFold(t *testing.T) {
	c := qt.New(t)

	c.Assert(Dialect{}.ContainsFold("name"), qt.Equals, `LOWER(name) LIKE ? ESCAPE '\'`)
	c.Assert(Dialect{Lower: "unicode_lower"}.ContainsFold("full_name"), qt.Equals, `unicode_lower(full_name) LIKE ? ESCAPE '\'`)

	pg := Dialect{NumberedPlaceholders: true}
	c.Assert(pg.Rebind(pg.ContainsFold("name")), qt.Equals, `LOWER(name) LIKE $1 ESCAPE '\'`)
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Silva", want: "%silva%"},
		{in: "ÂNGELA", want: "%ângela%"},
		{in: "100%", want: `%100\%%`},
		{in: "a_b", want: `%a\_b%`},
		{in: `c:\x`, want: `%c:\\x%`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			qt.New(t).Assert(containsPattern(tt.in), qt.Equals, tt.want)
		})
	}
}

func TestTimestamp(t *testing.T) {
	c := qt.New(t)

	fixed := time.Date(2025, 3, 10, 12, 0, 0, 123456789, time.FixedZone("BRT", -3*60*60))
	s := &Store{now: func() time.Time { return fixed }}

	c.Assert(s.timestamp(time.Time{}), qt.Equals, time.Date(2025, 3, 10, 15, 0, 0, 123456000, time.UTC))

	given := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c.Assert(s.timestamp(given), qt.Equals, given)
}
