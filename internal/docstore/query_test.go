package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Query
	}{
		{
			name: "equal string",
			raw:  `equal("search_term", ["dune"])`,
			want: Query{Method: methodEqual, Attribute: "search_term", Values: []any{"dune"}},
		},
		{
			name: "equal number",
			raw:  `equal("movie_id", [438631])`,
			want: Query{Method: methodEqual, Attribute: "movie_id", Values: []any{float64(438631)}},
		},
		{
			name: "order desc",
			raw:  `orderDesc("search_word_count")`,
			want: Query{Method: methodOrderDesc, Attribute: "search_word_count"},
		},
		{
			name: "order asc",
			raw:  `orderAsc("movie_title")`,
			want: Query{Method: methodOrderAsc, Attribute: "movie_title"},
		},
		{
			name: "limit",
			raw:  "limit(100)",
			want: Query{Method: methodLimit, Limit: 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuery(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQuery_Malformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"equal",
		"equal(search_term)",
		`between("a", [1, 2])`,
		"limit(-1)",
		"limit(ten)",
		`orderDesc(unquoted)`,
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseQuery(raw)
			assert.Error(t, err)
		})
	}
}

func TestParseQueries_FailsOnFirstBadClause(t *testing.T) {
	_, err := ParseQueries([]string{"limit(1)", "nonsense"})
	assert.Error(t, err)
}
