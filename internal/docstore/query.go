package docstore

import (
	"encoding/json/v2"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Query clause methods. The wire syntax is the string form the metrics
// client emits: equal("attr", [values]), orderDesc("attr"),
// orderAsc("attr"), limit(n).
const (
	methodEqual     = "equal"
	methodOrderDesc = "orderDesc"
	methodOrderAsc  = "orderAsc"
	methodLimit     = "limit"
)

// Query is one parsed clause.
type Query struct {
	Method    string
	Attribute string
	Values    []any
	Limit     int
}

// ParseQuery parses a single clause.
func ParseQuery(raw string) (Query, error) {
	open := strings.Index(raw, "(")
	if open <= 0 || !strings.HasSuffix(raw, ")") {
		return Query{}, fmt.Errorf("malformed query clause: %q", raw)
	}
	method := raw[:open]
	args := strings.TrimSpace(raw[open+1 : len(raw)-1])

	switch method {
	case methodLimit:
		n, err := strconv.Atoi(args)
		if err != nil || n < 0 {
			return Query{}, fmt.Errorf("invalid limit clause: %q", raw)
		}
		return Query{Method: methodLimit, Limit: n}, nil

	case methodOrderDesc, methodOrderAsc:
		attr, err := strconv.Unquote(args)
		if err != nil {
			return Query{}, fmt.Errorf("invalid order clause: %q", raw)
		}
		return Query{Method: method, Attribute: attr}, nil

	case methodEqual:
		comma := strings.Index(args, ",")
		if comma < 0 {
			return Query{}, fmt.Errorf("invalid equal clause: %q", raw)
		}
		attr, err := strconv.Unquote(strings.TrimSpace(args[:comma]))
		if err != nil {
			return Query{}, fmt.Errorf("invalid equal attribute: %q", raw)
		}
		var values []any
		if err := json.Unmarshal([]byte(strings.TrimSpace(args[comma+1:])), &values); err != nil {
			return Query{}, fmt.Errorf("invalid equal values: %q", raw)
		}
		return Query{Method: methodEqual, Attribute: attr, Values: values}, nil

	default:
		return Query{}, fmt.Errorf("unsupported query method: %q", method)
	}
}

// ParseQueries parses every clause, failing on the first malformed one.
func ParseQueries(raw []string) ([]Query, error) {
	queries := make([]Query, 0, len(raw))
	for _, r := range raw {
		q, err := ParseQuery(r)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}

func applyFilters(docs []Document, queries []Query) []Document {
	filtered := docs
	for _, q := range queries {
		if q.Method != methodEqual {
			continue
		}
		kept := filtered[:0:0]
		for _, doc := range filtered {
			if equalsAny(doc[q.Attribute], q.Values) {
				kept = append(kept, doc)
			}
		}
		filtered = kept
	}
	return filtered
}

func applyOrder(docs []Document, queries []Query) {
	for _, q := range queries {
		if q.Method != methodOrderDesc && q.Method != methodOrderAsc {
			continue
		}
		attr, desc := q.Attribute, q.Method == methodOrderDesc
		sort.SliceStable(docs, func(i, j int) bool {
			less := lessValue(docs[i][attr], docs[j][attr])
			if desc {
				return lessValue(docs[j][attr], docs[i][attr])
			}
			return less
		})
		return // single-field ordering; first order clause wins
	}
}

// equalsAny matches exactly: case-sensitive strings, no numeric coercion
// beyond JSON's single number type.
func equalsAny(value any, candidates []any) bool {
	for _, c := range candidates {
		if equalValue(value, c) {
			return true
		}
	}
	return false
}

func equalValue(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av < bv
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	default:
		return false
	}
}
