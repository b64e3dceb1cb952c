package index

import (
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"golang.org/x/xerrors"
)

// bracketRange matches the single-clause synthetic range grammar the
// Query Interpreter emits for a from/to pair: "[lowerBound TO
// upperBound]". This grammar is never typed by an end user — the
// Query Interpreter builds it itself from a reserved from/to pattern
// pair — so it is parsed directly rather than routed through bleve's
// own query-string mini-language, which has no such bracket syntax.
var bracketRange = regexp.MustCompile(`^\[([^\]]*) TO ([^\]]*)\]$`)

// ParseQuery builds a bleve query from the given query string and
// optional default-field restriction (the spec's "property" pattern).
// An empty field searches the aggregated FieldText field using bleve's
// own query-string syntax; a non-empty field restricts the search to
// that one predicate field.
func (s *Store) ParseQuery(queryString, field string) (query.Query, error) {
	if queryString == "" {
		return nil, xerrors.Errorf("empty query string: %w", ErrInvalidQuery)
	}

	if clauses := splitConjoinedRanges(queryString); len(clauses) > 0 {
		return buildRangeConjunction(clauses, field)
	}

	if field != "" {
		mq := bleve.NewMatchQuery(queryString)
		mq.SetField(field)
		return mq, nil
	}
	return bleve.NewQueryStringQuery(queryString), nil
}

// splitConjoinedRanges recognises either one bracket-range clause
// (plain from/to queries) or two, space-separated (the geo bounding
// box the Query Interpreter builds from lat/long/tolerance). Any other
// shape returns nil so the caller falls through to the general query
// string path.
func splitConjoinedRanges(queryString string) []string {
	parts := strings.Split(queryString, " ")
	var clauses []string
	var cur strings.Builder
	for _, p := range parts {
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(p)
		if strings.HasSuffix(p, "]") {
			clauses = append(clauses, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		return nil // trailing, unterminated clause: not our grammar
	}
	for _, c := range clauses {
		if !bracketRange.MatchString(c) {
			return nil
		}
	}
	if len(clauses) == 0 {
		return nil
	}
	return clauses
}

// buildRangeConjunction builds one term-range query per clause. A
// single clause is a plain from/to pattern; two clauses are the
// conjoined geo bounding box (latitude range AND longitude range). Both
// clauses search the same caller-supplied field: the surrounding
// property pattern is expected to name a single numeric-lexical field
// that carries the coordinate pair's component being queried (this
// module does not model a separate per-axis field, per the Non-goal
// on datatype-aware indexing — geo support here is a textual bounding
// box over whatever field the query names, not true geospatial
// indexing).
func buildRangeConjunction(clauses []string, field string) (query.Query, error) {
	queries := make([]query.Query, 0, len(clauses))
	for _, clause := range clauses {
		m := bracketRange.FindStringSubmatch(clause)
		if m == nil {
			return nil, xerrors.Errorf("malformed range clause %q: %w", clause, ErrInvalidQuery)
		}
		lo, hi := m[1], m[2]
		incLow, incHigh := true, true
		rq := query.NewTermRangeInclusiveQuery(lo, hi, &incLow, &incHigh)
		if field != "" {
			rq.SetField(field)
		}
		queries = append(queries, rq)
	}
	if len(queries) == 1 {
		return queries[0], nil
	}
	return bleve.NewConjunctionQuery(queries...), nil
}
