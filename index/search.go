package index

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"
	"golang.org/x/xerrors"
)

// Hit is one search result: the matched subject's encoded resource
// tag (see triple.Resource.Tag / triple.ParseTag), its relevance
// score, and an optional highlighted snippet drawn from the field
// that matched.
type Hit struct {
	SubjectTag string
	Score      float64
	Snippet    string
}

// Search runs q against the index and returns up to size hits starting
// at offset from, highlighted against highlightField when non-empty.
func (s *Store) Search(q query.Query, from, size int, highlightField string) ([]Hit, error) {
	req := bleve.NewSearchRequest(q)
	req.From = from
	req.Size = size
	if highlightField != "" {
		req.Highlight = bleve.NewHighlightWithStyle("html")
		req.Highlight.Fields = []string{highlightField}
	}
	res, err := s.idx.Search(req)
	if err != nil {
		return nil, xerrors.Errorf("searching index: %w: %w", err, ErrIndexIO)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{
			SubjectTag: h.ID,
			Score:      h.Score,
			Snippet:    snippetFrom(h, highlightField),
		})
	}
	return hits, nil
}

// SearchWithin runs q restricted to a single subject, used when the
// Query Interpreter already knows which subject a bound "matches"
// variable refers to. It reports index.ErrCorruptState if more than
// one document somehow matches the same subject id.
func (s *Store) SearchWithin(subjectIDTag string, q query.Query, highlightField string) (*Hit, error) {
	scoped := bleve.NewConjunctionQuery(newDocIDQuery(subjectIDTag), q)
	hits, err := s.Search(scoped, 0, 2, highlightField)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	if len(hits) > 1 {
		return nil, xerrors.Errorf("more than one hit for subject %s: %w", subjectIDTag, ErrCorruptState)
	}
	return &hits[0], nil
}

func newDocIDQuery(id string) query.Query {
	return query.NewDocIDQuery([]string{id})
}

// snippetFrom joins up to two highlighted fragments with " ... ",
// ported from the original highlighter's 2-fragment cap.
func snippetFrom(hit *search.DocumentMatch, field string) string {
	if field == "" {
		return ""
	}
	frags := hit.Fragments[field]
	if len(frags) == 0 {
		return ""
	}
	if len(frags) > 2 {
		frags = frags[:2]
	}
	out := frags[0]
	for _, f := range frags[1:] {
		out += " ... " + f
	}
	return out
}
