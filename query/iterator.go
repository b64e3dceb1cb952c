package query

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/foliotext/tripleindex/algebra"
	"github.com/foliotext/tripleindex/index"
	"github.com/foliotext/tripleindex/triple"
)

// maxHitsPerSpec caps how many hits a single QuerySpec's search can
// contribute to the odometer. Cross-query optimisation (e.g.
// streaming hits lazily instead of materialising a bounded page up
// front) is an explicit Non-goal, so one fixed-size page per spec is
// fetched eagerly rather than re-queried per permutation.
const maxHitsPerSpec = 1000

// Iterator is the cooperative, single-threaded, lazily-pulled
// iterator (component E.2) that drives the hit odometer across every
// recognised QuerySpec, evaluates the residual query once per
// surviving permutation, and extends each resulting row with the
// permutation's match/score/snippet bindings. Ported from
// LuceneQueryIterator.java.
type Iterator struct {
	ctx             context.Context
	triples         triple.Store
	specs           []*QuerySpec
	residual        algebra.TupleExpr
	base            triple.BindingSet
	includeInferred bool
	log             *logrus.Entry

	hits [][]index.Hit
	od   *odometer

	pending []triple.BindingSet
	pendIdx int
	cur     triple.BindingSet
	err     error
	done    bool
}

// New builds an Iterator. store is used to run each spec's search;
// triples evaluates the residual query once per surviving permutation.
func New(ctx context.Context, store *index.Store, triples triple.Store, specs []*QuerySpec, residual algebra.TupleExpr, base triple.BindingSet, includeInferred bool, log *logrus.Entry) (*Iterator, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	hits := make([][]index.Hit, len(specs))
	sizes := make([]int, len(specs))
	for i, spec := range specs {
		q, err := store.ParseQuery(spec.QueryString, fieldFor(spec))
		if err != nil {
			return nil, xerrors.Errorf("parsing query for %s: %w", spec.MatchesVariable, err)
		}
		highlightField := index.FieldText
		if spec.PropertyURI != "" {
			highlightField = spec.PropertyURI
		}
		if spec.SnippetVariable == "" {
			highlightField = ""
		}
		h, err := store.Search(q, 0, maxHitsPerSpec, highlightField)
		if err != nil {
			return nil, xerrors.Errorf("searching for %s: %w", spec.MatchesVariable, err)
		}
		hits[i] = h
		sizes[i] = len(h)
	}

	return &Iterator{
		ctx:             ctx,
		triples:         triples,
		specs:           specs,
		residual:        residual,
		base:            base,
		includeInferred: includeInferred,
		log:             log,
		hits:            hits,
		od:              newOdometer(sizes),
	}, nil
}

func fieldFor(spec *QuerySpec) string { return spec.PropertyURI }

// Next advances to the next binding row, returning false once every
// permutation of every spec's hits has been exhausted.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	for {
		if it.pendIdx+1 < len(it.pending) {
			it.pendIdx++
			it.cur = it.pending[it.pendIdx]
			return true
		}
		if !it.od.Next() {
			it.done = true
			return false
		}

		bindings, ok := it.bindingsForCurrentPermutation()
		if !ok {
			// Conflicting match-variable bindings across specs for
			// this permutation; skip it and try the next one.
			continue
		}

		rows, err := it.evaluateResidual(bindings)
		if err != nil {
			// A per-hit retrieval failure is logged and the iterator
			// advances past it rather than failing the whole query.
			it.log.WithError(err).Warn("evaluating residual query for permutation failed, skipping")
			continue
		}
		if len(rows) == 0 {
			continue
		}
		it.pending = rows
		it.pendIdx = 0
		it.cur = it.pending[0]
		return true
	}
}

// bindingsForCurrentPermutation combines, for every spec, the
// match/score/snippet bindings of its hit at the odometer's current
// position. Two specs that bind the same match variable to different
// resources in this permutation make it invalid; ok is false in that
// case.
func (it *Iterator) bindingsForCurrentPermutation() (triple.BindingSet, bool) {
	bindings := it.base
	boundMatches := make(map[string]triple.Resource)

	for i, spec := range it.specs {
		hit := it.hits[i][it.od.Index(i)]
		subject := index.ResourceOf(hit.SubjectTag)

		if existing, seen := boundMatches[spec.MatchesVariable]; seen {
			if existing != subject {
				return nil, false
			}
		} else {
			boundMatches[spec.MatchesVariable] = subject
		}

		bindings = bindings.With(spec.MatchesVariable, triple.ResourceTerm(subject))
		if spec.ScoreVariable != "" && hit.Score > 0 {
			bindings = bindings.With(spec.ScoreVariable, triple.Literal(formatScore(hit.Score)))
		}
		if spec.SnippetVariable != "" {
			bindings = bindings.With(spec.SnippetVariable, triple.Literal(hit.Snippet))
		}
	}
	return bindings, true
}

func (it *Iterator) evaluateResidual(bindings triple.BindingSet) ([]triple.BindingSet, error) {
	rowIter, err := it.triples.Evaluate(it.ctx, it.residual, bindings, it.includeInferred)
	if err != nil {
		return nil, xerrors.Errorf("evaluate residual query: %w: %w", err, index.ErrStore)
	}
	defer rowIter.Close()

	var rows []triple.BindingSet
	for rowIter.Next() {
		rows = append(rows, rowIter.Binding())
	}
	if err := rowIter.Error(); err != nil {
		return nil, xerrors.Errorf("iterate residual query results: %w: %w", err, index.ErrStore)
	}
	return rows, nil
}

// Binding returns the current row. Valid only after Next returned
// true.
func (it *Iterator) Binding() triple.BindingSet { return it.cur }

// Error returns the first unrecoverable error Next encountered, if
// any Next call ever returns false because of one. Per-permutation
// evaluation failures are logged and skipped, not surfaced here.
func (it *Iterator) Error() error { return it.err }

// Close releases no resources of its own (hits were fetched eagerly
// up front) but is provided for symmetry with triple.BindingIterator.
func (it *Iterator) Close() error { return nil }

func formatScore(score float64) string {
	return floatToString(score)
}
