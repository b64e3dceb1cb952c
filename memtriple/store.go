// Package memtriple is a small in-memory implementation of
// triple.Store, used to exercise the Synchroniser and Query
// Interpreter in tests and in the cmd/ftsindexd demo without requiring
// a real triple store. It fills the same role the teacher's own
// linkgraph/store/memory package plays for linkgraph.Graph.
package memtriple

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/foliotext/tripleindex/triple"
)

// Store is a goroutine-safe, in-memory triple.Store.
type Store struct {
	mu    sync.RWMutex
	facts []triple.Fact
}

// New returns an empty Store.
func New() *Store { return &Store{} }

var _ triple.Store = (*Store)(nil)

// Insert asserts f. If f.Subject is the zero Resource, a fresh blank
// node label is generated for it.
func (s *Store) Insert(f triple.Fact) triple.Fact {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Subject.IsZero() {
		f.Subject = triple.BlankNode(uuid.NewString())
	}
	if f.Context.IsZero() {
		f.Context = triple.NullContext
	}
	s.facts = append(s.facts, f)
	return f
}

// Remove retracts every fact equal to f.
func (s *Store) Remove(f triple.Fact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.facts[:0]
	for _, existing := range s.facts {
		if existing.Key() != f.Key() {
			out = append(out, existing)
		}
	}
	s.facts = out
}

// ClearContext retracts every fact asserted in any of the given
// contexts.
func (s *Store) ClearContext(contexts []triple.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cleared := make(map[string]bool, len(contexts))
	for _, c := range contexts {
		cleared[c.Tag()] = true
	}
	out := s.facts[:0]
	for _, f := range s.facts {
		if !cleared[f.Context.Tag()] {
			out = append(out, f)
		}
	}
	s.facts = out
}

// ClearAll retracts every fact.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts = nil
}

// Statements implements triple.Store.
func (s *Store) Statements(_ context.Context, subject *triple.Resource, predicate *string, object *triple.Term, _ bool) (triple.FactIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]triple.Fact, 0)
	for _, f := range s.facts {
		if subject != nil && f.Subject != *subject {
			continue
		}
		if predicate != nil && f.Predicate != *predicate {
			continue
		}
		if object != nil && f.Object != *object {
			continue
		}
		matches = append(matches, f)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Predicate < matches[j].Predicate })
	return &factIterator{facts: matches, idx: -1}, nil
}

// Evaluate implements triple.Store. memtriple only supports residual
// queries built from algebra.SingletonSet/StatementPattern/Join trees,
// enough to exercise the Query Interpreter end to end; it is not a
// general SPARQL-algebra evaluator.
func (s *Store) Evaluate(ctx context.Context, residual interface{}, bindings triple.BindingSet, includeInferred bool) (triple.BindingIterator, error) {
	rows, err := s.eval(ctx, residual, bindings, includeInferred)
	if err != nil {
		return nil, err
	}
	return &bindingIterator{rows: rows, idx: -1}, nil
}

type factIterator struct {
	facts []triple.Fact
	idx   int
}

func (it *factIterator) Next() bool {
	it.idx++
	return it.idx < len(it.facts)
}
func (it *factIterator) Fact() triple.Fact { return it.facts[it.idx] }
func (it *factIterator) Error() error      { return nil }
func (it *factIterator) Close() error      { return nil }

type bindingIterator struct {
	rows []triple.BindingSet
	idx  int
}

func (it *bindingIterator) Next() bool {
	it.idx++
	return it.idx < len(it.rows)
}
func (it *bindingIterator) Binding() triple.BindingSet { return it.rows[it.idx] }
func (it *bindingIterator) Error() error               { return nil }
func (it *bindingIterator) Close() error               { return nil }

var errUnsupportedResidual = xerrors.New("memtriple: unsupported residual query shape")
