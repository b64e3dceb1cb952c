package triple

import "context"

// BindingSet maps a query variable name to the term it is bound to. A
// zero-value BindingSet (nil map) is a valid, empty binding set.
type BindingSet map[string]Term

// With returns a copy of bs extended with name bound to term. The
// receiver is left unmodified, since the Query Iterator fans one base
// binding set out across many candidate permutations.
func (bs BindingSet) With(name string, term Term) BindingSet {
	out := make(BindingSet, len(bs)+1)
	for k, v := range bs {
		out[k] = v
	}
	out[name] = term
	return out
}

// Get returns the term bound to name, if any.
func (bs BindingSet) Get(name string) (Term, bool) {
	t, ok := bs[name]
	return t, ok
}

// FactIterator walks a sequence of facts matching a Statements() call.
// Callers must call Close exactly once, whether or not Next ever
// returned true, and must check Error after Next returns false.
type FactIterator interface {
	Next() bool
	Fact() Fact
	Error() error
	Close() error
}

// BindingIterator walks a sequence of binding sets produced by
// Evaluate(). Same Next/Error/Close discipline as FactIterator.
type BindingIterator interface {
	Next() bool
	Binding() BindingSet
	Error() error
	Close() error
}

// Store is the §6.1 contract the full-text index augmentation needs
// from its surrounding triple store. The store's own storage engine,
// its transaction/connection object, and parsing query text into the
// algebra passed to Evaluate are all out of scope here: this interface
// describes only the boundary, not an implementation.
type Store interface {
	// Statements returns every fact matching the given, possibly nil,
	// filters. A nil subject/predicate/object acts as a wildcard for
	// that position. includeInferred additionally asks for facts
	// derived rather than explicitly asserted, where the store
	// supports that distinction.
	Statements(ctx context.Context, subject *Resource, predicate *string, object *Term, includeInferred bool) (FactIterator, error)

	// Evaluate runs a residual algebra expression (with every
	// reserved textual sub-pattern already replaced by a tautology)
	// against the store, seeded with bindings, and returns one row
	// per matching solution.
	Evaluate(ctx context.Context, residual interface{}, bindings BindingSet, includeInferred bool) (BindingIterator, error)
}
