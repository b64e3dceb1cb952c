package query

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/foliotext/tripleindex/algebra"
	"github.com/foliotext/tripleindex/index"
	"github.com/foliotext/tripleindex/triple"
)

// Options configures a single Evaluate call.
type Options struct {
	IncludeInferred     bool
	IncompleteQueryFail bool
	Log                 *logrus.Entry
}

// Evaluate is the Query Interpreter's single entry point: it recognises
// every reserved full-text pattern group in expr, rewrites expr into
// the residual query the surrounding triple store actually evaluates,
// drives the hit odometer across every group's search results, and
// re-applies whatever Projection/Slice/Distinct/Reduced/Order nodes
// wrapped the original expr around the resulting stream.
//
// base seeds every produced binding set (normally empty); it lets a
// caller pin variables from an outer scope before evaluation.
func Evaluate(ctx context.Context, store *index.Store, triples triple.Store, expr algebra.TupleExpr, base triple.BindingSet, opts Options) (triple.BindingIterator, error) {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	core, rewrap := Unwrap(expr)

	specs, err := Build(core, opts.IncompleteQueryFail, log)
	if err != nil {
		return nil, err
	}

	residual := Residual(core, specs)

	it, err := New(ctx, store, triples, specs, residual, base, opts.IncludeInferred, log)
	if err != nil {
		return nil, err
	}

	return rewrap(it), nil
}
