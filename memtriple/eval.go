package memtriple

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/foliotext/tripleindex/algebra"
	"github.com/foliotext/tripleindex/triple"
)

// eval evaluates the small subset of algebra this fixture supports:
// SingletonSet, StatementPattern, and Join thereof. That is exactly
// the shape the Query Interpreter's residual query ever takes once
// every reserved textual sub-pattern has been collapsed to a
// SingletonSet, which is all this in-memory fixture needs to support
// to exercise the Synchroniser and Query Interpreter end to end.
func (s *Store) eval(ctx context.Context, residual interface{}, bindings triple.BindingSet, includeInferred bool) ([]triple.BindingSet, error) {
	switch expr := residual.(type) {
	case nil:
		return []triple.BindingSet{bindings}, nil
	case algebra.SingletonSet:
		return []triple.BindingSet{bindings}, nil
	case *algebra.SingletonSet:
		return []triple.BindingSet{bindings}, nil
	case algebra.StatementPattern:
		return s.evalPattern(ctx, &expr, bindings, includeInferred)
	case *algebra.StatementPattern:
		return s.evalPattern(ctx, expr, bindings, includeInferred)
	case algebra.Join:
		return s.evalJoin(ctx, &expr, bindings, includeInferred)
	case *algebra.Join:
		return s.evalJoin(ctx, expr, bindings, includeInferred)
	default:
		return nil, xerrors.Errorf("%T: %w", residual, errUnsupportedResidual)
	}
}

func (s *Store) evalJoin(ctx context.Context, j *algebra.Join, bindings triple.BindingSet, includeInferred bool) ([]triple.BindingSet, error) {
	left, err := s.eval(ctx, j.Left, bindings, includeInferred)
	if err != nil {
		return nil, err
	}
	var out []triple.BindingSet
	for _, lb := range left {
		right, err := s.eval(ctx, j.Right, lb, includeInferred)
		if err != nil {
			return nil, err
		}
		out = append(out, right...)
	}
	return out, nil
}

func (s *Store) evalPattern(ctx context.Context, p *algebra.StatementPattern, bindings triple.BindingSet, includeInferred bool) ([]triple.BindingSet, error) {
	var subjectFilter *triple.Resource
	if p.Subject.Bound {
		r := p.Subject.Value.Resource
		subjectFilter = &r
	} else if bound, ok := bindings.Get(p.Subject.Name); ok && p.Subject.Name != "" {
		r := bound.Resource
		subjectFilter = &r
	}

	var predicateFilter *string
	if p.Predicate.Bound {
		pred := p.Predicate.Value.Lexical
		if !p.Predicate.Value.IsLiteral {
			pred = p.Predicate.Value.Resource.Tag()
		}
		predicateFilter = &pred
	} else if bound, ok := bindings.Get(p.Predicate.Name); ok && p.Predicate.Name != "" {
		pred := bound.Resource.Tag()
		predicateFilter = &pred
	}

	var objectFilter *triple.Term
	if p.Object.Bound {
		objectFilter = &p.Object.Value
	} else if bound, ok := bindings.Get(p.Object.Name); ok && p.Object.Name != "" {
		objectFilter = &bound
	}

	it, err := s.Statements(ctx, subjectFilter, predicateFilter, objectFilter, includeInferred)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []triple.BindingSet
	for it.Next() {
		f := it.Fact()
		row := bindings
		if p.Subject.Name != "" && !p.Subject.Bound {
			row = row.With(p.Subject.Name, triple.ResourceTerm(f.Subject))
		}
		if p.Predicate.Name != "" && !p.Predicate.Bound {
			row = row.With(p.Predicate.Name, triple.ResourceTerm(triple.URI(f.Predicate)))
		}
		if p.Object.Name != "" && !p.Object.Bound {
			row = row.With(p.Object.Name, f.Object)
		}
		out = append(out, row)
	}
	return out, it.Error()
}
