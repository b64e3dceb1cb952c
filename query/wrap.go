package query

import (
	"sort"
	"strings"

	"github.com/foliotext/tripleindex/algebra"
	"github.com/foliotext/tripleindex/triple"
)

// Rewrap is a stream transformer recovered by Unwrap: it re-applies
// whichever outer algebra wrapper nodes (Projection, MultiProjection,
// Slice, Distinct, Reduced, Order) sat above the core query, around
// whatever terminal BindingIterator it is given. Ported from
// WrappedLuceneQueryIteratorFactory.java.
type Rewrap func(triple.BindingIterator) triple.BindingIterator

// Unwrap peels the outer wrapper chain off expr, innermost-out,
// returning the core TupleExpr (the first node that is not one of the
// wrapper kinds — typically a Join/StatementPattern tree containing
// the reserved full-text patterns) and a Rewrap that reconstructs the
// same wrapper nesting, outermost-first, around a terminal iterator.
func Unwrap(expr algebra.TupleExpr) (algebra.TupleExpr, Rewrap) {
	switch e := expr.(type) {
	case *algebra.Projection:
		core, inner := Unwrap(e.Arg)
		return core, func(it triple.BindingIterator) triple.BindingIterator {
			return &projectionIterator{BindingIterator: inner(it), elements: e.Elements}
		}
	case algebra.Projection:
		return Unwrap(&e)
	case *algebra.MultiProjection:
		core, inner := Unwrap(e.Arg)
		return core, func(it triple.BindingIterator) triple.BindingIterator {
			return &multiProjectionIterator{BindingIterator: inner(it), projections: e.Projections}
		}
	case algebra.MultiProjection:
		return Unwrap(&e)
	case *algebra.Slice:
		core, inner := Unwrap(e.Arg)
		return core, func(it triple.BindingIterator) triple.BindingIterator {
			return &sliceIterator{BindingIterator: inner(it), offset: e.Offset, limit: e.Limit}
		}
	case algebra.Slice:
		return Unwrap(&e)
	case *algebra.Distinct:
		core, inner := Unwrap(e.Arg)
		return core, func(it triple.BindingIterator) triple.BindingIterator {
			return &distinctIterator{BindingIterator: inner(it), seen: make(map[string]bool)}
		}
	case algebra.Distinct:
		return Unwrap(&e)
	case *algebra.Reduced:
		core, inner := Unwrap(e.Arg)
		return core, func(it triple.BindingIterator) triple.BindingIterator {
			return inner(it) // permitted, not required, to deduplicate
		}
	case algebra.Reduced:
		return Unwrap(&e)
	case *algebra.Order:
		core, inner := Unwrap(e.Arg)
		return core, func(it triple.BindingIterator) triple.BindingIterator {
			return &orderIterator{BindingIterator: inner(it), comparators: e.Comparators}
		}
	case algebra.Order:
		return Unwrap(&e)
	default:
		return expr, func(it triple.BindingIterator) triple.BindingIterator { return it }
	}
}

type baseWrap struct {
	triple.BindingIterator
}

type projectionIterator struct {
	triple.BindingIterator
	elements []algebra.ProjectionElem
	cur      triple.BindingSet
}

func (p *projectionIterator) Next() bool {
	if !p.BindingIterator.Next() {
		return false
	}
	src := p.BindingIterator.Binding()
	out := make(triple.BindingSet, len(p.elements))
	for _, el := range p.elements {
		if v, ok := src.Get(el.SourceName); ok {
			out[el.TargetName] = v
		}
	}
	p.cur = out
	return true
}
func (p *projectionIterator) Binding() triple.BindingSet { return p.cur }

type multiProjectionIterator struct {
	triple.BindingIterator
	projections [][]algebra.ProjectionElem
	srcRow      triple.BindingSet
	hasSrc      bool
	idx         int
	cur         triple.BindingSet
}

func (m *multiProjectionIterator) Next() bool {
	for {
		if m.hasSrc && m.idx < len(m.projections) {
			els := m.projections[m.idx]
			m.idx++
			out := make(triple.BindingSet, len(els))
			for _, el := range els {
				if v, ok := m.srcRow.Get(el.SourceName); ok {
					out[el.TargetName] = v
				}
			}
			m.cur = out
			return true
		}
		if !m.BindingIterator.Next() {
			return false
		}
		m.srcRow = m.BindingIterator.Binding()
		m.hasSrc = true
		m.idx = 0
	}
}
func (m *multiProjectionIterator) Binding() triple.BindingSet { return m.cur }

type sliceIterator struct {
	triple.BindingIterator
	offset, limit int64
	emitted       int64
	skipped       int64
}

func (s *sliceIterator) Next() bool {
	for s.skipped < s.offset {
		if !s.BindingIterator.Next() {
			return false
		}
		s.skipped++
	}
	if s.limit > 0 && s.emitted >= s.limit {
		return false
	}
	if !s.BindingIterator.Next() {
		return false
	}
	s.emitted++
	return true
}

type distinctIterator struct {
	triple.BindingIterator
	seen map[string]bool
}

func (d *distinctIterator) Next() bool {
	for d.BindingIterator.Next() {
		key := bindingKey(d.BindingIterator.Binding())
		if d.seen[key] {
			continue
		}
		d.seen[key] = true
		return true
	}
	return false
}

func bindingKey(bs triple.BindingSet) string {
	names := make([]string, 0, len(bs))
	for n := range bs {
		names = append(names, n)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('=')
		t := bs[n]
		if t.IsLiteral {
			b.WriteString("L:" + t.Lexical)
		} else {
			b.WriteString("R:" + t.Resource.Tag())
		}
		b.WriteByte(';')
	}
	return b.String()
}

type orderIterator struct {
	triple.BindingIterator
	comparators []algebra.OrderElem

	materialized bool
	rows         []triple.BindingSet
	idx          int
}

func (o *orderIterator) Next() bool {
	if !o.materialized {
		o.materialize()
	}
	o.idx++
	return o.idx < len(o.rows)
}

func (o *orderIterator) Binding() triple.BindingSet { return o.rows[o.idx] }

func (o *orderIterator) materialize() {
	o.materialized = true
	o.idx = -1
	for o.BindingIterator.Next() {
		o.rows = append(o.rows, o.BindingIterator.Binding())
	}
	sort.SliceStable(o.rows, func(i, j int) bool {
		for _, c := range o.comparators {
			vi, iok := o.rows[i].Get(c.VarName)
			vj, jok := o.rows[j].Get(c.VarName)
			less, eq := compareTerms(vi, iok, vj, jok)
			if !eq {
				if c.Descending {
					return !less
				}
				return less
			}
		}
		return false
	})
}

func compareTerms(a triple.Term, aok bool, b triple.Term, bok bool) (less, equal bool) {
	as, bs := termString(a, aok), termString(b, bok)
	if as == bs {
		return false, true
	}
	return as < bs, false
}

func termString(t triple.Term, ok bool) string {
	if !ok {
		return ""
	}
	if t.IsLiteral {
		return t.Lexical
	}
	return t.Resource.Tag()
}
