package query

import (
	"testing"

	"github.com/foliotext/tripleindex/algebra"
	"github.com/foliotext/tripleindex/triple"
)

type rowsIterator struct {
	rows []triple.BindingSet
	idx  int
}

func (it *rowsIterator) Next() bool {
	it.idx++
	return it.idx < len(it.rows)
}
func (it *rowsIterator) Binding() triple.BindingSet { return it.rows[it.idx] }
func (it *rowsIterator) Error() error               { return nil }
func (it *rowsIterator) Close() error               { return nil }

func newRowsIterator(rows ...triple.BindingSet) *rowsIterator {
	return &rowsIterator{rows: rows, idx: -1}
}

func collect(it triple.BindingIterator) []triple.BindingSet {
	var out []triple.BindingSet
	for it.Next() {
		out = append(out, it.Binding())
	}
	return out
}

func TestUnwrapIdentityWhenNoWrapperPresent(t *testing.T) {
	core := algebra.StatementPattern{Subject: algebra.Named("x")}
	gotCore, rewrap := Unwrap(core)
	if gotCore != algebra.TupleExpr(core) {
		t.Fatalf("expected the core to pass through unchanged")
	}
	rows := []triple.BindingSet{{"x": triple.Literal("a")}}
	got := collect(rewrap(newRowsIterator(rows...)))
	if len(got) != 1 {
		t.Fatalf("expected identity rewrap to pass rows through unchanged, got %d", len(got))
	}
}

func TestUnwrapPeelsSliceAndProjection(t *testing.T) {
	core := algebra.StatementPattern{Subject: algebra.Named("x")}
	expr := &algebra.Projection{
		Arg: &algebra.Slice{
			Arg:    core,
			Offset: 1,
			Limit:  1,
		},
		Elements: []algebra.ProjectionElem{{SourceName: "x", TargetName: "renamed"}},
	}

	gotCore, rewrap := Unwrap(expr)
	if gotCore != algebra.TupleExpr(core) {
		t.Fatalf("expected Unwrap to recover the inner StatementPattern core")
	}

	rows := []triple.BindingSet{
		{"x": triple.Literal("a")},
		{"x": triple.Literal("b")},
		{"x": triple.Literal("c")},
	}
	out := collect(rewrap(newRowsIterator(rows...)))
	if len(out) != 1 {
		t.Fatalf("expected Slice(offset=1,limit=1) to leave exactly one row, got %d", len(out))
	}
	if _, stillThere := out[0]["x"]; stillThere {
		t.Fatalf("expected Projection to drop the original variable name")
	}
	renamed, ok := out[0].Get("renamed")
	if !ok || renamed.Lexical != "b" {
		t.Fatalf("expected the second row's x renamed to %q, got %+v", "renamed", out[0])
	}
}

func TestDistinctIteratorDropsDuplicateRows(t *testing.T) {
	rows := []triple.BindingSet{
		{"x": triple.Literal("a")},
		{"x": triple.Literal("a")},
		{"x": triple.Literal("b")},
	}
	it := &distinctIterator{BindingIterator: newRowsIterator(rows...), seen: make(map[string]bool)}
	out := collect(it)
	if len(out) != 2 {
		t.Fatalf("expected 2 distinct rows, got %d", len(out))
	}
}

func TestOrderIteratorSortsByComparator(t *testing.T) {
	rows := []triple.BindingSet{
		{"x": triple.Literal("c")},
		{"x": triple.Literal("a")},
		{"x": triple.Literal("b")},
	}
	it := &orderIterator{
		BindingIterator: newRowsIterator(rows...),
		comparators:     []algebra.OrderElem{{VarName: "x"}},
	}
	out := collect(it)
	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out))
	}
	want := []string{"a", "b", "c"}
	for i, w := range want {
		got, _ := out[i].Get("x")
		if got.Lexical != w {
			t.Fatalf("row %d: expected %q, got %q", i, w, got.Lexical)
		}
	}
}

func TestOrderIteratorDescending(t *testing.T) {
	rows := []triple.BindingSet{
		{"x": triple.Literal("a")},
		{"x": triple.Literal("c")},
		{"x": triple.Literal("b")},
	}
	it := &orderIterator{
		BindingIterator: newRowsIterator(rows...),
		comparators:     []algebra.OrderElem{{VarName: "x", Descending: true}},
	}
	out := collect(it)
	want := []string{"c", "b", "a"}
	for i, w := range want {
		got, _ := out[i].Get("x")
		if got.Lexical != w {
			t.Fatalf("row %d: expected %q, got %q", i, w, got.Lexical)
		}
	}
}
