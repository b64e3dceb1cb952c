package query_test

import (
	"context"
	"testing"

	"github.com/foliotext/tripleindex/algebra"
	"github.com/foliotext/tripleindex/index"
	"github.com/foliotext/tripleindex/memtriple"
	"github.com/foliotext/tripleindex/query"
	"github.com/foliotext/tripleindex/triple"
)

func TestEvaluateEndToEnd(t *testing.T) {
	store, err := index.Open(index.Options{RAMDir: true})
	if err != nil {
		t.Fatalf("opening index: %v", err)
	}
	defer store.Close()

	subject := triple.URI("http://example.com/ada")
	doc := index.BuildDocument(subject, []triple.Fact{
		{Subject: subject, Predicate: "http://example.com/bio", Object: triple.Literal("a pioneer of computing"), Context: triple.NullContext},
	})
	if err := store.Insert(doc); err != nil {
		t.Fatalf("inserting document: %v", err)
	}

	expr := algebra.Join{
		Left: algebra.StatementPattern{
			Subject:   algebra.Named("person"),
			Predicate: algebra.Const(triple.ResourceTerm(triple.URI(query.PredMatches))),
			Object:    algebra.Named("x"),
		},
		Right: algebra.StatementPattern{
			Subject:   algebra.Named("x"),
			Predicate: algebra.Const(triple.ResourceTerm(triple.URI(query.PredQuery))),
			Object:    algebra.Const(triple.Literal("pioneer")),
		},
	}

	it, err := query.Evaluate(context.Background(), store, memtriple.New(), expr, nil, query.Options{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	defer it.Close()

	if !it.Next() {
		t.Fatalf("expected at least one result row")
	}
	row := it.Binding()
	person, ok := row.Get("person")
	if !ok || person.Resource != subject {
		t.Fatalf("expected person bound to %v, got %+v (ok=%v)", subject, person, ok)
	}
	if it.Next() {
		t.Fatalf("expected exactly one result row")
	}
	if err := it.Error(); err != nil {
		t.Fatalf("unexpected iterator error: %v", err)
	}
}

func TestEvaluateNoHitsYieldsNoRows(t *testing.T) {
	store, err := index.Open(index.Options{RAMDir: true})
	if err != nil {
		t.Fatalf("opening index: %v", err)
	}
	defer store.Close()

	expr := algebra.Join{
		Left: algebra.StatementPattern{
			Subject:   algebra.Named("person"),
			Predicate: algebra.Const(triple.ResourceTerm(triple.URI(query.PredMatches))),
			Object:    algebra.Named("x"),
		},
		Right: algebra.StatementPattern{
			Subject:   algebra.Named("x"),
			Predicate: algebra.Const(triple.ResourceTerm(triple.URI(query.PredQuery))),
			Object:    algebra.Const(triple.Literal("nonexistent")),
		},
	}

	it, err := query.Evaluate(context.Background(), store, memtriple.New(), expr, nil, query.Options{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	defer it.Close()

	if it.Next() {
		t.Fatalf("expected zero result rows for a sub-query with zero hits, got a row: %+v", it.Binding())
	}
}
