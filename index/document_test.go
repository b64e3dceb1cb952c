package index_test

import (
	"testing"

	"github.com/foliotext/tripleindex/index"
	"github.com/foliotext/tripleindex/triple"
)

func TestBuildDocumentIgnoresNonLiteralFacts(t *testing.T) {
	subject := triple.URI("http://example.com/s1")
	facts := []triple.Fact{
		{Subject: subject, Predicate: "http://example.com/name", Object: triple.Literal("Ada"), Context: triple.NullContext},
		{Subject: subject, Predicate: "http://example.com/friend", Object: triple.ResourceTerm(triple.URI("http://example.com/s2")), Context: triple.NullContext},
		{Subject: triple.URI("http://example.com/other"), Predicate: "http://example.com/name", Object: triple.Literal("Bob"), Context: triple.NullContext},
	}

	doc := index.BuildDocument(subject, facts)

	if doc.ID != subject.Tag() {
		t.Fatalf("expected ID %q, got %q", subject.Tag(), doc.ID)
	}
	if doc.PropertyFieldCount() != 1 {
		t.Fatalf("expected exactly one property field, got %d", doc.PropertyFieldCount())
	}
	if !doc.Has("http://example.com/name", "Ada") {
		t.Fatalf("expected the literal name fact to be indexed")
	}
	if doc.Empty() {
		t.Fatalf("document with one literal fact must not be Empty")
	}
}

func TestBuildDocumentWithNoLiteralsIsEmpty(t *testing.T) {
	subject := triple.URI("http://example.com/s1")
	facts := []triple.Fact{
		{Subject: subject, Predicate: "http://example.com/friend", Object: triple.ResourceTerm(triple.URI("http://example.com/s2"))},
	}

	doc := index.BuildDocument(subject, facts)
	if !doc.Empty() {
		t.Fatalf("expected a document with only resource-valued facts to be Empty")
	}
}

func TestAddPropertyDeduplicates(t *testing.T) {
	doc := index.NewDocument(triple.URI("http://example.com/s1"))
	doc.AddProperty("http://example.com/name", "Ada")
	doc.AddProperty("http://example.com/name", "Ada")

	if got := len(doc.Fields["http://example.com/name"]); got != 1 {
		t.Fatalf("expected duplicate AddProperty calls to collapse to one value, got %d", got)
	}
	if got := len(doc.Text); got != 1 {
		t.Fatalf("expected the aggregated text field to also collapse, got %d entries", got)
	}
}

func TestAddContextIfAbsentDeduplicates(t *testing.T) {
	doc := index.NewDocument(triple.URI("http://example.com/s1"))
	ctx := triple.URI("http://example.com/ctx1")
	doc.AddContextIfAbsent(ctx)
	doc.AddContextIfAbsent(ctx)

	if len(doc.Contexts) != 1 {
		t.Fatalf("expected a repeated context to be added once, got %d", len(doc.Contexts))
	}
}
