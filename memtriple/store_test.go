package memtriple_test

import (
	"context"
	"testing"

	gc "gopkg.in/check.v1"

	"github.com/foliotext/tripleindex/algebra"
	"github.com/foliotext/tripleindex/memtriple"
	"github.com/foliotext/tripleindex/triple"
)

func Test(t *testing.T) {
	gc.TestingT(t)
}

var _ = gc.Suite(new(StoreTestSuite))

type StoreTestSuite struct {
	store *memtriple.Store
}

func (s *StoreTestSuite) SetUpTest(c *gc.C) {
	s.store = memtriple.New()
}

func (s *StoreTestSuite) TestInsertGeneratesBlankSubject(c *gc.C) {
	f := s.store.Insert(triple.Fact{
		Predicate: "http://example.com/name",
		Object:    triple.Literal("Ada"),
	})
	c.Assert(f.Subject.Blank, gc.Equals, true)
	c.Assert(f.Subject.ID, gc.Not(gc.Equals), "")
	c.Assert(f.Context, gc.Equals, triple.NullContext)
}

func (s *StoreTestSuite) TestStatementsFiltersBySubject(c *gc.C) {
	s1 := triple.URI("http://example.com/s1")
	s2 := triple.URI("http://example.com/s2")
	s.store.Insert(triple.Fact{Subject: s1, Predicate: "p", Object: triple.Literal("one")})
	s.store.Insert(triple.Fact{Subject: s2, Predicate: "p", Object: triple.Literal("two")})

	it, err := s.store.Statements(context.Background(), &s1, nil, nil, false)
	c.Assert(err, gc.IsNil)
	defer it.Close()

	var got []triple.Fact
	for it.Next() {
		got = append(got, it.Fact())
	}
	c.Assert(it.Error(), gc.IsNil)
	c.Assert(got, gc.HasLen, 1)
	c.Assert(got[0].Object.Lexical, gc.Equals, "one")
}

func (s *StoreTestSuite) TestRemoveRetractsMatchingFact(c *gc.C) {
	f := s.store.Insert(triple.Fact{
		Subject:   triple.URI("http://example.com/s1"),
		Predicate: "p",
		Object:    triple.Literal("one"),
		Context:   triple.NullContext,
	})
	s.store.Remove(f)

	it, err := s.store.Statements(context.Background(), nil, nil, nil, false)
	c.Assert(err, gc.IsNil)
	defer it.Close()
	c.Assert(it.Next(), gc.Equals, false)
}

func (s *StoreTestSuite) TestClearContextRetractsOnlyMatchingContext(c *gc.C) {
	ctxA := triple.URI("http://example.com/ctxA")
	ctxB := triple.URI("http://example.com/ctxB")
	s.store.Insert(triple.Fact{Subject: triple.URI("s1"), Predicate: "p", Object: triple.Literal("a"), Context: ctxA})
	s.store.Insert(triple.Fact{Subject: triple.URI("s2"), Predicate: "p", Object: triple.Literal("b"), Context: ctxB})

	s.store.ClearContext([]triple.Resource{ctxA})

	it, err := s.store.Statements(context.Background(), nil, nil, nil, false)
	c.Assert(err, gc.IsNil)
	defer it.Close()

	var remaining []triple.Fact
	for it.Next() {
		remaining = append(remaining, it.Fact())
	}
	c.Assert(remaining, gc.HasLen, 1)
	c.Assert(remaining[0].Context, gc.Equals, ctxB)
}

func (s *StoreTestSuite) TestEvaluateJoinOfStatementPatterns(c *gc.C) {
	person := triple.URI("http://example.com/person1")
	s.store.Insert(triple.Fact{Subject: person, Predicate: "http://example.com/name", Object: triple.Literal("Ada")})
	s.store.Insert(triple.Fact{Subject: person, Predicate: "http://example.com/city", Object: triple.Literal("London")})

	expr := algebra.Join{
		Left: algebra.StatementPattern{
			Subject:   algebra.Named("person"),
			Predicate: algebra.Const(triple.ResourceTerm(triple.URI("http://example.com/name"))),
			Object:    algebra.Named("name"),
		},
		Right: algebra.StatementPattern{
			Subject:   algebra.Named("person"),
			Predicate: algebra.Const(triple.ResourceTerm(triple.URI("http://example.com/city"))),
			Object:    algebra.Named("city"),
		},
	}

	it, err := s.store.Evaluate(context.Background(), expr, nil, false)
	c.Assert(err, gc.IsNil)
	defer it.Close()

	c.Assert(it.Next(), gc.Equals, true)
	row := it.Binding()
	name, _ := row.Get("name")
	city, _ := row.Get("city")
	c.Assert(name.Lexical, gc.Equals, "Ada")
	c.Assert(city.Lexical, gc.Equals, "London")
	c.Assert(it.Next(), gc.Equals, false)
}
