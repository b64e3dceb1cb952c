package index_test

import (
	"testing"

	gc "gopkg.in/check.v1"

	"github.com/foliotext/tripleindex/index"
	"github.com/foliotext/tripleindex/triple"
)

func Test(t *testing.T) { gc.TestingT(t) }

var _ = gc.Suite(new(StoreTestSuite))

type StoreTestSuite struct {
	store *index.Store
}

func (s *StoreTestSuite) SetUpTest(c *gc.C) {
	store, err := index.Open(index.Options{RAMDir: true})
	c.Assert(err, gc.IsNil)
	s.store = store
}

func (s *StoreTestSuite) TearDownTest(c *gc.C) {
	c.Assert(s.store.Close(), gc.IsNil)
}

func (s *StoreTestSuite) TestOpenRejectsAmbiguousOptions(c *gc.C) {
	_, err := index.Open(index.Options{})
	c.Assert(err, gc.Not(gc.IsNil))

	_, err = index.Open(index.Options{Dir: "/tmp/x", RAMDir: true})
	c.Assert(err, gc.Not(gc.IsNil))
}

func (s *StoreTestSuite) TestInsertThenGetDocument(c *gc.C) {
	subject := triple.URI("http://example.com/s1")
	doc := index.BuildDocument(subject, []triple.Fact{
		{Subject: subject, Predicate: "http://example.com/name", Object: triple.Literal("Ada Lovelace"), Context: triple.NullContext},
	})
	c.Assert(s.store.Insert(doc), gc.IsNil)

	got, err := s.store.GetDocument(subject.Tag())
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.Not(gc.IsNil))
	c.Assert(got.ID, gc.Equals, subject.Tag())
}

func (s *StoreTestSuite) TestDeleteRemovesDocument(c *gc.C) {
	subject := triple.URI("http://example.com/s1")
	doc := index.BuildDocument(subject, []triple.Fact{
		{Subject: subject, Predicate: "http://example.com/name", Object: triple.Literal("Ada"), Context: triple.NullContext},
	})
	c.Assert(s.store.Insert(doc), gc.IsNil)
	c.Assert(s.store.Delete(subject.Tag()), gc.IsNil)

	got, err := s.store.GetDocument(subject.Tag())
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.IsNil)
}

func (s *StoreTestSuite) TestInsertRefusesEmptyDocument(c *gc.C) {
	doc := index.NewDocument(triple.URI("http://example.com/s1"))
	err := s.store.Insert(doc)
	c.Assert(err, gc.Not(gc.IsNil))
}

func (s *StoreTestSuite) TestDocumentsWithContext(c *gc.C) {
	ctx := triple.URI("http://example.com/ctx1")
	s1 := triple.URI("http://example.com/s1")
	s2 := triple.URI("http://example.com/s2")

	doc1 := index.BuildDocument(s1, []triple.Fact{
		{Subject: s1, Predicate: "http://example.com/name", Object: triple.Literal("one"), Context: ctx},
	})
	doc2 := index.BuildDocument(s2, []triple.Fact{
		{Subject: s2, Predicate: "http://example.com/name", Object: triple.Literal("two"), Context: triple.NullContext},
	})
	c.Assert(s.store.Insert(doc1), gc.IsNil)
	c.Assert(s.store.Insert(doc2), gc.IsNil)

	docs, err := s.store.DocumentsWithContext(ctx.Tag())
	c.Assert(err, gc.IsNil)
	c.Assert(docs, gc.HasLen, 1)
	c.Assert(docs[0].ID, gc.Equals, s1.Tag())
}

func (s *StoreTestSuite) TestSearchFindsInsertedText(c *gc.C) {
	subject := triple.URI("http://example.com/s1")
	doc := index.BuildDocument(subject, []triple.Fact{
		{Subject: subject, Predicate: "http://example.com/bio", Object: triple.Literal("a pioneer of computing"), Context: triple.NullContext},
	})
	c.Assert(s.store.Insert(doc), gc.IsNil)

	q, err := s.store.ParseQuery("pioneer", "")
	c.Assert(err, gc.IsNil)

	hits, err := s.store.Search(q, 0, 10, "")
	c.Assert(err, gc.IsNil)
	c.Assert(hits, gc.HasLen, 1)
	c.Assert(hits[0].SubjectTag, gc.Equals, subject.Tag())
}

func (s *StoreTestSuite) TestClearDropsEveryDocument(c *gc.C) {
	subject := triple.URI("http://example.com/s1")
	doc := index.BuildDocument(subject, []triple.Fact{
		{Subject: subject, Predicate: "http://example.com/name", Object: triple.Literal("Ada"), Context: triple.NullContext},
	})
	c.Assert(s.store.Insert(doc), gc.IsNil)
	c.Assert(s.store.Clear(), gc.IsNil)

	got, err := s.store.GetDocument(subject.Tag())
	c.Assert(err, gc.IsNil)
	c.Assert(got, gc.IsNil)
}
