package index

import (
	"sort"

	"github.com/foliotext/tripleindex/triple"
)

// Field names used by every document this package writes and reads.
// ID and Context are stored/untokenized; every predicate field and
// Text are stored/tokenized.
const (
	FieldID      = "id"
	FieldContext = "context"
	FieldText    = "text"
)

// Document is the in-memory shape of one indexed subject: its encoded
// resource tag, the set of graph contexts it appears in, one
// tokenized field per predicate that has literal objects, and an
// aggregated text field concatenating every indexed literal. This is
// component B's data shape (the Resource Document Mapper): the
// functions below are pure — they never touch the index handle
// itself, only this struct.
type Document struct {
	ID       string
	Contexts []string
	Fields   map[string][]string
	Text     []string
}

// ResourceOf recovers the Resource a document's ID tag denotes, the
// inverse of Resource.Tag.
func ResourceOf(idTag string) triple.Resource { return triple.ParseTag(idTag) }

// NewDocument returns an empty document for subject, with no
// properties or contexts yet.
func NewDocument(subject triple.Resource) *Document {
	return &Document{
		ID:     subject.Tag(),
		Fields: make(map[string][]string),
	}
}

// BuildDocument maps every literal fact belonging to subject into a
// fresh Document. Facts whose object is not a literal are ignored:
// only literal values participate in the full-text index, per the
// Non-goals around datatype-aware indexing (object resources are not
// indexed at all, literal or not otherwise).
func BuildDocument(subject triple.Resource, facts []triple.Fact) *Document {
	doc := NewDocument(subject)
	for _, f := range facts {
		if f.Subject != subject || !f.Object.IsLiteral {
			continue
		}
		doc.AddProperty(f.Predicate, f.Object.Lexical)
		doc.AddContextIfAbsent(f.Context)
	}
	return doc
}

// Has reports whether the document already carries label as a value
// of predicate, so callers can avoid inserting duplicate
// (predicate, label) pairs.
func (d *Document) Has(predicate, label string) bool {
	for _, v := range d.Fields[predicate] {
		if v == label {
			return true
		}
	}
	return false
}

// AddProperty adds label as a value of predicate, and to the
// aggregated text field, unless that exact (predicate, label) pair is
// already present.
func (d *Document) AddProperty(predicate, label string) {
	if d.Has(predicate, label) {
		return
	}
	d.Fields[predicate] = append(d.Fields[predicate], label)
	d.Text = append(d.Text, label)
}

// AddContextIfAbsent adds ctx's tag to the document's context set if
// it is not already present.
func (d *Document) AddContextIfAbsent(ctx triple.Resource) {
	tag := ctx.Tag()
	for _, c := range d.Contexts {
		if c == tag {
			return
		}
	}
	d.Contexts = append(d.Contexts, tag)
}

// PropertyFieldCount returns the number of distinct predicate fields
// (excluding id/context/text) the document carries.
func (d *Document) PropertyFieldCount() int { return len(d.Fields) }

// Empty reports whether the document carries no indexed literal at
// all, meaning it must not be written to the index: a subject with no
// literal facts has no corresponding document, per the document
// existence invariant.
func (d *Document) Empty() bool { return len(d.Fields) == 0 }

// toBleve renders the document into the flat field map bleve indexes,
// merging multi-valued fields under one key the way bleve expects for
// a default (non-mapping-typed) document.
func (d *Document) toBleve() map[string]interface{} {
	out := make(map[string]interface{}, len(d.Fields)+3)
	out[FieldID] = d.ID
	if len(d.Contexts) > 0 {
		ctxs := make([]string, len(d.Contexts))
		copy(ctxs, d.Contexts)
		sort.Strings(ctxs)
		out[FieldContext] = ctxs
	}
	for pred, vals := range d.Fields {
		out[pred] = vals
	}
	out[FieldText] = d.Text
	return out
}
