// Package triple defines the boundary contract between the full-text
// index augmentation and the surrounding triple store. Nothing in this
// package persists anything; it only describes the shapes the Index
// Store, Synchroniser and Query Iterator exchange with whatever store
// implementation is plugged in underneath them.
package triple

import "strings"

// blankNodePrefix tags a resource tag string as a blank node rather
// than a URI, mirroring the leading "!" the original index used to
// disambiguate the two inside a single string-keyed field.
const blankNodePrefix = "!"

// NullContext is the sentinel context used for facts asserted in the
// store's default (unnamed) graph.
var NullContext = Resource{ID: "null"}

// Resource identifies a subject, predicate graph node, or named
// context. It is either a URI or a blank node; Tag returns the single
// string encoding used as an index field value and the inverse,
// ParseTag, recovers a Resource from that encoding.
type Resource struct {
	Blank bool
	ID    string
}

// URI builds a URI-valued resource.
func URI(uri string) Resource { return Resource{ID: uri} }

// BlankNode builds a blank-node-valued resource from its local label.
func BlankNode(label string) Resource { return Resource{Blank: true, ID: label} }

// Tag returns the canonical string encoding of the resource.
func (r Resource) Tag() string {
	if r.Blank {
		return blankNodePrefix + r.ID
	}
	return r.ID
}

// IsZero reports whether r is the zero Resource (no resource bound).
func (r Resource) IsZero() bool { return !r.Blank && r.ID == "" }

// ParseTag recovers a Resource from a previously-encoded Tag string.
func ParseTag(tag string) Resource {
	if strings.HasPrefix(tag, blankNodePrefix) {
		return Resource{Blank: true, ID: strings.TrimPrefix(tag, blankNodePrefix)}
	}
	return Resource{ID: tag}
}

// Term is the object position of a fact: either a textual literal or a
// resource. Datatypes are deliberately not modelled; only the lexical
// form of a literal is ever indexed.
type Term struct {
	IsLiteral bool
	Lexical   string
	Resource  Resource
}

// Literal builds a literal-valued term.
func Literal(lexical string) Term { return Term{IsLiteral: true, Lexical: lexical} }

// ResourceTerm builds a resource-valued term.
func ResourceTerm(r Resource) Term { return Term{Resource: r} }

// Fact is a single (subject, predicate, object, context) quad as seen
// by the full-text index augmentation. Predicate is always a URI.
type Fact struct {
	Subject   Resource
	Predicate string
	Object    Term
	Context   Resource
}

// Key returns a stable string uniquely identifying the fact's value,
// used by the Transaction Buffer to cancel opposing add/remove
// operations on the same fact.
func (f Fact) Key() string {
	var b strings.Builder
	b.WriteString(f.Subject.Tag())
	b.WriteByte(0)
	b.WriteString(f.Predicate)
	b.WriteByte(0)
	if f.Object.IsLiteral {
		b.WriteByte('L')
		b.WriteString(f.Object.Lexical)
	} else {
		b.WriteByte('R')
		b.WriteString(f.Object.Resource.Tag())
	}
	b.WriteByte(0)
	b.WriteString(f.Context.Tag())
	return b.String()
}
