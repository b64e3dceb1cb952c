// Package query implements the Query Interpreter & Iterator
// (component E): it recognises the reserved full-text vocabulary
// embedded in a structured query, builds one QuerySpec per recognised
// group of patterns, drives the hit odometer across however many
// QuerySpecs were found, evaluates the residual query once per
// permutation, and streams the combined bindings back out through the
// algebra-preserving wrappers.
package query

// Namespace is the reserved extension namespace every full-text
// predicate below lives under.
const Namespace = "http://fulltext.example/ns#"

// Reserved predicate local names, from spec.md §6.2.
const (
	PredMatches  = Namespace + "matches"
	PredQuery    = Namespace + "query"
	PredProperty = Namespace + "property"
	PredScore    = Namespace + "score"
	PredSnippet  = Namespace + "snippet"
	PredType     = Namespace + "type"

	// Geo extensions.
	PredRangeFrom        = Namespace + "rangeQueryFrom"
	PredRangeTo          = Namespace + "rangeQueryTo"
	PredGeoLat           = Namespace + "geoDegreesLat"
	PredGeoLong          = Namespace + "geoDegreesLong"
	PredGeoTolerance     = Namespace + "geoDegreesTolerance"
)

// TypeLuceneQuery is the single recognised value of the PredType
// predicate.
const TypeLuceneQuery = Namespace + "LuceneQuery"
