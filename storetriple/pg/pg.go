// Package pg is a Postgres/CockroachDB-backed triple.Store, grounded
// on the same upsert-and-scan idiom the teacher uses for its
// linkgraph cdb store. It exists so the full-text index's on-disk
// (lucenedir) configuration has a persistent triple-store fixture to
// pair with, mirroring the teacher's own memory+cdb pairing; the
// triple store's own schema/engine is otherwise out of scope for this
// module.
package pg

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"golang.org/x/xerrors"

	"github.com/foliotext/tripleindex/triple"
)

var (
	insertFactQuery = `
INSERT INTO facts (subject, predicate, object_literal, object_is_literal, object_resource, context)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (subject, predicate, object_literal, object_resource, context) DO NOTHING
`
	deleteFactQuery = `
DELETE FROM facts WHERE subject=$1 AND predicate=$2 AND object_literal=$3 AND object_is_literal=$4 AND object_resource=$5 AND context=$6
`
	deleteContextQuery = "DELETE FROM facts WHERE context = ANY($1)"
	deleteAllQuery     = "DELETE FROM facts"
	selectFactsQuery   = `
SELECT subject, predicate, object_literal, object_is_literal, object_resource, context
FROM facts
WHERE ($1 = '' OR subject = $1)
  AND ($2 = '' OR predicate = $2)
`
)

// Store is a triple.Store backed by a `facts` table.
type Store struct {
	db *sql.DB
}

var _ triple.Store = (*Store)(nil)

// Open connects to the Postgres/CockroachDB instance named by dsn. The
// `facts` table (subject, predicate, object_literal, object_is_literal,
// object_resource, context) is assumed to already exist; creating it is
// the surrounding deployment's concern, not this module's.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, xerrors.Errorf("opening triple store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close terminates the connection.
func (s *Store) Close() error { return s.db.Close() }

// Insert asserts f.
func (s *Store) Insert(f triple.Fact) error {
	_, err := s.db.Exec(insertFactQuery,
		f.Subject.Tag(), f.Predicate, f.Object.Lexical, f.Object.IsLiteral, f.Object.Resource.Tag(), f.Context.Tag())
	if err != nil {
		return xerrors.Errorf("insert fact: %w", err)
	}
	return nil
}

// Remove retracts f.
func (s *Store) Remove(f triple.Fact) error {
	_, err := s.db.Exec(deleteFactQuery,
		f.Subject.Tag(), f.Predicate, f.Object.Lexical, f.Object.IsLiteral, f.Object.Resource.Tag(), f.Context.Tag())
	if err != nil {
		return xerrors.Errorf("remove fact: %w", err)
	}
	return nil
}

// ClearContext retracts every fact in any of the given contexts.
func (s *Store) ClearContext(contexts []triple.Resource) error {
	tags := make([]string, len(contexts))
	for i, c := range contexts {
		tags[i] = c.Tag()
	}
	_, err := s.db.Exec(deleteContextQuery, tags)
	if err != nil {
		return xerrors.Errorf("clear contexts: %w", err)
	}
	return nil
}

// ClearAll retracts every fact.
func (s *Store) ClearAll() error {
	if _, err := s.db.Exec(deleteAllQuery); err != nil {
		return xerrors.Errorf("clear all: %w", err)
	}
	return nil
}

// Statements implements triple.Store. Object filtering is applied
// client-side: the predicate index carries most of the selectivity
// this module's access patterns need, and a prepared statement per
// object shape would multiply the query surface for little benefit.
func (s *Store) Statements(ctx context.Context, subject *triple.Resource, predicate *string, object *triple.Term, _ bool) (triple.FactIterator, error) {
	var subjectArg, predicateArg string
	if subject != nil {
		subjectArg = subject.Tag()
	}
	if predicate != nil {
		predicateArg = *predicate
	}

	rows, err := s.db.QueryContext(ctx, selectFactsQuery, subjectArg, predicateArg)
	if err != nil {
		return nil, xerrors.Errorf("query statements: %w", err)
	}

	var facts []triple.Fact
	for rows.Next() {
		var subjTag, pred, objLit, objResTag, ctxTag string
		var objIsLiteral bool
		if err := rows.Scan(&subjTag, &pred, &objLit, &objIsLiteral, &objResTag, &ctxTag); err != nil {
			rows.Close()
			return nil, xerrors.Errorf("scan statement row: %w", err)
		}
		f := triple.Fact{
			Subject:   triple.ParseTag(subjTag),
			Predicate: pred,
			Context:   triple.ParseTag(ctxTag),
		}
		if objIsLiteral {
			f.Object = triple.Literal(objLit)
		} else {
			f.Object = triple.ResourceTerm(triple.ParseTag(objResTag))
		}
		if object != nil && f.Object != *object {
			continue
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, xerrors.Errorf("iterate statement rows: %w", err)
	}
	rows.Close()

	return &factIterator{facts: facts, idx: -1}, nil
}

// Evaluate is not supported by this fixture: it exists only to satisfy
// the Index Store triple.Store pairing for on-disk configurations;
// running the Query Interpreter against a SQL-backed triple store
// would need a residual-query-to-SQL compiler, which is explicitly out
// of scope (query-algebra parsing/evaluation is the surrounding
// connection object's job, a plug-point this module does not own).
func (s *Store) Evaluate(context.Context, interface{}, triple.BindingSet, bool) (triple.BindingIterator, error) {
	return nil, xerrors.New("pg: Evaluate is not implemented; pair this store with a connection object that compiles residual queries to SQL")
}

type factIterator struct {
	facts []triple.Fact
	idx   int
}

func (it *factIterator) Next() bool {
	it.idx++
	return it.idx < len(it.facts)
}
func (it *factIterator) Fact() triple.Fact { return it.facts[it.idx] }
func (it *factIterator) Error() error      { return nil }
func (it *factIterator) Close() error      { return nil }
