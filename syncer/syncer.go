// Package syncer implements the Synchroniser (component D): it applies
// an optimised Transaction Buffer against the Index Store, rebuilding
// any subject whose document already exists from the triple store's
// current truth rather than attempting incremental token removal.
package syncer

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/foliotext/tripleindex/triple Store

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/foliotext/tripleindex/index"
	"github.com/foliotext/tripleindex/triple"
	"github.com/foliotext/tripleindex/txn"
)

// Synchroniser applies buffered transaction operations to an Index
// Store, consulting the triple store for the current truth whenever a
// subject needs to be rebuilt from scratch.
type Synchroniser struct {
	Store   *index.Store
	Triples triple.Store
	Log     *logrus.Entry

	// IncludeInferred controls whether rebuild reads ask the triple
	// store to include inferred (derived) facts alongside asserted
	// ones. Defaults to false: only explicitly asserted facts are
	// indexed.
	IncludeInferred bool
}

func (s *Synchroniser) logger() *logrus.Entry {
	if s.Log != nil {
		return s.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// Apply runs every operation queued in buf, in order, inside one
// Index Store writer scope, then resets buf regardless of outcome.
func (s *Synchroniser) Apply(ctx context.Context, buf *txn.Buffer) error {
	buf.Optimize()
	defer buf.Reset()

	return s.Store.WithWriter(func(idx *index.Store) error {
		for _, op := range buf.Operations() {
			var err error
			switch o := op.(type) {
			case *txn.AddRemove:
				err = s.applyAddRemove(ctx, idx, o)
			case *txn.ClearContext:
				err = s.applyClearContext(ctx, idx, o)
			case txn.ClearAll:
				err = s.applyClearAll(idx)
			default:
				err = xerrors.Errorf("syncer: unrecognised buffered operation %T: %w", op, index.ErrCorruptState)
			}
			if err != nil {
				s.logger().WithError(err).Error("aborting buffer apply")
				return xerrors.Errorf("%w: %w", ErrAbort, err)
			}
		}
		return nil
	})
}

func (s *Synchroniser) applyClearAll(idx *index.Store) error {
	if err := idx.Clear(); err != nil {
		return err
	}
	if err := idx.Commit(); err != nil {
		return err
	}
	idx.InvalidateReaders()
	return nil
}

// applyAddRemove is the Synchroniser's core rule: any subject whose
// document already exists is deleted and rebuilt wholesale from every
// current statement the triple store reports for it (the triple
// store has already had the underlying add/remove applied by the time
// Apply runs); a subject with no prior document is created directly
// from the buffered adds. Indexed/tokenized fields cannot reliably be
// stripped incrementally, so a rebuild is always preferred over
// patching an existing document in place.
func (s *Synchroniser) applyAddRemove(ctx context.Context, idx *index.Store, op *txn.AddRemove) error {
	bySubject := make(map[string][]triple.Fact)
	order := make([]string, 0)
	for _, f := range op.Added() {
		tag := f.Subject.Tag()
		if _, seen := bySubject[tag]; !seen {
			order = append(order, tag)
		}
		bySubject[tag] = append(bySubject[tag], f)
	}
	for _, f := range op.Removed() {
		tag := f.Subject.Tag()
		if _, seen := bySubject[tag]; !seen {
			order = append(order, tag)
		}
	}

	removedBySubject := make(map[string]bool)
	for _, f := range op.Removed() {
		removedBySubject[f.Subject.Tag()] = true
	}

	for _, tag := range order {
		subject := triple.ParseTag(tag)
		existing, err := idx.GetDocument(tag)
		if err != nil {
			return err
		}

		switch {
		case existing == nil && !removedBySubject[tag]:
			// Pure creation: no prior document, nothing removed for
			// this subject, so the buffered adds are the complete
			// picture.
			doc := index.BuildDocument(subject, bySubject[tag])
			if doc.Empty() {
				continue
			}
			if err := idx.Insert(doc); err != nil {
				return err
			}
		case existing == nil:
			// Removal(s) referred to a subject with no indexed document, but
			// adds for the same subject are still real facts now present in
			// the triple store; build the document from those and only warn
			// about the spurious removes.
			s.logger().WithField("subject", tag).Warn("remove requested for subject with no existing document")
			doc := index.BuildDocument(subject, bySubject[tag])
			if doc.Empty() {
				continue
			}
			if err := idx.Insert(doc); err != nil {
				return err
			}
		default:
			if err := idx.Delete(tag); err != nil {
				return err
			}
			facts, err := s.currentFacts(ctx, subject)
			if err != nil {
				return err
			}
			doc := index.BuildDocument(subject, facts)
			if !doc.Empty() {
				if err := idx.Insert(doc); err != nil {
					return err
				}
			}
		}
	}

	if err := idx.Commit(); err != nil {
		return err
	}
	idx.InvalidateReaders()
	return nil
}

// applyClearContext deletes every document that carries any of the
// cleared contexts, then rebuilds from the triple store's current
// truth any of those documents whose remaining context set (after
// removing the cleared contexts and ignoring the null context) is
// non-empty — a "survivor", still asserted in some context that
// was not cleared.
func (s *Synchroniser) applyClearContext(ctx context.Context, idx *index.Store, op *txn.ClearContext) error {
	cleared := make(map[string]bool, len(op.Contexts))
	for _, c := range op.Contexts {
		cleared[c.Tag()] = true
	}

	toDelete := make(map[string]bool)
	survivors := make(map[string]triple.Resource)
	for _, c := range op.Contexts {
		docs, err := idx.DocumentsWithContext(c.Tag())
		if err != nil {
			return err
		}
		for _, doc := range docs {
			toDelete[doc.ID] = true
			for _, otherCtx := range doc.Contexts {
				if otherCtx == triple.NullContext.Tag() || cleared[otherCtx] {
					continue
				}
				survivors[doc.ID] = triple.ParseTag(doc.ID)
				break
			}
		}
	}

	for id := range toDelete {
		if err := idx.Delete(id); err != nil {
			return err
		}
	}
	for _, subject := range survivors {
		facts, err := s.currentFacts(ctx, subject)
		if err != nil {
			return err
		}
		doc := index.BuildDocument(subject, facts)
		if !doc.Empty() {
			if err := idx.Insert(doc); err != nil {
				return err
			}
		}
	}

	if err := idx.Commit(); err != nil {
		return err
	}
	idx.InvalidateReaders()
	return nil
}

// currentFacts reads every statement the triple store currently has
// for subject.
func (s *Synchroniser) currentFacts(ctx context.Context, subject triple.Resource) ([]triple.Fact, error) {
	it, err := s.Triples.Statements(ctx, &subject, nil, nil, s.IncludeInferred)
	if err != nil {
		return nil, xerrors.Errorf("reading statements for %s: %w: %w", subject.Tag(), err, index.ErrStore)
	}
	defer it.Close()

	var facts []triple.Fact
	for it.Next() {
		facts = append(facts, it.Fact())
	}
	if err := it.Error(); err != nil {
		return nil, xerrors.Errorf("reading statements for %s: %w: %w", subject.Tag(), err, index.ErrStore)
	}
	return facts, nil
}
