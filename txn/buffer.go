// Package txn implements the Transaction Buffer (component C): it
// coalesces add/remove/clear-context/clear-all operations issued
// during a single transaction so the Synchroniser can apply them all
// at once, in order, at commit time.
package txn

import (
	"sync"

	"github.com/foliotext/tripleindex/triple"
)

// Operation is one entry of a Buffer's operation log.
type Operation interface{ isOperation() }

// AddRemove coalesces every Add/Remove call made between two clear
// operations (or since the buffer was last reset) into one set of
// facts to add and one set of facts to remove, with opposing calls on
// the same fact cancelling each other out.
type AddRemove struct {
	added   map[string]triple.Fact
	removed map[string]triple.Fact
}

func (*AddRemove) isOperation() {}

// Added returns every fact queued for addition.
func (ar *AddRemove) Added() []triple.Fact { return values(ar.added) }

// Removed returns every fact queued for removal.
func (ar *AddRemove) Removed() []triple.Fact { return values(ar.removed) }

func values(m map[string]triple.Fact) []triple.Fact {
	out := make([]triple.Fact, 0, len(m))
	for _, f := range m {
		out = append(out, f)
	}
	return out
}

func (ar *AddRemove) add(f triple.Fact) {
	key := f.Key()
	if _, ok := ar.removed[key]; ok {
		delete(ar.removed, key)
		return
	}
	ar.added[key] = f
}

func (ar *AddRemove) remove(f triple.Fact) {
	key := f.Key()
	if _, ok := ar.added[key]; ok {
		delete(ar.added, key)
		return
	}
	ar.removed[key] = f
}

// ClearContext drops every fact asserted in any of the given contexts.
type ClearContext struct {
	Contexts []triple.Resource
}

func (*ClearContext) isOperation() {}

// ClearAll drops every fact in the index, regardless of context.
type ClearAll struct{}

func (ClearAll) isOperation() {}

// Buffer is the Transaction Buffer itself: a single mutex-guarded
// append-only log of Operations, ported 1:1 from the original's
// add/remove-cancellation and trailing-clear optimisation.
type Buffer struct {
	mu  sync.Mutex
	ops []Operation
}

// Add queues f for addition. Facts whose object is not a literal are
// ignored: only literal facts ever participate in the full-text
// index.
func (b *Buffer) Add(f triple.Fact) {
	if !f.Object.IsLiteral {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentAddRemove().add(f)
}

// Remove queues f for removal.
func (b *Buffer) Remove(f triple.Fact) {
	if !f.Object.IsLiteral {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentAddRemove().remove(f)
}

// currentAddRemove returns the trailing AddRemove operation, appending
// a fresh one if the log is empty or its last entry is not an
// AddRemove (e.g. immediately after a clear).
func (b *Buffer) currentAddRemove() *AddRemove {
	if n := len(b.ops); n > 0 {
		if ar, ok := b.ops[n-1].(*AddRemove); ok {
			return ar
		}
	}
	ar := &AddRemove{added: make(map[string]triple.Fact), removed: make(map[string]triple.Fact)}
	b.ops = append(b.ops, ar)
	return ar
}

// ClearContext queues a clear of the given contexts. An empty/nil
// slice is equivalent to ClearAll, matching the original's own
// dispatch on an empty contexts array.
func (b *Buffer) ClearContext(contexts []triple.Resource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(contexts) == 0 {
		b.ops = append(b.ops, ClearAll{})
		return
	}
	b.ops = append(b.ops, &ClearContext{Contexts: contexts})
}

// ClearAll queues a clear of every fact in the index.
func (b *Buffer) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = append(b.ops, ClearAll{})
}

// Operations returns the buffered operation log, in the order the
// operations were issued. Callers must not mutate the returned slice.
func (b *Buffer) Operations() []Operation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ops
}

// Optimize drops every operation before a trailing ClearAll: once
// everything is going to be cleared, nothing queued earlier can
// matter.
func (b *Buffer) Optimize() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.ops) - 1; i >= 0; i-- {
		if _, ok := b.ops[i].(ClearAll); ok {
			b.ops = b.ops[i:]
			return
		}
	}
}

// Reset empties the operation log without applying any of it.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops = nil
}
