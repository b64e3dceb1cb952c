package algebra_test

import (
	"testing"

	"github.com/foliotext/tripleindex/algebra"
	"github.com/foliotext/tripleindex/triple"
)

func TestWalkCollectsPatternsThroughWrappers(t *testing.T) {
	p1 := algebra.StatementPattern{Subject: algebra.Named("s1")}
	p2 := algebra.StatementPattern{Subject: algebra.Named("s2")}
	expr := &algebra.Slice{
		Arg: algebra.Distinct{Arg: &algebra.Join{
			Left:  p1,
			Right: &p2,
		}},
		Limit: 10,
	}

	var got []algebra.StatementPattern
	algebra.Walk(expr, func(p *algebra.StatementPattern) {
		got = append(got, *p)
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(got))
	}
	if got[0] != p1 || got[1] != p2 {
		t.Fatalf("unexpected patterns collected: %+v", got)
	}
}

func TestReplaceSubstitutesMatchedPatterns(t *testing.T) {
	target := algebra.StatementPattern{Subject: algebra.Named("matches")}
	other := algebra.StatementPattern{Subject: algebra.Named("other")}
	expr := &algebra.Join{Left: target, Right: other}

	out := algebra.Replace(expr, func(p *algebra.StatementPattern) bool {
		return p.Subject.Name == "matches"
	}, algebra.SingletonSet{})

	join, ok := out.(*algebra.Join)
	if !ok {
		t.Fatalf("expected *Join, got %T", out)
	}
	if _, ok := join.Left.(algebra.SingletonSet); !ok {
		t.Fatalf("expected Left to be replaced with SingletonSet, got %T", join.Left)
	}
	if got, ok := join.Right.(algebra.StatementPattern); !ok || got != other {
		t.Fatalf("expected Right to be left untouched, got %#v", join.Right)
	}
}

// TestPatternIdentityAcrossIndependentWalks guards the bug where a value-typed
// StatementPattern node's address, taken inside Walk's own stack frame,
// could never compare equal across two separate Walk calls. Patterns must
// be compared by value, not by the *StatementPattern pointer Walk hands to
// the visitor.
func TestPatternIdentityAcrossIndependentWalks(t *testing.T) {
	pattern := algebra.StatementPattern{
		Subject:   algebra.Const(triple.ResourceTerm(triple.URI("http://example.com/s"))),
		Predicate: algebra.Const(triple.ResourceTerm(triple.URI("http://example.com/p"))),
	}
	expr := pattern

	var first, second algebra.StatementPattern
	algebra.Walk(expr, func(p *algebra.StatementPattern) { first = *p })
	algebra.Walk(expr, func(p *algebra.StatementPattern) { second = *p })

	if first != second {
		t.Fatalf("expected two independent Walk calls to observe an equal pattern value, got %+v != %+v", first, second)
	}
}
