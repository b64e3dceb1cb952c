package query

import "github.com/foliotext/tripleindex/algebra"

// Residual rewrites expr, replacing every pattern belonging to any of
// specs with algebra.SingletonSet{}, producing the query the
// Synchroniser's underlying triple store actually evaluates once per
// odometer permutation — the original query with every recognised
// reserved full-text pattern collapsed to a tautology.
func Residual(expr algebra.TupleExpr, specs []*QuerySpec) algebra.TupleExpr {
	owned := make(map[algebra.StatementPattern]bool)
	for _, s := range specs {
		for _, p := range s.Patterns() {
			owned[p] = true
		}
	}
	return algebra.Replace(expr, func(p *algebra.StatementPattern) bool {
		return owned[*p]
	}, algebra.SingletonSet{})
}
