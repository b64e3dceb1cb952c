package query

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/foliotext/tripleindex/algebra"
)

// ErrInvalidQuery mirrors index.ErrInvalidQuery for this package's own
// validation failures (incomplete or malformed groups when strict
// failure is requested, unrecognised query-type values). Duplicate
// patterns are not detected: a later pattern with the same reserved
// predicate in a group replaces the earlier one.
var ErrInvalidQuery = xerrors.New("query: invalid full-text query pattern")

// QuerySpec holds everything extracted from one group of reserved
// full-text patterns sharing a single "search" variable: which
// variable should be bound to the matching resource, the derived
// Lucene-style query string, the optional property restriction, and
// the names of the score/snippet variables to bind, if requested.
// Ported from QuerySpec.java / QuerySpecBuilder.java.
type QuerySpec struct {
	MatchesVariable string
	QueryString     string
	PropertyURI     string // empty means "search the aggregated text"
	ScoreVariable   string
	SnippetVariable string

	// patterns is every StatementPattern this QuerySpec was built
	// from, compared by value (not pointer identity, which does not
	// survive a tree built from value rather than pointer nodes); the
	// residual query replaces every one of them with
	// algebra.SingletonSet{}.
	patterns []algebra.StatementPattern
}

// Patterns returns every pattern this spec was extracted from.
func (qs *QuerySpec) Patterns() []algebra.StatementPattern { return qs.patterns }

type group struct {
	searchVar    string
	matches      *algebra.StatementPattern
	queryP       *algebra.StatementPattern
	propertyP    *algebra.StatementPattern
	scoreP       *algebra.StatementPattern
	snippetP     *algebra.StatementPattern
	typeP        *algebra.StatementPattern
	fromP, toP   *algebra.StatementPattern
	latP, longP  *algebra.StatementPattern
	toleranceP   *algebra.StatementPattern
}

// Build walks expr, recognises every reserved-vocabulary pattern
// group, and returns one QuerySpec per group. incompleteQueryFail
// selects whether an incomplete/malformed group raises ErrInvalidQuery
// (true) or is logged and skipped (false), per the incompletequeryfail
// config key.
func Build(expr algebra.TupleExpr, incompleteQueryFail bool, log *logrus.Entry) ([]*QuerySpec, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	groups := map[string]*group{}
	var order []string

	groupFor := func(searchVar string) *group {
		g, ok := groups[searchVar]
		if !ok {
			g = &group{searchVar: searchVar}
			groups[searchVar] = g
			order = append(order, searchVar)
		}
		return g
	}

	algebra.Walk(expr, func(p *algebra.StatementPattern) {
		if !p.Predicate.Bound || p.Predicate.Value.IsLiteral {
			return
		}
		pred := p.Predicate.Value.Resource.Tag()

		switch pred {
		case PredMatches:
			g := groupFor(p.Object.Name)
			g.matches = p
		case PredQuery:
			groupFor(p.Subject.Name).queryP = p
		case PredProperty:
			groupFor(p.Subject.Name).propertyP = p
		case PredScore:
			groupFor(p.Subject.Name).scoreP = p
		case PredSnippet:
			groupFor(p.Subject.Name).snippetP = p
		case PredType:
			groupFor(p.Subject.Name).typeP = p
		case PredRangeFrom:
			groupFor(p.Subject.Name).fromP = p
		case PredRangeTo:
			groupFor(p.Subject.Name).toP = p
		case PredGeoLat:
			groupFor(p.Subject.Name).latP = p
		case PredGeoLong:
			groupFor(p.Subject.Name).longP = p
		case PredGeoTolerance:
			groupFor(p.Subject.Name).toleranceP = p
		}
	})

	var specs []*QuerySpec
	for _, key := range order {
		g := groups[key]
		spec, err := g.build()
		if err != nil {
			if incompleteQueryFail {
				return nil, err
			}
			log.WithError(err).WithField("search_var", key).Warn("skipping incomplete full-text query pattern group")
			continue
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (g *group) build() (*QuerySpec, error) {
	if g.matches == nil {
		return nil, xerrors.Errorf("pattern group %q has no fts:matches pattern: %w", g.searchVar, ErrInvalidQuery)
	}
	if g.typeP != nil {
		if !g.typeP.Object.Bound || g.typeP.Object.Value.IsLiteral || g.typeP.Object.Value.Resource.Tag() != TypeLuceneQuery {
			return nil, xerrors.Errorf("pattern group %q has an unrecognised fts:type value: %w", g.searchVar, ErrInvalidQuery)
		}
	}

	queryString, err := g.queryString()
	if err != nil {
		return nil, err
	}

	spec := &QuerySpec{
		MatchesVariable: g.matches.Subject.Name,
		QueryString:     queryString,
		patterns:        []algebra.StatementPattern{*g.matches},
	}
	if g.propertyP != nil {
		if !g.propertyP.Object.Bound || g.propertyP.Object.Value.IsLiteral {
			return nil, xerrors.Errorf("pattern group %q has a non-URI fts:property value: %w", g.searchVar, ErrInvalidQuery)
		}
		spec.PropertyURI = g.propertyP.Object.Value.Resource.Tag()
		spec.patterns = append(spec.patterns, *g.propertyP)
	}
	if g.scoreP != nil {
		spec.ScoreVariable = g.scoreP.Object.Name
		spec.patterns = append(spec.patterns, *g.scoreP)
	}
	if g.snippetP != nil {
		spec.SnippetVariable = g.snippetP.Object.Name
		spec.patterns = append(spec.patterns, *g.snippetP)
	}
	for _, p := range []*algebra.StatementPattern{g.queryP, g.typeP, g.fromP, g.toP, g.latP, g.longP, g.toleranceP} {
		if p != nil {
			spec.patterns = append(spec.patterns, *p)
		}
	}
	return spec, nil
}

// queryString derives the Lucene-style query string for this group,
// in the original's priority order: an explicit fts:query literal
// wins; otherwise a rangeQueryFrom/rangeQueryTo pair becomes a single
// bracket range; otherwise a geo box becomes two conjoined bracket
// ranges.
func (g *group) queryString() (string, error) {
	switch {
	case g.queryP != nil:
		if !g.queryP.Object.Bound || !g.queryP.Object.Value.IsLiteral {
			return "", xerrors.Errorf("fts:query value must be a literal: %w", ErrInvalidQuery)
		}
		return g.queryP.Object.Value.Lexical, nil

	case g.fromP != nil || g.toP != nil:
		if g.fromP == nil || g.toP == nil {
			return "", xerrors.Errorf("rangeQueryFrom/rangeQueryTo must both be present: %w", ErrInvalidQuery)
		}
		from, err := literalValue(g.fromP.Object)
		if err != nil {
			return "", err
		}
		to, err := literalValue(g.toP.Object)
		if err != nil {
			return "", err
		}
		if from > to {
			from, to = to, from
		}
		return bracketRange(from, to), nil

	case g.latP != nil || g.longP != nil:
		if g.latP == nil || g.longP == nil {
			return "", xerrors.Errorf("geoDegreesLat/geoDegreesLong must both be present: %w", ErrInvalidQuery)
		}
		lat, err := literalValue(g.latP.Object)
		if err != nil {
			return "", err
		}
		long, err := literalValue(g.longP.Object)
		if err != nil {
			return "", err
		}
		tolerance := "0"
		if g.toleranceP != nil {
			tolerance, err = literalValue(g.toleranceP.Object)
			if err != nil {
				return "", err
			}
		}
		return geoBox(lat, long, tolerance)

	default:
		return "", xerrors.Errorf("pattern group has neither fts:query, a range, nor a geo box: %w", ErrInvalidQuery)
	}
}

func literalValue(v algebra.Var) (string, error) {
	if !v.Bound || !v.Value.IsLiteral {
		return "", xerrors.Errorf("expected a bound literal value: %w", ErrInvalidQuery)
	}
	return v.Value.Lexical, nil
}

func bracketRange(from, to string) string {
	return fmt.Sprintf("[%s TO %s]", from, to)
}

func geoBox(lat, long, tolerance string) (string, error) {
	var latF, longF, tolF float64
	if _, err := fmt.Sscanf(lat, "%g", &latF); err != nil {
		return "", xerrors.Errorf("geoDegreesLat %q is not numeric: %w", lat, ErrInvalidQuery)
	}
	if _, err := fmt.Sscanf(long, "%g", &longF); err != nil {
		return "", xerrors.Errorf("geoDegreesLong %q is not numeric: %w", long, ErrInvalidQuery)
	}
	if _, err := fmt.Sscanf(tolerance, "%g", &tolF); err != nil {
		return "", xerrors.Errorf("geoDegreesTolerance %q is not numeric: %w", tolerance, ErrInvalidQuery)
	}
	latRange := bracketRange(trimFloat(latF-tolF), trimFloat(latF+tolF))
	longRange := bracketRange(trimFloat(longF-tolF), trimFloat(longF+tolF))
	return latRange + " " + longRange, nil
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return strings.TrimSuffix(s, ".0")
}
