package index

import (
	"os"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// Options configures a Store. Exactly one of Dir/RAMDir must be
// chosen, matching the mutually exclusive lucenedir/useramdir config
// keys.
type Options struct {
	// Dir is the on-disk path the index is persisted under.
	Dir string
	// RAMDir selects an in-memory index instead of an on-disk one.
	RAMDir bool
	// Analyzer names the bleve analyzer used to tokenize property and
	// text fields; empty selects bleve's default (standard) analyzer.
	Analyzer string
	// Clock is used for commit-latency bookkeeping; defaults to the
	// wall clock.
	Clock clock.Clock
	// Logger receives structured diagnostics; defaults to an entry on
	// logrus's standard logger.
	Logger *logrus.Entry
}

func (o Options) validate() error {
	if o.Dir == "" && !o.RAMDir {
		return xerrors.Errorf("neither lucenedir nor useramdir set: %w", ErrConfig)
	}
	if o.Dir != "" && o.RAMDir {
		return xerrors.Errorf("both lucenedir and useramdir set: %w", ErrConfig)
	}
	return nil
}

// Store owns the full-text index handle: the bleve index opened by
// Open, the single mutex every mutating call serialises through, and
// the generation counter invalidate_readers bumps. This is component A,
// the Index Store.
//
// bleve's Index already conflates what the original Lucene-backed
// implementation kept as three separate lazily-cached handles (reader,
// searcher, writer): every bleve.Index call always observes the
// latest committed state. InvalidateReaders is kept as an explicit
// method anyway, both to satisfy the component's documented contract
// and to give the staleness/generation bookkeeping a place to live,
// but it does not need to close and reopen anything the way a Lucene
// IndexSearcher would.
type Store struct {
	opts Options

	mu         sync.Mutex
	idx        bleve.Index
	generation uint64
	lastCommit time.Time

	commitLatency prometheusObserver
}

// prometheusObserver is the minimal surface Store needs from a
// histogram metric; defined here rather than importing prometheus
// directly so Store has no hard dependency on how metrics are wired up
// by cmd/.
type prometheusObserver interface {
	Observe(float64)
}

// Open creates or opens the index described by opts.
func Open(opts Options) (*Store, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}

	mapping, err := buildMapping(opts.Analyzer)
	if err != nil {
		return nil, err
	}

	var idx bleve.Index
	if opts.RAMDir {
		idx, err = bleve.NewMemOnly(mapping)
		if err != nil {
			return nil, xerrors.Errorf("opening in-memory index: %w: %w", err, ErrIndexIO)
		}
	} else {
		idx, err = openOrCreate(opts.Dir, mapping, opts.Logger)
		if err != nil {
			return nil, err
		}
	}

	return &Store{opts: opts, idx: idx, lastCommit: opts.Clock.Now()}, nil
}

func openOrCreate(dir string, mapping mapping.IndexMapping, logger *logrus.Entry) (bleve.Index, error) {
	idx, err := bleve.Open(dir)
	switch {
	case err == nil:
		return idx, nil
	case xerrors.Is(err, bleve.ErrorIndexPathDoesNotExist):
		idx, err = bleve.New(dir, mapping)
		if err != nil {
			return nil, xerrors.Errorf("creating index at %s: %w: %w", dir, err, ErrIndexIO)
		}
		return idx, nil
	case xerrors.Is(err, bleve.ErrorIndexMetaMissing), xerrors.Is(err, bleve.ErrorIndexMetaCorrupt):
		// Stale/partial index directory; clear it and recreate, the
		// way the original recovers from a stale write lock left
		// behind by a crashed writer.
		logger.WithField("dir", dir).Warn("index metadata missing or corrupt, recreating index")
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			return nil, xerrors.Errorf("clearing stale index at %s: %w: %w", dir, rmErr, ErrIndexIO)
		}
		idx, err = bleve.New(dir, mapping)
		if err != nil {
			return nil, xerrors.Errorf("recreating index at %s: %w: %w", dir, err, ErrIndexIO)
		}
		return idx, nil
	default:
		return nil, xerrors.Errorf("opening index at %s: %w: %w", dir, err, ErrIndexIO)
	}
}

// WithWriter runs fn holding the Store's single mutex for its entire
// duration. The Synchroniser wraps one whole buffer-apply pass in a
// single WithWriter call so nothing else can interleave a mutation
// mid-apply.
func (s *Store) WithWriter(fn func(*Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// Insert writes doc to the index, replacing any existing document
// with the same ID. A document with no indexed literal is never
// written; callers must delete instead.
func (s *Store) Insert(doc *Document) error {
	if doc.Empty() {
		return xerrors.Errorf("refusing to index subject %s with no literal facts: %w", doc.ID, ErrCorruptState)
	}
	if err := s.idx.Index(doc.ID, doc.toBleve()); err != nil {
		return xerrors.Errorf("indexing document %s: %w: %w", doc.ID, err, ErrIndexIO)
	}
	return nil
}

// Delete removes the document for the given subject id tag, if one
// exists.
func (s *Store) Delete(idTag string) error {
	if err := s.idx.Delete(idTag); err != nil {
		return xerrors.Errorf("deleting document %s: %w: %w", idTag, err, ErrIndexIO)
	}
	return nil
}

// Clear drops every document in the index in one step, the Index
// Store side of a buffered ClearAll operation.
func (s *Store) Clear() error {
	for {
		ids, err := s.allIDs()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		batch := s.idx.NewBatch()
		for _, id := range ids {
			batch.Delete(id)
		}
		if err := s.idx.Batch(batch); err != nil {
			return xerrors.Errorf("clearing index: %w: %w", err, ErrIndexIO)
		}
	}
}

// Commit finalises whatever has been written since the last commit and
// records commit latency against the Store's clock/metric.
func (s *Store) Commit() error {
	start := s.opts.Clock.Now()
	// bleve auto-commits every Index/Delete/Batch call; there is no
	// separate deferred-commit step to flush here, unlike the
	// original's IndexWriter#commit. This method still exists so
	// callers (and the staleness/latency bookkeeping below) have a
	// single, well-defined "a mutation pass just finished" moment to
	// hang off of.
	s.lastCommit = s.opts.Clock.Now()
	if s.commitLatency != nil {
		s.commitLatency.Observe(s.lastCommit.Sub(start).Seconds())
	}
	return nil
}

// InvalidateReaders bumps the Store's generation counter so any
// external cache keyed on it knows to refetch. See the Store doc
// comment for why this does not need to close/reopen a bleve handle.
func (s *Store) InvalidateReaders() {
	s.generation++
}

// Generation returns the current generation counter, incremented by
// every InvalidateReaders call.
func (s *Store) Generation() uint64 { return s.generation }

// HasDocument reports whether a document already exists for the given
// subject, returning it if so.
func (s *Store) HasDocument(idTag string) (*Document, error) {
	return s.GetDocument(idTag)
}

// GetDocument fetches the document for idTag, or (nil, nil) if none
// exists.
func (s *Store) GetDocument(idTag string) (*Document, error) {
	req := bleve.NewSearchRequest(query.NewDocIDQuery([]string{idTag}))
	req.Fields = []string{"*"}
	req.Size = 2
	res, err := s.idx.Search(req)
	if err != nil {
		return nil, xerrors.Errorf("looking up document %s: %w: %w", idTag, err, ErrIndexIO)
	}
	if len(res.Hits) == 0 {
		return nil, nil
	}
	if len(res.Hits) > 1 {
		return nil, xerrors.Errorf("more than one document for subject %s: %w", idTag, ErrCorruptState)
	}
	return hitToDocument(res.Hits[0]), nil
}

// DocumentsWithContext returns every document carrying ctxTag among
// its contexts, used by the Synchroniser's context-clear path.
func (s *Store) DocumentsWithContext(ctxTag string) ([]*Document, error) {
	const pageSize = 10000
	q := bleve.NewTermQuery(ctxTag)
	q.SetField(FieldContext)
	docs := make([]*Document, 0)
	for from := 0; ; from += pageSize {
		req := bleve.NewSearchRequest(q)
		req.Fields = []string{"*"}
		req.From = from
		req.Size = pageSize
		res, err := s.idx.Search(req)
		if err != nil {
			return nil, xerrors.Errorf("listing documents in context %s: %w: %w", ctxTag, err, ErrIndexIO)
		}
		for _, h := range res.Hits {
			docs = append(docs, hitToDocument(h))
		}
		if len(res.Hits) < pageSize {
			return docs, nil
		}
	}
}

func (s *Store) allIDs() ([]string, error) {
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Fields = []string{FieldID}
	req.Size = 10000
	res, err := s.idx.Search(req)
	if err != nil {
		return nil, xerrors.Errorf("listing documents: %w: %w", err, ErrIndexIO)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Close releases the underlying index handle. Any independent release
// failures (the bleve equivalent of releasing a cached reader, a
// cached searcher and a cached writer) are aggregated rather than
// short-circuited on the first error, mirroring the nested
// try/finally shutdown block in the original implementation.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *multierror.Error
	if err := s.idx.Close(); err != nil {
		result = multierror.Append(result, xerrors.Errorf("closing index: %w: %w", err, ErrIndexIO))
	}
	return result.ErrorOrNil()
}

func hitToDocument(hit *search.DocumentMatch) *Document {
	doc := &Document{Fields: make(map[string][]string)}
	for field, val := range hit.Fields {
		switch field {
		case FieldID:
			doc.ID = asString(val)
		case FieldContext:
			doc.Contexts = asStrings(val)
		case FieldText:
			doc.Text = asStrings(val)
		default:
			doc.Fields[field] = asStrings(val)
		}
	}
	if doc.ID == "" {
		doc.ID = hit.ID
	}
	return doc
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asStrings(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	default:
		return nil
	}
}

func buildMapping(analyzerName string) (mapping.IndexMapping, error) {
	mapping := bleve.NewIndexMapping()
	if analyzerName != "" {
		if mapping.AnalyzerNamed(analyzerName) == nil {
			return nil, xerrors.Errorf("unknown analyzer %q: %w", analyzerName, ErrConfig)
		}
		mapping.DefaultAnalyzer = analyzerName
	}
	mapping.DefaultField = FieldText
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = "keyword"
	idFieldMapping.Store = true
	mapping.DefaultMapping.AddFieldMappingsAt(FieldID, idFieldMapping)

	ctxFieldMapping := bleve.NewTextFieldMapping()
	ctxFieldMapping.Analyzer = "keyword"
	ctxFieldMapping.Store = true
	mapping.DefaultMapping.AddFieldMappingsAt(FieldContext, ctxFieldMapping)

	return mapping, nil
}

// SetCommitLatencyObserver wires a metric (e.g. a prometheus
// histogram) to record commit durations against. Optional; Commit is a
// no-op observer when none is set.
func (s *Store) SetCommitLatencyObserver(obs prometheusObserver) {
	s.commitLatency = obs
}
