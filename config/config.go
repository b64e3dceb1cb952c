// Package config validates the four configuration keys the full-text
// index augmentation is initialised with (lucenedir, useramdir,
// analyzer, incompletequeryfail) and turns them into the Options
// structs the index and query packages actually take. Ported from
// LuceneSail.java#initialize.
package config

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/foliotext/tripleindex/index"
)

// ErrConfig mirrors index.ErrConfig for this package's own validation
// failures.
var ErrConfig = xerrors.New("config: invalid configuration")

// Config holds the resolved value of every recognised key, before it
// is turned into the packages' own option types.
type Config struct {
	// LuceneDir is the on-disk directory the index is persisted to.
	// Mutually exclusive with UseRAMDir.
	LuceneDir string

	// UseRAMDir selects an in-memory index instead of an on-disk one.
	// Mutually exclusive with LuceneDir.
	UseRAMDir bool

	// Analyzer names the bleve text analyzer new fields are mapped
	// with. Empty selects the package default.
	Analyzer string

	// IncompleteQueryFail selects whether an incomplete reserved-vocabulary
	// pattern group fails the whole query (true) or is logged and
	// skipped (false).
	IncompleteQueryFail bool
}

// Validate checks that exactly one of LuceneDir/UseRAMDir is set.
func (c Config) Validate() error {
	if c.LuceneDir == "" && !c.UseRAMDir {
		return xerrors.Errorf("exactly one of lucenedir or useramdir must be set: %w", ErrConfig)
	}
	if c.LuceneDir != "" && c.UseRAMDir {
		return xerrors.Errorf("lucenedir and useramdir are mutually exclusive: %w", ErrConfig)
	}
	return nil
}

// IndexOptions turns c into the Options the Index Store is opened
// with.
func (c Config) IndexOptions(log *logrus.Entry) index.Options {
	return index.Options{
		Dir:      c.LuceneDir,
		RAMDir:   c.UseRAMDir,
		Analyzer: c.Analyzer,
		Logger:   log,
	}
}

// FromFlags builds a Config from the four recognised keys, as read
// from whatever source (CLI flags, environment, a properties file) the
// caller resolved them from. Unset numeric/bool fields use their Go
// zero value, matching the original's "absent key means false/default"
// behaviour.
func FromFlags(luceneDir string, useRAMDir bool, analyzer string, incompleteQueryFail bool) (Config, error) {
	c := Config{
		LuceneDir:           luceneDir,
		UseRAMDir:           useRAMDir,
		Analyzer:            analyzer,
		IncompleteQueryFail: incompleteQueryFail,
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
