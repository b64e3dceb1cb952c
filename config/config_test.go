package config_test

import (
	"testing"

	"github.com/foliotext/tripleindex/config"
)

func TestFromFlagsRejectsNeitherDirSet(t *testing.T) {
	if _, err := config.FromFlags("", false, "", false); err == nil {
		t.Fatalf("expected an error when neither lucenedir nor useramdir is set")
	}
}

func TestFromFlagsRejectsBothDirsSet(t *testing.T) {
	if _, err := config.FromFlags("/var/lib/index", true, "", false); err == nil {
		t.Fatalf("expected an error when both lucenedir and useramdir are set")
	}
}

func TestFromFlagsAcceptsRAMDir(t *testing.T) {
	c, err := config.FromFlags("", true, "standard", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.UseRAMDir || c.LuceneDir != "" {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.Analyzer != "standard" || !c.IncompleteQueryFail {
		t.Fatalf("unexpected config: %+v", c)
	}
}

func TestIndexOptionsCarriesValuesThrough(t *testing.T) {
	c, err := config.FromFlags("/var/lib/index", false, "standard", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts := c.IndexOptions(nil)
	if opts.Dir != "/var/lib/index" || opts.RAMDir || opts.Analyzer != "standard" {
		t.Fatalf("unexpected options: %+v", opts)
	}
}
