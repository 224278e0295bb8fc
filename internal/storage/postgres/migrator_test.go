package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadRevisions_Success(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_core.up.sql": {
			Data: []byte("CREATE TABLE test_a (id INT);"),
		},
		"sql/migrations/0001_core.down.sql": {
			Data: []byte("DROP TABLE IF EXISTS test_a;"),
		},
		"sql/migrations/0002_extra.up.sql": {
			Data: []byte("CREATE TABLE test_b (id INT);"),
		},
		"sql/migrations/0002_extra.down.sql": {
			Data: []byte("DROP TABLE IF EXISTS test_b;"),
		},
	}

	revs, err := loadRevisions(fsys)
	if err != nil {
		t.Fatalf("loadRevisions failed: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revs))
	}

	if revs[0].Version != 1 || revs[0].Label != "core" {
		t.Fatalf("unexpected first revision: %+v", revs[0])
	}
	if revs[1].Version != 2 || revs[1].Label != "extra" {
		t.Fatalf("unexpected second revision: %+v", revs[1])
	}
}

func TestLoadRevisions_MissingDown(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_core.up.sql": {
			Data: []byte("CREATE TABLE test_a (id INT);"),
		},
	}

	_, err := loadRevisions(fsys)
	if err == nil {
		t.Fatal("expected error for missing down revision")
	}
	if !strings.Contains(err.Error(), "both up and down") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseRevisionName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		version int64
		label   string
		dir     string
		wantErr bool
	}{
		{name: "0001_checkout_core.up.sql", version: 1, label: "checkout_core", dir: "up"},
		{name: "0002_extra.down.sql", version: 2, label: "extra", dir: "down"},
		{name: "not_a_migration.sql", wantErr: true},
		{name: "0001_core.sideways.sql", wantErr: true},
		{name: "abc_core.up.sql", wantErr: true},
		{name: "0001_.up.sql", wantErr: true},
		{name: "readme.txt", wantErr: true},
	}

	for _, tt := range tests {
		version, label, dir, err := parseRevisionName(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseRevisionName(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRevisionName(%q): %v", tt.name, err)
			continue
		}
		if version != tt.version || label != tt.label || dir != tt.dir {
			t.Errorf("parseRevisionName(%q) = (%d, %q, %q), want (%d, %q, %q)",
				tt.name, version, label, dir, tt.version, tt.label, tt.dir)
		}
	}
}

func TestEmbeddedRevisionsAreComplete(t *testing.T) {
	t.Parallel()

	revs, err := loadRevisions(revisionFiles)
	if err != nil {
		t.Fatalf("embedded revisions failed to load: %v", err)
	}
	if len(revs) == 0 {
		t.Fatal("no embedded revisions found")
	}
	for i, rev := range revs {
		if rev.Version != int64(i+1) {
			t.Errorf("revision versions must be contiguous, got %d at position %d", rev.Version, i)
		}
	}
}
