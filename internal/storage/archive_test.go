package storage

import (
	"bytes"
	"path/filepath"
	"testing"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := OpenArchive(filepath.Join(t.TempDir(), "cstats.db"), nil)
	if err != nil {
		t.Fatalf("OpenArchive() error: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestInsertAndGetRun(t *testing.T) {
	a := openTestArchive(t)

	doc := []byte(`{"hero_stats":{"total_conversations":42},"year":2025}`)
	runID, err := a.InsertRun(doc, "2025-08-26T10:00:00Z", 2025, 42)
	if err != nil {
		t.Fatalf("InsertRun() error: %v", err)
	}
	if runID == "" {
		t.Fatal("InsertRun() returned empty run id")
	}

	got, run, err := a.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if !bytes.Equal(got, doc) {
		t.Errorf("round-tripped snapshot = %s, want %s", got, doc)
	}
	if run.Conversations != 42 || run.Year != 2025 {
		t.Errorf("run meta = %+v", run)
	}
	if run.RawSize != len(doc) {
		t.Errorf("RawSize = %d, want %d", run.RawSize, len(doc))
	}
}

func TestGetRunMissing(t *testing.T) {
	a := openTestArchive(t)
	if _, _, err := a.GetRun("no-such-run"); err == nil {
		t.Fatal("expected an error for an unknown run id")
	}
}

func TestListRunsNewestFirstWithLimit(t *testing.T) {
	a := openTestArchive(t)

	ids := make(map[string]bool)
	for i := 0; i < 3; i++ {
		id, err := a.InsertRun([]byte(`{}`), "2025-08-26T10:00:00Z", 2025, i)
		if err != nil {
			t.Fatalf("InsertRun() error: %v", err)
		}
		ids[id] = true
	}

	runs, err := a.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	for _, r := range runs {
		if !ids[r.RunID] {
			t.Errorf("unknown run id %q in listing", r.RunID)
		}
	}

	all, err := a.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns(0) error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d runs, want 3", len(all))
	}
}
