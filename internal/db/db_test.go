package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/kiracore/tracker/internal/idgen"
	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/store"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Init(); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, cleanup
}

// populatedStore builds a small workspace: one project, two issues, one
// sprint holding the first issue, and a selection.
func populatedStore(t *testing.T) *store.Store {
	t.Helper()
	clock := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	s := store.New(
		store.WithIDGenerator(idgen.NewSequence()),
		store.WithClock(func() time.Time { return clock }),
	)

	alice := s.AddUser(store.UserDraft{Name: "Alice", Email: "alice@example.com", Role: model.RoleAdmin})
	s.SetCurrentUser(alice)
	p := s.AddProject(store.ProjectDraft{Key: "ENG", Name: "Engine", Lead: alice, Members: []model.User{alice}})
	s.SetCurrentProject(p)
	s.AddLabel(store.LabelDraft{Name: "backend", Color: "#10b981"})
	s.AddWorkspace(store.WorkspaceDraft{Name: "Acme", Slug: "acme"})

	first := s.AddIssue(store.IssueDraft{Title: "Fix crash", Type: model.TypeBug, Reporter: alice, StoryPoints: store.Ptr(3)})
	second := s.AddIssue(store.IssueDraft{Title: "Write docs", Reporter: alice})
	sp := s.AddSprint(store.SprintDraft{Name: "Sprint 1"})
	s.MoveIssueToSprint(first.ID, sp.ID)
	s.StartSprint(sp.ID)
	s.AddComment(first.ID, "on it")
	s.ToggleIssueSelection(second.ID)

	return s
}

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer db.Close()

	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}
}

func TestOpen_DefaultPath(t *testing.T) {
	defaultPath := DefaultDBPath()
	if defaultPath == "" {
		t.Error("DefaultDBPath() returned empty string")
	}

	if !filepath.IsAbs(defaultPath) {
		t.Error("DefaultDBPath() should return absolute path")
	}
}

func TestInit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	tables := append([]string{"session", "snapshot_history", "cfd_snapshots", "schema_version"}, collectionTables...)
	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		if err != nil {
			t.Errorf("Table %q should exist: %v", table, err)
		}
	}

	// Second Init is a no-op
	if err := db.Init(); err != nil {
		t.Errorf("Init() second call error: %v", err)
	}
}

func TestLoadSnapshot_Empty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	snap, err := db.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}

	if snap.Issues == nil || len(snap.Issues) != 0 {
		t.Errorf("Issues = %v, want empty non-nil slice", snap.Issues)
	}
	if snap.SelectedIssues == nil {
		t.Error("SelectedIssues should be non-nil")
	}
	if snap.CurrentProject != nil || snap.CurrentUser != nil {
		t.Error("current project and user should be unset")
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	want := populatedStore(t).Snapshot()

	if err := db.SaveSnapshot(ctx, want); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	got, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}

	if len(got.Issues) != 2 {
		t.Fatalf("len(Issues) = %d, want 2", len(got.Issues))
	}
	// Order is preserved: newest issue first
	for i := range want.Issues {
		if got.Issues[i].Key != want.Issues[i].Key {
			t.Errorf("Issues[%d].Key = %q, want %q", i, got.Issues[i].Key, want.Issues[i].Key)
		}
	}

	fixCrash := got.Issues[1]
	if fixCrash.Sprint != "Sprint 1" {
		t.Errorf("issue sprint = %q, want %q", fixCrash.Sprint, "Sprint 1")
	}
	if fixCrash.Points() != 3 {
		t.Errorf("issue points = %d, want 3", fixCrash.Points())
	}
	if len(fixCrash.Comments) != 1 || fixCrash.Comments[0].Content != "on it" {
		t.Errorf("issue comments = %+v", fixCrash.Comments)
	}

	if len(got.Sprints) != 1 || got.Sprints[0].Status != model.SprintActive {
		t.Fatalf("Sprints = %+v", got.Sprints)
	}
	if len(got.Sprints[0].Issues) != 1 || got.Sprints[0].Issues[0] != fixCrash.Key {
		t.Errorf("sprint issues = %v, want [%s]", got.Sprints[0].Issues, fixCrash.Key)
	}

	if got.CurrentProject == nil || got.CurrentProject.Key != "ENG" {
		t.Errorf("CurrentProject = %+v, want ENG", got.CurrentProject)
	}
	if got.CurrentUser == nil || got.CurrentUser.Name != "Alice" {
		t.Errorf("CurrentUser = %+v, want Alice", got.CurrentUser)
	}
	if len(got.SelectedIssues) != 1 || got.SelectedIssues[0] != want.SelectedIssues[0] {
		t.Errorf("SelectedIssues = %v, want %v", got.SelectedIssues, want.SelectedIssues)
	}
	if len(got.Labels) != 1 || len(got.Workspaces) != 1 || len(got.Users) != 1 {
		t.Errorf("labels/workspaces/users = %d/%d/%d, want 1/1/1", len(got.Labels), len(got.Workspaces), len(got.Users))
	}
}

func TestSaveSnapshot_ReplacesRows(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	s := populatedStore(t)
	if err := db.SaveSnapshot(ctx, s.Snapshot()); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	issue := s.Snapshot().Issues[0]
	s.DeleteIssue(issue.ID)
	if err := db.SaveSnapshot(ctx, s.Snapshot()); err != nil {
		t.Fatalf("SaveSnapshot() second call error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM issues").Scan(&count)
	if count != 1 {
		t.Errorf("issue rows = %d, want 1", count)
	}

	// Deleting the selected issue pruned the selection
	got, _ := db.LoadSnapshot(ctx)
	if len(got.SelectedIssues) != 0 {
		t.Errorf("SelectedIssues = %v, want empty", got.SelectedIssues)
	}
}

func TestLoadInto(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := db.SaveSnapshot(ctx, populatedStore(t).Snapshot()); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	fresh := store.New(store.WithIDGenerator(idgen.NewSequence()))
	published := 0
	fresh.Subscribe(func(store.Snapshot) { published++ })

	if err := db.LoadInto(ctx, fresh); err != nil {
		t.Fatalf("LoadInto() error: %v", err)
	}

	if published != 1 {
		t.Errorf("published = %d, want 1", published)
	}
	if _, ok := fresh.IssueByKey("ENG-101"); !ok {
		t.Error("ENG-101 should be loaded")
	}

	// Key generation continues from the loaded issues
	next := fresh.AddIssue(store.IssueDraft{Title: "after load"})
	if next.Key != "ENG-103" {
		t.Errorf("next key = %q, want %q", next.Key, "ENG-103")
	}
}

// Each CLI run loads into a store with a fresh sequence generator, adds an
// issue and saves; ids must stay unique across runs.
func TestLoadInto_SequenceIDsAcrossRuns(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := db.SaveSnapshot(ctx, populatedStore(t).Snapshot()); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	seen := make(map[string]bool)
	for run := 1; run <= 3; run++ {
		gen, err := idgen.New("sequence")
		if err != nil {
			t.Fatalf("idgen.New() error: %v", err)
		}
		s := store.New(store.WithIDGenerator(gen))
		if err := db.LoadInto(ctx, s); err != nil {
			t.Fatalf("run %d: LoadInto() error: %v", run, err)
		}
		for _, issue := range s.Snapshot().Issues {
			seen[issue.ID] = true
		}

		issue := s.AddIssue(store.IssueDraft{Title: fmt.Sprintf("run %d", run)})
		if seen[issue.ID] {
			t.Fatalf("run %d: AddIssue() reused id %q", run, issue.ID)
		}
		seen[issue.ID] = true

		if err := db.SaveSnapshot(ctx, s.Snapshot()); err != nil {
			t.Fatalf("run %d: SaveSnapshot() error: %v", run, err)
		}
	}

	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if len(snap.Issues) != 5 {
		t.Errorf("len(Issues) = %d, want 5", len(snap.Issues))
	}
}

func TestHistory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	calls := 0
	db.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}

	s := populatedStore(t)
	db.SaveSnapshot(ctx, store.Snapshot{})
	db.SaveSnapshot(ctx, s.Snapshot())

	entries, err := db.History(ctx, 10)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(History) = %d, want 2", len(entries))
	}

	latest := entries[0]
	if latest.Issues != 2 || latest.Sprints != 1 || latest.Projects != 1 {
		t.Errorf("latest counts = %+v", latest)
	}
	if !latest.SavedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("latest SavedAt = %v, want %v", latest.SavedAt, base.Add(2*time.Minute))
	}
	if latest.ID == "" || latest.ID == entries[1].ID {
		t.Errorf("history ids should be unique, got %q and %q", latest.ID, entries[1].ID)
	}
}

func TestGetStats(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.SaveSnapshot(context.Background(), populatedStore(t).Snapshot()); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}

	if stats.Collections["issues"] != 2 {
		t.Errorf("Collections[issues] = %d, want 2", stats.Collections["issues"])
	}
	if stats.ByStatus["todo"] != 2 {
		t.Errorf("ByStatus[todo] = %d, want 2", stats.ByStatus["todo"])
	}
	if stats.Saves != 1 {
		t.Errorf("Saves = %d, want 1", stats.Saves)
	}
	if stats.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", stats.SchemaVersion, SchemaVersion)
	}
	if stats.LastSaved.IsZero() {
		t.Error("LastSaved should be set")
	}
}

func TestExportImport(t *testing.T) {
	src, cleanupSrc := setupTestDB(t)
	defer cleanupSrc()

	ctx := context.Background()
	if err := src.SaveSnapshot(ctx, populatedStore(t).Snapshot()); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	var buf bytes.Buffer
	if err := src.Export(&buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if data.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", data.SchemaVersion, SchemaVersion)
	}

	dst, cleanupDst := setupTestDB(t)
	defer cleanupDst()

	if err := dst.Import(&buf); err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	got, err := dst.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if len(got.Issues) != 2 || len(got.Sprints) != 1 {
		t.Errorf("imported %d issues and %d sprints, want 2 and 1", len(got.Issues), len(got.Sprints))
	}
}

func TestImport_NewerSchema(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	doc := `{"schema_version": 99, "workspace": {}}`
	if err := db.Import(bytes.NewBufferString(doc)); err == nil {
		t.Error("expected error for newer schema version")
	}
}

func TestBackupRestore(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := db.SaveSnapshot(ctx, populatedStore(t).Snapshot()); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	backupPath := filepath.Join(t.TempDir(), "backups", "tracker.db")
	if err := db.Backup(backupPath); err != nil {
		t.Fatalf("Backup() error: %v", err)
	}

	// Wipe the live database, then restore
	if err := db.SaveSnapshot(ctx, store.Snapshot{}); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	if err := db.Restore(backupPath); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}

	reopened, err := Open(db.Path())
	if err != nil {
		t.Fatalf("Open() after restore error: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if len(got.Issues) != 2 {
		t.Errorf("restored %d issues, want 2", len(got.Issues))
	}
}

func TestOptimize(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.SaveSnapshot(context.Background(), populatedStore(t).Snapshot()); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	if err := db.Optimize(); err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}

	snap, err := db.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if len(snap.Issues) != 2 {
		t.Errorf("LoadSnapshot() after Optimize returned %d issues, want 2", len(snap.Issues))
	}
}
