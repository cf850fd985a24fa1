package db

import (
	"context"
	"testing"
	"time"
)

func TestCFDSnapshots(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	last, err := db.LastCFDSnapshot(ctx, "p1")
	if err != nil {
		t.Fatalf("LastCFDSnapshot() error: %v", err)
	}
	if last != nil {
		t.Errorf("LastCFDSnapshot() = %v, want nil", last)
	}

	yesterday := now.AddDate(0, 0, -1)
	if err := db.SaveCFDSnapshot(ctx, "p1", yesterday, map[string]int{"todo": 4, "done": 1}); err != nil {
		t.Fatalf("SaveCFDSnapshot() error: %v", err)
	}
	if err := db.SaveCFDSnapshot(ctx, "p1", now, map[string]int{"todo": 3}); err != nil {
		t.Fatalf("SaveCFDSnapshot() error: %v", err)
	}
	// same day again replaces
	if err := db.SaveCFDSnapshot(ctx, "p1", now, map[string]int{"todo": 2, "done": 3}); err != nil {
		t.Fatalf("SaveCFDSnapshot() error: %v", err)
	}
	// other projects stay separate
	if err := db.SaveCFDSnapshot(ctx, "p2", now, map[string]int{"blocked": 9}); err != nil {
		t.Fatalf("SaveCFDSnapshot() error: %v", err)
	}

	last, err = db.LastCFDSnapshot(ctx, "p1")
	if err != nil {
		t.Fatalf("LastCFDSnapshot() error: %v", err)
	}
	if last == nil || last.Format(dateLayout) != "2026-03-10" {
		t.Errorf("LastCFDSnapshot() = %v, want 2026-03-10", last)
	}

	points, err := db.CFDData(ctx, "p1", 30)
	if err != nil {
		t.Fatalf("CFDData() error: %v", err)
	}
	want := []CFDPoint{
		{Date: "2026-03-09", Status: "done", Count: 1},
		{Date: "2026-03-09", Status: "todo", Count: 4},
		{Date: "2026-03-10", Status: "done", Count: 3},
		{Date: "2026-03-10", Status: "todo", Count: 2},
	}
	if len(points) != len(want) {
		t.Fatalf("CFDData() returned %d points, want %d: %+v", len(points), len(want), points)
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("points[%d] = %+v, want %+v", i, points[i], want[i])
		}
	}

	recent, err := db.CFDData(ctx, "p1", 0)
	if err != nil {
		t.Fatalf("CFDData() error: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("CFDData(days=0) returned %d points, want 2", len(recent))
	}
}
