package model

import (
	"testing"
	"time"
)

func TestParseIssueKey(t *testing.T) {
	tests := []struct {
		key    string
		prefix string
		n      int
		ok     bool
	}{
		{"ENG-101", "ENG", 101, true},
		{"ABC-9", "ABC", 9, true},
		{"MY-PROJ-7", "MY-PROJ", 7, true},
		{"ENG-", "", 0, false},
		{"-5", "", 0, false},
		{"ENG", "", 0, false},
		{"ENG-abc", "", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			prefix, n, ok := ParseIssueKey(tc.key)
			if ok != tc.ok || prefix != tc.prefix || n != tc.n {
				t.Errorf("ParseIssueKey(%q) = (%q, %d, %v), want (%q, %d, %v)",
					tc.key, prefix, n, ok, tc.prefix, tc.n, tc.ok)
			}
		})
	}
}

func TestFormatIssueKey(t *testing.T) {
	if got := FormatIssueKey("ENG", 101); got != "ENG-101" {
		t.Errorf("FormatIssueKey() = %q, want %q", got, "ENG-101")
	}
}

func TestSprintStatusLifecycle(t *testing.T) {
	next, ok := SprintPlanned.Next()
	if !ok || next != SprintActive {
		t.Errorf("planned.Next() = %q, %v", next, ok)
	}
	next, ok = SprintActive.Next()
	if !ok || next != SprintCompleted {
		t.Errorf("active.Next() = %q, %v", next, ok)
	}
	if _, ok := SprintCompleted.Next(); ok {
		t.Error("completed should have no next state")
	}
	if SprintPlanned.Rank() >= SprintActive.Rank() || SprintActive.Rank() >= SprintCompleted.Rank() {
		t.Error("sprint ranks must increase along the lifecycle")
	}
}

func TestEnumValid(t *testing.T) {
	if !StatusInReview.Valid() {
		t.Error("inreview should be valid")
	}
	if IssueStatus("review").Valid() {
		t.Error("review should not be valid")
	}
	if !TypeIncident.Valid() || IssueType("chore").Valid() {
		t.Error("issue type validation mismatch")
	}
	if !RelationBlockedBy.Valid() {
		t.Error("blocked-by should be valid")
	}
}

func TestIssueOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)

	issue := Issue{Status: StatusTodo, DueDate: &past}
	if !issue.IsOverdue(now) {
		t.Error("open issue past due should be overdue")
	}

	issue.Status = StatusDone
	if issue.IsOverdue(now) {
		t.Error("done issue should never be overdue")
	}

	issue.DueDate = nil
	if issue.IsOverdue(now) {
		t.Error("issue without due date should not be overdue")
	}
}
