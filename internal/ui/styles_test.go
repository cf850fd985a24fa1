package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kiracore/tracker/internal/model"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "a long ...", Truncate("a long title here", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "héllo", Truncate("héllo", 5))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "-", RelativeTime(time.Time{}, now))
	assert.Equal(t, "3 days ago", RelativeTime(now.AddDate(0, 0, -3), now))
	assert.Equal(t, "2 hours from now", RelativeTime(now.Add(2*time.Hour), now))
}

func TestDueLabel(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)

	assert.Empty(t, DueLabel(model.Issue{}, now))

	overdue := DueLabel(model.Issue{Status: model.StatusTodo, DueDate: &past}, now)
	assert.Contains(t, overdue, "2026-03-09")
	assert.Contains(t, overdue, "overdue")

	done := DueLabel(model.Issue{Status: model.StatusDone, DueDate: &past}, now)
	assert.Equal(t, "2026-03-09", done)
}

func TestProgressBar(t *testing.T) {
	assert.Empty(t, ProgressBar(50, 0))

	bar := ProgressBar(50, 10)
	assert.Equal(t, 5, strings.Count(bar, "█"))
	assert.Equal(t, 5, strings.Count(bar, "░"))

	assert.Equal(t, 10, strings.Count(ProgressBar(150, 10), "█"))
}

func TestRenderStatusKeepsText(t *testing.T) {
	for _, st := range model.AllStatuses {
		assert.Contains(t, RenderStatus(st), string(st))
	}
	for _, p := range model.AllPriorities {
		assert.Contains(t, RenderPriority(p), string(p))
	}
}
