package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiracore/tracker/internal/config"
	"github.com/kiracore/tracker/internal/idgen"
	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/report"
	"github.com/kiracore/tracker/internal/store"
)

var refTime = time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC) // a Wednesday

func TestParseDate(t *testing.T) {
	got, err := parseDate("2026-04-01", refTime)
	require.NoError(t, err)
	assert.Equal(t, "2026-04-01", got.Format(dateLayout))

	got, err = parseDate("tomorrow", refTime)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-12", got.Format(dateLayout))

	_, err = parseDate("zzz", refTime)
	assert.Error(t, err)

	opt, err := parseOptionalDate("", refTime)
	require.NoError(t, err)
	assert.Nil(t, opt)
}

func TestApplySeed(t *testing.T) {
	s := store.New(store.WithIDGenerator(idgen.NewSequence()))
	applySeed(s, &config.Seed{
		Workspaces: []config.SeedWorkspace{{Name: "Acme", Slug: "acme"}},
		Users: []config.SeedUser{
			{Name: "Alice", Email: "alice@example.com", Role: model.RoleAdmin},
			{Name: "Bob", Email: "bob@example.com"},
		},
		Projects: []config.SeedProject{
			{Key: "ENG", Name: "Engine", Lead: "alice@example.com", Members: []string{"alice@example.com", "bob@example.com", "nobody@example.com"}},
			{Key: "OPS", Name: "Operations"},
		},
		Labels: []config.SeedLabel{{Name: "backend", Color: "#10b981"}},
	})

	snap := s.Snapshot()
	require.Len(t, snap.Workspaces, 1)
	require.Len(t, snap.Users, 2)
	require.Len(t, snap.Projects, 2)
	require.Len(t, snap.Labels, 1)

	assert.Equal(t, model.RoleDeveloper, snap.Users[1].Role, "missing role defaults to developer")
	assert.Equal(t, "Alice", snap.Projects[0].Lead.Name)
	assert.Len(t, snap.Projects[0].Members, 2, "unknown member emails are skipped")

	require.NotNil(t, snap.CurrentProject)
	assert.Equal(t, "ENG", snap.CurrentProject.Key)
	require.NotNil(t, snap.CurrentUser)
	assert.Equal(t, "alice@example.com", snap.CurrentUser.Email)
}

func TestAuditLabels(t *testing.T) {
	expected := []config.SeedLabel{
		{Name: "frontend", Color: "#3b82f6"},
		{Name: "backend", Color: "#10b981"},
		{Name: "urgent", Color: "#ef4444"},
	}
	current := []model.Label{
		{ID: "1", Name: "Frontend", Color: "#3B82F6"},
		{ID: "2", Name: "backend", Color: "#000000"},
		{ID: "3", Name: "legacy", Color: "#6b7280"},
	}

	r := auditLabels(expected, current)
	assert.Equal(t, []string{"urgent"}, r.Missing)
	assert.Equal(t, []string{"backend"}, r.Modified)
	assert.Equal(t, []string{"legacy"}, r.Extra)
	assert.False(t, r.Clean())

	assert.True(t, auditLabels(expected[:1], current[:1]).Clean())
}

func TestSortIssues(t *testing.T) {
	day := func(n int) time.Time { return refTime.AddDate(0, 0, n) }
	bob := &model.User{Name: "Bob"}
	amy := &model.User{Name: "Amy"}
	base := []model.Issue{
		{Key: "ENG-10", Priority: model.PriorityLow, CreatedAt: day(0), UpdatedAt: day(5), Assignee: bob},
		{Key: "ENG-2", Priority: model.PriorityCritical, CreatedAt: day(2), UpdatedAt: day(3)},
		{Key: "ENG-3", Priority: model.PriorityCritical, CreatedAt: day(1), UpdatedAt: day(1), Assignee: amy},
	}
	keys := func(issues []model.Issue) []string {
		out := make([]string, len(issues))
		for i, issue := range issues {
			out[i] = issue.Key
		}
		return out
	}

	tests := []struct {
		method string
		want   []string
	}{
		{"priority", []string{"ENG-3", "ENG-2", "ENG-10"}},
		{"updated", []string{"ENG-10", "ENG-2", "ENG-3"}},
		{"assignee", []string{"ENG-3", "ENG-10", "ENG-2"}},
		{"key", []string{"ENG-2", "ENG-3", "ENG-10"}},
		{"", []string{"ENG-2", "ENG-3", "ENG-10"}},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			issues := append([]model.Issue{}, base...)
			sortIssues(issues, tt.method)
			assert.Equal(t, tt.want, keys(issues))
		})
	}
}

func TestParseCondition(t *testing.T) {
	c, err := parseCondition("status=done")
	require.NoError(t, err)
	assert.Equal(t, model.Condition{Field: "status", Operator: "=", Value: "done"}, c)

	c, err = parseCondition("priority != low")
	require.NoError(t, err)
	assert.Equal(t, "!=", c.Operator)
	assert.Equal(t, "priority", c.Field)
	assert.Equal(t, "low", c.Value)

	_, err = parseCondition("status")
	assert.Error(t, err)
	_, err = parseCondition("=done")
	assert.Error(t, err)
}

func TestParseAction(t *testing.T) {
	a, err := parseAction("notify")
	require.NoError(t, err)
	assert.Equal(t, model.ActionNotify, a.Type)
	assert.Nil(t, a.Config)

	a, err = parseAction("assign:user=alice,notify=true")
	require.NoError(t, err)
	assert.Equal(t, model.ActionAssign, a.Type)
	assert.Equal(t, map[string]any{"user": "alice", "notify": "true"}, a.Config)

	_, err = parseAction("explode")
	assert.Error(t, err)
	_, err = parseAction("assign:user")
	assert.Error(t, err)
}

func TestNextEpicKey(t *testing.T) {
	eng := model.Project{Key: "ENG"}
	assert.Equal(t, "ENG-E1", nextEpicKey(eng, nil))

	epics := []model.Epic{{Key: "ENG-E1"}, {Key: "ENG-E7"}, {Key: "OPS-E9"}}
	assert.Equal(t, "ENG-E8", nextEpicKey(eng, epics))
	assert.Equal(t, "OPS-E10", nextEpicKey(model.Project{Key: "OPS"}, epics))
}

func TestStatusCounts(t *testing.T) {
	counts := statusCounts([]model.Issue{
		{Status: model.StatusTodo},
		{Status: model.StatusTodo},
		{Status: model.StatusDone},
	})
	assert.Len(t, counts, len(model.AllStatuses))
	assert.Equal(t, 2, counts["todo"])
	assert.Equal(t, 1, counts["done"])
	assert.Equal(t, 0, counts["blocked"])
}

func TestOldestOpen(t *testing.T) {
	issues := []model.Issue{
		{Key: "A", Status: model.StatusTodo, CreatedAt: refTime},
		{Key: "B", Status: model.StatusDone, CreatedAt: refTime.AddDate(0, 0, -9)},
		{Key: "C", Status: model.StatusBlocked, CreatedAt: refTime.AddDate(0, 0, -3)},
		{Key: "D", Status: model.StatusInProgress, CreatedAt: refTime.AddDate(0, 0, -1)},
	}

	got := oldestOpen(issues, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].Key)
	assert.Equal(t, "D", got[1].Key)

	assert.Empty(t, oldestOpen(issues, 0))
	assert.Len(t, oldestOpen(issues, 10), 3)
}

func TestDashboardWarnings(t *testing.T) {
	columns := []report.Column{
		{Status: model.StatusInProgress, Issues: make([]model.Issue, 4)},
		{Status: model.StatusInReview, Issues: make([]model.Issue, 1)},
	}
	wip := map[string]int{"inprogress": 3, "inreview": 2}

	warnings := dashboardWarnings(report.Summary{Open: 8, Blocked: 3, Overdue: 1}, columns, wip)
	assert.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], "inprogress over WIP limit: 4/3")

	assert.Empty(t, dashboardWarnings(report.Summary{Open: 8, Blocked: 2}, columns[1:], wip))
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "/short", truncatePath("/short", 10))
	got := truncatePath("/home/user/.local/share/tracker/tracker.db", 16)
	assert.Equal(t, "...er/tracker.db", got)
}
