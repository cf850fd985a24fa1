package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiracore/tracker/internal/model"
)

func pts(n int) *int { return &n }

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixture() []model.Issue {
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)
	bob := model.User{ID: "user-b", Name: "Bob"}
	return []model.Issue{
		{Key: "ENG-101", Title: "Fix crash on login", Type: model.TypeBug, Status: model.StatusDone,
			Priority: model.PriorityCritical, Sprint: "Sprint 1", StoryPoints: pts(5), UpdatedAt: now.Add(-time.Hour)},
		{Key: "ENG-102", Title: "Add dark mode", Type: model.TypeStory, Status: model.StatusInProgress,
			Priority: model.PriorityMedium, Sprint: "Sprint 1", StoryPoints: pts(3), Assignee: &bob, DueDate: &past},
		{Key: "ENG-103", Title: "Upgrade deps", Type: model.TypeTask, Status: model.StatusBlocked,
			Priority: model.PriorityLow, DueDate: &future},
		{Key: "OPS-101", Title: "Rotate certificates", Type: model.TypeTask, Status: model.StatusDone,
			Priority: model.PriorityHigh, UpdatedAt: now.AddDate(0, 0, -30)},
	}
}

func keys(issues []model.Issue) []string {
	out := []string{}
	for _, i := range issues {
		out = append(out, i.Key)
	}
	return out
}

func TestFilterIssues(t *testing.T) {
	issues := fixture()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"ENG-101", "ENG-102", "ENG-103", "OPS-101"}},
		{"search title", Filter{Search: "DARK"}, []string{"ENG-102"}},
		{"search key", Filter{Search: "ops-"}, []string{"OPS-101"}},
		{"status", Filter{Status: model.StatusDone}, []string{"ENG-101", "OPS-101"}},
		{"type and priority", Filter{Type: model.TypeTask, Priority: model.PriorityLow}, []string{"ENG-103"}},
		{"assignee", Filter{AssigneeID: "user-b"}, []string{"ENG-102"}},
		{"sprint", Filter{Sprint: "Sprint 1"}, []string{"ENG-101", "ENG-102"}},
		{"sprint keys", SprintFilter(model.Sprint{Issues: []string{"ENG-102", "OPS-101"}}), []string{"ENG-102", "OPS-101"}},
		{"empty sprint", SprintFilter(model.Sprint{}), []string{}},
		{"backlog", Filter{BacklogOnly: true}, []string{"ENG-103", "OPS-101"}},
		{"nothing", Filter{Search: "zzz"}, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, keys(FilterIssues(issues, tc.filter)))
		})
	}
}

func TestDistributions(t *testing.T) {
	issues := fixture()

	assert.Equal(t, []Bucket{
		{Name: "inprogress", Count: 1},
		{Name: "blocked", Count: 1},
		{Name: "done", Count: 2},
	}, StatusDistribution(issues))

	assert.Equal(t, []Bucket{
		{Name: "bug", Count: 1},
		{Name: "task", Count: 2},
		{Name: "story", Count: 1},
	}, TypeDistribution(issues))

	prio := PriorityDistribution(issues)
	require.Len(t, prio, 4)
	assert.Equal(t, "critical", prio[0].Name)

	assert.Empty(t, StatusDistribution(nil))
}

func TestDashboardSummary(t *testing.T) {
	s := DashboardSummary(fixture(), now)
	assert.Equal(t, Summary{
		Total:             4,
		Open:              2,
		InProgress:        1,
		Blocked:           1,
		Overdue:           1,
		CompletedThisWeek: 1,
		StoryPoints:       8,
	}, s)
}

func TestSprintProgress(t *testing.T) {
	issues := fixture()
	sp := model.Sprint{Name: "Sprint 1", Issues: []string{"ENG-101", "ENG-102", "ENG-999"}}

	p := SprintProgress(sp, issues)
	assert.Equal(t, 2, p.Issues)
	assert.Equal(t, 1, p.Done)
	assert.Equal(t, 8, p.Points)
	assert.Equal(t, 5, p.DonePoints)
	assert.InDelta(t, 62.5, p.Percent, 0.001)

	empty := SprintProgress(model.Sprint{Issues: []string{"ENG-103"}}, issues)
	assert.Zero(t, empty.Percent, "unestimated sprint has no percentage")
}

func TestEpicAndReleaseProgress(t *testing.T) {
	issues := fixture()

	e := EpicProgress(model.Epic{Issues: []string{"ENG-101", "ENG-103"}}, issues)
	assert.Equal(t, 50.0, e.Percent)

	r := ReleaseProgress(model.Release{Issues: []string{"ENG-101", "OPS-101"}}, issues)
	assert.Equal(t, 100.0, r.Percent)

	none := ReleaseProgress(model.Release{}, issues)
	assert.Zero(t, none.Percent)
}

func TestVelocity(t *testing.T) {
	sprints := []model.Sprint{
		{Name: "Sprint 1", Status: model.SprintActive, ProjectID: "eng", Issues: []string{"ENG-101", "ENG-102"}},
		{Name: "Sprint 2", Status: model.SprintPlanned, ProjectID: "eng"},
		{Name: "Sprint 0", Status: model.SprintCompleted, ProjectID: "eng"},
		// same name in another project
		{Name: "Sprint 1", Status: model.SprintCompleted, ProjectID: "ops", Issues: []string{"OPS-101"}},
	}

	assert.Equal(t, []VelocityPoint{
		{Sprint: "Sprint 1", Committed: 8, Completed: 5},
		{Sprint: "Sprint 0", Committed: 0, Completed: 0},
		{Sprint: "Sprint 1", Committed: 0, Completed: 0},
	}, Velocity(sprints, fixture()))
}

func TestBoard(t *testing.T) {
	cols := Board(fixture())
	require.Len(t, cols, len(model.AllStatuses))

	assert.Equal(t, model.StatusTodo, cols[0].Status)
	assert.Empty(t, cols[0].Issues)
	assert.Equal(t, []string{"ENG-102"}, keys(cols[1].Issues))
	assert.Equal(t, []string{"ENG-103"}, keys(cols[3].Issues))
	assert.Equal(t, []string{"ENG-101", "OPS-101"}, keys(cols[4].Issues))
}

func TestBacklog(t *testing.T) {
	assert.Equal(t, []string{"ENG-103", "OPS-101"}, keys(Backlog(fixture())))
}
