package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiracore/tracker/internal/model"
)

func TestAddProject(t *testing.T) {
	s, clock := newTestStore(t)
	p := s.AddProject(ProjectDraft{Key: "ENG", Name: "Engine", Lead: alice, Members: []model.User{alice}})

	assert.Equal(t, "project-1", p.ID)
	assert.Equal(t, clock.t, p.CreatedAt)
	assert.Len(t, s.Snapshot().Projects, 1)

	got, ok := s.ProjectByKey("ENG")
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestUpdateProject_RefreshesCurrent(t *testing.T) {
	s, _ := newTestStore(t)
	p := withProject(t, s, "ENG")

	s.UpdateProject(p.ID, ProjectPatch{Name: Ptr("Engine Room")})

	snap := s.Snapshot()
	assert.Equal(t, "Engine Room", snap.Projects[0].Name)
	require.NotNil(t, snap.CurrentProject)
	assert.Equal(t, "Engine Room", snap.CurrentProject.Name)
}

func TestSetCurrentProject_NotValidated(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetCurrentProject(model.Project{ID: "elsewhere", Key: "OPS"})

	issue := s.AddIssue(IssueDraft{Title: "a"})
	assert.Equal(t, "OPS-101", issue.Key)
	assert.Equal(t, "elsewhere", issue.ProjectID)
}

func TestUsers(t *testing.T) {
	s, _ := newTestStore(t)
	u := s.AddUser(UserDraft{Name: "Bob", Email: "bob@example.com", Role: model.RoleDesigner})

	got, ok := s.User(u.ID)
	require.True(t, ok)
	assert.Equal(t, "Bob", got.Name)

	s.SetCurrentUser(u)
	require.NotNil(t, s.Snapshot().CurrentUser)
	assert.Equal(t, u.ID, s.Snapshot().CurrentUser.ID)
}

func TestEpics(t *testing.T) {
	s, _ := newTestStore(t)
	p := withProject(t, s, "ENG")

	e := s.AddEpic(EpicDraft{Key: "ENG-E1", Name: "Payments", Color: "#8b5cf6"})
	assert.Equal(t, model.StatusTodo, e.Status)
	assert.Equal(t, p.ID, e.ProjectID)

	s.UpdateEpic(e.ID, EpicPatch{Status: Ptr(model.StatusInProgress), Issues: []string{"ENG-101"}})
	got := s.Snapshot().Epics[0]
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, []string{"ENG-101"}, got.Issues)
	assert.Equal(t, "Payments", got.Name)
}

func TestReleases(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "ENG")

	r := s.AddRelease(ReleaseDraft{Name: "Spring", Version: "1.2.0"})
	assert.Equal(t, model.ReleasePlanned, r.Status)

	s.UpdateRelease(r.ID, ReleasePatch{Status: Ptr(model.ReleaseReleased)})
	got, ok := s.Release(r.ID)
	require.True(t, ok)
	assert.Equal(t, model.ReleaseReleased, got.Status)
	assert.Equal(t, "1.2.0", got.Version)
}

func TestToggleAutomation(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddAutomation(AutomationDraft{
		Name:    "auto-assign bugs",
		Enabled: true,
		Trigger: model.Trigger{Type: model.TriggerIssueCreated},
		Conditions: []model.Condition{
			{Field: "type", Operator: "equals", Value: "bug"},
		},
		Actions: []model.Action{
			{Type: model.ActionAssign, Config: map[string]any{"user": "user-a"}},
		},
	})

	s.ToggleAutomation(a.ID)
	assert.False(t, s.Snapshot().Automations[0].Enabled)

	s.ToggleAutomation(a.ID)
	assert.True(t, s.Snapshot().Automations[0].Enabled)
}

func TestDeleteAutomation(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.AddAutomation(AutomationDraft{Name: "a"})
	b := s.AddAutomation(AutomationDraft{Name: "b"})

	s.DeleteAutomation(a.ID)
	s.DeleteAutomation("ghost")

	autos := s.Snapshot().Automations
	require.Len(t, autos, 1)
	assert.Equal(t, b.ID, autos[0].ID)
}

func TestLabelsAndWorkspaces(t *testing.T) {
	s, _ := newTestStore(t)
	l := s.AddLabel(LabelDraft{Name: "backend", Color: "#3b82f6"})
	w := s.AddWorkspace(WorkspaceDraft{Name: "Acme", Slug: "acme", Logo: "🚀"})

	snap := s.Snapshot()
	assert.Equal(t, []model.Label{l}, snap.Labels)
	assert.Equal(t, []model.Workspace{w}, snap.Workspaces)
	assert.Equal(t, "label-1", l.ID)
	assert.Equal(t, "ws-2", w.ID)
}
