package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiracore/tracker/internal/model"
)

func TestAddIssue_KeySequence(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "ABC")

	first := s.AddIssue(IssueDraft{Title: "one"})
	second := s.AddIssue(IssueDraft{Title: "two"})

	assert.Equal(t, "ABC-101", first.Key)
	assert.Equal(t, "ABC-102", second.Key)
}

func TestAddIssue_MaxPlusOne(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "ABC")
	s.SetIssues([]model.Issue{
		{ID: "a", Key: "ABC-150"},
		{ID: "b", Key: "ABC-99"},
	})

	issue := s.AddIssue(IssueDraft{Title: "next"})
	assert.Equal(t, "ABC-151", issue.Key)
}

func TestAddIssue_ProjectIsolation(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "AB")
	s.SetIssues([]model.Issue{
		{ID: "a", Key: "ABC-500"},
		{ID: "b", Key: "XAB-300"},
		{ID: "c", Key: "AB-7"},
		{ID: "d", Key: "AB-junk"},
	})

	issue := s.AddIssue(IssueDraft{Title: "isolated"})
	assert.Equal(t, "AB-8", issue.Key)
}

func TestAddIssue_NoProjectUsesDefaultKey(t *testing.T) {
	s, _ := newTestStore(t)
	issue := s.AddIssue(IssueDraft{Title: "orphan", Reporter: alice})
	assert.Equal(t, "PROJ-101", issue.Key)
	assert.Empty(t, issue.ProjectID)
	assert.Equal(t, alice, issue.Reporter, "draft reporter is kept when no current user")
	assert.Equal(t, alice, issue.Activity[0].User)
}

func TestAddIssue_FillsDerivedFields(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "ENG")
	bob := model.User{ID: "user-b", Name: "Bob"}
	s.SetCurrentUser(alice)

	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	issue := s.AddIssue(IssueDraft{
		Title:       "Ship it",
		Reporter:    bob,
		Assignee:    &bob,
		StoryPoints: Ptr(5),
		DueDate:     &due,
		Labels:      []model.Label{{ID: "l1", Name: "backend"}},
	})

	assert.Equal(t, alice, issue.Reporter, "current user overrides draft reporter")
	assert.Equal(t, model.TypeTask, issue.Type)
	assert.Equal(t, model.StatusTodo, issue.Status)
	assert.Equal(t, model.PriorityMedium, issue.Priority)
	assert.Equal(t, issue.CreatedAt, issue.UpdatedAt)
	assert.Equal(t, model.TimeTracking{}, issue.TimeTracking)
	require.NotNil(t, issue.Assignee)
	assert.Equal(t, "Bob", issue.Assignee.Name)
	assert.Equal(t, 5, issue.Points())
	assert.Equal(t, due, *issue.DueDate)

	require.Len(t, issue.Activity, 1)
	assert.Equal(t, actionCreated, issue.Activity[0].Action)
	assert.Equal(t, alice, issue.Activity[0].User)
	assert.Equal(t, issue.CreatedAt, issue.Activity[0].Timestamp)

	assert.NotNil(t, issue.Comments)
	assert.Empty(t, issue.Comments)
	assert.Empty(t, issue.Watchers)
	assert.Empty(t, issue.Subtasks)
	assert.Empty(t, issue.Relations)
	assert.Empty(t, issue.Attachments)
}

func TestAddIssue_PrependsNewest(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "ENG")
	s.AddIssue(IssueDraft{Title: "older"})
	s.AddIssue(IssueDraft{Title: "newer"})

	snap := s.Snapshot()
	require.Len(t, snap.Issues, 2)
	assert.Equal(t, "newer", snap.Issues[0].Title)
	assert.Equal(t, "older", snap.Issues[1].Title)
}

func TestAddIssue_UniqueIDs(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "ENG")
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		issue := s.AddIssue(IssueDraft{Title: "burst"})
		require.False(t, seen[issue.ID], "duplicate id %s", issue.ID)
		seen[issue.ID] = true
	}
}

func TestUpdateIssue(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "ENG")
	a := s.AddIssue(IssueDraft{Title: "a", Priority: model.PriorityLow})
	b := s.AddIssue(IssueDraft{Title: "b"})

	s.UpdateIssue(a.ID, IssuePatch{
		Status:   Ptr(model.StatusInProgress),
		Assignee: &alice,
	})

	got, _ := s.Issue(a.ID)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, "a", got.Title, "unset fields are kept")
	assert.Equal(t, model.PriorityLow, got.Priority)
	require.NotNil(t, got.Assignee)
	assert.True(t, got.UpdatedAt.After(a.UpdatedAt))

	other, _ := s.Issue(b.ID)
	assert.Equal(t, b, other)

	s.UpdateIssue(a.ID, IssuePatch{ClearAssignee: true, StoryPoints: Ptr(3)})
	got, _ = s.Issue(a.ID)
	assert.Nil(t, got.Assignee)
	assert.Equal(t, 3, got.Points())
}

func TestUpdateIssue_UnknownIDIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "ENG")
	s.AddIssue(IssueDraft{Title: "a"})
	before := s.Snapshot()

	s.UpdateIssue("nope", IssuePatch{Title: Ptr("x")})
	assert.Equal(t, before, s.Snapshot())
}

func TestDeleteIssue_PrunesSelection(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "ENG")
	x := s.AddIssue(IssueDraft{Title: "x"})
	y := s.AddIssue(IssueDraft{Title: "y"})

	s.ToggleIssueSelection(x.ID)
	s.ToggleIssueSelection(y.ID)
	s.DeleteIssue(x.ID)

	_, ok := s.Issue(x.ID)
	assert.False(t, ok)
	assert.Equal(t, []string{y.ID}, s.Selection())

	s.DeleteIssue("missing")
	assert.Len(t, s.Snapshot().Issues, 1)
}

func TestDeleteIssue_PrunesSprintMembership(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "ENG")
	issue := s.AddIssue(IssueDraft{Title: "a"})
	sp := s.AddSprint(SprintDraft{Name: "Sprint 1"})
	s.MoveIssueToSprint(issue.ID, sp.ID)

	s.DeleteIssue(issue.ID)
	gotSprint, _ := s.Sprint(sp.ID)
	assert.Empty(t, gotSprint.Issues)

	// the freed key is handed out again and must not join the old sprint
	again := s.AddIssue(IssueDraft{Title: "b"})
	require.Equal(t, issue.Key, again.Key)
	assert.Empty(t, again.Sprint)
	gotSprint, _ = s.Sprint(sp.ID)
	assert.NotContains(t, gotSprint.Issues, again.Key)
}

func TestBulkUpdateIssues(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "ENG")
	a := s.AddIssue(IssueDraft{Title: "a"})
	b := s.AddIssue(IssueDraft{Title: "b"})
	c := s.AddIssue(IssueDraft{Title: "c", Status: model.StatusBlocked})

	s.BulkUpdateIssues([]string{a.ID, b.ID, "ghost"}, IssuePatch{Status: Ptr(model.StatusDone)})

	gotA, _ := s.Issue(a.ID)
	gotB, _ := s.Issue(b.ID)
	gotC, _ := s.Issue(c.ID)
	assert.Equal(t, model.StatusDone, gotA.Status)
	assert.Equal(t, model.StatusDone, gotB.Status)
	assert.Equal(t, model.StatusBlocked, gotC.Status)
	assert.Equal(t, gotA.UpdatedAt, gotB.UpdatedAt, "one instant for the batch")
	assert.Equal(t, c.UpdatedAt, gotC.UpdatedAt)
}

func TestBulkUpdateIssues_NoMatches(t *testing.T) {
	s, _ := newTestStore(t)
	published := 0
	s.Subscribe(func(Snapshot) { published++ })
	s.BulkUpdateIssues([]string{"ghost"}, IssuePatch{Status: Ptr(model.StatusDone)})
	assert.Zero(t, published)
}

func TestAddComment(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "ENG")
	issue := s.AddIssue(IssueDraft{Title: "a"})

	s.AddComment(issue.ID, "anonymous note")
	s.SetCurrentUser(alice)
	s.AddComment(issue.ID, "signed note")

	got, _ := s.Issue(issue.ID)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, unknownUser, got.Comments[0].Author)
	assert.Equal(t, alice, got.Comments[1].Author)
	assert.Equal(t, "signed note", got.Comments[1].Content)
	assert.Equal(t, got.Comments[1].CreatedAt, got.UpdatedAt)
}

func TestIssueByKey(t *testing.T) {
	s, _ := newTestStore(t)
	withProject(t, s, "ENG")
	issue := s.AddIssue(IssueDraft{Title: "a"})

	got, ok := s.IssueByKey("ENG-101")
	require.True(t, ok)
	assert.Equal(t, issue.ID, got.ID)

	_, ok = s.IssueByKey("ENG-999")
	assert.False(t, ok)
}
