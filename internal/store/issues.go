package store

import (
	"github.com/kiracore/tracker/internal/model"
)

// firstIssueNumber is the number given to a project's first issue.
const firstIssueNumber = 101

const actionCreated = "created this issue"

// unknownUser authors comments when no current user is set.
var unknownUser = model.User{ID: "unknown", Name: "Unknown", Role: model.RoleViewer}

// nextIssueNumber returns max(N)+1 over keys "<prefix>-<N>", or 101 when no
// key has exactly that prefix.
func nextIssueNumber(issues []model.Issue, prefix string) int {
	last := firstIssueNumber - 1
	found := false
	for _, issue := range issues {
		p, n, ok := model.ParseIssueKey(issue.Key)
		if !ok || p != prefix {
			continue
		}
		if !found || n > last {
			last = n
			found = true
		}
	}
	return last + 1
}

// AddIssue creates an issue in the current project and prepends it to the
// issue collection. The created issue is returned.
func (s *Store) AddIssue(d IssueDraft) model.Issue {
	var created model.Issue
	s.mutate("addIssue", func(next *Snapshot) bool {
		now := s.now()

		prefix := model.DefaultProjectKey
		projectID := ""
		if next.CurrentProject != nil {
			prefix = next.CurrentProject.Key
			projectID = next.CurrentProject.ID
		}

		reporter := d.Reporter
		if next.CurrentUser != nil {
			reporter = *next.CurrentUser
		}

		tt := model.TimeTracking{}
		if d.TimeTracking != nil {
			tt = *d.TimeTracking
		}

		issue := model.Issue{
			ID:           s.ids.NewID("issue"),
			Key:          model.FormatIssueKey(prefix, nextIssueNumber(next.Issues, prefix)),
			Title:        d.Title,
			Description:  d.Description,
			Type:         d.Type,
			Status:       d.Status,
			Priority:     d.Priority,
			Reporter:     reporter,
			Watchers:     []model.User{},
			Labels:       append([]model.Label{}, d.Labels...),
			Component:    d.Component,
			Version:      d.Version,
			TimeTracking: tt,
			CreatedAt:    now,
			UpdatedAt:    now,
			Comments:     []model.Comment{},
			Activity: []model.ActivityItem{{
				ID:        s.ids.NewID("act"),
				User:      reporter,
				Action:    actionCreated,
				Timestamp: now,
			}},
			Subtasks:    []model.Issue{},
			Relations:   []model.Relation{},
			Attachments: []string{},
			ProjectID:   projectID,
		}
		if d.Assignee != nil {
			issue.Assignee = Ptr(*d.Assignee)
		}
		if d.StoryPoints != nil {
			issue.StoryPoints = Ptr(*d.StoryPoints)
		}
		if d.DueDate != nil {
			issue.DueDate = Ptr(*d.DueDate)
		}
		if issue.Type == "" {
			issue.Type = model.TypeTask
		}
		if issue.Status == "" {
			issue.Status = model.StatusTodo
		}
		if issue.Priority == "" {
			issue.Priority = model.PriorityMedium
		}

		issues := make([]model.Issue, 0, len(next.Issues)+1)
		issues = append(issues, issue)
		next.Issues = append(issues, next.Issues...)
		created = issue
		return true
	})
	return created
}

// UpdateIssue merges patch onto the issue with the given id and refreshes
// its UpdatedAt.
func (s *Store) UpdateIssue(id string, patch IssuePatch) {
	s.mutate("updateIssue", func(next *Snapshot) bool {
		idx := issueIndex(next.Issues, id)
		if idx < 0 {
			return false
		}
		issues := append([]model.Issue{}, next.Issues...)
		patch.apply(&issues[idx])
		issues[idx].UpdatedAt = s.now()
		next.Issues = issues
		return true
	})
}

// BulkUpdateIssues applies patch to every issue whose id is listed.
// All touched issues share one UpdatedAt instant. Unknown ids are ignored.
func (s *Store) BulkUpdateIssues(ids []string, patch IssuePatch) {
	s.mutate("bulkUpdateIssues", func(next *Snapshot) bool {
		want := make(map[string]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}

		now := s.now()
		var issues []model.Issue
		for i := range next.Issues {
			if !want[next.Issues[i].ID] {
				continue
			}
			if issues == nil {
				issues = append([]model.Issue{}, next.Issues...)
			}
			patch.apply(&issues[i])
			issues[i].UpdatedAt = now
		}
		if issues == nil {
			return false
		}
		next.Issues = issues
		return true
	})
}

// DeleteIssue removes the issue, drops its key from every sprint and
// drops it from the selection. A later issue may reuse the key, so no
// sprint keeps it.
func (s *Store) DeleteIssue(id string) {
	s.mutate("deleteIssue", func(next *Snapshot) bool {
		idx := issueIndex(next.Issues, id)
		if idx < 0 {
			return false
		}
		next.Sprints = placeKey(next.Sprints, next.Issues[idx].Key, "")
		next.Issues = removeAt(next.Issues, idx)
		if sel := indexOf(next.SelectedIssues, id); sel >= 0 {
			next.SelectedIssues = removeAt(next.SelectedIssues, sel)
		}
		return true
	})
}

// AddComment appends a comment by the current user to the issue.
func (s *Store) AddComment(issueID, content string) {
	s.mutate("addComment", func(next *Snapshot) bool {
		idx := issueIndex(next.Issues, issueID)
		if idx < 0 {
			return false
		}
		author := unknownUser
		if next.CurrentUser != nil {
			author = *next.CurrentUser
		}
		now := s.now()

		issues := append([]model.Issue{}, next.Issues...)
		issues[idx].Comments = appendCopy(issues[idx].Comments, model.Comment{
			ID:        s.ids.NewID("comment"),
			Author:    author,
			Content:   content,
			CreatedAt: now,
		})
		issues[idx].UpdatedAt = now
		next.Issues = issues
		return true
	})
}

// Issue returns the issue with the given id.
func (s *Store) Issue(id string) (model.Issue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := issueIndex(s.state.Issues, id); idx >= 0 {
		return s.state.Issues[idx], true
	}
	return model.Issue{}, false
}

// IssueByKey returns the issue with the given key, e.g. "ENG-101".
func (s *Store) IssueByKey(key string) (model.Issue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, issue := range s.state.Issues {
		if issue.Key == key {
			return issue, true
		}
	}
	return model.Issue{}, false
}

func issueIndex(issues []model.Issue, id string) int {
	for i := range issues {
		if issues[i].ID == id {
			return i
		}
	}
	return -1
}
