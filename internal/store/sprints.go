package store

import (
	"github.com/kiracore/tracker/internal/model"
)

// AddSprint appends a new sprint with an empty issue list.
func (s *Store) AddSprint(d SprintDraft) model.Sprint {
	var created model.Sprint
	s.mutate("addSprint", func(next *Snapshot) bool {
		sprint := model.Sprint{
			ID:        s.ids.NewID("sprint"),
			Name:      d.Name,
			Goal:      d.Goal,
			StartDate: d.StartDate,
			EndDate:   d.EndDate,
			Status:    d.Status,
			Issues:    []string{},
			ProjectID: d.ProjectID,
		}
		if sprint.Status == "" {
			sprint.Status = model.SprintPlanned
		}
		if sprint.ProjectID == "" && next.CurrentProject != nil {
			sprint.ProjectID = next.CurrentProject.ID
		}
		next.Sprints = appendCopy(next.Sprints, sprint)
		created = sprint
		return true
	})
	return created
}

// UpdateSprint merges patch onto the sprint.
//
// A status change is kept only when it is the next lifecycle step
// (planned -> active -> completed); otherwise it is dropped and the other
// fields still apply. A rename is carried to the sprint name stored on
// every member issue in the same step.
func (s *Store) UpdateSprint(id string, patch SprintPatch) {
	s.mutate("updateSprint", func(next *Snapshot) bool {
		return s.updateSprint(next, id, patch)
	})
}

func (s *Store) updateSprint(next *Snapshot, id string, patch SprintPatch) bool {
	idx := sprintIndex(next.Sprints, id)
	if idx < 0 {
		return false
	}
	sprints := append([]model.Sprint{}, next.Sprints...)
	sp := &sprints[idx]
	oldName := sp.Name

	if patch.Status != nil && *patch.Status != sp.Status {
		want, ok := sp.Status.Next()
		if ok && want == *patch.Status {
			sp.Status = *patch.Status
		} else {
			s.log.Warn("sprint status change rejected",
				"sprint", sp.ID, "from", sp.Status, "to", *patch.Status)
			if patch.Name == nil && patch.Goal == nil && patch.StartDate == nil && patch.EndDate == nil {
				return false
			}
		}
	}
	if patch.Name != nil {
		sp.Name = *patch.Name
	}
	if patch.Goal != nil {
		sp.Goal = *patch.Goal
	}
	if patch.StartDate != nil {
		sp.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		sp.EndDate = *patch.EndDate
	}
	next.Sprints = sprints

	if sp.Name != oldName && len(sp.Issues) > 0 {
		members := make(map[string]bool, len(sp.Issues))
		for _, key := range sp.Issues {
			members[key] = true
		}
		now := s.now()
		issues := append([]model.Issue{}, next.Issues...)
		for i := range issues {
			if members[issues[i].Key] && issues[i].Sprint == oldName {
				issues[i].Sprint = sp.Name
				issues[i].UpdatedAt = now
			}
		}
		next.Issues = issues
	}
	return true
}

// StartSprint moves a planned sprint to active.
func (s *Store) StartSprint(id string) {
	s.mutate("startSprint", func(next *Snapshot) bool {
		return s.updateSprint(next, id, SprintPatch{Status: Ptr(model.SprintActive)})
	})
}

// CompleteSprint moves an active sprint to completed.
func (s *Store) CompleteSprint(id string) {
	s.mutate("completeSprint", func(next *Snapshot) bool {
		return s.updateSprint(next, id, SprintPatch{Status: Ptr(model.SprintCompleted)})
	})
}

// MoveIssueToSprint puts the issue in the sprint. In one step the issue's
// sprint name is set, the sprint's key list gains the issue key, and the
// key is removed from any other sprint. Missing issue or sprint is a no-op.
func (s *Store) MoveIssueToSprint(issueID, sprintID string) {
	s.mutate("moveIssueToSprint", func(next *Snapshot) bool {
		sIdx := sprintIndex(next.Sprints, sprintID)
		iIdx := issueIndex(next.Issues, issueID)
		if sIdx < 0 || iIdx < 0 {
			return false
		}

		issues := append([]model.Issue{}, next.Issues...)
		issue := &issues[iIdx]
		issue.Sprint = next.Sprints[sIdx].Name
		issue.UpdatedAt = s.now()

		next.Sprints = placeKey(next.Sprints, issue.Key, sprintID)
		next.Issues = issues
		return true
	})
}

// MoveIssueToBacklog clears the issue's sprint and removes its key from
// every sprint in one step.
func (s *Store) MoveIssueToBacklog(issueID string) {
	s.mutate("moveIssueToBacklog", func(next *Snapshot) bool {
		iIdx := issueIndex(next.Issues, issueID)
		if iIdx < 0 {
			return false
		}
		issues := append([]model.Issue{}, next.Issues...)
		issue := &issues[iIdx]
		issue.Sprint = ""
		issue.UpdatedAt = s.now()

		next.Sprints = placeKey(next.Sprints, issue.Key, "")
		next.Issues = issues
		return true
	})
}

// placeKey returns sprints where key appears only in the sprint with id
// target (appended if missing), or in none when target is empty.
func placeKey(sprints []model.Sprint, key, target string) []model.Sprint {
	out := append([]model.Sprint{}, sprints...)
	for i := range out {
		idx := indexOf(out[i].Issues, key)
		switch {
		case out[i].ID == target && idx < 0:
			out[i].Issues = appendCopy(out[i].Issues, key)
		case out[i].ID != target && idx >= 0:
			out[i].Issues = removeAt(out[i].Issues, idx)
		}
	}
	return out
}

// Sprint returns the sprint with the given id.
func (s *Store) Sprint(id string) (model.Sprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := sprintIndex(s.state.Sprints, id); idx >= 0 {
		return s.state.Sprints[idx], true
	}
	return model.Sprint{}, false
}

func sprintIndex(sprints []model.Sprint, id string) int {
	for i := range sprints {
		if sprints[i].ID == id {
			return i
		}
	}
	return -1
}
