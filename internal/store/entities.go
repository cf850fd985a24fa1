package store

import (
	"github.com/kiracore/tracker/internal/model"
)

// Projects

// AddProject appends a project and stamps its CreatedAt.
func (s *Store) AddProject(d ProjectDraft) model.Project {
	var created model.Project
	s.mutate("addProject", func(next *Snapshot) bool {
		created = model.Project{
			ID:          s.ids.NewID("project"),
			Key:         d.Key,
			Name:        d.Name,
			Description: d.Description,
			Lead:        d.Lead,
			Members:     append([]model.User{}, d.Members...),
			CreatedAt:   s.now(),
		}
		next.Projects = appendCopy(next.Projects, created)
		return true
	})
	return created
}

// UpdateProject merges patch onto the project. When the project is the
// current one the current pointer is refreshed too.
func (s *Store) UpdateProject(id string, patch ProjectPatch) {
	s.mutate("updateProject", func(next *Snapshot) bool {
		idx := -1
		for i := range next.Projects {
			if next.Projects[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		projects := append([]model.Project{}, next.Projects...)
		patch.apply(&projects[idx])
		next.Projects = projects
		if next.CurrentProject != nil && next.CurrentProject.ID == id {
			next.CurrentProject = Ptr(projects[idx])
		}
		return true
	})
}

// ProjectByKey returns the project with the given key.
func (s *Store) ProjectByKey(key string) (model.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.state.Projects {
		if p.Key == key {
			return p, true
		}
	}
	return model.Project{}, false
}

// Users

// AddUser appends a user.
func (s *Store) AddUser(d UserDraft) model.User {
	var created model.User
	s.mutate("addUser", func(next *Snapshot) bool {
		created = model.User{
			ID:     s.ids.NewID("user"),
			Name:   d.Name,
			Email:  d.Email,
			Avatar: d.Avatar,
			Role:   d.Role,
		}
		next.Users = appendCopy(next.Users, created)
		return true
	})
	return created
}

// User returns the user with the given id.
func (s *Store) User(id string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.state.Users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// Epics

// AddEpic appends an epic.
func (s *Store) AddEpic(d EpicDraft) model.Epic {
	var created model.Epic
	s.mutate("addEpic", func(next *Snapshot) bool {
		created = model.Epic{
			ID:          s.ids.NewID("epic"),
			Key:         d.Key,
			Name:        d.Name,
			Description: d.Description,
			Color:       d.Color,
			Status:      d.Status,
			StartDate:   d.StartDate,
			EndDate:     d.EndDate,
			Issues:      append([]string{}, d.Issues...),
			ProjectID:   d.ProjectID,
		}
		if created.Status == "" {
			created.Status = model.StatusTodo
		}
		if created.ProjectID == "" && next.CurrentProject != nil {
			created.ProjectID = next.CurrentProject.ID
		}
		next.Epics = appendCopy(next.Epics, created)
		return true
	})
	return created
}

// UpdateEpic merges patch onto the epic.
func (s *Store) UpdateEpic(id string, patch EpicPatch) {
	s.mutate("updateEpic", func(next *Snapshot) bool {
		for i := range next.Epics {
			if next.Epics[i].ID == id {
				epics := append([]model.Epic{}, next.Epics...)
				patch.apply(&epics[i])
				next.Epics = epics
				return true
			}
		}
		return false
	})
}

// Releases

// AddRelease appends a release.
func (s *Store) AddRelease(d ReleaseDraft) model.Release {
	var created model.Release
	s.mutate("addRelease", func(next *Snapshot) bool {
		created = model.Release{
			ID:          s.ids.NewID("release"),
			Name:        d.Name,
			Version:     d.Version,
			Description: d.Description,
			Status:      d.Status,
			ReleaseDate: d.ReleaseDate,
			Issues:      append([]string{}, d.Issues...),
			ProjectID:   d.ProjectID,
		}
		if created.Status == "" {
			created.Status = model.ReleasePlanned
		}
		if created.ProjectID == "" && next.CurrentProject != nil {
			created.ProjectID = next.CurrentProject.ID
		}
		next.Releases = appendCopy(next.Releases, created)
		return true
	})
	return created
}

// UpdateRelease merges patch onto the release.
func (s *Store) UpdateRelease(id string, patch ReleasePatch) {
	s.mutate("updateRelease", func(next *Snapshot) bool {
		for i := range next.Releases {
			if next.Releases[i].ID == id {
				releases := append([]model.Release{}, next.Releases...)
				patch.apply(&releases[i])
				next.Releases = releases
				return true
			}
		}
		return false
	})
}

// Release returns the release with the given id.
func (s *Store) Release(id string) (model.Release, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.state.Releases {
		if r.ID == id {
			return r, true
		}
	}
	return model.Release{}, false
}

// Automations

// AddAutomation appends an automation rule.
func (s *Store) AddAutomation(d AutomationDraft) model.Automation {
	var created model.Automation
	s.mutate("addAutomation", func(next *Snapshot) bool {
		created = model.Automation{
			ID:         s.ids.NewID("auto"),
			Name:       d.Name,
			Enabled:    d.Enabled,
			Trigger:    d.Trigger,
			Conditions: append([]model.Condition{}, d.Conditions...),
			Actions:    append([]model.Action{}, d.Actions...),
			ProjectID:  d.ProjectID,
		}
		if created.ProjectID == "" && next.CurrentProject != nil {
			created.ProjectID = next.CurrentProject.ID
		}
		next.Automations = appendCopy(next.Automations, created)
		return true
	})
	return created
}

// ToggleAutomation flips the rule's Enabled flag.
func (s *Store) ToggleAutomation(id string) {
	s.mutate("toggleAutomation", func(next *Snapshot) bool {
		for i := range next.Automations {
			if next.Automations[i].ID == id {
				autos := append([]model.Automation{}, next.Automations...)
				autos[i].Enabled = !autos[i].Enabled
				next.Automations = autos
				return true
			}
		}
		return false
	})
}

// DeleteAutomation removes the rule.
func (s *Store) DeleteAutomation(id string) {
	s.mutate("deleteAutomation", func(next *Snapshot) bool {
		for i := range next.Automations {
			if next.Automations[i].ID == id {
				next.Automations = removeAt(next.Automations, i)
				return true
			}
		}
		return false
	})
}

// Labels and workspaces

// AddLabel appends a label.
func (s *Store) AddLabel(d LabelDraft) model.Label {
	var created model.Label
	s.mutate("addLabel", func(next *Snapshot) bool {
		created = model.Label{ID: s.ids.NewID("label"), Name: d.Name, Color: d.Color}
		next.Labels = appendCopy(next.Labels, created)
		return true
	})
	return created
}

// AddWorkspace appends a workspace.
func (s *Store) AddWorkspace(d WorkspaceDraft) model.Workspace {
	var created model.Workspace
	s.mutate("addWorkspace", func(next *Snapshot) bool {
		created = model.Workspace{ID: s.ids.NewID("ws"), Name: d.Name, Slug: d.Slug, Logo: d.Logo}
		next.Workspaces = appendCopy(next.Workspaces, created)
		return true
	})
	return created
}
