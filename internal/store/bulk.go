package store

import (
	"github.com/kiracore/tracker/internal/idgen"
	"github.com/kiracore/tracker/internal/model"
)

// Bulk setters replace a whole collection. They exist for loading data
// from an external source; nothing is merged or validated. Loaded ids are
// reported to the generator when it is an idgen.Observer so new entities
// never reuse them.

func (s *Store) SetIssues(v []model.Issue) {
	s.observe(Snapshot{Issues: v})
	s.mutate("setIssues", func(next *Snapshot) bool { next.Issues = v; return true })
}

func (s *Store) SetSprints(v []model.Sprint) {
	s.observe(Snapshot{Sprints: v})
	s.mutate("setSprints", func(next *Snapshot) bool { next.Sprints = v; return true })
}

func (s *Store) SetProjects(v []model.Project) {
	s.observe(Snapshot{Projects: v})
	s.mutate("setProjects", func(next *Snapshot) bool { next.Projects = v; return true })
}

func (s *Store) SetUsers(v []model.User) {
	s.observe(Snapshot{Users: v})
	s.mutate("setUsers", func(next *Snapshot) bool { next.Users = v; return true })
}

func (s *Store) SetEpics(v []model.Epic) {
	s.observe(Snapshot{Epics: v})
	s.mutate("setEpics", func(next *Snapshot) bool { next.Epics = v; return true })
}

func (s *Store) SetReleases(v []model.Release) {
	s.observe(Snapshot{Releases: v})
	s.mutate("setReleases", func(next *Snapshot) bool { next.Releases = v; return true })
}

func (s *Store) SetAutomations(v []model.Automation) {
	s.observe(Snapshot{Automations: v})
	s.mutate("setAutomations", func(next *Snapshot) bool { next.Automations = v; return true })
}

func (s *Store) SetLabels(v []model.Label) {
	s.observe(Snapshot{Labels: v})
	s.mutate("setLabels", func(next *Snapshot) bool { next.Labels = v; return true })
}

func (s *Store) SetWorkspaces(v []model.Workspace) {
	s.observe(Snapshot{Workspaces: v})
	s.mutate("setWorkspaces", func(next *Snapshot) bool { next.Workspaces = v; return true })
}

// Load replaces the entire state, selection and current pointers included,
// and publishes it once.
func (s *Store) Load(snap Snapshot) {
	s.observe(snap)
	s.mutate("load", func(next *Snapshot) bool {
		*next = snap
		if next.SelectedIssues == nil {
			next.SelectedIssues = []string{}
		}
		return true
	})
}

func (s *Store) observe(snap Snapshot) {
	obs, ok := s.ids.(idgen.Observer)
	if !ok {
		return
	}
	for _, issue := range snap.Issues {
		obs.Observe(issue.ID)
		for _, c := range issue.Comments {
			obs.Observe(c.ID)
		}
		for _, a := range issue.Activity {
			obs.Observe(a.ID)
		}
	}
	for _, v := range snap.Sprints {
		obs.Observe(v.ID)
	}
	for _, v := range snap.Projects {
		obs.Observe(v.ID)
	}
	for _, v := range snap.Users {
		obs.Observe(v.ID)
	}
	for _, v := range snap.Epics {
		obs.Observe(v.ID)
	}
	for _, v := range snap.Releases {
		obs.Observe(v.ID)
	}
	for _, v := range snap.Automations {
		obs.Observe(v.ID)
	}
	for _, v := range snap.Labels {
		obs.Observe(v.ID)
	}
	for _, v := range snap.Workspaces {
		obs.Observe(v.ID)
	}
}
