// Package store holds the in-memory workspace: every domain collection, the
// transient issue selection and the current project and user.
//
// Mutations are synchronous and total. An operation whose target id is
// unknown does nothing. Each mutation builds fresh collection slices and
// publishes them as a new Snapshot, so a Snapshot obtained earlier never
// changes underneath its reader.
package store

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kiracore/tracker/internal/idgen"
	"github.com/kiracore/tracker/internal/model"
)

// Snapshot is one published state of the workspace.
// Slices are shared between snapshots and must be treated as read-only.
type Snapshot struct {
	Issues      []model.Issue      `json:"issues"`
	Sprints     []model.Sprint     `json:"sprints"`
	Projects    []model.Project    `json:"projects"`
	Users       []model.User       `json:"users"`
	Epics       []model.Epic       `json:"epics"`
	Releases    []model.Release    `json:"releases"`
	Automations []model.Automation `json:"automations"`
	Labels      []model.Label      `json:"labels"`
	Workspaces  []model.Workspace  `json:"workspaces"`

	SelectedIssues []string       `json:"selected_issues"`
	CurrentProject *model.Project `json:"current_project,omitempty"`
	CurrentUser    *model.User    `json:"current_user,omitempty"`
}

// Listener is called with every newly published snapshot.
type Listener func(Snapshot)

type subscription struct {
	id int
	fn Listener
}

// Store is the workspace state container. The zero value is not usable;
// construct one with New.
type Store struct {
	mu    sync.RWMutex
	state Snapshot

	ids idgen.Generator
	now func() time.Time
	log *slog.Logger

	subs    []subscription
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator sets the identity generator (default: idgen.NewRandom()).
func WithIDGenerator(g idgen.Generator) Option {
	return func(s *Store) { s.ids = g }
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger. Mutations are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		ids: idgen.NewRandom(),
		now: time.Now,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to receive every new snapshot. Listeners run
// after the mutation is published, in registration order. The returned
// function removes the listener.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// mutate runs fn against a shallow copy of the state. If fn reports a
// change the copy becomes the published state and listeners are notified.
func (s *Store) mutate(op string, fn func(next *Snapshot) bool) bool {
	s.mu.Lock()
	next := s.state
	changed := fn(&next)
	if changed {
		s.state = next
	}
	snap := s.state
	listeners := make([]Listener, len(s.subs))
	for i, sub := range s.subs {
		listeners[i] = sub.fn
	}
	s.mu.Unlock()

	if !changed {
		s.log.Debug("store mutation skipped", "op", op)
		return false
	}
	s.log.Debug("store mutation", "op", op)
	for _, l := range listeners {
		l(snap)
	}
	return true
}

// SetCurrentProject replaces the current project pointer. The project is
// not required to exist in the project collection.
func (s *Store) SetCurrentProject(p model.Project) {
	s.mutate("setCurrentProject", func(next *Snapshot) bool {
		next.CurrentProject = &p
		return true
	})
}

// SetCurrentUser replaces the current user pointer.
func (s *Store) SetCurrentUser(u model.User) {
	s.mutate("setCurrentUser", func(next *Snapshot) bool {
		next.CurrentUser = &u
		return true
	})
}

// ToggleIssueSelection adds id to the selection, or removes it if present.
func (s *Store) ToggleIssueSelection(id string) {
	s.mutate("toggleIssueSelection", func(next *Snapshot) bool {
		if idx := indexOf(next.SelectedIssues, id); idx >= 0 {
			next.SelectedIssues = removeAt(next.SelectedIssues, idx)
		} else {
			next.SelectedIssues = appendCopy(next.SelectedIssues, id)
		}
		return true
	})
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.mutate("clearSelection", func(next *Snapshot) bool {
		next.SelectedIssues = []string{}
		return true
	})
}

// SelectAll replaces the selection wholesale.
func (s *Store) SelectAll(ids []string) {
	s.mutate("selectAll", func(next *Snapshot) bool {
		next.SelectedIssues = append([]string{}, ids...)
		return true
	})
}

// Selection returns the selected issue ids.
func (s *Store) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.state.SelectedIssues...)
}

func indexOf(list []string, v string) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

// removeAt returns a new slice without element i.
func removeAt[T any](list []T, i int) []T {
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

// appendCopy returns a new slice with v appended; list is never written to.
func appendCopy[T any](list []T, v ...T) []T {
	out := make([]T, 0, len(list)+len(v))
	out = append(out, list...)
	return append(out, v...)
}
