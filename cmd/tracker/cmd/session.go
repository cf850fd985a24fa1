package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/kiracore/tracker/internal/config"
	"github.com/kiracore/tracker/internal/db"
	"github.com/kiracore/tracker/internal/idgen"
	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/store"
)

// workspace is one loaded store plus the database it came from
type workspace struct {
	ctx   context.Context
	cfg   *config.Config
	db    *db.DB
	store *store.Store
	dirty bool
}

// openWorkspace opens the database, loads it into a fresh store and applies
// the configured current project and user when the session has none.
func openWorkspace(ctx context.Context) (*workspace, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	ids, err := idgen.New(cfg.Settings.IDStyle)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Init(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	st := store.New(store.WithIDGenerator(ids), store.WithLogger(logger))
	if err := database.LoadInto(ctx, st); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load workspace: %w", err)
	}

	ws := &workspace{ctx: ctx, cfg: cfg, db: database, store: st}
	st.Subscribe(func(store.Snapshot) { ws.dirty = true })

	snap := st.Snapshot()
	if snap.CurrentProject == nil && cfg.CurrentProject != "" {
		if p, ok := st.ProjectByKey(cfg.CurrentProject); ok {
			st.SetCurrentProject(p)
		}
	}
	if snap.CurrentUser == nil && cfg.CurrentUser != "" {
		if u, ok := findUser(snap.Users, cfg.CurrentUser); ok {
			st.SetCurrentUser(u)
		}
	}

	logger.Debug("workspace loaded",
		"db", database.Path(),
		"issues", len(snap.Issues),
		"sprints", len(snap.Sprints),
		"projects", len(snap.Projects))

	return ws, nil
}

// Close saves pending changes and closes the database
func (w *workspace) Close() error {
	defer w.db.Close()
	if !w.dirty {
		return nil
	}
	if err := w.db.SaveSnapshot(w.ctx, w.store.Snapshot()); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	logger.Debug("workspace saved", "db", w.db.Path())
	return nil
}

// withWorkspace runs fn against a loaded workspace and saves afterwards
func withWorkspace(fn func(w *workspace) error) error {
	w, err := openWorkspace(context.Background())
	if err != nil {
		return err
	}
	if err := fn(w); err != nil {
		w.db.Close()
		return err
	}
	return w.Close()
}

// requireProject returns the current project or a helpful error
func (w *workspace) requireProject() (model.Project, error) {
	snap := w.store.Snapshot()
	if snap.CurrentProject == nil {
		return model.Project{}, fmt.Errorf("no current project: run `tracker project use <KEY>` first")
	}
	return *snap.CurrentProject, nil
}

// currentUser returns the acting user, or the zero user when none is set
func (w *workspace) currentUser() model.User {
	if u := w.store.Snapshot().CurrentUser; u != nil {
		return *u
	}
	return model.User{}
}

// resolveIssue finds an issue by key (case-insensitive) or id
func (w *workspace) resolveIssue(ref string) (model.Issue, error) {
	if issue, ok := w.store.IssueByKey(strings.ToUpper(ref)); ok {
		return issue, nil
	}
	if issue, ok := w.store.Issue(ref); ok {
		return issue, nil
	}
	return model.Issue{}, fmt.Errorf("issue %q not found", ref)
}

// resolveSprint finds a sprint by id or name. Names repeat across
// projects, so a sprint of the current project wins.
func (w *workspace) resolveSprint(ref string) (model.Sprint, error) {
	if sp, ok := w.store.Sprint(ref); ok {
		return sp, nil
	}
	snap := w.store.Snapshot()
	var found *model.Sprint
	for i := range snap.Sprints {
		sp := &snap.Sprints[i]
		if !strings.EqualFold(sp.Name, ref) {
			continue
		}
		if snap.CurrentProject != nil && sp.ProjectID == snap.CurrentProject.ID {
			return *sp, nil
		}
		if found == nil {
			found = sp
		}
	}
	if found != nil {
		return *found, nil
	}
	return model.Sprint{}, fmt.Errorf("sprint %q not found", ref)
}

// resolveUser finds a user by id, email or name
func (w *workspace) resolveUser(ref string) (model.User, error) {
	if u, ok := findUser(w.store.Snapshot().Users, ref); ok {
		return u, nil
	}
	return model.User{}, fmt.Errorf("user %q not found", ref)
}

func findUser(users []model.User, ref string) (model.User, bool) {
	for _, u := range users {
		if u.ID == ref || strings.EqualFold(u.Email, ref) || strings.EqualFold(u.Name, ref) {
			return u, true
		}
	}
	return model.User{}, false
}

// resolveLabels maps label names to stored labels
func (w *workspace) resolveLabels(names []string) ([]model.Label, error) {
	labels := []model.Label{}
	stored := w.store.Snapshot().Labels
	for _, name := range names {
		found := false
		for _, l := range stored {
			if strings.EqualFold(l.Name, name) {
				labels = append(labels, l)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("label %q not found: add it with `tracker label add`", name)
		}
	}
	return labels, nil
}
