package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kiracore/tracker/internal/model"
	"github.com/kiracore/tracker/internal/store"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SaveSnapshot replaces every stored row with the contents of snap and
// appends a history entry, in one transaction.
func (db *DB) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := writeRows(ctx, tx, tableIssues, snap.Issues, func(v model.Issue) string { return v.ID }); err != nil {
		return err
	}
	if err := writeRows(ctx, tx, tableSprints, snap.Sprints, func(v model.Sprint) string { return v.ID }); err != nil {
		return err
	}
	if err := writeRows(ctx, tx, tableProjects, snap.Projects, func(v model.Project) string { return v.ID }); err != nil {
		return err
	}
	if err := writeRows(ctx, tx, tableUsers, snap.Users, func(v model.User) string { return v.ID }); err != nil {
		return err
	}
	if err := writeRows(ctx, tx, tableEpics, snap.Epics, func(v model.Epic) string { return v.ID }); err != nil {
		return err
	}
	if err := writeRows(ctx, tx, tableReleases, snap.Releases, func(v model.Release) string { return v.ID }); err != nil {
		return err
	}
	if err := writeRows(ctx, tx, tableAutomations, snap.Automations, func(v model.Automation) string { return v.ID }); err != nil {
		return err
	}
	if err := writeRows(ctx, tx, tableLabels, snap.Labels, func(v model.Label) string { return v.ID }); err != nil {
		return err
	}
	if err := writeRows(ctx, tx, tableWorkspaces, snap.Workspaces, func(v model.Workspace) string { return v.ID }); err != nil {
		return err
	}

	if err := writeSession(ctx, tx, snap); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO snapshot_history (id, saved_at, issues, sprints, projects)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), db.now().UTC().Format(timeLayout),
		len(snap.Issues), len(snap.Sprints), len(snap.Projects))
	if err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}

	return tx.Commit()
}

// LoadSnapshot reads the stored workspace. An empty database yields an
// empty snapshot with non-nil collections.
func (db *DB) LoadSnapshot(ctx context.Context) (store.Snapshot, error) {
	var snap store.Snapshot
	var err error

	if snap.Issues, err = readRows[model.Issue](ctx, db, tableIssues); err != nil {
		return snap, err
	}
	if snap.Sprints, err = readRows[model.Sprint](ctx, db, tableSprints); err != nil {
		return snap, err
	}
	if snap.Projects, err = readRows[model.Project](ctx, db, tableProjects); err != nil {
		return snap, err
	}
	if snap.Users, err = readRows[model.User](ctx, db, tableUsers); err != nil {
		return snap, err
	}
	if snap.Epics, err = readRows[model.Epic](ctx, db, tableEpics); err != nil {
		return snap, err
	}
	if snap.Releases, err = readRows[model.Release](ctx, db, tableReleases); err != nil {
		return snap, err
	}
	if snap.Automations, err = readRows[model.Automation](ctx, db, tableAutomations); err != nil {
		return snap, err
	}
	if snap.Labels, err = readRows[model.Label](ctx, db, tableLabels); err != nil {
		return snap, err
	}
	if snap.Workspaces, err = readRows[model.Workspace](ctx, db, tableWorkspaces); err != nil {
		return snap, err
	}

	if err := readSession(ctx, db, &snap); err != nil {
		return snap, err
	}

	return snap, nil
}

// LoadInto hands the stored workspace to s in a single publish.
func (db *DB) LoadInto(ctx context.Context, s *store.Store) error {
	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	s.Load(snap)
	return nil
}

// History returns the most recent saves, newest first
func (db *DB) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, saved_at, issues, sprints, projects
		FROM snapshot_history ORDER BY saved_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var savedAt string
		if err := rows.Scan(&e.ID, &savedAt, &e.Issues, &e.Sprints, &e.Projects); err != nil {
			return nil, err
		}
		if t, err := time.Parse(timeLayout, savedAt); err == nil {
			e.SavedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func writeRows[T any](ctx context.Context, tx *sql.Tx, table string, items []T, id func(T) string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" (id, position, data) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode %s row: %w", table, err)
		}
		if _, err := stmt.ExecContext(ctx, id(item), i, string(data)); err != nil {
			return fmt.Errorf("failed to write %s row %q: %w", table, id(item), err)
		}
	}
	return nil
}

func readRows[T any](ctx context.Context, q querier, table string) ([]T, error) {
	rows, err := q.QueryContext(ctx, "SELECT data FROM "+table+" ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var item T
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", table, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func writeSession(ctx context.Context, tx *sql.Tx, snap store.Snapshot) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM session"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	values := map[string]any{sessionSelection: snap.SelectedIssues}
	if snap.CurrentProject != nil {
		values[sessionCurrentProject] = snap.CurrentProject
	}
	if snap.CurrentUser != nil {
		values[sessionCurrentUser] = snap.CurrentUser
	}

	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO session (key, value) VALUES (?, ?)", key, string(data)); err != nil {
			return fmt.Errorf("failed to write session %s: %w", key, err)
		}
	}
	return nil
}

func readSession(ctx context.Context, q querier, snap *store.Snapshot) error {
	rows, err := q.QueryContext(ctx, "SELECT key, value FROM session")
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	defer rows.Close()

	snap.SelectedIssues = []string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}

		var target any
		switch key {
		case sessionCurrentProject:
			snap.CurrentProject = &model.Project{}
			target = snap.CurrentProject
		case sessionCurrentUser:
			snap.CurrentUser = &model.User{}
			target = snap.CurrentUser
		case sessionSelection:
			target = &snap.SelectedIssues
		default:
			continue
		}
		if err := json.Unmarshal([]byte(value), target); err != nil {
			return fmt.Errorf("failed to decode session %s: %w", key, err)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if snap.SelectedIssues == nil {
		snap.SelectedIssues = []string{}
	}
	return nil
}
