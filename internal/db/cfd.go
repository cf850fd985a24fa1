package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SaveCFDSnapshot stores the status counts of a project for the day of date,
// replacing any earlier snapshot of that day.
func (db *DB) SaveCFDSnapshot(ctx context.Context, projectID string, date time.Time, counts map[string]int) error {
	day := date.Format(dateLayout)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cfd_snapshots WHERE date = ? AND project_id = ?", day, projectID); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	for status, n := range counts {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO cfd_snapshots (date, project_id, status, count) VALUES (?, ?, ?, ?)",
			day, projectID, status, n)
		if err != nil {
			return fmt.Errorf("failed to save %s count: %w", status, err)
		}
	}
	return tx.Commit()
}

// LastCFDSnapshot returns the day of the newest snapshot, or nil if the
// project has none.
func (db *DB) LastCFDSnapshot(ctx context.Context, projectID string) (*time.Time, error) {
	var last sql.NullString
	err := db.QueryRowContext(ctx, "SELECT MAX(date) FROM cfd_snapshots WHERE project_id = ?", projectID).Scan(&last)
	if err != nil {
		return nil, err
	}
	if !last.Valid || last.String == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, last.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CFDData returns the snapshots of the last days days before now, oldest first
func (db *DB) CFDData(ctx context.Context, projectID string, days int) ([]CFDPoint, error) {
	since := db.now().AddDate(0, 0, -days).Format(dateLayout)
	rows, err := db.QueryContext(ctx, `SELECT date, status, count FROM cfd_snapshots
		WHERE project_id = ? AND date >= ?
		ORDER BY date, status`, projectID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []CFDPoint{}
	for rows.Next() {
		var p CFDPoint
		if err := rows.Scan(&p.Date, &p.Status, &p.Count); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
