package db

import (
	"time"

	"github.com/kiracore/tracker/internal/store"
)

// Session keys
const (
	sessionCurrentProject = "current_project"
	sessionCurrentUser    = "current_user"
	sessionSelection      = "selected_issues"
)

// timeLayout is fixed width so saved_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// dateLayout keys cfd_snapshots rows
const dateLayout = "2006-01-02"

// CFDPoint is one status count on one day
type CFDPoint struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// HistoryEntry records one SaveSnapshot call
type HistoryEntry struct {
	ID       string    `json:"id"`
	SavedAt  time.Time `json:"saved_at"`
	Issues   int       `json:"issues"`
	Sprints  int       `json:"sprints"`
	Projects int       `json:"projects"`
}

// Stats returns database statistics
type Stats struct {
	Path          string         `json:"path"`
	Size          int64          `json:"size_bytes"`
	Collections   map[string]int `json:"collections"`
	ByStatus      map[string]int `json:"issues_by_status"`
	Saves         int            `json:"saves"`
	LastSaved     time.Time      `json:"last_saved"`
	SchemaVersion int            `json:"schema_version"`
}

// ExportData is the JSON document written by Export
type ExportData struct {
	ExportedAt    time.Time      `json:"exported_at"`
	SchemaVersion int            `json:"schema_version"`
	Workspace     store.Snapshot `json:"workspace"`
}
