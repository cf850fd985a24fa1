package model

import (
	"time"
)

// User represents a workspace member
type User struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email" yaml:"email"`
	Avatar string `json:"avatar" yaml:"avatar"`
	Role   Role   `json:"role" yaml:"role"`
}

// Label represents an issue label
type Label struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// Comment represents a comment on an issue
type Comment struct {
	ID        string    `json:"id"`
	Author    User      `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityItem is one entry of an issue's append-only history
type ActivityItem struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

// Relation links an issue to another issue by key
type Relation struct {
	Type     RelationType `json:"type"`
	IssueKey string       `json:"issue_key"`
}

// TimeTracking holds hour figures for an issue.
// No arithmetic relation between the three is enforced.
type TimeTracking struct {
	OriginalEstimate float64 `json:"original_estimate"`
	TimeSpent        float64 `json:"time_spent"`
	Remaining        float64 `json:"remaining"`
}

// Issue represents a tracked work item
type Issue struct {
	ID          string      `json:"id"`
	Key         string      `json:"key"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        IssueType   `json:"type"`
	Status      IssueStatus `json:"status"`
	Priority    Priority    `json:"priority"`

	Assignee *User   `json:"assignee,omitempty"`
	Reporter User    `json:"reporter"`
	Watchers []User  `json:"watchers"`
	Labels   []Label `json:"labels"`

	Component   string `json:"component,omitempty"`
	Version     string `json:"version,omitempty"`
	Sprint      string `json:"sprint,omitempty"` // sprint name, empty means backlog
	StoryPoints *int   `json:"story_points,omitempty"`

	TimeTracking TimeTracking `json:"time_tracking"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	Comments    []Comment      `json:"comments"`
	Activity    []ActivityItem `json:"activity"`
	Subtasks    []Issue        `json:"subtasks"`
	Relations   []Relation     `json:"relations"`
	Attachments []string       `json:"attachments"`

	ProjectID string `json:"project_id"`
}

// Points returns the story points or zero when unestimated
func (i *Issue) Points() int {
	if i.StoryPoints == nil {
		return 0
	}
	return *i.StoryPoints
}

// IsOverdue reports whether the issue is past its due date and not done
func (i *Issue) IsOverdue(now time.Time) bool {
	return i.DueDate != nil && i.DueDate.Before(now) && i.Status != StatusDone
}

// Project represents a project that owns issues, sprints, epics and releases
type Project struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Lead        User      `json:"lead"`
	Members     []User    `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
}

// Sprint represents a time-boxed container of issues
type Sprint struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Goal      string       `json:"goal"`
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	Status    SprintStatus `json:"status"`
	Issues    []string     `json:"issues"` // issue keys
	ProjectID string       `json:"project_id"`
}

// Epic represents a thematic grouping of issues
type Epic struct {
	ID          string      `json:"id"`
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Color       string      `json:"color"`
	Status      IssueStatus `json:"status"`
	StartDate   *time.Time  `json:"start_date,omitempty"`
	EndDate     *time.Time  `json:"end_date,omitempty"`
	Issues      []string    `json:"issues"` // issue keys
	ProjectID   string      `json:"project_id"`
}

// Release represents a versioned delivery
type Release struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Version     string        `json:"version"`
	Description string        `json:"description"`
	Status      ReleaseStatus `json:"status"`
	ReleaseDate *time.Time    `json:"release_date,omitempty"`
	Issues      []string      `json:"issues"` // issue keys
	ProjectID   string        `json:"project_id"`
}

// Trigger starts an automation rule
type Trigger struct {
	Type   TriggerType    `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// Condition filters when an automation rule applies
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Action is a step an automation rule would perform
type Action struct {
	Type   ActionType     `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// Automation is a stored rule description. Rules are never executed here.
type Automation struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Enabled    bool        `json:"enabled"`
	Trigger    Trigger     `json:"trigger"`
	Conditions []Condition `json:"conditions"`
	Actions    []Action    `json:"actions"`
	ProjectID  string      `json:"project_id"`
}

// Workspace is the top-level container
type Workspace struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Slug string `json:"slug" yaml:"slug"`
	Logo string `json:"logo,omitempty" yaml:"logo,omitempty"`
}
