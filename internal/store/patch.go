package store

import (
	"time"

	"github.com/kiracore/tracker/internal/model"
)

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// IssueDraft carries the caller-supplied fields of a new issue. Identity,
// key, project, timestamps and the nested collections are filled by AddIssue.
// Sprint membership is set afterwards with MoveIssueToSprint.
type IssueDraft struct {
	Title        string
	Description  string
	Type         model.IssueType
	Status       model.IssueStatus
	Priority     model.Priority
	Assignee     *model.User
	Reporter     model.User
	Labels       []model.Label
	Component    string
	Version      string
	StoryPoints  *int
	TimeTracking *model.TimeTracking
	DueDate      *time.Time
}

// IssuePatch lists the fields to change on an issue. Nil pointers and nil
// slices leave a field untouched; a non-nil empty slice clears it.
//
// There is no Sprint field: the issue's sprint name and the sprint's key
// list are only written together, by MoveIssueToSprint and MoveIssueToBacklog.
// There is no Activity field either, the activity log is append-only.
type IssuePatch struct {
	Title       *string
	Description *string
	Type        *model.IssueType
	Status      *model.IssueStatus
	Priority    *model.Priority

	Assignee      *model.User
	ClearAssignee bool
	Reporter      *model.User
	Watchers      []model.User
	Labels        []model.Label

	Component        *string
	Version          *string
	StoryPoints      *int
	ClearStoryPoints bool
	TimeTracking     *model.TimeTracking
	DueDate          *time.Time
	ClearDueDate     bool

	Comments    []model.Comment
	Subtasks    []model.Issue
	Relations   []model.Relation
	Attachments []string
}

func (p IssuePatch) apply(i *model.Issue) {
	if p.Title != nil {
		i.Title = *p.Title
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.Type != nil {
		i.Type = *p.Type
	}
	if p.Status != nil {
		i.Status = *p.Status
	}
	if p.Priority != nil {
		i.Priority = *p.Priority
	}
	if p.ClearAssignee {
		i.Assignee = nil
	} else if p.Assignee != nil {
		a := *p.Assignee
		i.Assignee = &a
	}
	if p.Reporter != nil {
		i.Reporter = *p.Reporter
	}
	if p.Watchers != nil {
		i.Watchers = append([]model.User{}, p.Watchers...)
	}
	if p.Labels != nil {
		i.Labels = append([]model.Label{}, p.Labels...)
	}
	if p.Component != nil {
		i.Component = *p.Component
	}
	if p.Version != nil {
		i.Version = *p.Version
	}
	if p.ClearStoryPoints {
		i.StoryPoints = nil
	} else if p.StoryPoints != nil {
		i.StoryPoints = Ptr(*p.StoryPoints)
	}
	if p.TimeTracking != nil {
		i.TimeTracking = *p.TimeTracking
	}
	if p.ClearDueDate {
		i.DueDate = nil
	} else if p.DueDate != nil {
		i.DueDate = Ptr(*p.DueDate)
	}
	if p.Comments != nil {
		i.Comments = append([]model.Comment{}, p.Comments...)
	}
	if p.Subtasks != nil {
		i.Subtasks = append([]model.Issue{}, p.Subtasks...)
	}
	if p.Relations != nil {
		i.Relations = append([]model.Relation{}, p.Relations...)
	}
	if p.Attachments != nil {
		i.Attachments = append([]string{}, p.Attachments...)
	}
}

// SprintDraft carries the fields of a new sprint. An empty Status means
// planned; an empty ProjectID means the current project.
type SprintDraft struct {
	Name      string
	Goal      string
	StartDate time.Time
	EndDate   time.Time
	Status    model.SprintStatus
	ProjectID string
}

// SprintPatch lists sprint fields to change. The issue key list is not
// patchable; it follows MoveIssueToSprint.
type SprintPatch struct {
	Name      *string
	Goal      *string
	StartDate *time.Time
	EndDate   *time.Time
	Status    *model.SprintStatus
}

// ProjectDraft carries the fields of a new project.
type ProjectDraft struct {
	Key         string
	Name        string
	Description string
	Lead        model.User
	Members     []model.User
}

// ProjectPatch lists project fields to change.
type ProjectPatch struct {
	Key         *string
	Name        *string
	Description *string
	Lead        *model.User
	Members     []model.User
}

func (p ProjectPatch) apply(pr *model.Project) {
	if p.Key != nil {
		pr.Key = *p.Key
	}
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.Lead != nil {
		pr.Lead = *p.Lead
	}
	if p.Members != nil {
		pr.Members = append([]model.User{}, p.Members...)
	}
}

// UserDraft carries the fields of a new user.
type UserDraft struct {
	Name   string
	Email  string
	Avatar string
	Role   model.Role
}

// EpicDraft carries the fields of a new epic.
type EpicDraft struct {
	Key         string
	Name        string
	Description string
	Color       string
	Status      model.IssueStatus
	StartDate   *time.Time
	EndDate     *time.Time
	Issues      []string
	ProjectID   string
}

// EpicPatch lists epic fields to change.
type EpicPatch struct {
	Name        *string
	Description *string
	Color       *string
	Status      *model.IssueStatus
	StartDate   *time.Time
	EndDate     *time.Time
	Issues      []string
}

func (p EpicPatch) apply(e *model.Epic) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.StartDate != nil {
		e.StartDate = Ptr(*p.StartDate)
	}
	if p.EndDate != nil {
		e.EndDate = Ptr(*p.EndDate)
	}
	if p.Issues != nil {
		e.Issues = append([]string{}, p.Issues...)
	}
}

// ReleaseDraft carries the fields of a new release.
type ReleaseDraft struct {
	Name        string
	Version     string
	Description string
	Status      model.ReleaseStatus
	ReleaseDate *time.Time
	Issues      []string
	ProjectID   string
}

// ReleasePatch lists release fields to change.
type ReleasePatch struct {
	Name        *string
	Version     *string
	Description *string
	Status      *model.ReleaseStatus
	ReleaseDate *time.Time
	Issues      []string
}

func (p ReleasePatch) apply(r *model.Release) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Version != nil {
		r.Version = *p.Version
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.ReleaseDate != nil {
		r.ReleaseDate = Ptr(*p.ReleaseDate)
	}
	if p.Issues != nil {
		r.Issues = append([]string{}, p.Issues...)
	}
}

// AutomationDraft carries the fields of a new automation rule.
type AutomationDraft struct {
	Name       string
	Enabled    bool
	Trigger    model.Trigger
	Conditions []model.Condition
	Actions    []model.Action
	ProjectID  string
}

// LabelDraft carries the fields of a new label.
type LabelDraft struct {
	Name  string
	Color string
}

// WorkspaceDraft carries the fields of a new workspace.
type WorkspaceDraft struct {
	Name string
	Slug string
	Logo string
}
