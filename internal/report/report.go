// Package report derives read-only aggregates from workspace collections:
// filtered issue lists, distributions, sprint and epic progress, velocity
// and the kanban board layout.
package report

import (
	"strings"
	"time"

	"github.com/kiracore/tracker/internal/model"
)

// Filter narrows an issue list. Zero-valued fields match everything.
type Filter struct {
	Search      string // case-insensitive match on key or title
	Status      model.IssueStatus
	Priority    model.Priority
	Type        model.IssueType
	AssigneeID  string
	Sprint      string // denormalised sprint name carried by the issue
	SprintKeys  []string
	ProjectID   string
	BacklogOnly bool
}

// SprintFilter returns a Filter matching the members of sp by key.
// Sprint names repeat across projects; key lists do not.
func SprintFilter(sp model.Sprint) Filter {
	return Filter{SprintKeys: append([]string{}, sp.Issues...)}
}

// FilterIssues returns the issues matching f, preserving order.
func FilterIssues(issues []model.Issue, f Filter) []model.Issue {
	search := strings.ToLower(f.Search)
	var members map[string]bool
	if f.SprintKeys != nil {
		members = make(map[string]bool, len(f.SprintKeys))
		for _, k := range f.SprintKeys {
			members[k] = true
		}
	}
	out := []model.Issue{}
	for _, issue := range issues {
		if search != "" &&
			!strings.Contains(strings.ToLower(issue.Key), search) &&
			!strings.Contains(strings.ToLower(issue.Title), search) {
			continue
		}
		if f.Status != "" && issue.Status != f.Status {
			continue
		}
		if f.Priority != "" && issue.Priority != f.Priority {
			continue
		}
		if f.Type != "" && issue.Type != f.Type {
			continue
		}
		if f.AssigneeID != "" && (issue.Assignee == nil || issue.Assignee.ID != f.AssigneeID) {
			continue
		}
		if f.Sprint != "" && issue.Sprint != f.Sprint {
			continue
		}
		if members != nil && !members[issue.Key] {
			continue
		}
		if f.ProjectID != "" && issue.ProjectID != f.ProjectID {
			continue
		}
		if f.BacklogOnly && issue.Sprint != "" {
			continue
		}
		out = append(out, issue)
	}
	return out
}

// Backlog returns issues that belong to no sprint.
func Backlog(issues []model.Issue) []model.Issue {
	return FilterIssues(issues, Filter{BacklogOnly: true})
}

// IssuesByKeys resolves keys in order, skipping keys with no issue.
func IssuesByKeys(issues []model.Issue, keys []string) []model.Issue {
	byKey := make(map[string]model.Issue, len(issues))
	for _, issue := range issues {
		byKey[issue.Key] = issue
	}
	out := []model.Issue{}
	for _, k := range keys {
		if issue, ok := byKey[k]; ok {
			out = append(out, issue)
		}
	}
	return out
}

// Bucket is one slice of a distribution.
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func distribution[T ~string](issues []model.Issue, order []T, field func(model.Issue) T) []Bucket {
	counts := make(map[T]int, len(order))
	for _, issue := range issues {
		counts[field(issue)]++
	}
	out := []Bucket{}
	for _, v := range order {
		if counts[v] > 0 {
			out = append(out, Bucket{Name: string(v), Count: counts[v]})
		}
	}
	return out
}

// StatusDistribution counts issues per status, board order, zeros omitted.
func StatusDistribution(issues []model.Issue) []Bucket {
	return distribution(issues, model.AllStatuses, func(i model.Issue) model.IssueStatus { return i.Status })
}

// TypeDistribution counts issues per type, zeros omitted.
func TypeDistribution(issues []model.Issue) []Bucket {
	return distribution(issues, model.AllIssueTypes, func(i model.Issue) model.IssueType { return i.Type })
}

// PriorityDistribution counts issues per priority, critical first, zeros omitted.
func PriorityDistribution(issues []model.Issue) []Bucket {
	return distribution(issues, model.AllPriorities, func(i model.Issue) model.Priority { return i.Priority })
}

// Summary holds the dashboard headline figures.
type Summary struct {
	Total             int `json:"total"`
	Open              int `json:"open"`
	InProgress        int `json:"in_progress"`
	Blocked           int `json:"blocked"`
	Overdue           int `json:"overdue"`
	CompletedThisWeek int `json:"completed_this_week"`
	StoryPoints       int `json:"story_points"`
}

// DashboardSummary computes headline figures relative to now.
// "Completed this week" counts done issues updated in the last 7 days.
func DashboardSummary(issues []model.Issue, now time.Time) Summary {
	weekAgo := now.AddDate(0, 0, -7)
	s := Summary{Total: len(issues)}
	for i := range issues {
		issue := &issues[i]
		s.StoryPoints += issue.Points()
		switch issue.Status {
		case model.StatusDone:
			if issue.UpdatedAt.After(weekAgo) {
				s.CompletedThisWeek++
			}
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusBlocked:
			s.Blocked++
		}
		if issue.Status != model.StatusDone {
			s.Open++
		}
		if issue.IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}

// Progress is completion of a set of issues.
type Progress struct {
	Issues     int     `json:"issues"`
	Done       int     `json:"done"`
	Points     int     `json:"points"`
	DonePoints int     `json:"done_points"`
	Percent    float64 `json:"percent"`
}

func progressOf(issues []model.Issue, byPoints bool) Progress {
	var p Progress
	for i := range issues {
		pts := issues[i].Points()
		p.Issues++
		p.Points += pts
		if issues[i].Status == model.StatusDone {
			p.Done++
			p.DonePoints += pts
		}
	}
	switch {
	case byPoints && p.Points > 0:
		p.Percent = float64(p.DonePoints) / float64(p.Points) * 100
	case !byPoints && p.Issues > 0:
		p.Percent = float64(p.Done) / float64(p.Issues) * 100
	}
	return p
}

// SprintProgress measures a sprint by story points of the issues in its
// key list. Percent is zero when nothing is estimated.
func SprintProgress(sprint model.Sprint, issues []model.Issue) Progress {
	return progressOf(IssuesByKeys(issues, sprint.Issues), true)
}

// EpicProgress measures an epic by the share of its issues that are done.
func EpicProgress(epic model.Epic, issues []model.Issue) Progress {
	return progressOf(IssuesByKeys(issues, epic.Issues), false)
}

// ReleaseProgress measures a release by the share of its issues that are done.
func ReleaseProgress(release model.Release, issues []model.Issue) Progress {
	return progressOf(IssuesByKeys(issues, release.Issues), false)
}

// VelocityPoint is committed versus completed points for one sprint.
type VelocityPoint struct {
	Sprint    string `json:"sprint"`
	Committed int    `json:"committed"`
	Completed int    `json:"completed"`
}

// Velocity reports every started or completed sprint, counting the issues
// in each sprint's key list.
func Velocity(sprints []model.Sprint, issues []model.Issue) []VelocityPoint {
	out := []VelocityPoint{}
	for _, sp := range sprints {
		if sp.Status == model.SprintPlanned {
			continue
		}
		p := progressOf(IssuesByKeys(issues, sp.Issues), true)
		out = append(out, VelocityPoint{Sprint: sp.Name, Committed: p.Points, Completed: p.DonePoints})
	}
	return out
}

// Column is one kanban board column.
type Column struct {
	Status model.IssueStatus `json:"status"`
	Issues []model.Issue     `json:"issues"`
}

// Board groups issues into one column per status, in board order.
func Board(issues []model.Issue) []Column {
	cols := make([]Column, len(model.AllStatuses))
	index := make(map[model.IssueStatus]int, len(model.AllStatuses))
	for i, st := range model.AllStatuses {
		cols[i] = Column{Status: st, Issues: []model.Issue{}}
		index[st] = i
	}
	for _, issue := range issues {
		if i, ok := index[issue.Status]; ok {
			cols[i].Issues = append(cols[i].Issues, issue)
		}
	}
	return cols
}
