package model

// Role is a user's workspace role
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleDesigner  Role = "designer"
	RoleViewer    Role = "viewer"
)

// IssueType classifies an issue
type IssueType string

const (
	TypeBug      IssueType = "bug"
	TypeTask     IssueType = "task"
	TypeStory    IssueType = "story"
	TypeEpic     IssueType = "epic"
	TypeIncident IssueType = "incident"
	TypeRequest  IssueType = "request"
)

// IssueStatus is the workflow state of an issue
type IssueStatus string

const (
	StatusTodo       IssueStatus = "todo"
	StatusInProgress IssueStatus = "inprogress"
	StatusInReview   IssueStatus = "inreview"
	StatusBlocked    IssueStatus = "blocked"
	StatusDone       IssueStatus = "done"
)

// Priority ranks issue urgency
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// SprintStatus is the lifecycle state of a sprint
type SprintStatus string

const (
	SprintPlanned   SprintStatus = "planned"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

// ReleaseStatus is the lifecycle state of a release
type ReleaseStatus string

const (
	ReleasePlanned    ReleaseStatus = "planned"
	ReleaseInProgress ReleaseStatus = "inprogress"
	ReleaseReleased   ReleaseStatus = "released"
)

// RelationType describes how two issues relate
type RelationType string

const (
	RelationBlocks    RelationType = "blocks"
	RelationBlockedBy RelationType = "blocked-by"
	RelationRelatesTo RelationType = "relates-to"
	RelationDuplicate RelationType = "duplicates"
)

// TriggerType names the event that starts an automation
type TriggerType string

const (
	TriggerIssueCreated  TriggerType = "issue-created"
	TriggerStatusChanged TriggerType = "status-changed"
	TriggerCommentAdded  TriggerType = "comment-added"
	TriggerScheduled     TriggerType = "scheduled"
)

// ActionType names what an automation does
type ActionType string

const (
	ActionAssign        ActionType = "assign"
	ActionTransition    ActionType = "transition"
	ActionNotify        ActionType = "notify"
	ActionAddComment    ActionType = "add-comment"
	ActionCreateSubtask ActionType = "create-subtask"
)

// Ordered value lists. Status order is the board column order.
var (
	AllRoles          = []Role{RoleAdmin, RoleDeveloper, RoleDesigner, RoleViewer}
	AllIssueTypes     = []IssueType{TypeBug, TypeTask, TypeStory, TypeEpic, TypeIncident, TypeRequest}
	AllStatuses       = []IssueStatus{StatusTodo, StatusInProgress, StatusInReview, StatusBlocked, StatusDone}
	AllPriorities     = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
	AllReleaseStates  = []ReleaseStatus{ReleasePlanned, ReleaseInProgress, ReleaseReleased}
	AllRelationTypes  = []RelationType{RelationBlocks, RelationBlockedBy, RelationRelatesTo, RelationDuplicate}
	AllTriggerTypes   = []TriggerType{TriggerIssueCreated, TriggerStatusChanged, TriggerCommentAdded, TriggerScheduled}
	AllActionTypes    = []ActionType{ActionAssign, ActionTransition, ActionNotify, ActionAddComment, ActionCreateSubtask}
	AllSprintStatuses = []SprintStatus{SprintPlanned, SprintActive, SprintCompleted}
)

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (r Role) Valid() bool { return contains(AllRoles, r) }
func (t IssueType) Valid() bool { return contains(AllIssueTypes, t) }
func (s IssueStatus) Valid() bool { return contains(AllStatuses, s) }
func (p Priority) Valid() bool { return contains(AllPriorities, p) }
func (s ReleaseStatus) Valid() bool { return contains(AllReleaseStates, s) }
func (t RelationType) Valid() bool { return contains(AllRelationTypes, t) }
func (t TriggerType) Valid() bool { return contains(AllTriggerTypes, t) }
func (t ActionType) Valid() bool { return contains(AllActionTypes, t) }
func (s SprintStatus) Valid() bool { return contains(AllSprintStatuses, s) }

// Rank orders sprint states along the forward-only lifecycle
func (s SprintStatus) Rank() int {
	switch s {
	case SprintPlanned:
		return 0
	case SprintActive:
		return 1
	case SprintCompleted:
		return 2
	}
	return -1
}

// Next returns the only state a sprint may move to from s
func (s SprintStatus) Next() (SprintStatus, bool) {
	switch s {
	case SprintPlanned:
		return SprintActive, true
	case SprintActive:
		return SprintCompleted, true
	}
	return "", false
}
