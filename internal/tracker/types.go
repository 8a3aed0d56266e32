package tracker

import "time"

// UserRef identifies a person attached to a project or task.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Project is the subset of backend project data needed for analytics.
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Status      Status     `json:"status"`
	RawStatus   string     `json:"raw_status,omitempty"`
	Owner       *UserRef   `json:"owner,omitempty"`
	Members     []UserRef  `json:"members,omitempty"`
}

// TeamSize counts distinct members, including the owner.
func (p Project) TeamSize() int {
	seen := make(map[string]bool, len(p.Members)+1)
	for _, m := range p.Members {
		if m.ID != "" {
			seen[m.ID] = true
		}
	}
	if p.Owner != nil && p.Owner.ID != "" {
		seen[p.Owner.ID] = true
	}
	return len(seen)
}

// Task is the subset of backend task data needed for analytics.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    Status     `json:"status"`
	RawStatus string     `json:"raw_status,omitempty"`
	Priority  string     `json:"priority,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Project   ProjectRef `json:"project"`
	Assignee  *UserRef   `json:"assignee,omitempty"`
}

type RefKind string

const (
	RefNone   RefKind = ""
	RefInline RefKind = "inline"
	RefID     RefKind = "ref"
)

// ProjectRef is a task's link to its project. The backend sends either an
// embedded project object or a bare identifier; both are normalized here.
type ProjectRef struct {
	Kind    RefKind  `json:"kind,omitempty"`
	ID      string   `json:"id,omitempty"`
	Project *Project `json:"project,omitempty"`
}

// InlineRef wraps an embedded project.
func InlineRef(p Project) ProjectRef {
	return ProjectRef{Kind: RefInline, ID: p.ID, Project: &p}
}

// IDRef wraps a bare project identifier.
func IDRef(id string) ProjectRef {
	if id == "" {
		return ProjectRef{}
	}
	return ProjectRef{Kind: RefID, ID: id}
}

// ProjectID returns the referenced project's identifier, or "" for none.
func (r ProjectRef) ProjectID() string {
	if r.Kind == RefInline && r.Project != nil {
		return r.Project.ID
	}
	return r.ID
}
