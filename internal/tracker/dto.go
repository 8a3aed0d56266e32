package tracker

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// ProjectsResponse is the envelope returned by the projects listing endpoint.
type ProjectsResponse struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message,omitempty"`
	Projects []ProjectDTO `json:"projects"`
}

// TasksResponse is the envelope returned by the tasks listing endpoint.
type TasksResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Tasks   []TaskDTO `json:"tasks"`
}

// ProjectDTO represents a single project as the backend serializes it.
// Document-store backends send "_id" instead of "id".
type ProjectDTO struct {
	ID          FlexString        `json:"id,omitempty"`
	DocID       FlexString        `json:"_id,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	StartDate   FlexString        `json:"startDate,omitempty"`
	EndDate     FlexString        `json:"endDate,omitempty"`
	Status      string            `json:"status,omitempty"`
	Owner       json.RawMessage   `json:"owner,omitempty"`
	Members     []json.RawMessage `json:"members,omitempty"`
}

// TaskDTO represents a single task as the backend serializes it.
type TaskDTO struct {
	ID        FlexString      `json:"id,omitempty"`
	DocID     FlexString      `json:"_id,omitempty"`
	Title     string          `json:"title"`
	Status    string          `json:"status,omitempty"`
	Priority  FlexString      `json:"priority,omitempty"`
	DueDate   FlexString      `json:"dueDate,omitempty"`
	CreatedAt FlexString      `json:"createdAt,omitempty"`
	UpdatedAt FlexString      `json:"updatedAt,omitempty"`
	Project   json.RawMessage `json:"project,omitempty"`
	Assignee  json.RawMessage `json:"assignee,omitempty"`
}

// listingResponse is the envelope as decoded by the client. Elements stay
// raw so that one malformed record does not fail the whole listing.
type listingResponse struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message,omitempty"`
	Projects []json.RawMessage `json:"projects"`
	Tasks    []json.RawMessage `json:"tasks"`
}

// TaskUpdateRequest is the body sent to the task update endpoint.
type TaskUpdateRequest struct {
	Status string `json:"status"`
}

// FlexString accepts a JSON string or number and stores its text form.
// Dates use it too, since some backends send epoch milliseconds.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// ParseTime parses the date formats the backend is known to emit.
func ParseTime(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		time.DateOnly,
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	// Epoch milliseconds.
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, lastErr
}
