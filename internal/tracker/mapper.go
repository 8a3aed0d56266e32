package tracker

import (
	"bytes"
	"encoding/json"
	"time"
)

// MapProject transforms a backend DTO into a domain Project.
func MapProject(item ProjectDTO) Project {
	p := Project{
		ID:          preferID(item.ID, item.DocID),
		Name:        item.Name,
		Description: item.Description,
		StartDate:   parseOptionalTime(item.StartDate.String()),
		EndDate:     parseOptionalTime(item.EndDate.String()),
		Status:      ParseStatus(item.Status),
		RawStatus:   item.Status,
		Owner:       decodeUserRef(item.Owner),
	}
	for _, raw := range item.Members {
		if u := decodeUserRef(raw); u != nil {
			p.Members = append(p.Members, *u)
		}
	}
	return p
}

// MapTask transforms a backend DTO into a domain Task.
func MapTask(item TaskDTO) Task {
	return Task{
		ID:        preferID(item.ID, item.DocID),
		Title:     item.Title,
		Status:    ParseStatus(item.Status),
		RawStatus: item.Status,
		Priority:  item.Priority.String(),
		DueDate:   parseOptionalTime(item.DueDate.String()),
		CreatedAt: parseOptionalTime(item.CreatedAt.String()),
		UpdatedAt: parseOptionalTime(item.UpdatedAt.String()),
		Project:   DecodeProjectRef(item.Project),
		Assignee:  decodeUserRef(item.Assignee),
	}
}

// DecodeProjectRef normalizes the two wire forms of a task's project link:
// an embedded project object or a bare string/number identifier.
func DecodeProjectRef(raw json.RawMessage) ProjectRef {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ProjectRef{}
	}
	if raw[0] == '{' {
		var dto ProjectDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return ProjectRef{}
		}
		p := MapProject(dto)
		if p.ID == "" {
			return ProjectRef{}
		}
		return InlineRef(p)
	}
	var id FlexString
	if err := json.Unmarshal(raw, &id); err != nil {
		return ProjectRef{}
	}
	return IDRef(id.String())
}

func decodeUserRef(raw json.RawMessage) *UserRef {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '{' {
		var obj struct {
			ID        FlexString `json:"id"`
			DocID     FlexString `json:"_id"`
			Name      string     `json:"name"`
			FirstName string     `json:"firstName"`
			LastName  string     `json:"lastName"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil
		}
		id := preferID(obj.ID, obj.DocID)
		if id == "" {
			return nil
		}
		name := obj.Name
		if name == "" && (obj.FirstName != "" || obj.LastName != "") {
			name = joinNonEmpty(obj.FirstName, obj.LastName)
		}
		return &UserRef{ID: id, Name: name}
	}
	var id FlexString
	if err := json.Unmarshal(raw, &id); err != nil || id == "" {
		return nil
	}
	return &UserRef{ID: id.String()}
}

func preferID(id, docID FlexString) string {
	if id != "" {
		return id.String()
	}
	return docID.String()
}

func parseOptionalTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return nil
	}
	return &t
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}
