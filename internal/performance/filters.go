package performance

import (
	"fmt"
	"strings"
	"time"

	"pulse-mcp/internal/tracker"
)

// Filters narrows a performance request.
type Filters struct {
	ProjectID string `json:"projectId,omitempty" jsonschema:"only report on this project"`
	// DateRange is [from, to]; projects whose schedule overlaps it are kept.
	DateRange    []string `json:"dateRange,omitempty" jsonschema:"two dates [from, to]; keeps projects whose schedule overlaps the range"`
	ForceRefresh bool     `json:"forceRefresh,omitempty" jsonschema:"bypass the cache and fetch from the backend"`
}

type dateRange struct {
	from, to time.Time
}

// parseDateRange validates a [from, to] pair. Entries are parsed with the
// same layouts the backend uses. Reversed bounds are swapped.
func parseDateRange(raw []string) (*dateRange, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if len(raw) != 2 {
		return nil, fmt.Errorf("date range needs exactly two entries, got %d", len(raw))
	}
	from, err := tracker.ParseTime(strings.TrimSpace(raw[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid range start %q: %w", raw[0], err)
	}
	to, err := tracker.ParseTime(strings.TrimSpace(raw[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid range end %q: %w", raw[1], err)
	}
	if to.Before(from) {
		from, to = to, from
	}
	return &dateRange{from: from, to: to}, nil
}

// overlaps reports whether the project's [start, end] intersects r. A
// missing bound is treated as open, so projects without dates are kept.
func (r *dateRange) overlaps(p tracker.Project) bool {
	if p.StartDate != nil && p.StartDate.After(r.to) {
		return false
	}
	if p.EndDate != nil && p.EndDate.Before(r.from) {
		return false
	}
	return true
}

// applyFilters returns the projects selected by f plus any warnings about
// filters that had to be ignored.
func applyFilters(projects []tracker.Project, f Filters) ([]tracker.Project, []string) {
	var warnings []string
	out := projects

	if f.ProjectID != "" {
		out = nil
		for _, p := range projects {
			if p.ID == f.ProjectID {
				out = append(out, p)
			}
		}
	}

	r, err := parseDateRange(f.DateRange)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("date range ignored: %v", err))
	} else if r != nil {
		kept := make([]tracker.Project, 0, len(out))
		for _, p := range out {
			if r.overlaps(p) {
				kept = append(kept, p)
			}
		}
		out = kept
	}
	return out, warnings
}
