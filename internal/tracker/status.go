package tracker

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Status is the canonical lifecycle state of a project or task.
type Status string

const (
	StatusUnknown    Status = "unknown"
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusLate       Status = "late"
	StatusCancelled  Status = "cancelled"
)

// statusTable maps folded (lowercase, unaccented, single-spaced) backend
// spellings in English and French to canonical statuses.
var statusTable = map[string]Status{
	"done":        StatusCompleted,
	"completed":   StatusCompleted,
	"complete":    StatusCompleted,
	"finished":    StatusCompleted,
	"closed":      StatusCompleted,
	"termine":     StatusCompleted,
	"terminee":    StatusCompleted,
	"acheve":      StatusCompleted,
	"achevee":     StatusCompleted,
	"fini":        StatusCompleted,
	"finie":       StatusCompleted,
	"clos":        StatusCompleted,
	"cloture":     StatusCompleted,
	"in progress": StatusInProgress,
	"ongoing":     StatusInProgress,
	"active":      StatusInProgress,
	"started":     StatusInProgress,
	"doing":       StatusInProgress,
	"en cours":    StatusInProgress,
	"actif":       StatusInProgress,
	"todo":        StatusTodo,
	"to do":       StatusTodo,
	"open":        StatusTodo,
	"new":         StatusTodo,
	"pending":     StatusTodo,
	"planned":     StatusTodo,
	"not started": StatusTodo,
	"a faire":     StatusTodo,
	"nouveau":     StatusTodo,
	"en attente":  StatusTodo,
	"planifie":    StatusTodo,
	"late":        StatusLate,
	"overdue":     StatusLate,
	"delayed":     StatusLate,
	"en retard":   StatusLate,
	"retard":      StatusLate,
	"cancelled":   StatusCancelled,
	"canceled":    StatusCancelled,
	"abandoned":   StatusCancelled,
	"annule":      StatusCancelled,
	"annulee":     StatusCancelled,
}

// ParseStatus translates a free-text backend status into a Status.
// Unrecognized or empty input yields StatusUnknown.
func ParseStatus(raw string) Status {
	key := foldStatus(raw)
	if key == "" {
		return StatusUnknown
	}
	if st, ok := statusTable[key]; ok {
		return st
	}
	// Canonical values round-trip.
	switch st := Status(strings.ReplaceAll(key, " ", "_")); st {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusLate, StatusCancelled:
		return st
	}
	return StatusUnknown
}

// IsTerminal reports whether no further work is expected.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

func foldStatus(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, raw)
	if err != nil {
		folded = raw
	}
	folded = strings.ToLower(folded)
	folded = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, folded)
	return strings.Join(strings.Fields(folded), " ")
}
