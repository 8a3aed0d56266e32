package tracker

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"Done", StatusCompleted},
		{"done", StatusCompleted},
		{"Terminé", StatusCompleted},
		{"TERMINÉE", StatusCompleted},
		{"terminee", StatusCompleted},
		{"Completed", StatusCompleted},
		{"Achevé", StatusCompleted},
		{"  achevée ", StatusCompleted},
		{"In Progress", StatusInProgress},
		{"in_progress", StatusInProgress},
		{"en-cours", StatusInProgress},
		{"À faire", StatusTodo},
		{"to do", StatusTodo},
		{"En retard", StatusLate},
		{"late", StatusLate},
		{"Annulée", StatusCancelled},
		{"", StatusUnknown},
		{"   ", StatusUnknown},
		{"blocked by legal", StatusUnknown},
	}

	for _, tt := range tests {
		if got := ParseStatus(tt.raw); got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	if !StatusCompleted.IsTerminal() {
		t.Error("completed should be terminal")
	}
	for _, s := range []Status{StatusTodo, StatusInProgress, StatusLate, StatusCancelled, StatusUnknown} {
		if s.IsTerminal() {
			t.Errorf("%q should not be terminal", s)
		}
	}
}
