package engine

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"pulse-mcp/internal/stats"
	"pulse-mcp/internal/tracker"
)

var genNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := GeneratorConfig{Scenario: "chaos", Projects: 5, TasksPerProject: 8, Seed: 42, Now: genNow}
	a := Generate(cfg)
	b := Generate(cfg)

	if len(a.Projects) != 5 {
		t.Fatalf("projects = %d, want 5", len(a.Projects))
	}
	if len(a.Tasks) != 5*8+2 {
		t.Fatalf("tasks = %d, want %d", len(a.Tasks), 5*8+2)
	}
	for i := range a.Tasks {
		if a.Tasks[i].Status != b.Tasks[i].Status || a.Tasks[i].DueDate != b.Tasks[i].DueDate {
			t.Fatalf("task %d differs between runs with the same seed", i)
		}
	}
}

func TestGenerate_MapsThroughTracker(t *testing.T) {
	ds := Generate(GeneratorConfig{Scenario: "chaos", Projects: 6, TasksPerProject: 9, Seed: 7, Now: genNow})

	projects := make(map[string]bool)
	for _, dto := range ds.Projects {
		p := tracker.MapProject(dto)
		if p.ID == "" {
			t.Fatalf("project %q lost its id", dto.Name)
		}
		projects[p.ID] = true
	}

	kinds := make(map[tracker.RefKind]int)
	linked := 0
	for _, dto := range ds.Tasks {
		task := tracker.MapTask(dto)
		kinds[task.Project.Kind]++
		if projects[task.Project.ProjectID()] {
			linked++
		}
	}
	if kinds[tracker.RefInline] == 0 || kinds[tracker.RefID] == 0 {
		t.Errorf("expected both reference forms, got %v", kinds)
	}
	if linked != 6*9 {
		t.Errorf("linked tasks = %d, want %d", linked, 6*9)
	}
}

func TestGenerate_LateScenarioHasOverdueWork(t *testing.T) {
	ds := Generate(GeneratorConfig{Scenario: "late", Projects: 4, TasksPerProject: 20, Seed: 3, Now: genNow})
	late := 0
	for _, dto := range ds.Tasks {
		if stats.IsTaskLate(tracker.MapTask(dto), genNow) {
			late++
		}
	}
	if late == 0 {
		t.Error("late scenario produced no overdue task")
	}
	if got := CountLate(ds, genNow); got != late {
		t.Errorf("CountLate = %d, mapped tasks give %d", got, late)
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	ds := Generate(GeneratorConfig{Scenario: "mild", Projects: 2, TasksPerProject: 3, Seed: 1, Now: genNow})
	if err := Save(dir, ds); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Projects) != 2 || len(loaded.Tasks) != 6 {
		t.Errorf("loaded %d projects and %d tasks", len(loaded.Projects), len(loaded.Tasks))
	}
}

func TestServer_WithTrackerClient(t *testing.T) {
	ds := Generate(GeneratorConfig{Scenario: "mild", Projects: 2, TasksPerProject: 4, Seed: 9, Now: genNow})
	mock := NewServer(ds, "secret")
	srv := httptest.NewServer(mock)
	defer srv.Close()
	ctx := context.Background()

	client := tracker.NewClient(tracker.Config{BaseURL: srv.URL, Token: "secret", Timeout: 5 * time.Second})
	projects, err := client.ListProjects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	tasks, err := client.ListTasks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 || len(tasks) != 8 {
		t.Fatalf("got %d projects and %d tasks", len(projects), len(tasks))
	}

	if err := client.UpdateTaskStatus(ctx, tasks[0].ID, tracker.StatusLate); err != nil {
		t.Fatal(err)
	}
	if status, ok := mock.TaskStatus(tasks[0].ID); !ok || status != "late" {
		t.Errorf("status = %q, %v", status, ok)
	}

	denied := tracker.NewClient(tracker.Config{BaseURL: srv.URL, Token: "wrong"})
	if _, err := denied.ListProjects(ctx); err == nil {
		t.Error("expected an authorization error")
	}
}
