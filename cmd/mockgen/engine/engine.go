package engine

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"pulse-mcp/internal/stats"
	"pulse-mcp/internal/tracker"
)

type GeneratorConfig struct {
	Scenario        string // "mild", "chaos" or "late"
	Projects        int
	TasksPerProject int
	Seed            uint64
	Now             time.Time
}

// Dataset is a backend-shaped set of projects and tasks.
type Dataset struct {
	Projects []tracker.ProjectDTO
	Tasks    []tracker.TaskDTO
}

var (
	doneStatuses    = []string{"done", "Completed", "terminé", "Terminée", "achevé", "fini", "closed"}
	openStatuses    = []string{"todo", "To Do", "à faire", "nouveau", "open"}
	activeStatuses  = []string{"in_progress", "In Progress", "en cours", "doing"}
	pendingStatuses = append(append([]string{}, openStatuses...), activeStatuses...)
	people          = []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "Margaret Hamilton", "Linus Torvalds", "Barbara Liskov", "Ken Thompson", "Frances Allen"}
	projectNames    = []string{"Website Redesign", "Mobile App", "Data Platform", "Billing Migration", "Onboarding Flow", "Search Revamp", "Analytics Dashboard", "API Gateway", "Design System", "Support Portal"}
)

func Generate(cfg GeneratorConfig) Dataset {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Projects <= 0 {
		cfg.Projects = 6
	}
	if cfg.TasksPerProject <= 0 {
		cfg.TasksPerProject = 12
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	// Share of open tasks that are already overdue.
	overdue := 0.1
	switch cfg.Scenario {
	case "chaos":
		overdue = 0.35
	case "late":
		overdue = 0.8
	}

	var ds Dataset
	for i := 0; i < cfg.Projects; i++ {
		numeric := cfg.Scenario == "chaos" && i%3 == 2
		id := fmt.Sprintf("proj-%03d", i+1)
		if numeric {
			id = strconv.Itoa(1000 + i)
		}
		name := projectNames[i%len(projectNames)]
		if i >= len(projectNames) {
			name = fmt.Sprintf("%s %d", name, i/len(projectNames)+1)
		}

		start := cfg.Now.AddDate(0, 0, -(30 + rng.IntN(150)))
		end := start.AddDate(0, 0, 30+rng.IntN(120))
		finished := end.Before(cfg.Now) && rng.Float64() < 0.6

		status := pick(rng, activeStatuses)
		if finished {
			status = pick(rng, doneStatuses)
		}

		team := 1 + rng.IntN(5)
		members := make([]json.RawMessage, 0, team)
		for m := 0; m < team; m++ {
			members = append(members, userJSON(pick(rng, people)))
		}

		project := tracker.ProjectDTO{
			Name:        name,
			Description: fmt.Sprintf("Generated %s project", cfg.Scenario),
			StartDate:   tracker.FlexString(start.Format(time.RFC3339)),
			EndDate:     tracker.FlexString(end.Format(time.RFC3339)),
			Status:      status,
			Owner:       userJSON(pick(rng, people)),
			Members:     members,
		}
		// Document-store and relational spellings both occur in the wild.
		if i%2 == 0 {
			project.DocID = tracker.FlexString(id)
		} else {
			project.ID = tracker.FlexString(id)
		}
		if cfg.Scenario == "chaos" && i%4 == 3 {
			project.EndDate = ""
		}
		ds.Projects = append(ds.Projects, project)

		for j := 0; j < cfg.TasksPerProject; j++ {
			ds.Tasks = append(ds.Tasks, generateTask(rng, cfg, project, id, numeric, finished, overdue, i, j))
		}
	}

	if cfg.Scenario == "chaos" {
		// Orphans and broken references must not disturb the analytics.
		ds.Tasks = append(ds.Tasks,
			tracker.TaskDTO{ID: "orphan-1", Title: "Orphan task", Status: "todo", Project: json.RawMessage(`"proj-999"`)},
			tracker.TaskDTO{ID: "orphan-2", Title: "Task without project", Status: "en cours", Project: json.RawMessage(`null`)},
		)
	}
	return ds
}

// CountLate reports how many generated tasks classify as late at now,
// reading the raw wire fields the way the analytics do.
func CountLate(ds Dataset, now time.Time) int {
	late := 0
	for _, t := range ds.Tasks {
		if stats.ClassifyRaw(t.Status, t.DueDate.String(), now).Late {
			late++
		}
	}
	return late
}

func generateTask(rng *rand.Rand, cfg GeneratorConfig, project tracker.ProjectDTO, projectID string, numeric, finished bool, overdue float64, i, j int) tracker.TaskDTO {
	created := cfg.Now.AddDate(0, 0, -rng.IntN(90))
	task := tracker.TaskDTO{
		Title:     fmt.Sprintf("Task %d.%d", i+1, j+1),
		Priority:  tracker.FlexString(pick(rng, []string{"low", "medium", "high"})),
		CreatedAt: tracker.FlexString(created.Format(time.RFC3339)),
		UpdatedAt: tracker.FlexString(created.Add(time.Duration(rng.IntN(72)) * time.Hour).Format(time.RFC3339)),
		Assignee:  userJSON(pick(rng, people)),
	}
	taskID := fmt.Sprintf("task-%03d-%03d", i+1, j+1)
	if j%2 == 0 {
		task.DocID = tracker.FlexString(taskID)
	} else {
		task.ID = tracker.FlexString(taskID)
	}

	switch {
	case finished || rng.Float64() < 0.45:
		task.Status = pick(rng, doneStatuses)
		task.DueDate = tracker.FlexString(cfg.Now.AddDate(0, 0, -rng.IntN(30)).Format(time.RFC3339))
	case rng.Float64() < overdue:
		task.Status = pick(rng, pendingStatuses)
		task.DueDate = tracker.FlexString(cfg.Now.AddDate(0, 0, -(1 + rng.IntN(20))).Format(time.RFC3339))
	default:
		task.Status = pick(rng, pendingStatuses)
		task.DueDate = tracker.FlexString(cfg.Now.AddDate(0, 0, 1+rng.IntN(30)).Format(time.DateOnly))
	}

	if cfg.Scenario == "chaos" {
		switch j % 5 {
		case 3:
			task.DueDate = "someday"
		case 4:
			task.DueDate = ""
		}
	}

	// Alternate between embedded and bare project references.
	switch {
	case j%3 == 0:
		inline := map[string]any{"name": project.Name}
		if project.DocID != "" {
			inline["_id"] = projectID
		} else {
			inline["id"] = projectID
		}
		task.Project, _ = json.Marshal(inline)
	case numeric:
		task.Project = json.RawMessage(projectID)
	default:
		task.Project = json.RawMessage(strconv.Quote(projectID))
	}
	return task
}

func userJSON(name string) json.RawMessage {
	data, _ := json.Marshal(map[string]string{
		"_id":  fmt.Sprintf("user-%x", hash(name)),
		"name": name,
	})
	return data
}

func hash(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.IntN(len(options))]
}

// Save writes the dataset as the two listing responses the backend returns.
func Save(outDir string, ds Dataset) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	if err := writeFileJSON(filepath.Join(outDir, "projects.json"), tracker.ProjectsResponse{Success: true, Projects: ds.Projects}); err != nil {
		return err
	}
	return writeFileJSON(filepath.Join(outDir, "tasks.json"), tracker.TasksResponse{Success: true, Tasks: ds.Tasks})
}

// Load reads a dataset written by Save.
func Load(dir string) (Dataset, error) {
	var projects tracker.ProjectsResponse
	if err := readFileJSON(filepath.Join(dir, "projects.json"), &projects); err != nil {
		return Dataset{}, err
	}
	var tasks tracker.TasksResponse
	if err := readFileJSON(filepath.Join(dir, "tasks.json"), &tasks); err != nil {
		return Dataset{}, err
	}
	return Dataset{Projects: projects.Projects, Tasks: tasks.Tasks}, nil
}

func writeFileJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readFileJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
