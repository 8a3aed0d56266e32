package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"pulse-mcp/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, chaos, late")
	outDir := flag.String("out", "./.cache/mock", "Output directory for mock files")
	projects := flag.Int("projects", 6, "Number of projects to generate")
	tasks := flag.Int("tasks", 12, "Number of tasks per project")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
	serve := flag.String("serve", "", "Serve the dataset as a mock backend on this address (e.g. :4000)")
	token := flag.String("token", "", "Bearer token the mock backend requires")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:        *scenario,
		Projects:        *projects,
		TasksPerProject: *tasks,
		Seed:            *seed,
		Now:             time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Projects: %d, Tasks/project: %d, Seed: %d) to %s...\n", cfg.Scenario, cfg.Projects, cfg.TasksPerProject, cfg.Seed, *outDir)

	ds := engine.Generate(cfg)
	fmt.Printf("Generated %d projects and %d tasks, %d of them late.\n", len(ds.Projects), len(ds.Tasks), engine.CountLate(ds, cfg.Now))
	if err := engine.Save(*outDir, ds); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	if *serve != "" {
		fmt.Printf("Serving mock backend on %s (GET /projects, GET /tasks, PUT /tasks/{id})\n", *serve)
		if err := http.ListenAndServe(*serve, engine.NewServer(ds, *token)); err != nil {
			fmt.Printf("Mock backend stopped: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Done.")
}
