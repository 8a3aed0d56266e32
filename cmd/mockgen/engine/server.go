package engine

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"pulse-mcp/internal/tracker"

	"github.com/rs/zerolog/log"
)

// Server mimics the backend's listing and task update endpoints over a
// dataset held in memory.
type Server struct {
	mu    sync.Mutex
	ds    Dataset
	token string
	mux   *http.ServeMux
}

// NewServer serves ds. A non-empty token is required as a bearer token.
func NewServer(ds Dataset, token string) *Server {
	s := &Server{ds: ds, token: token, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /projects", s.handleProjects)
	s.mux.HandleFunc("GET /tasks", s.handleTasks)
	s.mux.HandleFunc("PUT /tasks/{id}", s.handleUpdateTask)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "unauthorized"})
		return
	}
	log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("mock backend request")
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleProjects(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, tracker.ProjectsResponse{Success: true, Projects: s.ds.Projects})
}

func (s *Server) handleTasks(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, tracker.TasksResponse{Success: true, Tasks: s.ds.Tasks})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req tracker.TaskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "status is required"})
		return
	}

	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ds.Tasks {
		t := &s.ds.Tasks[i]
		if string(t.ID) == id || string(t.DocID) == id {
			t.Status = req.Status
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "task": t})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "task not found"})
}

// TaskStatus returns the stored status of a task, for inspection.
func (s *Server) TaskStatus(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.ds.Tasks {
		if string(t.ID) == id || string(t.DocID) == id {
			return t.Status, true
		}
	}
	return "", false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
