package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHTTPClient_ListProjectsAndTasks(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"projects":[{"_id":"p1","name":"Apollo"},{"name":"no id"}]}`))
	})
	mux.HandleFunc("GET /tasks", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"tasks":[{"_id":"t1","title":"A","project":{"_id":"p1"}},{"_id":"t2","title":"B","project":"p1"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(Config{BaseURL: srv.URL + "/", Token: "secret"})

	projects, err := c.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].ID != "p1" {
		t.Errorf("projects = %+v", projects)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(tasks))
	}
	for _, task := range tasks {
		if task.Project.ProjectID() != "p1" {
			t.Errorf("task %s project = %q", task.ID, task.Project.ProjectID())
		}
	}
	if tasks[0].Project.Kind != RefInline || tasks[1].Project.Kind != RefID {
		t.Errorf("ref kinds = %q, %q", tasks[0].Project.Kind, tasks[1].Project.Kind)
	}
}

func TestHTTPClient_MalformedRecordsDegradeLocally(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"projects":[
			{"_id":"p1","name":"Apollo","startDate":1704067200000,"endDate":"2024-02-01"},
			{"_id":"p2","name":{"broken":true}},
			{"_id":"p3","name":"Gemini","startDate":"not a date"}]}`))
	})
	mux.HandleFunc("GET /tasks", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"tasks":[
			{"id":"1","title":"A","dueDate":"2024-01-01","project":"p1"},
			{"id":"2","title":"B","dueDate":1704067200000,"project":"p1"},
			{"id":"3","title":["garbage"],"project":"p1"},
			{"id":"4","title":"D","dueDate":"soon","project":"p1"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(Config{BaseURL: srv.URL})
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	projects, err := c.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 2 || projects[0].ID != "p1" || projects[1].ID != "p3" {
		t.Fatalf("projects = %+v", projects)
	}
	if projects[0].StartDate == nil || !projects[0].StartDate.Equal(want) {
		t.Errorf("numeric startDate = %v, want %v", projects[0].StartDate, want)
	}
	if projects[1].StartDate != nil {
		t.Errorf("unparseable startDate should be dropped, got %v", projects[1].StartDate)
	}

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("tasks = %d, want 3", len(tasks))
	}
	ids := []string{tasks[0].ID, tasks[1].ID, tasks[2].ID}
	if ids[0] != "1" || ids[1] != "2" || ids[2] != "4" {
		t.Errorf("task ids = %v", ids)
	}
	if tasks[1].DueDate == nil || !tasks[1].DueDate.Equal(want) {
		t.Errorf("numeric dueDate = %v, want %v", tasks[1].DueDate, want)
	}
	if tasks[2].DueDate != nil {
		t.Errorf("unparseable dueDate should be dropped, got %v", tasks[2].DueDate)
	}
}

func TestHTTPClient_TokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"tasks":[]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(Config{BaseURL: srv.URL, TokenFile: path})
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if gotAuth != "Bearer from-file" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestHTTPClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"Unauthorized", http.StatusUnauthorized, "", ErrUnauthorized},
		{"Forbidden", http.StatusForbidden, "", ErrUnauthorized},
		{"NotFound", http.StatusNotFound, "", ErrNotFound},
		{"RateLimited", http.StatusTooManyRequests, "", ErrRateLimited},
		{"Unsuccessful", http.StatusOK, `{"success":false,"message":"nope"}`, ErrMalformedPayload},
		{"MissingCollection", http.StatusOK, `{"success":true}`, ErrMalformedPayload},
		{"NotJSON", http.StatusOK, `<html>`, ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPClient(Config{BaseURL: srv.URL}).ListProjects(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHTTPClient_UpdateTaskStatus(t *testing.T) {
	var gotPath, gotMethod string
	var body TaskUpdateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewHTTPClient(Config{BaseURL: srv.URL})
	if err := c.UpdateTaskStatus(context.Background(), "t 1", StatusLate); err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/tasks/t 1" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if body.Status != "late" {
		t.Errorf("body status = %q", body.Status)
	}

	if err := c.UpdateTaskStatus(context.Background(), "", StatusLate); err == nil {
		t.Error("expected error for empty task id")
	}
}
