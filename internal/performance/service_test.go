package performance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pulse-mcp/internal/stats"
	"pulse-mcp/internal/tracker"
)

type fakeClient struct {
	mu          sync.Mutex
	projects    []tracker.Project
	tasks       []tracker.Task
	err         error
	listCalls   int
	updated     []string
	updateErr   error
	beforeReply func()
}

func (f *fakeClient) ListProjects(ctx context.Context) ([]tracker.Project, error) {
	f.mu.Lock()
	f.listCalls++
	hook := f.beforeReply
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.projects, nil
}

func (f *fakeClient) ListTasks(ctx context.Context) ([]tracker.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.tasks, nil
}

func (f *fakeClient) UpdateTaskStatus(ctx context.Context, taskID string, status tracker.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, taskID)
	return f.updateErr
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeClient) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func date(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func fixture() *fakeClient {
	return &fakeClient{
		projects: []tracker.Project{
			{ID: "p1", Name: "Alpha", StartDate: date("2026-01-01"), EndDate: date("2026-03-01"), Status: tracker.StatusInProgress},
			{ID: "p2", Name: "Beta", StartDate: date("2026-05-01"), EndDate: date("2026-06-01"), Status: tracker.StatusCompleted},
		},
		tasks: []tracker.Task{
			{ID: "t1", Status: tracker.StatusCompleted, Project: tracker.IDRef("p1")},
			{ID: "t2", Status: tracker.StatusTodo, DueDate: date("2026-01-15"), Project: tracker.IDRef("p1")},
			{ID: "t3", Status: tracker.StatusCompleted, Project: tracker.InlineRef(tracker.Project{ID: "p2"})},
		},
	}
}

func newTestService(client tracker.Client, clk *clock, persist bool) *Service {
	return NewService(Options{
		Client:            client,
		BaseURL:           "http://backend",
		PersistLateStatus: persist,
		Now:               clk.Now,
	})
}

func TestGetProjectsPerformance_CachesWithinTTL(t *testing.T) {
	clk := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	client := fixture()
	svc := newTestService(client, clk, false)
	ctx := context.Background()

	first, err := svc.GetProjectsPerformance(ctx, Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Source != SourceNetwork {
		t.Errorf("first source = %s, want network", first.Source)
	}

	clk.Advance(4 * time.Minute)
	second, _ := svc.GetProjectsPerformance(ctx, Filters{})
	if second.Source != SourceCache {
		t.Errorf("second source = %s, want cache", second.Source)
	}
	if client.calls() != 1 {
		t.Errorf("fetches = %d, want 1", client.calls())
	}

	clk.Advance(2 * time.Minute)
	third, _ := svc.GetProjectsPerformance(ctx, Filters{})
	if third.Source != SourceNetwork || client.calls() != 2 {
		t.Errorf("after TTL: source = %s, fetches = %d", third.Source, client.calls())
	}
}

func TestGetProjectsPerformance_ForceRefreshAlwaysFetches(t *testing.T) {
	clk := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	client := fixture()
	svc := newTestService(client, clk, false)

	for range 3 {
		if _, err := svc.GetProjectsPerformance(context.Background(), Filters{ForceRefresh: true}); err != nil {
			t.Fatal(err)
		}
	}
	if client.calls() != 3 {
		t.Errorf("fetches = %d, want 3", client.calls())
	}
}

func TestGetProjectsPerformance_StaleFallback(t *testing.T) {
	clk := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	client := fixture()
	svc := newTestService(client, clk, false)
	ctx := context.Background()

	good, _ := svc.GetProjectsPerformance(ctx, Filters{})

	client.setErr(tracker.ErrUnauthorized)
	clk.Advance(time.Hour)
	report, err := svc.GetProjectsPerformance(ctx, Filters{})
	if err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}
	if report.Source != SourceStaleCache {
		t.Errorf("source = %s, want stale-cache", report.Source)
	}
	if len(report.Projects) != len(good.Projects) {
		t.Errorf("projects = %d, want %d", len(report.Projects), len(good.Projects))
	}
	if len(report.Warnings) == 0 {
		t.Error("expected a warning about the fallback")
	}
}

func TestGetProjectsPerformance_DefaultWhenNothingCached(t *testing.T) {
	clk := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	client := fixture()
	client.setErr(tracker.ErrMalformedPayload)
	svc := newTestService(client, clk, false)

	report, err := svc.GetProjectsPerformance(context.Background(), Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Source != SourceDefault {
		t.Errorf("source = %s, want default", report.Source)
	}
	if len(report.Projects) != 0 || report.KPIs.AverageCompletionRate != 0 {
		t.Errorf("default report not zeroed: %+v", report)
	}
	if len(report.Recommendations) != 1 || report.Recommendations[0] != stats.FallbackRecommendation {
		t.Errorf("recommendations = %+v", report.Recommendations)
	}
	if report.Charts.Performance == nil {
		t.Error("chart slices must be non-nil")
	}
}

func TestGetProjectsPerformance_Filters(t *testing.T) {
	clk := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	svc := newTestService(fixture(), clk, false)
	ctx := context.Background()

	tests := []struct {
		name         string
		filters      Filters
		wantIDs      []string
		wantWarnings bool
	}{
		{"no filter", Filters{}, []string{"p1", "p2"}, false},
		{"project id", Filters{ProjectID: "p2"}, []string{"p2"}, false},
		{"unknown project", Filters{ProjectID: "zzz"}, nil, false},
		{"range overlapping alpha", Filters{DateRange: []string{"2026-02-01", "2026-02-15"}}, []string{"p1"}, false},
		{"reversed range", Filters{DateRange: []string{"2026-06-30", "2026-05-15"}}, []string{"p2"}, false},
		{"malformed range", Filters{DateRange: []string{"yesterday", "tomorrow"}}, []string{"p1", "p2"}, true},
		{"single entry range", Filters{DateRange: []string{"2026-02-01"}}, []string{"p1", "p2"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := svc.GetProjectsPerformance(ctx, tt.filters)
			if err != nil {
				t.Fatal(err)
			}
			var ids []string
			for _, p := range report.Projects {
				ids = append(ids, p.ProjectID)
			}
			if len(ids) != len(tt.wantIDs) {
				t.Fatalf("ids = %v, want %v", ids, tt.wantIDs)
			}
			for i := range ids {
				if ids[i] != tt.wantIDs[i] {
					t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
				}
			}
			if (len(report.Warnings) > 0) != tt.wantWarnings {
				t.Errorf("warnings = %v", report.Warnings)
			}
		})
	}
}

func TestGetProjectsPerformance_LateRecomputedOnCacheHit(t *testing.T) {
	clk := &clock{t: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)}
	client := &fakeClient{
		projects: []tracker.Project{{ID: "p1", Name: "Alpha"}},
		tasks: []tracker.Task{
			{ID: "t1", Status: tracker.StatusTodo, DueDate: date("2026-01-15"), Project: tracker.IDRef("p1")},
		},
	}
	svc := newTestService(client, clk, false)
	ctx := context.Background()

	before, _ := svc.GetProjectsPerformance(ctx, Filters{})
	if before.Projects[0].LateTaskCount != 0 {
		t.Fatalf("task due now is not late yet")
	}

	clk.Advance(time.Minute)
	after, _ := svc.GetProjectsPerformance(ctx, Filters{})
	if after.Source != SourceCache {
		t.Fatalf("source = %s, want cache", after.Source)
	}
	if after.Projects[0].LateTaskCount != 1 {
		t.Errorf("late count = %d, want 1 after due date passed", after.Projects[0].LateTaskCount)
	}
}

func TestGetProjectsPerformance_PersistsLateOnce(t *testing.T) {
	clk := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	client := fixture()
	client.tasks = append(client.tasks,
		tracker.Task{ID: "t4", Status: tracker.StatusLate, DueDate: date("2026-01-10"), Project: tracker.IDRef("p1")},
		tracker.Task{ID: "t5", Status: tracker.StatusInProgress, DueDate: date("2026-12-01"), Project: tracker.IDRef("p1")},
	)
	client.updateErr = errors.New("boom")
	svc := newTestService(client, clk, true)
	ctx := context.Background()

	for range 2 {
		if _, err := svc.GetProjectsPerformance(ctx, Filters{ForceRefresh: true}); err != nil {
			t.Fatal(err)
		}
		svc.Wait()
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.updated) != 1 || client.updated[0] != "t2" {
		t.Errorf("updated = %v, want [t2]", client.updated)
	}
}

func TestGetProjectsPerformance_NoPersistWhenDisabled(t *testing.T) {
	clk := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	client := fixture()
	svc := newTestService(client, clk, false)

	if _, err := svc.GetProjectsPerformance(context.Background(), Filters{}); err != nil {
		t.Fatal(err)
	}
	svc.Wait()
	if len(client.updated) != 0 {
		t.Errorf("updated = %v, want none", client.updated)
	}
}

func TestInvalidate_StaleFetchCannotOverwrite(t *testing.T) {
	clk := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	client := fixture()
	svc := newTestService(client, clk, false)
	ctx := context.Background()

	// The invalidation lands while the first fetch is in flight.
	var once sync.Once
	client.beforeReply = func() { once.Do(svc.Invalidate) }

	if _, err := svc.GetProjectsPerformance(ctx, Filters{}); err != nil {
		t.Fatal(err)
	}
	report, _ := svc.GetProjectsPerformance(ctx, Filters{})
	if report.Source != SourceNetwork {
		t.Errorf("source = %s, want network: the pre-invalidation fetch must not be cached", report.Source)
	}
	if client.calls() != 2 {
		t.Errorf("fetches = %d, want 2", client.calls())
	}

	third, _ := svc.GetProjectsPerformance(ctx, Filters{})
	if third.Source != SourceCache {
		t.Errorf("source = %s, want cache", third.Source)
	}
}

func TestInvalidate_KeepsStaleFallback(t *testing.T) {
	clk := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	client := fixture()
	svc := newTestService(client, clk, false)
	ctx := context.Background()

	_, _ = svc.GetProjectsPerformance(ctx, Filters{})
	svc.Invalidate()
	client.setErr(errors.New("connection refused"))

	report, _ := svc.GetProjectsPerformance(ctx, Filters{})
	if report.Source != SourceStaleCache {
		t.Errorf("source = %s, want stale-cache", report.Source)
	}
}

func TestGetProjectMetrics(t *testing.T) {
	clk := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	svc := newTestService(fixture(), clk, false)
	ctx := context.Background()

	report, err := svc.GetProjectMetrics(ctx, "p1", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Projects) != 1 || report.Projects[0].ProjectID != "p1" {
		t.Errorf("projects = %+v", report.Projects)
	}

	if _, err := svc.GetProjectMetrics(ctx, "nope", false); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("err = %v, want ErrProjectNotFound", err)
	}
}

func TestGetProjectsPerformance_CanceledContext(t *testing.T) {
	svc := newTestService(fixture(), &clock{t: time.Now()}, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.GetProjectsPerformance(ctx, Filters{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestGetProjectsPerformance_ConcurrentMissesShareOneFetch(t *testing.T) {
	clk := &clock{t: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	client := fixture()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	client.beforeReply = func() {
		once.Do(func() { close(entered) })
		<-release
	}
	svc := newTestService(client, clk, false)
	ctx := context.Background()

	var wg sync.WaitGroup
	reports := make([]*Report, 2)
	fetchInto := func(i int) {
		defer wg.Done()
		reports[i], _ = svc.GetProjectsPerformance(ctx, Filters{ForceRefresh: true})
	}

	wg.Add(2)
	go fetchInto(0)
	<-entered
	go fetchInto(1)
	// Give the second caller time to join the fetch in flight.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if client.calls() != 1 {
		t.Errorf("fetches = %d, want 1", client.calls())
	}
	for i, r := range reports {
		if r == nil || r.Source != SourceNetwork || len(r.Projects) != 2 {
			t.Errorf("report %d = %+v", i, r)
		}
	}
}
