package performance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pulse-mcp/internal/metrics"
	"pulse-mcp/internal/stats"
	"pulse-mcp/internal/tracker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrProjectNotFound is returned when a single-project request names a
// project the backend does not know.
var ErrProjectNotFound = errors.New("project not found")

const (
	defaultLateUpdateConcurrency = 4
	defaultLateUpdateTimeout     = 30 * time.Second
)

// Options configures a Service.
type Options struct {
	Client tracker.Client

	// BaseURL identifies the backend in the cache key.
	BaseURL string
	TTL     time.Duration
	// Store is the second-level snapshot store; nil keeps snapshots in
	// memory only.
	Store Store

	// PersistLateStatus enables best-effort writes of the late status for
	// tasks that became overdue.
	PersistLateStatus     bool
	LateUpdateConcurrency int
	LateUpdateTimeout     time.Duration

	Now func() time.Time
}

// Service computes performance reports from the backend. It is safe for
// concurrent use.
type Service struct {
	client      tracker.Client
	cache       *Cache
	cacheKey    string
	now         func() time.Time
	persistLate bool
	lateLimit   int
	lateTimeout time.Duration

	// fetches merges concurrent backend fetches for the same cache key.
	fetches singleflight.Group

	mu       sync.Mutex
	reported map[string]bool
	inflight sync.WaitGroup
}

func NewService(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	limit := opts.LateUpdateConcurrency
	if limit <= 0 {
		limit = defaultLateUpdateConcurrency
	}
	timeout := opts.LateUpdateTimeout
	if timeout <= 0 {
		timeout = defaultLateUpdateTimeout
	}
	return &Service{
		client:      opts.Client,
		cache:       NewCache(opts.TTL, opts.Store, now),
		cacheKey:    cacheKey(opts.BaseURL),
		now:         now,
		persistLate: opts.PersistLateStatus,
		lateLimit:   limit,
		lateTimeout: timeout,
		reported:    make(map[string]bool),
	}
}

// cacheKey is the query signature: the backend plus the collections a
// snapshot holds.
func cacheKey(baseURL string) string {
	return baseURL + "|projects+tasks"
}

// GetProjectsPerformance returns the performance report for the projects
// selected by f. Backend failures never surface as errors: the report is
// built from the last good snapshot, or zeroed, and Warnings says why.
// The only error is a context that was already done.
func (s *Service) GetProjectsPerformance(ctx context.Context, f Filters) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap, source, warnings := s.snapshot(ctx, f.ForceRefresh)
	now := s.now()
	id := uuid.NewString()

	if snap == nil {
		report := defaultReport(id, now)
		report.Warnings = warnings
		return report, nil
	}

	projects, filterWarnings := applyFilters(snap.Projects, f)
	warnings = append(warnings, filterWarnings...)
	for _, w := range filterWarnings {
		log.Warn().Str("filter", fmt.Sprint(f.DateRange)).Msg(w)
	}

	report := buildReport(id, now, source, stats.CalculateAll(projects, snap.Tasks, now))
	fetchedAt := snap.FetchedAt
	report.DataFetchedAt = &fetchedAt
	report.Warnings = warnings

	// Writing back to a backend that just failed is pointless.
	if s.persistLate && s.client != nil && (source == SourceNetwork || source == SourceCache) {
		s.persistLateTasks(snap.Tasks, now)
	}
	return report, nil
}

// GetProjectMetrics returns the report narrowed to one project.
func (s *Service) GetProjectMetrics(ctx context.Context, projectID string, forceRefresh bool) (*Report, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: empty project id", ErrProjectNotFound)
	}
	report, err := s.GetProjectsPerformance(ctx, Filters{ProjectID: projectID, ForceRefresh: forceRefresh})
	if err != nil {
		return nil, err
	}
	if len(report.Projects) == 0 {
		return report, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	return report, nil
}

// Invalidate expires cached data so the next request fetches again.
func (s *Service) Invalidate() {
	s.cache.Invalidate()
	log.Info().Msg("Performance cache invalidated")
}

// Wait blocks until background late-status writes have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// snapshot resolves the data for a request: fresh cache, then network,
// then stale cache. A nil snapshot means the zeroed default applies.
func (s *Service) snapshot(ctx context.Context, force bool) (*Snapshot, Source, []string) {
	cached, fresh := s.cache.Lookup(ctx, s.cacheKey, force)
	if fresh {
		return cached, SourceCache, nil
	}

	v, err, shared := s.fetches.Do(s.cacheKey, func() (any, error) {
		gen := s.cache.Generation()
		fetched, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.Put(ctx, s.cacheKey, gen, fetched)
		return fetched, nil
	})
	if err == nil {
		if shared {
			log.Debug().Str("key", s.cacheKey).Msg("Joined an in-flight backend fetch")
		}
		return v.(*Snapshot), SourceNetwork, nil
	}

	log.Error().Err(err).Msg("Failed to fetch projects and tasks")
	if cached != nil {
		metrics.CacheFallbacks.WithLabelValues("stale").Inc()
		return cached, SourceStaleCache, []string{
			fmt.Sprintf("backend unavailable (%v); serving data fetched at %s", err, cached.FetchedAt.Format(time.RFC3339)),
		}
	}
	metrics.CacheFallbacks.WithLabelValues("default").Inc()
	return nil, SourceDefault, []string{
		fmt.Sprintf("backend unavailable (%v) and no cached data; serving an empty report", err),
	}
}

// fetch loads both collections concurrently. Either failing fails the
// whole snapshot.
func (s *Service) fetch(ctx context.Context) (*Snapshot, error) {
	if s.client == nil {
		return nil, errors.New("no backend client configured")
	}

	var projects []tracker.Project
	var tasks []tracker.Task

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = timed("projects", func() ([]tracker.Project, error) { return s.client.ListProjects(gctx) })
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = timed("tasks", func() ([]tracker.Task, error) { return s.client.ListTasks(gctx) })
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &Snapshot{Projects: projects, Tasks: tasks, FetchedAt: s.now()}
	if !snap.Complete() {
		return nil, fmt.Errorf("%w: missing collection", tracker.ErrMalformedPayload)
	}
	return snap, nil
}

func timed[T any](collection string, fn func() ([]T, error)) ([]T, error) {
	start := time.Now()
	out, err := fn()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.FetchDuration.WithLabelValues(collection, outcome).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return out, nil
}

// newlyLate returns the IDs of overdue tasks the backend does not yet mark
// late and that this process has not already reported, and records them
// as reported.
func (s *Service) newlyLate(tasks []tracker.Task, now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, t := range tasks {
		if t.ID == "" || t.Status == tracker.StatusLate || s.reported[t.ID] {
			continue
		}
		if stats.IsTaskLate(t, now) {
			s.reported[t.ID] = true
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// persistLateTasks writes the late status in the background with bounded
// concurrency. Failures are logged and never retried.
func (s *Service) persistLateTasks(tasks []tracker.Task, now time.Time) {
	ids := s.newlyLate(tasks, now)
	if len(ids) == 0 {
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.lateTimeout)
		defer cancel()

		var g errgroup.Group
		g.SetLimit(s.lateLimit)
		for _, id := range ids {
			g.Go(func() error {
				if err := s.client.UpdateTaskStatus(ctx, id, tracker.StatusLate); err != nil {
					metrics.LateTaskUpdates.WithLabelValues("error").Inc()
					log.Warn().Err(err).Str("task", id).Msg("Failed to persist late status")
					return nil
				}
				metrics.LateTaskUpdates.WithLabelValues("ok").Inc()
				log.Debug().Str("task", id).Msg("Marked task late")
				return nil
			})
		}
		_ = g.Wait()
	}()
}
