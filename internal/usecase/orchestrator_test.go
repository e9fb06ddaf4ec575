package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"NewsForge/internal/domain"
	"NewsForge/internal/extractor"
	"NewsForge/internal/ports"
)

type fakeRepo struct {
	mu       sync.Mutex
	articles map[string]domain.Article
	countErr error
}

func newFakeRepo(existing ...domain.Article) *fakeRepo {
	r := &fakeRepo{articles: map[string]domain.Article{}}
	for _, a := range existing {
		r.articles[a.ReferenceURL] = a
	}
	return r
}

func (r *fakeRepo) Count(ctx context.Context, category domain.Category) (int, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.articles {
		if a.Category == category {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) ExistingReferenceURLs(ctx context.Context, category domain.Category) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	known := map[string]struct{}{}
	for u, a := range r.articles {
		if a.Category == category {
			known[u] = struct{}{}
		}
	}
	return known, nil
}

func (r *fakeRepo) Save(ctx context.Context, articles []domain.Article) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inserted := 0
	for _, a := range articles {
		if _, ok := r.articles[a.ReferenceURL]; ok {
			continue
		}
		r.articles[a.ReferenceURL] = a
		inserted++
	}
	return inserted, nil
}

func (r *fakeRepo) RecentByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Article
	for _, a := range r.articles {
		if a.Category == category && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) ByReferenceURL(ctx context.Context, referenceURL string) (domain.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.articles[referenceURL]; ok {
		return a, nil
	}
	return domain.Article{}, ports.ErrNotFound
}

type fakeExtractor struct {
	category domain.Category
	urls     []string
	err      error
	gate     chan struct{}
	calls    atomic.Int32
}

func (f *fakeExtractor) Category() domain.Category { return f.category }
func (f *fakeExtractor) SourceName() string        { return "Fake Source" }

func (f *fakeExtractor) Extract(ctx context.Context, limit int) ([]string, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.urls) {
		return f.urls[:limit], nil
	}
	return f.urls, nil
}

// echoCompleter answers a valid item for every known URL found in the prompt.
func echoCompleter(urls []string) completerFunc {
	return func(_ context.Context, prompt string) (string, error) {
		var parts []string
		for _, u := range urls {
			if strings.Contains(prompt, u) {
				parts = append(parts, itemJSON(u))
			}
		}
		return "[" + strings.Join(parts, ",") + "]", nil
	}
}

func newTestOrchestrator(repo ports.ArticleRepository, ex *fakeExtractor, completer ports.Completer) *Orchestrator {
	registry := extractor.NewRegistry()
	registry.Register(ex)
	return NewOrchestrator(OrchestratorDeps{
		Extractors: registry,
		Batcher:    NewBatcher(completer, pipelineCfg(5, 2), discardLogger()),
		Repository: repo,
		Statuses:   NewMemoryStatusStore(),
		SeedLimit:  10,
		SyncLimit:  5,
		Logger:     discardLogger(),
	})
}

func waitForTerminalState(t *testing.T, o *Orchestrator, category domain.Category) domain.JobStatus {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status := o.SeedStatus(category)
		if status.State == domain.JobDone || status.State == domain.JobError {
			return status
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("seed did not finish; last state %s", o.SeedStatus(category).State)
	return domain.JobStatus{}
}

func TestStartSeedIfEmptySkipsNonEmptyStore(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo(domain.Article{
		ReferenceURL: "https://news.example.com/articles/existing",
		Category:     domain.CategoryTech,
	})
	ex := &fakeExtractor{category: domain.CategoryTech, urls: []string{"https://news.example.com/articles/new"}}

	var backendCalls atomic.Int32
	completer := completerFunc(func(_ context.Context, prompt string) (string, error) {
		backendCalls.Add(1)
		return "[]", nil
	})

	o := newTestOrchestrator(repo, ex, completer)

	for i := 0; i < 2; i++ {
		status := o.StartSeedIfEmpty(context.Background(), domain.CategoryTech)
		if status.State != domain.JobDone || status.Inserted != 0 {
			t.Fatalf("call %d: expected done with 0 inserted, got %+v", i, status)
		}
	}

	if ex.calls.Load() != 0 {
		t.Fatalf("discovery must not run for a populated category, got %d calls", ex.calls.Load())
	}
	if backendCalls.Load() != 0 {
		t.Fatalf("no generation request may be issued, got %d", backendCalls.Load())
	}
}

func TestStartSeedIfEmptySchedulesExactlyOneRun(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://news.example.com/articles/one",
		"https://news.example.com/articles/two",
	}
	repo := newFakeRepo()
	gate := make(chan struct{})
	ex := &fakeExtractor{category: domain.CategoryTech, urls: urls, gate: gate}

	o := newTestOrchestrator(repo, ex, echoCompleter(urls))

	var wg sync.WaitGroup
	statuses := make([]domain.JobStatus, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i] = o.StartSeedIfEmpty(context.Background(), domain.CategoryTech)
		}(i)
	}
	wg.Wait()

	for i, status := range statuses {
		if status.State != domain.JobRunning {
			t.Fatalf("caller %d: expected running, got %s", i, status.State)
		}
	}

	close(gate)
	status := waitForTerminalState(t, o, domain.CategoryTech)

	if status.State != domain.JobDone {
		t.Fatalf("expected done, got %+v", status)
	}
	if status.Inserted != 2 {
		t.Fatalf("expected 2 inserted, got %d", status.Inserted)
	}
	if ex.calls.Load() != 1 {
		t.Fatalf("expected exactly one background run, got %d", ex.calls.Load())
	}
}

func TestSyncLatestSecondRunInsertsNothing(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://news.example.com/articles/one",
		"https://news.example.com/articles/two",
	}
	repo := newFakeRepo()
	ex := &fakeExtractor{category: domain.CategoryWorld, urls: urls}

	o := newTestOrchestrator(repo, ex, echoCompleter(urls))

	first, err := o.SyncLatest(context.Background(), domain.CategoryWorld)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first != 2 {
		t.Fatalf("expected 2 inserted on first sync, got %d", first)
	}

	second, err := o.SyncLatest(context.Background(), domain.CategoryWorld)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second != 0 {
		t.Fatalf("expected 0 inserted on unchanged upstream, got %d", second)
	}
}

func TestSeedEmptyDiscoveryCompletesWithZero(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	ex := &fakeExtractor{category: domain.CategoryScience}

	o := newTestOrchestrator(repo, ex, echoCompleter(nil))

	if status := o.StartSeedIfEmpty(context.Background(), domain.CategoryScience); status.State != domain.JobRunning {
		t.Fatalf("expected running, got %s", status.State)
	}

	status := waitForTerminalState(t, o, domain.CategoryScience)
	if status.State != domain.JobDone || status.Inserted != 0 {
		t.Fatalf("expected done with 0 inserted, got %+v", status)
	}
}

func TestSeedDiscoveryFailureEndsInErrorState(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	ex := &fakeExtractor{category: domain.CategoryBusiness, err: errors.New("listing returned 503")}

	o := newTestOrchestrator(repo, ex, echoCompleter(nil))
	o.StartSeedIfEmpty(context.Background(), domain.CategoryBusiness)

	status := waitForTerminalState(t, o, domain.CategoryBusiness)
	if status.State != domain.JobError {
		t.Fatalf("expected error state, got %+v", status)
	}
	if status.Message == "" {
		t.Fatal("expected error message to be carried in the status")
	}
}

func TestSyncLatestPropagatesDiscoveryFailure(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	ex := &fakeExtractor{category: domain.CategoryTech, err: errors.New("connection refused")}

	o := newTestOrchestrator(repo, ex, echoCompleter(nil))
	if _, err := o.SyncLatest(context.Background(), domain.CategoryTech); err == nil {
		t.Fatal("expected discovery failure to propagate")
	}
}
