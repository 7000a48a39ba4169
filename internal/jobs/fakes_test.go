package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"seotrack/internal/db"
	"seotrack/internal/models"
	"seotrack/internal/platform"
	"seotrack/internal/queue"
)

// fakeStore implements every store interface the jobs use.
type fakeStore struct {
	mu sync.Mutex

	keywords map[int64]models.Keyword
	history  map[int64][]models.Ranking

	lockHeld   bool
	lockCalls  int
	released   int
	insertErr  error
	saveErr    error
	commitErrs []error

	// releasesAtCommit records the release count seen by each insert.
	releasesAtCommit []int

	inserted  [][]models.Ranking
	clusters  [][]models.ClusterWithKeywords
	forecasts []*models.Forecast
}

func newFakeStore(keywords ...models.Keyword) *fakeStore {
	s := &fakeStore{
		keywords: make(map[int64]models.Keyword),
		history:  make(map[int64][]models.Ranking),
	}
	for _, kw := range keywords {
		s.keywords[kw.ID] = kw
	}
	return s
}

func (s *fakeStore) GetKeyword(ctx context.Context, id int64) (*models.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kw, ok := s.keywords[id]
	if !ok {
		return nil, db.ErrKeywordNotFound
	}
	return &kw, nil
}

func (s *fakeStore) GetKeywordsByIDs(ctx context.Context, ids []int64) ([]models.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Keyword
	for _, id := range ids {
		if kw, ok := s.keywords[id]; ok {
			out = append(out, kw)
		}
	}
	return out, nil
}

func (s *fakeStore) TryLockKeyword(ctx context.Context, keywordID int64) (db.KeywordLock, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockCalls++
	if s.lockHeld {
		return nil, false, nil
	}
	return &fakeLock{store: s}, true, nil
}

// fakeLock writes through to its store and counts releases.
type fakeLock struct {
	store *fakeStore
}

func (l *fakeLock) InsertRankings(ctx context.Context, rankings []models.Ranking) (int, error) {
	s := l.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErrs = append(s.commitErrs, ctx.Err())
	s.releasesAtCommit = append(s.releasesAtCommit, s.released)
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	if len(rankings) == 0 {
		return 0, db.ErrNoRankings
	}
	s.inserted = append(s.inserted, rankings)
	return len(rankings), nil
}

func (l *fakeLock) Release() {
	l.store.mu.Lock()
	l.store.released++
	l.store.mu.Unlock()
}

func (s *fakeStore) SaveClusters(ctx context.Context, clusters []models.ClusterWithKeywords) ([]models.ClusterWithKeywords, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clusters = append(s.clusters, clusters)
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	out := make([]models.ClusterWithKeywords, len(clusters))
	for i, c := range clusters {
		c.ID = int64(i + 1)
		c.CreatedAt = time.Now()
		out[i] = c
	}
	return out, nil
}

func (s *fakeStore) RankingHistory(ctx context.Context, keywordID int64) ([]models.Ranking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history[keywordID], nil
}

func (s *fakeStore) SaveForecast(ctx context.Context, f *models.Forecast) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	f.ID = int64(len(s.forecasts) + 1)
	s.forecasts = append(s.forecasts, f)
	return nil
}

func (s *fakeStore) KeywordsNeedingCollection(ctx context.Context, maxAge time.Duration, limit int) ([]models.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Keyword
	for _, kw := range s.keywords {
		if len(out) == limit {
			break
		}
		out = append(out, kw)
	}
	return out, nil
}

// scriptedAdapter answers per platform with canned results, errors or panics.
type scriptedAdapter struct {
	mu      sync.Mutex
	results map[string][]platform.Result
	errs    map[string]error
	panics  map[string]bool
	calls   int
	after   func()
}

func (a *scriptedAdapter) Collect(ctx context.Context, keyword, country, name string) ([]platform.Result, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()

	if a.panics[name] {
		panic("collector exploded")
	}
	if err := a.errs[name]; err != nil {
		return nil, err
	}
	if a.after != nil {
		defer a.after()
	}
	if r, ok := a.results[name]; ok {
		return r, nil
	}
	return nil, errors.New("no script for " + name)
}

// memResults records saved job results.
type memResults struct {
	mu     sync.Mutex
	saved  []models.JobResult
	onSave func(models.JobResult)
}

func (m *memResults) Save(res models.JobResult) error {
	m.mu.Lock()
	m.saved = append(m.saved, res)
	hook := m.onSave
	m.mu.Unlock()
	if hook != nil {
		hook(res)
	}
	return nil
}

func (m *memResults) all() []models.JobResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.JobResult, len(m.saved))
	copy(out, m.saved)
	return out
}

// memQueue is an in-memory job queue.
type memQueue struct {
	mu         sync.Mutex
	pending    []queue.Job
	acked      []queue.Job
	recovered  int
	enqueueErr error
}

func (q *memQueue) Enqueue(ctx context.Context, job queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.pending = append(q.pending, job)
	return nil
}

func (q *memQueue) Dequeue(ctx context.Context, consumer string, timeout time.Duration) (*queue.Delivery, error) {
	q.mu.Lock()
	if len(q.pending) > 0 {
		job := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()
		return &queue.Delivery{Job: job}, nil
	}
	q.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Millisecond):
		return nil, queue.ErrNoJob
	}
}

func (q *memQueue) Ack(ctx context.Context, d *queue.Delivery) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, d.Job)
	return nil
}

func (q *memQueue) Recover(ctx context.Context, consumer string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.recovered++
	return 0, nil
}

func intPtr(v int) *int { return &v }
