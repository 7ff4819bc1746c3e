package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/cache"
	"github.com/wonderless/Test-autoestima-sub000/internal/catalog"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
	"github.com/wonderless/Test-autoestima-sub000/internal/repository"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	return ctx.Err()
}

// flakyRepo fails the first getFailures reads and every update while failUpdates is set
type flakyRepo struct {
	repository.UserRepo
	mu          sync.Mutex
	getFailures int
	gets        int
	failUpdates bool
}

var errBackend = errors.New("backend down")

func (r *flakyRepo) Get(ctx context.Context, uid string) (*model.UserDocument, error) {
	r.mu.Lock()
	r.gets++
	fail := r.gets <= r.getFailures
	r.mu.Unlock()
	if fail {
		return nil, errBackend
	}
	return r.UserRepo.Get(ctx, uid)
}

func (r *flakyRepo) Update(ctx context.Context, uid string, fields repository.Fields) error {
	r.mu.Lock()
	fail := r.failUpdates
	r.mu.Unlock()
	if fail {
		return errBackend
	}
	return r.UserRepo.Update(ctx, uid, fields)
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []model.LiveEvent
}

func (b *recordingBroadcaster) BroadcastToAdmins(ev model.LiveEvent) {
	b.mu.Lock()
	b.events = append(b.events, ev)
	b.mu.Unlock()
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, ev := range b.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	catalog   *catalog.Catalog
	repo      *flakyRepo
	sessions  cache.SessionStore
	dashboard cache.DashboardCache
	persister *Persister
	clock     *fakeClock
	tests     *TestService
	results   *ResultsService
	admin     *AdminService
	live      *recordingBroadcaster
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		catalog:   catalog.Default(),
		repo:      &flakyRepo{UserRepo: repository.NewMemoryUserRepo()},
		sessions:  cache.NewMemorySessionStore(),
		dashboard: cache.NewMemoryDashboardCache(time.Minute),
		clock:     newFakeClock(),
		live:      &recordingBroadcaster{},
	}
	logger := zap.NewNop()
	locks := NewUserLocks()
	f.persister = NewPersister(f.repo, logger, time.Second, 1)
	f.tests = NewTestService(f.catalog, f.persister, f.sessions, f.dashboard, locks, f.clock, logger)
	f.results = NewResultsService(f.catalog, f.repo, f.sessions, f.dashboard, f.persister, locks, f.clock, logger,
		ResultsOptions{LoadAttempts: 3, LoadDelay: time.Second})
	f.admin = NewAdminService(f.catalog, f.repo, f.dashboard, f.clock, logger)
	f.tests.SetBroadcaster(f.live)
	f.results.SetBroadcaster(f.live)
	t.Cleanup(f.persister.Wait)
	return f
}

// perfectAnswers matches every scored question and no veracity question
func perfectAnswers(c *catalog.Catalog) model.Answers {
	answers := make(model.Answers)
	for id, v := range c.AnswerKey() {
		answers[id] = v
	}
	for i, id := range c.VeracityIDs() {
		answers[id] = !c.VeracityKey()[i]
	}
	return answers
}

// withWrong flips the given scored questions away from the key
func withWrong(c *catalog.Catalog, answers model.Answers, ids ...int) model.Answers {
	key := c.AnswerKey()
	out := answers.Clone()
	for _, id := range ids {
		out[id] = !key[id]
	}
	return out
}

// withLies makes the first n veracity questions match their key
func withLies(c *catalog.Catalog, answers model.Answers, n int) model.Answers {
	out := answers.Clone()
	for i, id := range c.VeracityIDs()[:n] {
		out[id] = c.VeracityKey()[i]
	}
	return out
}

func findCategory(view *ResultsView, cat model.Category) CategoryView {
	for _, cv := range view.Categories {
		if cv.Category == cat {
			return cv
		}
	}
	return CategoryView{}
}

func findItem(cv CategoryView, id string) (ItemView, bool) {
	for _, it := range cv.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ItemView{}, false
}
