package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/cache"
	"github.com/wonderless/Test-autoestima-sub000/internal/catalog"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
	"github.com/wonderless/Test-autoestima-sub000/internal/scoring"
)

// TestStarted is returned when a student opens the questionnaire
type TestStarted struct {
	Questions []model.Question `json:"questions"`
	StartedAt time.Time        `json:"startedAt"`
}

// TestSubmitted summarizes a stored submission
type TestSubmitted struct {
	VeracityScore   int    `json:"veracityScore"`
	RetakeRequired  bool   `json:"retakeRequired"`
	DurationSeconds *int64 `json:"durationSeconds,omitempty"`
}

// TestService handles taking, submitting and resetting the questionnaire
type TestService struct {
	catalog     *catalog.Catalog
	persister   *Persister
	sessions    cache.SessionStore
	dashboard   cache.DashboardCache
	clock       Clock
	logger      *zap.Logger
	broadcaster Broadcaster
	locks       *UserLocks
}

// NewTestService creates a new test service
func NewTestService(
	cat *catalog.Catalog,
	persister *Persister,
	sessions cache.SessionStore,
	dashboard cache.DashboardCache,
	locks *UserLocks,
	clock Clock,
	logger *zap.Logger,
) *TestService {
	return &TestService{
		catalog:     cat,
		persister:   persister,
		sessions:    sessions,
		dashboard:   dashboard,
		clock:       clock,
		logger:      logger,
		broadcaster: nopBroadcaster{},
		locks:       locks,
	}
}

// SetBroadcaster sets the live feed broadcaster (called after Hub is created)
func (s *TestService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start records the moment the student began answering
func (s *TestService) Start(ctx context.Context, uid string) (*TestStarted, error) {
	now := s.clock.Now()
	if err := s.sessions.SetTestStart(ctx, uid, now); err != nil {
		return nil, fmt.Errorf("failed to start test timer: %w", err)
	}
	return &TestStarted{Questions: s.catalog.Questions(), StartedAt: now}, nil
}

// Submit validates and stores a complete set of answers. Scoring happens when
// results are loaded; here only the veracity score is derived.
func (s *TestService) Submit(ctx context.Context, uid, email string, answers model.Answers) (*TestSubmitted, error) {
	for id := range answers {
		if _, ok := s.catalog.Question(id); !ok {
			return nil, fmt.Errorf("%w: unknown question %d", ErrInvalidInput, id)
		}
	}
	if missing := scoring.Missing(answers, s.catalog); len(missing) > 0 {
		return nil, &scoring.IncompleteAnswers{Missing: missing}
	}

	unlock := s.locks.Lock(uid)
	defer unlock()

	now := s.clock.Now()
	var duration *int64
	started, ok, err := s.sessions.GetTestStart(ctx, uid)
	if err != nil {
		s.logger.Warn("failed to read test timer", zap.String("uid", uid), zap.Error(err))
	}
	if ok && !started.After(now) {
		secs := int64(now.Sub(started) / time.Second)
		duration = &secs
	}

	veracity := scoring.VeracityFor(answers, s.catalog)
	if err := s.persister.SaveTest(ctx, uid, email, answers.Clone(), veracity, duration, now); err != nil {
		return nil, err
	}

	// a new test invalidates any in-session progression
	if err := s.sessions.DeleteState(ctx, uid); err != nil {
		s.logger.Warn("failed to drop session state", zap.String("uid", uid), zap.Error(err))
	}
	if err := s.sessions.ClearTestStart(ctx, uid); err != nil {
		s.logger.Warn("failed to clear test timer", zap.String("uid", uid), zap.Error(err))
	}
	s.invalidateDashboard(ctx)

	s.logger.Info("test submitted", zap.String("uid", uid), zap.Int("veracity", veracity))
	return &TestSubmitted{
		VeracityScore:   veracity,
		RetakeRequired:  scoring.Blocked(veracity),
		DurationSeconds: duration,
	}, nil
}

// Reset clears the stored test so it can be retaken
func (s *TestService) Reset(ctx context.Context, uid string) error {
	unlock := s.locks.Lock(uid)
	defer unlock()

	if err := s.persister.ResetTest(ctx, uid); err != nil {
		return err
	}
	if err := s.sessions.DeleteState(ctx, uid); err != nil {
		s.logger.Warn("failed to drop session state", zap.String("uid", uid), zap.Error(err))
	}
	if err := s.sessions.ClearTestStart(ctx, uid); err != nil {
		s.logger.Warn("failed to clear test timer", zap.String("uid", uid), zap.Error(err))
	}
	s.invalidateDashboard(ctx)

	s.broadcaster.BroadcastToAdmins(model.LiveEvent{
		Type:      model.LiveEventTestReset,
		UserID:    uid,
		Timestamp: s.clock.Now(),
	})
	return nil
}

func (s *TestService) invalidateDashboard(ctx context.Context) {
	if err := s.dashboard.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
