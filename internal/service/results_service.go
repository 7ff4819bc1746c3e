package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/cache"
	"github.com/wonderless/Test-autoestima-sub000/internal/catalog"
	"github.com/wonderless/Test-autoestima-sub000/internal/metrics"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
	"github.com/wonderless/Test-autoestima-sub000/internal/progress"
	"github.com/wonderless/Test-autoestima-sub000/internal/recommendation"
	"github.com/wonderless/Test-autoestima-sub000/internal/repository"
	"github.com/wonderless/Test-autoestima-sub000/internal/scoring"
)

// Results view statuses
const (
	StatusOK                 = "ok"
	StatusNoTest             = "no_test"
	StatusRetakeRequired     = "retake_required"
	StatusResultsUnavailable = "results_unavailable"
)

const saveResultsNotice = "Tus resultados no pudieron guardarse. Se mostrarán igualmente."

// ResultsOptions tunes the document load boundary
type ResultsOptions struct {
	LoadAttempts int
	LoadDelay    time.Duration
}

// ItemView is one recommendation with the user's progress on it
type ItemView struct {
	model.RecommendationItem
	Progress model.RecommendationProgress `json:"progress"`
}

// CategoryView is the results card of one category
type CategoryView struct {
	Category             model.Category `json:"category"`
	Score                int            `json:"score"`
	Level                model.Level    `json:"level"`
	IsOpen               bool           `json:"isOpen"`
	CurrentQuestionIndex int            `json:"currentQuestionIndex"`
	CurrentQuestionID    int            `json:"currentQuestionId,omitempty"`
	Finished             bool           `json:"finished"`
	Items                []ItemView     `json:"items"`
}

// ResultsView is everything the results page renders
type ResultsView struct {
	Status        string                  `json:"status"`
	VeracityScore *int                    `json:"veracityScore,omitempty"`
	Total         int                     `json:"total,omitempty"`
	GeneralLevel  model.Level             `json:"generalLevel,omitempty"`
	Categories    []CategoryView          `json:"categories,omitempty"`
	Feedback      *progress.FeedbackModal `json:"feedback,omitempty"`
	Missing       []int                   `json:"missing,omitempty"`
	Notice        string                  `json:"notice,omitempty"`
}

// ResultsService computes results and drives the recommendation progression
type ResultsService struct {
	catalog     *catalog.Catalog
	repo        repository.UserRepo
	sessions    cache.SessionStore
	dashboard   cache.DashboardCache
	persister   *Persister
	locks       *UserLocks
	clock       Clock
	logger      *zap.Logger
	broadcaster Broadcaster
	opts        ResultsOptions
}

// NewResultsService creates a new results service
func NewResultsService(
	cat *catalog.Catalog,
	repo repository.UserRepo,
	sessions cache.SessionStore,
	dashboard cache.DashboardCache,
	persister *Persister,
	locks *UserLocks,
	clock Clock,
	logger *zap.Logger,
	opts ResultsOptions,
) *ResultsService {
	if opts.LoadAttempts < 1 {
		opts.LoadAttempts = 3
	}
	return &ResultsService{
		catalog:     cat,
		repo:        repo,
		sessions:    sessions,
		dashboard:   dashboard,
		persister:   persister,
		locks:       locks,
		clock:       clock,
		logger:      logger,
		broadcaster: nopBroadcaster{},
		opts:        opts,
	}
}

// SetBroadcaster sets the live feed broadcaster (called after Hub is created)
func (s *ResultsService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// loadDocument reads the user document, retrying read failures. A missing
// document is a new user, not a failure.
func (s *ResultsService) loadDocument(ctx context.Context, uid string) (*model.UserDocument, error) {
	var lastErr error
	for attempt := 1; attempt <= s.opts.LoadAttempts; attempt++ {
		doc, err := s.repo.Get(ctx, uid)
		if err == nil {
			return doc, nil
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		lastErr = err
		s.logger.Warn("failed to load user document",
			zap.String("uid", uid),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < s.opts.LoadAttempts {
			if err := s.clock.Sleep(ctx, s.opts.LoadDelay); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// Load computes the results view, saving the scores and restoring progress
func (s *ResultsService) Load(ctx context.Context, uid string) (*ResultsView, error) {
	unlock := s.locks.Lock(uid)
	defer unlock()

	doc, err := s.loadDocument(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !doc.HasTest() {
		s.dropState(ctx, uid)
		return &ResultsView{Status: StatusNoTest}, nil
	}

	veracity := scoring.VeracityFor(doc.Answers, s.catalog)
	if scoring.Blocked(veracity) {
		metrics.VeracityBlocked.Inc()
		s.dropState(ctx, uid)
		return &ResultsView{Status: StatusRetakeRequired, VeracityScore: &veracity}, nil
	}

	scores, err := scoring.ScoreAll(doc.Answers, s.catalog)
	if err != nil {
		var inc *scoring.IncompleteAnswers
		if errors.As(err, &inc) {
			s.logger.Warn("stored answers are incomplete", zap.String("uid", uid), zap.Ints("missing", inc.Missing))
			s.dropState(ctx, uid)
			return &ResultsView{Status: StatusResultsUnavailable, VeracityScore: &veracity, Missing: inc.Missing}, nil
		}
		return nil, err
	}
	metrics.ResultsComputed.WithLabelValues(string(scores.GeneralLevel)).Inc()

	// the working copy is fresher than the document while background writes are in flight
	working, err := s.sessions.GetState(ctx, uid)
	if err != nil {
		s.logger.Warn("failed to read session state", zap.String("uid", uid), zap.Error(err))
		working = nil
	}

	state, err := s.buildState(doc, scores, working)
	if err != nil {
		return nil, err
	}

	view := s.view(state)
	view.VeracityScore = &veracity

	if !sameResults(doc.TestResults, scores.Categories) {
		if err := s.persister.SaveResults(ctx, uid, scores, doc.Answers); err != nil {
			s.logger.Error("failed to save results", zap.String("uid", uid), zap.Error(err))
			view.Notice = saveResultsNotice
		} else {
			s.invalidateDashboard(ctx)
			s.broadcaster.BroadcastToAdmins(model.LiveEvent{
				Type:      model.LiveEventResultsSaved,
				UserID:    uid,
				Payload:   scores,
				Timestamp: s.clock.Now(),
			})
		}
	}

	if err := s.sessions.SetState(ctx, uid, state); err != nil {
		s.logger.Warn("failed to store session state", zap.String("uid", uid), zap.Error(err))
	}
	return view, nil
}

func (s *ResultsService) buildState(doc *model.UserDocument, scores model.ScoreSet, working *progress.State) (progress.State, error) {
	state := progress.NewState()
	key := s.catalog.AnswerKey()
	for _, cat := range model.Categories {
		cs := scores.Categories[cat]

		var saved *model.CategoryProgressDoc
		if working != nil {
			if w, ok := working.Categories[cat]; ok && w.Level == cs.Level {
				saved = w.Saved()
			}
		}
		if saved == nil {
			if d, ok := doc.RecommendationProgress[cat]; ok {
				saved = &d
			}
		}

		next, _, err := progress.Reduce(state, progress.AnswerSubmitted{
			Category:    cat,
			Level:       cs.Level,
			Score:       cs.Score,
			QuestionIDs: s.catalog.QuestionIDs(cat),
			Answers:     doc.Answers,
			Items:       recommendation.Select(s.catalog, cat, cs.Level, doc.Answers, key),
			Saved:       saved,
		})
		if err != nil {
			return progress.State{}, err
		}
		state = next
	}
	if working != nil && working.Feedback.Open {
		if _, ok := state.Categories[working.Feedback.Category]; ok {
			state.Feedback = working.Feedback
		}
	}
	return state, nil
}

func sameResults(stored, computed map[model.Category]model.CategoryScore) bool {
	if len(stored) != len(computed) {
		return false
	}
	for cat, cs := range computed {
		if stored[cat] != cs {
			return false
		}
	}
	return true
}

// current returns the working copy, rebuilding it from the document when the session expired
func (s *ResultsService) current(ctx context.Context, uid string) (progress.State, error) {
	working, err := s.sessions.GetState(ctx, uid)
	if err != nil {
		s.logger.Warn("failed to read session state", zap.String("uid", uid), zap.Error(err))
	}
	if working != nil {
		return *working, nil
	}

	doc, err := s.loadDocument(ctx, uid)
	if err != nil {
		return progress.State{}, err
	}
	if !doc.HasTest() || scoring.Blocked(scoring.VeracityFor(doc.Answers, s.catalog)) {
		return progress.State{}, ErrNoResults
	}
	scores, err := scoring.ScoreAll(doc.Answers, s.catalog)
	if err != nil {
		return progress.State{}, fmt.Errorf("%w: %v", ErrNoResults, err)
	}
	return s.buildState(doc, scores, nil)
}

// dispatch applies one event to the working copy and carries out its effects.
// Feedback is written synchronously; a failed write leaves the state untouched.
func (s *ResultsService) dispatch(ctx context.Context, uid string, ev progress.Event) (*ResultsView, error) {
	unlock := s.locks.Lock(uid)
	defer unlock()

	state, err := s.current(ctx, uid)
	if err != nil {
		return nil, err
	}
	next, effects, err := progress.Reduce(state, ev)
	if err != nil {
		return nil, err
	}

	for _, eff := range effects {
		if fb, ok := eff.(progress.PersistFeedback); ok {
			if err := s.persister.SaveFeedback(ctx, uid, fb.RecommendationID, fb.Answers); err != nil {
				return nil, err
			}
		}
	}

	if err := s.sessions.SetState(ctx, uid, next); err != nil {
		s.logger.Warn("failed to store session state", zap.String("uid", uid), zap.Error(err))
	}

	// queued while the user lock is held so background writes keep transition order
	for _, eff := range effects {
		switch e := eff.(type) {
		case progress.PersistProgress:
			s.persister.SaveProgress(uid, e.Category, e.RecommendationID, e.Progress, e.CurrentQuestionIndex)
		case progress.PersistQuestionIndex:
			s.persister.SaveQuestionIndex(uid, e.Category, e.CurrentQuestionIndex)
		case progress.PersistOpen:
			s.persister.SaveOpen(uid, e.Category, e.IsOpen)
		case progress.OpenFeedback:
			s.logger.Debug("feedback opened", zap.String("uid", uid), zap.String("recommendation", e.RecommendationID))
		}
	}
	return s.view(next), nil
}

// CompleteActivity marks an activity done; currentIndex -1 resets the recommendation
func (s *ResultsService) CompleteActivity(ctx context.Context, uid string, cat model.Category, recID string, currentIndex int) (*ResultsView, error) {
	view, err := s.dispatch(ctx, uid, progress.ActivityCompleted{
		Category:         cat,
		RecommendationID: recID,
		CurrentIndex:     currentIndex,
	})
	if err == nil && currentIndex >= 0 {
		metrics.ActivitiesCompleted.WithLabelValues(string(cat)).Inc()
	}
	return view, err
}

func (s *ResultsService) ResetRecommendation(ctx context.Context, uid string, cat model.Category, recID string) (*ResultsView, error) {
	return s.dispatch(ctx, uid, progress.RecommendationReset{Category: cat, RecommendationID: recID})
}

func (s *ResultsService) AdvanceQuestion(ctx context.Context, uid string, cat model.Category) (*ResultsView, error) {
	return s.dispatch(ctx, uid, progress.QuestionAdvanced{Category: cat})
}

func (s *ResultsService) ToggleCategory(ctx context.Context, uid string, cat model.Category) (*ResultsView, error) {
	return s.dispatch(ctx, uid, progress.CategoryToggled{Category: cat})
}

func (s *ResultsService) RequestFeedback(ctx context.Context, uid, recID string) (*ResultsView, error) {
	return s.dispatch(ctx, uid, progress.FeedbackRequested{RecommendationID: recID})
}

func (s *ResultsService) SubmitFeedback(ctx context.Context, uid, recID string, answers map[string]bool) (*ResultsView, error) {
	return s.dispatch(ctx, uid, progress.FeedbackSubmitted{RecommendationID: recID, Answers: answers})
}

func (s *ResultsService) DismissFeedback(ctx context.Context, uid string) (*ResultsView, error) {
	return s.dispatch(ctx, uid, progress.FeedbackDismissed{})
}

func (s *ResultsService) view(state progress.State) *ResultsView {
	view := &ResultsView{Status: StatusOK}
	for _, cat := range model.Categories {
		cs, ok := state.Categories[cat]
		if !ok {
			continue
		}
		cv := CategoryView{
			Category:             cat,
			Score:                cs.Score,
			Level:                cs.Level,
			IsOpen:               cs.IsOpen,
			CurrentQuestionIndex: cs.CurrentQuestionIndex,
			Finished:             cs.Finished(),
			Items:                make([]ItemView, 0, len(cs.Items)),
		}
		if cs.Level == model.LevelBajo {
			cv.CurrentQuestionID, _ = cs.CurrentQuestionID()
		}
		for _, it := range cs.Items {
			cv.Items = append(cv.Items, ItemView{RecommendationItem: it, Progress: cs.Progress[it.ID]})
		}
		view.Total += cs.Score
		view.Categories = append(view.Categories, cv)
	}
	view.GeneralLevel = scoring.GeneralLevelFor(view.Total)
	if state.Feedback.Open {
		fb := state.Feedback
		view.Feedback = &fb
	}
	return view
}

func (s *ResultsService) dropState(ctx context.Context, uid string) {
	if err := s.sessions.DeleteState(ctx, uid); err != nil {
		s.logger.Warn("failed to drop session state", zap.String("uid", uid), zap.Error(err))
	}
}

func (s *ResultsService) invalidateDashboard(ctx context.Context) {
	if err := s.dashboard.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
