package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/metrics"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
	"github.com/wonderless/Test-autoestima-sub000/internal/repository"
)

// Persister writes engine state to the users collection. Every write is scoped
// to the leaf paths it owns. Background writes for one user are applied in the
// order they were queued, so the document converges on the latest state.
type Persister struct {
	repo    repository.UserRepo
	logger  *zap.Logger
	timeout time.Duration
	retries int
	wg      sync.WaitGroup

	mu     sync.Mutex
	queues map[string][]pendingWrite // a present key means a drain goroutine is running
}

type pendingWrite struct {
	op     string
	fields repository.Fields
}

// NewPersister creates a persister; retries applies to background writes only
func NewPersister(repo repository.UserRepo, logger *zap.Logger, timeout time.Duration, retries int) *Persister {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	return &Persister{
		repo:    repo,
		logger:  logger,
		timeout: timeout,
		retries: retries,
		queues:  make(map[string][]pendingWrite),
	}
}

func progressPath(cat model.Category, recID string) string {
	return fmt.Sprintf("%s.%s.recommendationProgress.%s", model.FieldRecommendationProgress, cat, recID)
}

func questionIndexPath(cat model.Category) string {
	return fmt.Sprintf("%s.%s.currentQuestionIndex", model.FieldRecommendationProgress, cat)
}

func openPath(cat model.Category) string {
	return fmt.Sprintf("%s.%s.isOpen", model.FieldRecommendationProgress, cat)
}

func feedbackPath(recID string) string {
	return fmt.Sprintf("%s.%s", model.FieldActivityFeedback, recID)
}

// SaveResults stores the computed scores next to the answers they came from
func (p *Persister) SaveResults(ctx context.Context, uid string, scores model.ScoreSet, answers model.Answers) error {
	err := p.repo.Update(ctx, uid, repository.Fields{
		model.FieldTestResults: scores.Categories,
		model.FieldAnswers:     answers,
	})
	if err != nil {
		metrics.PersistenceFailures.WithLabelValues("save_results").Inc()
		return fmt.Errorf("%w: save results: %v", ErrPersistence, err)
	}
	return nil
}

// SaveTest stores a submitted questionnaire
func (p *Persister) SaveTest(ctx context.Context, uid, email string, answers model.Answers, veracity int, duration *int64, at time.Time) error {
	fields := repository.Fields{
		model.FieldAnswers:       answers,
		model.FieldVeracityScore: veracity,
		model.FieldLastTestDate:  at,
	}
	if duration != nil {
		fields[model.FieldTestDuration] = *duration
	}
	if email != "" {
		fields["email"] = email
	}
	if err := p.repo.Update(ctx, uid, fields); err != nil {
		metrics.PersistenceFailures.WithLabelValues("save_test").Inc()
		return fmt.Errorf("%w: save test: %v", ErrPersistence, err)
	}
	return nil
}

// SaveProgress writes one recommendation's progress and the category question index in the background
func (p *Persister) SaveProgress(uid string, cat model.Category, recID string, progress model.RecommendationProgress, currentQuestionIndex int) {
	p.async("save_progress", uid, repository.Fields{
		progressPath(cat, recID): progress,
		questionIndexPath(cat):   currentQuestionIndex,
	})
}

func (p *Persister) SaveQuestionIndex(uid string, cat model.Category, currentQuestionIndex int) {
	p.async("save_question_index", uid, repository.Fields{
		questionIndexPath(cat): currentQuestionIndex,
	})
}

func (p *Persister) SaveOpen(uid string, cat model.Category, isOpen bool) {
	p.async("save_open", uid, repository.Fields{
		openPath(cat): isOpen,
	})
}

// SaveFeedback stores the answers of one feedback questionnaire
func (p *Persister) SaveFeedback(ctx context.Context, uid, recID string, answers map[string]bool) error {
	if err := p.repo.Update(ctx, uid, repository.Fields{feedbackPath(recID): answers}); err != nil {
		metrics.PersistenceFailures.WithLabelValues("save_feedback").Inc()
		return fmt.Errorf("%w: save feedback: %v", ErrPersistence, err)
	}
	return nil
}

// ResetTest clears the submitted test so the questionnaire can be retaken
func (p *Persister) ResetTest(ctx context.Context, uid string) error {
	err := p.repo.Unset(ctx, uid,
		model.FieldAnswers,
		model.FieldTestDuration,
		model.FieldVeracityScore,
		model.FieldLastTestDate,
	)
	if err != nil {
		metrics.PersistenceFailures.WithLabelValues("reset_test").Inc()
		return fmt.Errorf("%w: reset test: %v", ErrPersistence, err)
	}
	return nil
}

// Wait blocks until every background write has finished
func (p *Persister) Wait() {
	p.wg.Wait()
}

// async queues a write behind the user's earlier background writes
func (p *Persister) async(op, uid string, fields repository.Fields) {
	p.wg.Add(1)
	p.mu.Lock()
	queue, running := p.queues[uid]
	p.queues[uid] = append(queue, pendingWrite{op: op, fields: fields})
	p.mu.Unlock()
	if !running {
		go p.drain(uid)
	}
}

func (p *Persister) drain(uid string) {
	for {
		p.mu.Lock()
		queue := p.queues[uid]
		if len(queue) == 0 {
			delete(p.queues, uid)
			p.mu.Unlock()
			return
		}
		next := queue[0]
		p.queues[uid] = queue[1:]
		p.mu.Unlock()

		p.write(uid, next)
		p.wg.Done()
	}
}

func (p *Persister) write(uid string, w pendingWrite) {
	var err error
	for attempt := 0; attempt <= p.retries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err = p.repo.Update(ctx, uid, w.fields)
		cancel()
		if err == nil {
			return
		}
	}
	metrics.PersistenceFailures.WithLabelValues(w.op).Inc()
	p.logger.Error("background write failed",
		zap.String("op", w.op),
		zap.String("uid", uid),
		zap.Int("attempts", p.retries+1),
		zap.Error(err),
	)
}
