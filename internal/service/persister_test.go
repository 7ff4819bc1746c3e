package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/model"
	"github.com/wonderless/Test-autoestima-sub000/internal/repository"
)

// gatedRepo holds the first update of blockUID until release is closed and
// records the question index carried by every applied update.
type gatedRepo struct {
	repository.UserRepo
	blockUID string
	entered  chan struct{}
	release  chan struct{}

	mu      sync.Mutex
	blocked bool
	applied []int
}

func newGatedRepo(blockUID string) *gatedRepo {
	return &gatedRepo{
		UserRepo: repository.NewMemoryUserRepo(),
		blockUID: blockUID,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (r *gatedRepo) Update(ctx context.Context, uid string, fields repository.Fields) error {
	r.mu.Lock()
	hold := uid == r.blockUID && !r.blocked
	if hold {
		r.blocked = true
	}
	r.mu.Unlock()
	if hold {
		close(r.entered)
		<-r.release
	}

	if err := r.UserRepo.Update(ctx, uid, fields); err != nil {
		return err
	}
	if idx, ok := fields[questionIndexPath(model.CategoryFisico)].(int); ok && uid == r.blockUID {
		r.mu.Lock()
		r.applied = append(r.applied, idx)
		r.mu.Unlock()
	}
	return nil
}

func (r *gatedRepo) appliedIndexes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.applied...)
}

func TestBackgroundWritesApplyInQueueOrder(t *testing.T) {
	repo := newGatedRepo("u1")
	p := NewPersister(repo, zap.NewNop(), time.Second, 0)

	p.SaveQuestionIndex("u1", model.CategoryFisico, 1)
	<-repo.entered

	// queued behind the held write; none of these calls may block
	p.SaveProgress("u1", model.CategoryFisico, "fisico-q4-apariencia",
		model.RecommendationProgress{CurrentActivityIndex: 1}, 2)
	p.SaveProgress("u1", model.CategoryFisico, "fisico-q4-apariencia",
		model.RecommendationProgress{CurrentActivityIndex: 2, IsCompleted: true}, 3)
	p.SaveOpen("u1", model.CategoryFisico, true)
	p.SaveOpen("u1", model.CategoryFisico, false)

	close(repo.release)
	p.Wait()

	assert.Equal(t, []int{1, 2, 3}, repo.appliedIndexes())

	doc, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	saved := doc.RecommendationProgress[model.CategoryFisico]
	assert.Equal(t, model.RecommendationProgress{CurrentActivityIndex: 2, IsCompleted: true},
		saved.RecommendationProgress["fisico-q4-apariencia"])
	require.NotNil(t, saved.CurrentQuestionIndex)
	assert.Equal(t, 3, *saved.CurrentQuestionIndex)
	require.NotNil(t, saved.IsOpen)
	assert.False(t, *saved.IsOpen)
}

func TestBackgroundWritesDoNotWaitOnOtherUsers(t *testing.T) {
	repo := newGatedRepo("u1")
	p := NewPersister(repo, zap.NewNop(), time.Second, 0)

	p.SaveQuestionIndex("u1", model.CategoryFisico, 1)
	<-repo.entered
	p.SaveOpen("u2", model.CategorySocial, false)

	require.Eventually(t, func() bool {
		_, err := repo.Get(context.Background(), "u2")
		return err == nil
	}, time.Second, 5*time.Millisecond)

	close(repo.release)
	p.Wait()
	assert.Equal(t, []int{1}, repo.appliedIndexes())
}

func TestBackgroundWriteFailureDoesNotStallQueue(t *testing.T) {
	repo := &flakyRepo{UserRepo: repository.NewMemoryUserRepo(), failUpdates: true}
	p := NewPersister(repo, zap.NewNop(), time.Second, 1)

	p.SaveQuestionIndex("u1", model.CategoryFisico, 1)
	p.Wait()

	repo.mu.Lock()
	repo.failUpdates = false
	repo.mu.Unlock()

	p.SaveQuestionIndex("u1", model.CategoryFisico, 2)
	p.Wait()

	doc, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, doc.RecommendationProgress[model.CategoryFisico].CurrentQuestionIndex)
	assert.Equal(t, 2, *doc.RecommendationProgress[model.CategoryFisico].CurrentQuestionIndex)
}
