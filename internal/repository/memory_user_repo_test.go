package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

func intPtr(v int) *int { return &v }

func TestMemoryRepoGetMissing(t *testing.T) {
	repo := NewMemoryUserRepo()
	_, err := repo.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepoSetAndGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepo()
	when := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Set(ctx, &model.UserDocument{
		ID:            "u1",
		Email:         "ana@example.com",
		Role:          model.RoleStudent,
		Answers:       model.Answers{1: true, 2: false},
		VeracityScore: intPtr(1),
		TestResults: map[model.Category]model.CategoryScore{
			model.CategoryFisico: {Score: 2, Level: model.LevelBajo},
		},
		LastTestDate: &when,
	}))

	doc, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.Answers{1: true, 2: false}, doc.Answers)
	assert.Equal(t, 1, *doc.VeracityScore)
	assert.Equal(t, model.LevelBajo, doc.TestResults[model.CategoryFisico].Level)
	assert.True(t, when.Equal(*doc.LastTestDate))
	assert.False(t, doc.CreatedAt.IsZero())

	// returned documents are copies
	doc.Answers[1] = false
	again, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, again.Answers[1])
}

func TestMemoryRepoUpdateMergesLeaves(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepo()

	base := "recommendationProgress.fisico"
	require.NoError(t, repo.Update(ctx, "u1", Fields{
		base + ".recommendationProgress.a": model.RecommendationProgress{CurrentActivityIndex: 1},
		base + ".currentQuestionIndex":     0,
	}))
	require.NoError(t, repo.Update(ctx, "u1", Fields{
		base + ".recommendationProgress.b": model.RecommendationProgress{CurrentActivityIndex: 2, IsCompleted: true},
		base + ".currentQuestionIndex":     1,
	}))
	require.NoError(t, repo.Update(ctx, "u1", Fields{
		base + ".isOpen":                      false,
		"activityFeedback.b":                  map[string]bool{"util": true},
		"recommendationProgress.social.isOpen": true,
	}))

	doc, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	fisico := doc.RecommendationProgress[model.CategoryFisico]
	assert.Equal(t, model.RecommendationProgress{CurrentActivityIndex: 1}, fisico.RecommendationProgress["a"])
	assert.Equal(t, model.RecommendationProgress{CurrentActivityIndex: 2, IsCompleted: true}, fisico.RecommendationProgress["b"])
	assert.Equal(t, 1, *fisico.CurrentQuestionIndex)
	assert.False(t, *fisico.IsOpen)
	assert.True(t, *doc.RecommendationProgress[model.CategorySocial].IsOpen)
	assert.Equal(t, map[string]bool{"util": true}, doc.ActivityFeedback["b"])
}

func TestMemoryRepoConcurrentSubPathWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepo()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("recommendationProgress.personal.recommendationProgress.rec-%d", i)
			assert.NoError(t, repo.Update(ctx, "u1", Fields{path: model.RecommendationProgress{CurrentActivityIndex: i}}))
		}(i)
	}
	wg.Wait()

	doc, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	progress := doc.RecommendationProgress[model.CategoryPersonal].RecommendationProgress
	require.Len(t, progress, 20)
	for i := 0; i < 20; i++ {
		assert.Equal(t, i, progress[fmt.Sprintf("rec-%d", i)].CurrentActivityIndex)
	}
}

func TestMemoryRepoUnset(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepo()
	require.NoError(t, repo.Set(ctx, &model.UserDocument{
		ID:            "u1",
		Answers:       model.Answers{1: true},
		VeracityScore: intPtr(4),
		Email:         "x@example.com",
	}))

	require.NoError(t, repo.Unset(ctx, "u1", model.FieldAnswers, model.FieldVeracityScore, "missing.path"))
	require.NoError(t, repo.Unset(ctx, "ghost", model.FieldAnswers))

	doc, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, doc.Answers)
	assert.Nil(t, doc.VeracityScore)
	assert.Equal(t, "x@example.com", doc.Email)
	assert.False(t, doc.HasTest())
}

func TestMemoryRepoAggregates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepo()
	levels := []model.Level{model.LevelBajo, model.LevelBajo, model.LevelAlto}
	for i, l := range levels {
		require.NoError(t, repo.Set(ctx, &model.UserDocument{
			ID:            fmt.Sprintf("s%d", i),
			Role:          model.RoleStudent,
			Answers:       model.Answers{1: true},
			VeracityScore: intPtr(i + 1),
			TestResults:   map[model.Category]model.CategoryScore{model.CategorySocial: {Level: l}},
		}))
	}
	require.NoError(t, repo.Set(ctx, &model.UserDocument{ID: "boss", Role: model.RoleAdmin}))

	counts, err := repo.CountByLevel(ctx, model.CategorySocial)
	require.NoError(t, err)
	assert.Equal(t, map[model.Level]int{model.LevelBajo: 2, model.LevelMedio: 0, model.LevelAlto: 1}, counts)

	flagged, err := repo.CountVeracityFlagged(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, flagged)

	tested, err := repo.CountTested(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, tested)

	students, err := repo.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 3)
}

func TestMemoryRepoCountByLevelSkipsUnknownLevels(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepo()
	for id, l := range map[string]model.Level{"s1": model.LevelMedio, "s2": "EXTREMO"} {
		require.NoError(t, repo.Set(ctx, &model.UserDocument{
			ID:          id,
			Role:        model.RoleStudent,
			Answers:     model.Answers{1: true},
			TestResults: map[model.Category]model.CategoryScore{model.CategoryFisico: {Score: 4, Level: l}},
		}))
	}

	counts, err := repo.CountByLevel(ctx, model.CategoryFisico)
	require.NoError(t, err)
	assert.Equal(t, map[model.Level]int{model.LevelBajo: 0, model.LevelMedio: 1, model.LevelAlto: 0}, counts)
}
