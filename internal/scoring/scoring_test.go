package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonderless/Test-autoestima-sub000/internal/catalog"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

// perfectAnswers matches the key on every scored question and misses the whole veracity scale
func perfectAnswers(c *catalog.Catalog) model.Answers {
	a := model.Answers{}
	for id, v := range c.AnswerKey() {
		a[id] = v
	}
	for i, id := range c.VeracityIDs() {
		a[id] = !c.VeracityKey()[i]
	}
	return a
}

func TestScoreCategoryIsDeterministic(t *testing.T) {
	c := catalog.Default()
	answers := perfectAnswers(c)
	answers[9] = !answers[9]
	answers[19] = !answers[19]

	ids := c.QuestionIDs(model.CategoryFisico)
	first, err := ScoreCategory(answers, ids, c.AnswerKey())
	require.NoError(t, err)
	second, err := ScoreCategory(answers, ids, c.AnswerKey())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, model.CategoryScore{Score: 4, Level: model.LevelMedio}, first)
}

func TestLevelForIsMonotonic(t *testing.T) {
	for s1 := 0; s1 <= 6; s1++ {
		for s2 := s1 + 1; s2 <= 6; s2++ {
			assert.LessOrEqual(t, LevelFor(s1).Rank(), LevelFor(s2).Rank(), "scores %d < %d", s1, s2)
		}
	}

	assert.Equal(t, model.LevelBajo, LevelFor(2))
	assert.Equal(t, model.LevelMedio, LevelFor(3))
	assert.Equal(t, model.LevelMedio, LevelFor(4))
	assert.Equal(t, model.LevelAlto, LevelFor(5))
	assert.Equal(t, model.LevelAlto, LevelFor(6))
}

func TestGeneralLevelBoundaries(t *testing.T) {
	tests := []struct {
		total int
		want  model.Level
	}{
		{24, model.LevelAlto},
		{20, model.LevelAlto},
		{19, model.LevelMedio},
		{9, model.LevelMedio},
		{8, model.LevelBajo},
		{0, model.LevelBajo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GeneralLevelFor(tt.total), "total %d", tt.total)
	}
}

func TestVeracityGateBoundary(t *testing.T) {
	assert.False(t, Blocked(0))
	assert.False(t, Blocked(2))
	assert.True(t, Blocked(3))
	assert.True(t, Blocked(6))
}

func TestComputeVeracity(t *testing.T) {
	ids := []int{6, 10, 20, 23, 26, 28}
	key := []bool{true, true, true, true, true, true}

	answers := model.Answers{6: true, 10: true, 20: false, 23: false, 26: false, 28: false}
	assert.Equal(t, 2, ComputeVeracity(answers, ids, key))

	answers[20] = true
	assert.Equal(t, 3, ComputeVeracity(answers, ids, key))

	// unanswered never matches
	assert.Equal(t, 0, ComputeVeracity(model.Answers{}, ids, []bool{false, false, false, false, false, false}))
}

func TestScoreAllPerfectAnswers(t *testing.T) {
	c := catalog.Default()
	answers := perfectAnswers(c)

	assert.Equal(t, 0, VeracityFor(answers, c))

	set, err := ScoreAll(answers, c)
	require.NoError(t, err)
	assert.Equal(t, 24, set.Total)
	assert.Equal(t, model.LevelAlto, set.GeneralLevel)
	for _, cat := range model.Categories {
		assert.Equal(t, model.CategoryScore{Score: 6, Level: model.LevelAlto}, set.Categories[cat], "category %s", cat)
	}
}

func TestScoreAllSingleBajoCategory(t *testing.T) {
	c := catalog.Default()
	answers := perfectAnswers(c)
	for _, id := range []int{4, 9, 12, 19} {
		answers[id] = !answers[id]
	}

	set, err := ScoreAll(answers, c)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryScore{Score: 2, Level: model.LevelBajo}, set.Categories[model.CategoryFisico])
	assert.Equal(t, 20, set.Total)
	assert.Equal(t, model.LevelAlto, set.GeneralLevel)
}

func TestScoreAllIncompleteAnswers(t *testing.T) {
	c := catalog.Default()
	answers := perfectAnswers(c)
	delete(answers, 25)
	delete(answers, 3)
	delete(answers, 6) // veracity only, does not affect scoring

	_, err := ScoreAll(answers, c)
	require.Error(t, err)

	var inc *IncompleteAnswers
	require.ErrorAs(t, err, &inc)
	assert.Equal(t, []int{3, 25}, inc.Missing)
	assert.Contains(t, err.Error(), "3, 25")

	assert.Equal(t, []int{3, 6, 25}, Missing(answers, c))
}
