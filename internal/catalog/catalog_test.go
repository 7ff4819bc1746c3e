package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

func TestDefaultCatalogPartitionsQuestions(t *testing.T) {
	c := Default()
	require.NotNil(t, c)

	assert.Len(t, c.Questions(), QuestionCount)

	seen := map[int]string{}
	for _, cat := range model.Categories {
		ids := c.QuestionIDs(cat)
		assert.Len(t, ids, QuestionsPerCategory, "category %s", cat)
		for _, id := range ids {
			assert.NotContains(t, seen, id)
			seen[id] = string(cat)
		}
	}
	for _, id := range c.VeracityIDs() {
		assert.NotContains(t, seen, id)
		seen[id] = "veracity"
	}
	assert.Len(t, seen, QuestionCount)
	assert.Len(t, c.AnswerKey(), len(model.Categories)*QuestionsPerCategory)
	assert.Len(t, c.VeracityKey(), VeracityQuestionCount)
}

func TestDefaultCatalogCanonicalMapping(t *testing.T) {
	c := Default()
	assert.Equal(t, []int{3, 8, 13, 17, 21, 27}, c.QuestionIDs(model.CategoryPersonal))
	assert.Equal(t, []int{2, 7, 11, 18, 22, 29}, c.QuestionIDs(model.CategorySocial))
	assert.Equal(t, []int{1, 5, 14, 15, 16, 25}, c.QuestionIDs(model.CategoryAcademico))
	assert.Equal(t, []int{4, 9, 12, 19, 24, 30}, c.QuestionIDs(model.CategoryFisico))
	assert.Equal(t, []int{6, 10, 20, 23, 26, 28}, c.VeracityIDs())

	cat, ok := c.CategoryOf(5)
	assert.True(t, ok)
	assert.Equal(t, model.CategoryAcademico, cat)
	_, ok = c.CategoryOf(6)
	assert.False(t, ok, "veracity questions are not scored")
}

func TestDefaultCatalogRecommendationContent(t *testing.T) {
	c := Default()
	for _, cat := range model.Categories {
		assert.NotEmpty(t, c.General(cat, model.LevelAlto), "%s ALTO", cat)
		assert.NotEmpty(t, c.General(cat, model.LevelMedio), "%s MEDIO", cat)
		assert.NotEmpty(t, c.GeneralBajo(cat), "%s BAJO", cat)
		assert.Empty(t, c.General(cat, model.LevelBajo))

		for _, item := range c.GeneralBajo(cat) {
			assert.Zero(t, item.RelatedQuestion, item.ID)
		}
	}

	for _, id := range c.ItemIDs() {
		assert.False(t, strings.ContainsAny(id, ".$"), id)
	}

	spec := c.Specific(model.CategoryAcademico, 5)
	require.Len(t, spec, 2)
	for _, item := range spec {
		assert.Equal(t, 5, item.RelatedQuestion)
		assert.NotEmpty(t, item.Activities)
		assert.True(t, item.HasFeedback())
	}
	assert.Nil(t, c.Specific(model.CategorySocial, 29))
}

func TestSpecificReturnsCopies(t *testing.T) {
	c := Default()
	items := c.Specific(model.CategoryFisico, 9)
	require.NotEmpty(t, items)
	items[0].Title = "changed"

	again := c.Specific(model.CategoryFisico, 9)
	assert.NotEqual(t, "changed", again[0].Title)
}

func TestItemLookup(t *testing.T) {
	c := Default()
	item, ok := c.Item("fisico-q9-espejo")
	require.True(t, ok)
	assert.Equal(t, 9, item.RelatedQuestion)
	assert.Equal(t, 3, item.ActivityCount())

	_, ok = c.Item("missing")
	assert.False(t, ok)
}

func TestLoadRejectsInvalidContent(t *testing.T) {
	tests := []struct {
		name            string
		questionnaire   string
		recommendations string
		wantErr         string
	}{
		{
			name:            "malformed yaml",
			questionnaire:   "questions: [",
			recommendations: string(recommendationsYAML),
			wantErr:         "questionnaire",
		},
		{
			name:            "missing question",
			questionnaire:   strings.Replace(string(questionnaireYAML), `  - { id: 30, text: "Me considero una persona atractiva." }`, "", 1),
			recommendations: string(recommendationsYAML),
			wantErr:         "expected 30 questions",
		},
		{
			name:            "overlapping categories",
			questionnaire:   strings.Replace(string(questionnaireYAML), "fisico: [4, 9, 12, 19, 24, 30]", "fisico: [4, 9, 12, 19, 24, 3]", 1),
			recommendations: string(recommendationsYAML),
			wantErr:         "assigned to both",
		},
		{
			name:            "unsafe recommendation id",
			questionnaire:   string(questionnaireYAML),
			recommendations: strings.Replace(string(recommendationsYAML), "id: fisico-q9-espejo", "id: fisico.q9", 1),
			wantErr:         "contains '.'",
		},
		{
			name:            "duplicate recommendation id",
			questionnaire:   string(questionnaireYAML),
			recommendations: strings.Replace(string(recommendationsYAML), "id: fisico-q9-espejo", "id: fisico-q4-apariencia", 1),
			wantErr:         "duplicate recommendation id",
		},
		{
			name:            "specific content in wrong category",
			questionnaire:   string(questionnaireYAML),
			recommendations: strings.Replace(string(recommendationsYAML), "      9:\n        - id: fisico-q9-espejo", "      10:\n        - id: fisico-q9-espejo", 1),
			wantErr:         "not in category fisico",
		},
		{
			name:            "specific content on another category's question",
			questionnaire:   string(questionnaireYAML),
			recommendations: strings.Replace(string(recommendationsYAML), "      9:\n        - id: fisico-q9-espejo", "      3:\n        - id: fisico-q9-espejo", 1),
			wantErr:         "not in category fisico",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.questionnaire), []byte(tt.recommendations))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCatalog)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
