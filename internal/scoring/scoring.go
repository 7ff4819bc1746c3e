package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wonderless/Test-autoestima-sub000/internal/catalog"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

const (
	altoThreshold  = 5
	medioThreshold = 3

	generalAltoThreshold  = 20
	generalMedioThreshold = 9

	// VeracityBlockThreshold is the consistency score at which results are withheld
	VeracityBlockThreshold = 3
)

// IncompleteAnswers is returned when a category is scored without all of its answers
type IncompleteAnswers struct {
	Missing []int
}

func (e *IncompleteAnswers) Error() string {
	parts := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		parts[i] = fmt.Sprint(id)
	}
	return "incomplete answers: missing questions " + strings.Join(parts, ", ")
}

// LevelFor classifies a category score (0..6)
func LevelFor(score int) model.Level {
	switch {
	case score >= altoThreshold:
		return model.LevelAlto
	case score >= medioThreshold:
		return model.LevelMedio
	default:
		return model.LevelBajo
	}
}

// GeneralLevelFor classifies the sum of the four category scores (0..24)
func GeneralLevelFor(total int) model.Level {
	switch {
	case total >= generalAltoThreshold:
		return model.LevelAlto
	case total >= generalMedioThreshold:
		return model.LevelMedio
	default:
		return model.LevelBajo
	}
}

// ScoreCategory counts the answers matching the key over the given questions
func ScoreCategory(answers model.Answers, questionIDs []int, key map[int]bool) (model.CategoryScore, error) {
	var missing []int
	score := 0
	for _, id := range questionIDs {
		given, ok := answers[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if want, ok := key[id]; ok && given == want {
			score++
		}
	}
	if len(missing) > 0 {
		return model.CategoryScore{}, &IncompleteAnswers{Missing: missing}
	}
	return model.CategoryScore{Score: score, Level: LevelFor(score)}, nil
}

// ScoreAll scores every category and derives the general level.
// Missing answers across categories are reported together.
func ScoreAll(answers model.Answers, c *catalog.Catalog) (model.ScoreSet, error) {
	key := c.AnswerKey()
	set := model.ScoreSet{Categories: make(map[model.Category]model.CategoryScore, len(model.Categories))}
	var missing []int
	for _, cat := range model.Categories {
		cs, err := ScoreCategory(answers, c.QuestionIDs(cat), key)
		if err != nil {
			var inc *IncompleteAnswers
			if errors.As(err, &inc) {
				missing = append(missing, inc.Missing...)
				continue
			}
			return model.ScoreSet{}, err
		}
		set.Categories[cat] = cs
		set.Total += cs.Score
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return model.ScoreSet{}, &IncompleteAnswers{Missing: missing}
	}
	set.GeneralLevel = GeneralLevelFor(set.Total)
	return set, nil
}

// Missing returns the ids of the questionnaire not present in answers
func Missing(answers model.Answers, c *catalog.Catalog) []int {
	var missing []int
	for _, id := range c.AllQuestionIDs() {
		if _, ok := answers[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
