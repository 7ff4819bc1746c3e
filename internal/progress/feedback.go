package progress

import (
	"fmt"

	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

func openModal(cat model.Category, it model.RecommendationItem) FeedbackModal {
	return FeedbackModal{
		Open:             true,
		Category:         cat,
		RecommendationID: it.ID,
		Questions:        append([]model.FeedbackQuestion(nil), it.FeedbackQuestions...),
		Answers:          map[string]bool{},
	}
}

func requestFeedback(s State, e FeedbackRequested) (State, error) {
	cat, it, ok := s.findItem(e.RecommendationID)
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownRecommendation, e.RecommendationID)
	}
	if !it.HasFeedback() || !s.Categories[cat].Progress[it.ID].IsCompleted {
		return s, fmt.Errorf("%w: %q", ErrFeedbackUnavailable, it.ID)
	}
	next := s.Clone()
	next.Feedback = openModal(cat, it)
	return next, nil
}

// submitFeedback requires an answer for every feedback question of the item.
// Keys the item does not ask for are dropped.
func submitFeedback(s State, e FeedbackSubmitted) (State, []Effect, error) {
	_, it, ok := s.findItem(e.RecommendationID)
	if !ok {
		return s, nil, fmt.Errorf("%w: %q", ErrUnknownRecommendation, e.RecommendationID)
	}
	if !it.HasFeedback() {
		return s, nil, fmt.Errorf("%w: %q", ErrFeedbackUnavailable, it.ID)
	}

	answers := make(map[string]bool, len(it.FeedbackQuestions))
	var missing []string
	for _, fq := range it.FeedbackQuestions {
		v, ok := e.Answers[fq.Key]
		if !ok {
			missing = append(missing, fq.Key)
			continue
		}
		answers[fq.Key] = v
	}
	if len(missing) > 0 {
		return s, nil, &ValidationFailure{RecommendationID: it.ID, Missing: missing}
	}

	next := s.Clone()
	if next.Feedback.RecommendationID == it.ID {
		next.Feedback = FeedbackModal{}
	}
	return next, []Effect{PersistFeedback{RecommendationID: it.ID, Answers: answers}}, nil
}
