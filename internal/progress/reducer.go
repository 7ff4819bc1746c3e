package progress

import (
	"fmt"

	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

// Reduce applies one event to the state and returns the next state with the
// effects the caller must carry out. The input state is never modified; on error
// it is returned as is.
func Reduce(s State, ev Event) (State, []Effect, error) {
	var (
		next    State
		effects []Effect
		err     error
	)
	switch e := ev.(type) {
	case AnswerSubmitted:
		next, err = initCategory(s, e)
	case ActivityCompleted:
		next, effects, err = completeActivity(s, e)
	case RecommendationReset:
		next, effects, err = resetRecommendation(s, e.Category, e.RecommendationID)
	case QuestionAdvanced:
		next, effects, err = advanceQuestion(s, e)
	case FeedbackRequested:
		next, err = requestFeedback(s, e)
	case FeedbackSubmitted:
		next, effects, err = submitFeedback(s, e)
	case FeedbackDismissed:
		next = s.Clone()
		next.Feedback = FeedbackModal{}
	case CategoryToggled:
		next, effects, err = toggleCategory(s, e)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	if err != nil {
		return s, nil, err
	}
	return next, effects, nil
}

func initCategory(s State, e AnswerSubmitted) (State, error) {
	if _, err := model.ParseCategory(string(e.Category)); err != nil {
		return s, fmt.Errorf("%w: %q", ErrUnknownCategory, e.Category)
	}
	cs := CategoryState{
		Category:    e.Category,
		IsOpen:      true,
		Level:       e.Level,
		Score:       e.Score,
		QuestionIDs: append([]int(nil), e.QuestionIDs...),
		UserAnswers: e.Answers.Clone(),
		Items:       append([]model.RecommendationItem(nil), e.Items...),
		Progress:    make(map[string]model.RecommendationProgress, len(e.Items)),
	}

	var saved map[string]model.RecommendationProgress
	if e.Saved != nil {
		if e.Saved.IsOpen != nil {
			cs.IsOpen = *e.Saved.IsOpen
		}
		if e.Saved.CurrentQuestionIndex != nil {
			cs.CurrentQuestionIndex = clamp(*e.Saved.CurrentQuestionIndex, 0, len(cs.QuestionIDs))
		}
		saved = e.Saved.RecommendationProgress
	}

	for _, it := range cs.Items {
		n := it.ActivityCount()
		p := model.RecommendationProgress{}
		if restored, ok := saved[it.ID]; ok {
			p = restored
			p.CurrentActivityIndex = clamp(p.CurrentActivityIndex, 0, n)
		}
		if n == 0 {
			p = model.RecommendationProgress{IsCompleted: true}
		}
		cs.Progress[it.ID] = p
	}

	next := s.Clone()
	next.Categories[e.Category] = cs
	if next.Feedback.Open && next.Feedback.Category == e.Category {
		next.Feedback = FeedbackModal{}
	}
	return next, nil
}

func lookup(s State, cat model.Category, recID string) (CategoryState, model.RecommendationItem, error) {
	cs, ok := s.Categories[cat]
	if !ok {
		return CategoryState{}, model.RecommendationItem{}, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	it, ok := cs.item(recID)
	if !ok {
		return CategoryState{}, model.RecommendationItem{}, fmt.Errorf("%w: %q in %s", ErrUnknownRecommendation, recID, cat)
	}
	return cs, it, nil
}

func completeActivity(s State, e ActivityCompleted) (State, []Effect, error) {
	if e.CurrentIndex == -1 {
		return resetRecommendation(s, e.Category, e.RecommendationID)
	}
	if e.CurrentIndex < 0 {
		return s, nil, fmt.Errorf("%w: %d", ErrInvalidIndex, e.CurrentIndex)
	}
	if _, _, err := lookup(s, e.Category, e.RecommendationID); err != nil {
		return s, nil, err
	}

	next := s.Clone()
	cs := next.Categories[e.Category]
	it, _ := cs.item(e.RecommendationID)
	prev := cs.Progress[it.ID]

	n := it.ActivityCount()
	p := model.RecommendationProgress{CurrentActivityIndex: e.CurrentIndex + 1}
	if p.CurrentActivityIndex >= n {
		p = model.RecommendationProgress{CurrentActivityIndex: n, IsCompleted: true}
	}
	cs.Progress[it.ID] = p

	var effects []Effect
	if p.IsCompleted && !prev.IsCompleted && it.HasFeedback() {
		next.Feedback = openModal(e.Category, it)
		effects = append(effects, OpenFeedback{Category: e.Category, RecommendationID: it.ID})
	}

	advance(&cs, p)
	next.Categories[e.Category] = cs

	// persisted values come from the next state
	effects = append(effects, PersistProgress{
		Category:             e.Category,
		RecommendationID:     it.ID,
		Progress:             cs.Progress[it.ID],
		CurrentQuestionIndex: cs.CurrentQuestionIndex,
	})
	return next, effects, nil
}

// advance moves to the next diagnostic question once every item attached to the
// current one is completed. Untagged items count as attached to every slot.
func advance(cs *CategoryState, mutated model.RecommendationProgress) {
	if cs.Level != model.LevelBajo || !mutated.IsCompleted {
		return
	}
	qid, ok := cs.CurrentQuestionID()
	if !ok {
		return
	}
	for _, it := range cs.Items {
		if it.RelatedQuestion != qid && it.RelatedQuestion != 0 {
			continue
		}
		if !cs.Progress[it.ID].IsCompleted {
			return
		}
	}
	cs.CurrentQuestionIndex++
}

func resetRecommendation(s State, cat model.Category, recID string) (State, []Effect, error) {
	if _, _, err := lookup(s, cat, recID); err != nil {
		return s, nil, err
	}
	next := s.Clone()
	cs := next.Categories[cat]
	cs.Progress[recID] = model.RecommendationProgress{}
	next.Categories[cat] = cs

	return next, []Effect{PersistProgress{
		Category:             cat,
		RecommendationID:     recID,
		Progress:             cs.Progress[recID],
		CurrentQuestionIndex: cs.CurrentQuestionIndex,
	}}, nil
}

func advanceQuestion(s State, e QuestionAdvanced) (State, []Effect, error) {
	if _, ok := s.Categories[e.Category]; !ok {
		return s, nil, fmt.Errorf("%w: %q", ErrUnknownCategory, e.Category)
	}
	next := s.Clone()
	cs := next.Categories[e.Category]
	if cs.CurrentQuestionIndex < len(cs.QuestionIDs) {
		cs.CurrentQuestionIndex++
	}
	next.Categories[e.Category] = cs
	return next, []Effect{PersistQuestionIndex{Category: e.Category, CurrentQuestionIndex: cs.CurrentQuestionIndex}}, nil
}

func toggleCategory(s State, e CategoryToggled) (State, []Effect, error) {
	if _, ok := s.Categories[e.Category]; !ok {
		return s, nil, fmt.Errorf("%w: %q", ErrUnknownCategory, e.Category)
	}
	next := s.Clone()
	cs := next.Categories[e.Category]
	cs.IsOpen = !cs.IsOpen
	next.Categories[e.Category] = cs
	return next, []Effect{PersistOpen{Category: e.Category, IsOpen: cs.IsOpen}}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
