package progress

import "github.com/wonderless/Test-autoestima-sub000/internal/model"

// CategoryState is the in-session progression of one category
type CategoryState struct {
	Category             model.Category                          `json:"category"`
	IsOpen               bool                                    `json:"isOpen"`
	Level                model.Level                             `json:"categoryLevel"`
	Score                int                                     `json:"score"`
	QuestionIDs          []int                                   `json:"questionIds"`
	UserAnswers          model.Answers                           `json:"userAnswers"`
	Items                []model.RecommendationItem              `json:"items"`
	Progress             map[string]model.RecommendationProgress `json:"recommendationProgress"`
	CurrentQuestionIndex int                                     `json:"currentQuestionIndex"`
}

// Finished reports whether every diagnostic question slot has been worked through
func (cs CategoryState) Finished() bool {
	return cs.Level == model.LevelBajo && cs.CurrentQuestionIndex >= len(cs.QuestionIDs)
}

// CurrentQuestionID returns the diagnostic question being worked on
func (cs CategoryState) CurrentQuestionID() (int, bool) {
	if cs.CurrentQuestionIndex < 0 || cs.CurrentQuestionIndex >= len(cs.QuestionIDs) {
		return 0, false
	}
	return cs.QuestionIDs[cs.CurrentQuestionIndex], true
}

// Saved returns the persisted shape of this category's progression
func (cs CategoryState) Saved() *model.CategoryProgressDoc {
	open := cs.IsOpen
	idx := cs.CurrentQuestionIndex
	doc := &model.CategoryProgressDoc{
		IsOpen:                 &open,
		CurrentQuestionIndex:   &idx,
		RecommendationProgress: make(map[string]model.RecommendationProgress, len(cs.Progress)),
	}
	for k, v := range cs.Progress {
		doc.RecommendationProgress[k] = v
	}
	return doc
}

func (cs CategoryState) item(id string) (model.RecommendationItem, bool) {
	for _, it := range cs.Items {
		if it.ID == id {
			return it, true
		}
	}
	return model.RecommendationItem{}, false
}

func (cs CategoryState) clone() CategoryState {
	out := cs
	out.QuestionIDs = append([]int(nil), cs.QuestionIDs...)
	out.UserAnswers = cs.UserAnswers.Clone()
	out.Items = append([]model.RecommendationItem(nil), cs.Items...)
	out.Progress = make(map[string]model.RecommendationProgress, len(cs.Progress))
	for k, v := range cs.Progress {
		out.Progress[k] = v
	}
	return out
}

// FeedbackModal is the transient feedback questionnaire of one recommendation
type FeedbackModal struct {
	Open             bool                     `json:"open"`
	Category         model.Category           `json:"category,omitempty"`
	RecommendationID string                   `json:"recommendationId,omitempty"`
	Questions        []model.FeedbackQuestion `json:"questions,omitempty"`
	Answers          map[string]bool          `json:"answers,omitempty"`
}

// State is the whole engine state of one user session
type State struct {
	Categories map[model.Category]CategoryState `json:"categories"`
	Feedback   FeedbackModal                    `json:"feedback"`
}

func NewState() State {
	return State{Categories: make(map[model.Category]CategoryState)}
}

// Clone returns a deep copy; the reducer never mutates its input
func (s State) Clone() State {
	out := State{Categories: make(map[model.Category]CategoryState, len(s.Categories))}
	for k, v := range s.Categories {
		out.Categories[k] = v.clone()
	}
	out.Feedback = s.Feedback
	out.Feedback.Questions = append([]model.FeedbackQuestion(nil), s.Feedback.Questions...)
	if s.Feedback.Answers != nil {
		out.Feedback.Answers = make(map[string]bool, len(s.Feedback.Answers))
		for k, v := range s.Feedback.Answers {
			out.Feedback.Answers[k] = v
		}
	}
	return out
}

// findItem locates a recommendation across all categories
func (s State) findItem(id string) (model.Category, model.RecommendationItem, bool) {
	for _, cat := range model.Categories {
		cs, ok := s.Categories[cat]
		if !ok {
			continue
		}
		if it, ok := cs.item(id); ok {
			return cat, it, true
		}
	}
	return "", model.RecommendationItem{}, false
}
