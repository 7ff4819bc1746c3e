package progress

import "github.com/wonderless/Test-autoestima-sub000/internal/model"

// Event is an input to Reduce
type Event interface {
	event()
}

// AnswerSubmitted (re)initializes a category from a scored test.
// Saved carries the persisted progression to restore, if any.
type AnswerSubmitted struct {
	Category    model.Category
	Level       model.Level
	Score       int
	QuestionIDs []int
	Answers     model.Answers
	Items       []model.RecommendationItem
	Saved       *model.CategoryProgressDoc
}

// ActivityCompleted marks the activity at CurrentIndex done; CurrentIndex -1 resets the item
type ActivityCompleted struct {
	Category         model.Category
	RecommendationID string
	CurrentIndex     int
}

type RecommendationReset struct {
	Category         model.Category
	RecommendationID string
}

type QuestionAdvanced struct {
	Category model.Category
}

type FeedbackRequested struct {
	RecommendationID string
}

type FeedbackSubmitted struct {
	RecommendationID string
	Answers          map[string]bool
}

type FeedbackDismissed struct{}

type CategoryToggled struct {
	Category model.Category
}

func (AnswerSubmitted) event()     {}
func (ActivityCompleted) event()   {}
func (RecommendationReset) event() {}
func (QuestionAdvanced) event()    {}
func (FeedbackRequested) event()   {}
func (FeedbackSubmitted) event()   {}
func (FeedbackDismissed) event()   {}
func (CategoryToggled) event()     {}

// Effect is a side effect requested by Reduce, carried out by the caller
type Effect interface {
	effect()
}

// PersistProgress writes one recommendation's progress and the category question index
type PersistProgress struct {
	Category             model.Category
	RecommendationID     string
	Progress             model.RecommendationProgress
	CurrentQuestionIndex int
}

type PersistQuestionIndex struct {
	Category             model.Category
	CurrentQuestionIndex int
}

type PersistOpen struct {
	Category model.Category
	IsOpen   bool
}

// OpenFeedback signals that the feedback questionnaire was opened automatically
type OpenFeedback struct {
	Category         model.Category
	RecommendationID string
}

type PersistFeedback struct {
	RecommendationID string
	Answers          map[string]bool
}

func (PersistProgress) effect()      {}
func (PersistQuestionIndex) effect() {}
func (PersistOpen) effect()          {}
func (OpenFeedback) effect()         {}
func (PersistFeedback) effect()      {}
