package model

// FeedbackQuestion is a yes/no question asked after finishing a recommendation
type FeedbackQuestion struct {
	Key      string `json:"key" yaml:"key"`
	Question string `json:"question" yaml:"question"`
}

// RecommendationItem is a unit of remediation content.
// Activities are HTML prompts that must be completed in order.
type RecommendationItem struct {
	ID                string             `json:"id" yaml:"id"`
	Title             string             `json:"title" yaml:"title"`
	Description       string             `json:"description" yaml:"description"`
	Activities        []string           `json:"activities,omitempty" yaml:"activities,omitempty"`
	FeedbackQuestions []FeedbackQuestion `json:"feedbackQuestions,omitempty" yaml:"feedbackQuestions,omitempty"`
	RelatedQuestion   int                `json:"relatedQuestion,omitempty" yaml:"-"`

	// Set by the selector when the item targets a wrongly answered question
	QuestionAsked               string `json:"questionAsked,omitempty" yaml:"-"`
	QuestionAnsweredIncorrectly bool   `json:"questionAnsweredIncorrectly,omitempty" yaml:"-"`
}

// ActivityCount is N in the progress state machine
func (r RecommendationItem) ActivityCount() int {
	return len(r.Activities)
}

// HasFeedback reports whether completing the item opens the feedback questionnaire
func (r RecommendationItem) HasFeedback() bool {
	return len(r.FeedbackQuestions) > 0
}

// RecommendationProgress is the per-user progress on one recommendation
type RecommendationProgress struct {
	CurrentActivityIndex int  `json:"currentActivityIndex" bson:"currentActivityIndex"`
	IsCompleted          bool `json:"isCompleted" bson:"isCompleted"`
}
