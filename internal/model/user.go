package model

import "time"

// CategoryProgressDoc is the persisted progression of one category
type CategoryProgressDoc struct {
	IsOpen                 *bool                             `json:"isOpen,omitempty" bson:"isOpen,omitempty"`
	CurrentQuestionIndex   *int                              `json:"currentQuestionIndex,omitempty" bson:"currentQuestionIndex,omitempty"`
	RecommendationProgress map[string]RecommendationProgress `json:"recommendationProgress,omitempty" bson:"recommendationProgress,omitempty"`
}

// UserDocument is the users/{uid} document
type UserDocument struct {
	ID                     string                           `json:"id" bson:"_id"`
	Email                  string                           `json:"email,omitempty" bson:"email,omitempty"`
	Role                   Role                             `json:"role,omitempty" bson:"role,omitempty"`
	Answers                Answers                          `json:"answers,omitempty" bson:"answers,omitempty"`
	VeracityScore          *int                             `json:"veracityScore,omitempty" bson:"veracityScore,omitempty"`
	TestDuration           *int64                           `json:"testDuration,omitempty" bson:"testDuration,omitempty"` // seconds
	TestResults            map[Category]CategoryScore       `json:"testResults,omitempty" bson:"testResults,omitempty"`
	LastTestDate           *time.Time                       `json:"lastTestDate,omitempty" bson:"lastTestDate,omitempty"`
	RecommendationProgress map[Category]CategoryProgressDoc `json:"recommendationProgress,omitempty" bson:"recommendationProgress,omitempty"`
	ActivityFeedback       map[string]map[string]bool       `json:"activityFeedback,omitempty" bson:"activityFeedback,omitempty"`
	CreatedAt              time.Time                        `json:"createdAt" bson:"createdAt"`
}

// HasTest reports whether the user has a submitted test on record
func (u *UserDocument) HasTest() bool {
	return u != nil && len(u.Answers) > 0
}

// Document field paths used for partial updates
const (
	FieldAnswers                = "answers"
	FieldVeracityScore          = "veracityScore"
	FieldTestDuration           = "testDuration"
	FieldTestResults            = "testResults"
	FieldLastTestDate           = "lastTestDate"
	FieldRecommendationProgress = "recommendationProgress"
	FieldActivityFeedback       = "activityFeedback"
)
