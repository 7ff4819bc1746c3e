package model

import "time"

// Dashboard is the aggregate view shown to admins
type Dashboard struct {
	TotalStudents    int                        `json:"totalStudents"`
	TestedStudents   int                        `json:"testedStudents"`
	VeracityFlagged  int                        `json:"veracityFlagged"`
	LevelsByCategory map[Category]map[Level]int `json:"levelsByCategory"`
	GeneratedAt      time.Time                  `json:"generatedAt"`
}

// FeedbackTally counts the yes/no answers given to one feedback question
type FeedbackTally struct {
	Key string `json:"key"`
	Yes int    `json:"yes"`
	No  int    `json:"no"`
}

// RecommendationFeedback aggregates the feedback of one recommendation across students
type RecommendationFeedback struct {
	RecommendationID string          `json:"recommendationId"`
	Title            string          `json:"title"`
	Responses        int             `json:"responses"`
	Questions        []FeedbackTally `json:"questions"`
}

// LiveEvent is pushed to admins connected to the live feed
type LiveEvent struct {
	Type      string      `json:"type"`
	UserID    string      `json:"uid"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	LiveEventResultsSaved = "results_saved"
	LiveEventTestReset    = "test_reset"
)
