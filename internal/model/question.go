package model

// Question is one item of the fixed questionnaire
type Question struct {
	ID   int    `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Answers maps question id -> the boolean answer given by the student
type Answers map[int]bool

// Clone returns an independent copy
func (a Answers) Clone() Answers {
	if a == nil {
		return nil
	}
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// CategoryScore is the score of one category and its derived level
type CategoryScore struct {
	Score int   `json:"score" bson:"score"`
	Level Level `json:"level" bson:"level"`
}

// ScoreSet is the full scoring output for a test
type ScoreSet struct {
	Categories   map[Category]CategoryScore `json:"categories"`
	Total        int                        `json:"total"`
	GeneralLevel Level                      `json:"generalLevel"`
}
