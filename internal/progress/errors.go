package progress

import (
	"errors"
	"strings"
)

var (
	ErrUnknownCategory       = errors.New("unknown category")
	ErrUnknownRecommendation = errors.New("unknown recommendation")
	ErrInvalidIndex          = errors.New("invalid activity index")
	ErrFeedbackUnavailable   = errors.New("feedback not available for this recommendation")
	ErrUnknownEvent          = errors.New("unknown event")
)

// ValidationFailure is returned when feedback is submitted without every required answer
type ValidationFailure struct {
	RecommendationID string
	Missing          []string
}

func (e *ValidationFailure) Error() string {
	return "feedback for " + e.RecommendationID + " is missing answers: " + strings.Join(e.Missing, ", ")
}
