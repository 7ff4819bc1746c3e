package scoring

import (
	"github.com/wonderless/Test-autoestima-sub000/internal/catalog"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

// ComputeVeracity counts the veracity answers that match the key position by position.
// An unanswered question never matches.
func ComputeVeracity(answers model.Answers, ids []int, key []bool) int {
	score := 0
	for i, id := range ids {
		if i >= len(key) {
			break
		}
		if given, ok := answers[id]; ok && given == key[i] {
			score++
		}
	}
	return score
}

// VeracityFor runs ComputeVeracity with the catalog's veracity scale
func VeracityFor(answers model.Answers, c *catalog.Catalog) int {
	return ComputeVeracity(answers, c.VeracityIDs(), c.VeracityKey())
}

// Blocked reports whether a veracity score withholds results
func Blocked(score int) bool {
	return score >= VeracityBlockThreshold
}
