package recommendation

import (
	"github.com/wonderless/Test-autoestima-sub000/internal/catalog"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

// Select returns the ordered recommendations for one category at the given level.
//
// ALTO and MEDIO get the static list for the level. BAJO gets the items targeting
// every wrongly answered question, in question order, or the untagged BAJO list
// when no question was answered wrongly. The two BAJO lists are never mixed.
func Select(c *catalog.Catalog, cat model.Category, level model.Level, answers model.Answers, key map[int]bool) []model.RecommendationItem {
	if level != model.LevelBajo {
		return c.General(cat, level)
	}

	var items []model.RecommendationItem
	for _, qid := range c.QuestionIDs(cat) {
		given, ok := answers[qid]
		if !ok || given == key[qid] {
			continue
		}
		q, _ := c.Question(qid)
		for _, item := range c.Specific(cat, qid) {
			item.QuestionAsked = q.Text
			item.QuestionAnsweredIncorrectly = true
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return c.GeneralBajo(cat)
	}
	return items
}

// SelectAll runs Select for every category of a score set
func SelectAll(c *catalog.Catalog, scores model.ScoreSet, answers model.Answers) map[model.Category][]model.RecommendationItem {
	key := c.AnswerKey()
	out := make(map[model.Category][]model.RecommendationItem, len(model.Categories))
	for _, cat := range model.Categories {
		cs, ok := scores.Categories[cat]
		if !ok {
			continue
		}
		out[cat] = Select(c, cat, cs.Level, answers, key)
	}
	return out
}
