package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

const (
	QuestionCount         = 30
	QuestionsPerCategory  = 6
	VeracityQuestionCount = 6
)

var ErrInvalidCatalog = errors.New("invalid catalog")

//go:embed data/questionnaire.yaml
var questionnaireYAML []byte

//go:embed data/recommendations.yaml
var recommendationsYAML []byte

type questionnaireFile struct {
	Questions  []model.Question `yaml:"questions"`
	Categories map[string][]int `yaml:"categories"`
	AnswerKey  map[int]bool     `yaml:"answerKey"`
	Veracity   veracitySection  `yaml:"veracity"`
}

type veracitySection struct {
	Questions []int  `yaml:"questions"`
	Key       []bool `yaml:"key"`
}

type recommendationsFile struct {
	// shared anchors live at the top level next to the categories
	Feedback   []model.FeedbackQuestion   `yaml:"feedback"`
	Categories map[string]categoryContent `yaml:",inline"`
}

type categoryContent struct {
	Alto  []model.RecommendationItem `yaml:"ALTO"`
	Medio []model.RecommendationItem `yaml:"MEDIO"`
	Bajo  bajoContent                `yaml:"BAJO"`
}

type bajoContent struct {
	General  []model.RecommendationItem         `yaml:"general"`
	Specific map[int][]model.RecommendationItem `yaml:"specific"`
}

// Catalog is the immutable questionnaire and recommendation content
type Catalog struct {
	questions   []model.Question
	byID        map[int]model.Question
	categoryIDs map[model.Category][]int
	categoryOf  map[int]model.Category
	answerKey   map[int]bool
	veracityIDs []int
	veracityKey []bool

	general     map[model.Category]map[model.Level][]model.RecommendationItem
	generalBajo map[model.Category][]model.RecommendationItem
	specific    map[model.Category]map[int][]model.RecommendationItem
	items       map[string]model.RecommendationItem
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog embedded in the binary
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(questionnaireYAML, recommendationsYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load parses and validates a questionnaire and its recommendation content
func Load(questionnaire, recommendations []byte) (*Catalog, error) {
	var qf questionnaireFile
	if err := yaml.Unmarshal(questionnaire, &qf); err != nil {
		return nil, fmt.Errorf("%w: questionnaire: %v", ErrInvalidCatalog, err)
	}
	var rf recommendationsFile
	if err := yaml.Unmarshal(recommendations, &rf); err != nil {
		return nil, fmt.Errorf("%w: recommendations: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{
		byID:        make(map[int]model.Question, QuestionCount),
		categoryIDs: make(map[model.Category][]int, len(model.Categories)),
		categoryOf:  make(map[int]model.Category),
		answerKey:   make(map[int]bool),
		general:     make(map[model.Category]map[model.Level][]model.RecommendationItem),
		generalBajo: make(map[model.Category][]model.RecommendationItem),
		specific:    make(map[model.Category]map[int][]model.RecommendationItem),
		items:       make(map[string]model.RecommendationItem),
	}
	if err := c.loadQuestionnaire(qf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.loadRecommendations(rf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return c, nil
}

func (c *Catalog) loadQuestionnaire(qf questionnaireFile) error {
	if len(qf.Questions) != QuestionCount {
		return fmt.Errorf("expected %d questions, got %d", QuestionCount, len(qf.Questions))
	}
	for _, q := range qf.Questions {
		if q.ID < 1 || q.ID > QuestionCount {
			return fmt.Errorf("question id %d out of range", q.ID)
		}
		if _, dup := c.byID[q.ID]; dup {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d has no text", q.ID)
		}
		c.byID[q.ID] = q
	}
	c.questions = append([]model.Question(nil), qf.Questions...)
	sort.Slice(c.questions, func(i, j int) bool { return c.questions[i].ID < c.questions[j].ID })

	for name := range qf.Categories {
		if _, err := model.ParseCategory(name); err != nil {
			return err
		}
	}
	owner := make(map[int]string, QuestionCount)
	for _, cat := range model.Categories {
		ids, ok := qf.Categories[string(cat)]
		if !ok {
			return fmt.Errorf("category %s has no questions", cat)
		}
		if len(ids) != QuestionsPerCategory {
			return fmt.Errorf("category %s has %d questions, want %d", cat, len(ids), QuestionsPerCategory)
		}
		for _, id := range ids {
			if _, ok := c.byID[id]; !ok {
				return fmt.Errorf("category %s references unknown question %d", cat, id)
			}
			if prev, taken := owner[id]; taken {
				return fmt.Errorf("question %d assigned to both %s and %s", id, prev, cat)
			}
			owner[id] = string(cat)
			key, ok := qf.AnswerKey[id]
			if !ok {
				return fmt.Errorf("answer key missing question %d", id)
			}
			c.answerKey[id] = key
			c.categoryOf[id] = cat
		}
		c.categoryIDs[cat] = append([]int(nil), ids...)
	}
	for id := range qf.AnswerKey {
		if _, scored := c.categoryOf[id]; !scored {
			return fmt.Errorf("answer key has unscored question %d", id)
		}
	}

	if len(qf.Veracity.Questions) != VeracityQuestionCount {
		return fmt.Errorf("expected %d veracity questions, got %d", VeracityQuestionCount, len(qf.Veracity.Questions))
	}
	if len(qf.Veracity.Key) != len(qf.Veracity.Questions) {
		return fmt.Errorf("veracity key has %d entries for %d questions", len(qf.Veracity.Key), len(qf.Veracity.Questions))
	}
	for _, id := range qf.Veracity.Questions {
		if _, ok := c.byID[id]; !ok {
			return fmt.Errorf("veracity references unknown question %d", id)
		}
		if prev, taken := owner[id]; taken {
			return fmt.Errorf("veracity question %d already assigned to %s", id, prev)
		}
		owner[id] = "veracity"
	}
	if len(owner) != QuestionCount {
		return fmt.Errorf("categories and veracity cover %d of %d questions", len(owner), QuestionCount)
	}
	c.veracityIDs = append([]int(nil), qf.Veracity.Questions...)
	c.veracityKey = append([]bool(nil), qf.Veracity.Key...)
	return nil
}

func (c *Catalog) loadRecommendations(rf recommendationsFile) error {
	for name := range rf.Categories {
		if _, err := model.ParseCategory(name); err != nil {
			return err
		}
	}
	for _, cat := range model.Categories {
		content, ok := rf.Categories[string(cat)]
		if !ok {
			return fmt.Errorf("no recommendations for category %s", cat)
		}
		if len(content.Alto) == 0 || len(content.Medio) == 0 || len(content.Bajo.General) == 0 {
			return fmt.Errorf("category %s needs ALTO, MEDIO and BAJO general content", cat)
		}
		c.general[cat] = map[model.Level][]model.RecommendationItem{
			model.LevelAlto:  content.Alto,
			model.LevelMedio: content.Medio,
		}
		c.generalBajo[cat] = content.Bajo.General
		for _, list := range [][]model.RecommendationItem{content.Alto, content.Medio, content.Bajo.General} {
			for _, item := range list {
				if err := c.register(item); err != nil {
					return err
				}
			}
		}

		c.specific[cat] = make(map[int][]model.RecommendationItem, len(content.Bajo.Specific))
		for qid, list := range content.Bajo.Specific {
			if owner, ok := c.CategoryOf(qid); !ok || owner != cat {
				return fmt.Errorf("specific content for question %d is not in category %s", qid, cat)
			}
			tagged := make([]model.RecommendationItem, len(list))
			for i, item := range list {
				item.RelatedQuestion = qid
				if err := c.register(item); err != nil {
					return err
				}
				tagged[i] = item
			}
			c.specific[cat][qid] = tagged
		}
	}
	return nil
}

func (c *Catalog) register(item model.RecommendationItem) error {
	if item.ID == "" {
		return fmt.Errorf("recommendation %q has no id", item.Title)
	}
	// ids become document path segments
	if strings.ContainsAny(item.ID, ".$") {
		return fmt.Errorf("recommendation id %q contains '.' or '$'", item.ID)
	}
	if _, dup := c.items[item.ID]; dup {
		return fmt.Errorf("duplicate recommendation id %q", item.ID)
	}
	if item.Activities != nil && len(item.Activities) == 0 {
		return fmt.Errorf("recommendation %q has an empty activity list", item.ID)
	}
	for _, fq := range item.FeedbackQuestions {
		if fq.Key == "" || strings.ContainsAny(fq.Key, ".$") {
			return fmt.Errorf("recommendation %q has an invalid feedback key %q", item.ID, fq.Key)
		}
	}
	c.items[item.ID] = item
	return nil
}

// Questions returns every question ordered by id
func (c *Catalog) Questions() []model.Question {
	return append([]model.Question(nil), c.questions...)
}

func (c *Catalog) Question(id int) (model.Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// QuestionIDs returns the six question ids of a category in catalog order
func (c *Catalog) QuestionIDs(cat model.Category) []int {
	return append([]int(nil), c.categoryIDs[cat]...)
}

// CategoryOf returns the category scoring a question; veracity questions have none
func (c *Catalog) CategoryOf(id int) (model.Category, bool) {
	cat, ok := c.categoryOf[id]
	return cat, ok
}

// AnswerKey returns a copy of the canonical answers of the scored questions
func (c *Catalog) AnswerKey() map[int]bool {
	out := make(map[int]bool, len(c.answerKey))
	for k, v := range c.answerKey {
		out[k] = v
	}
	return out
}

func (c *Catalog) VeracityIDs() []int {
	return append([]int(nil), c.veracityIDs...)
}

func (c *Catalog) VeracityKey() []bool {
	return append([]bool(nil), c.veracityKey...)
}

// AllQuestionIDs lists the ids a complete submission must answer
func (c *Catalog) AllQuestionIDs() []int {
	ids := make([]int, 0, len(c.questions))
	for _, q := range c.questions {
		ids = append(ids, q.ID)
	}
	return ids
}

// General returns the static list for ALTO or MEDIO; BAJO goes through GeneralBajo and Specific
func (c *Catalog) General(cat model.Category, level model.Level) []model.RecommendationItem {
	return cloneItems(c.general[cat][level])
}

func (c *Catalog) GeneralBajo(cat model.Category) []model.RecommendationItem {
	return cloneItems(c.generalBajo[cat])
}

// Specific returns the BAJO items targeting one question, nil when none are defined
func (c *Catalog) Specific(cat model.Category, qid int) []model.RecommendationItem {
	return cloneItems(c.specific[cat][qid])
}

// Item looks up any recommendation by id
func (c *Catalog) Item(id string) (model.RecommendationItem, bool) {
	item, ok := c.items[id]
	return item, ok
}

// ItemIDs lists every recommendation id, sorted
func (c *Catalog) ItemIDs() []string {
	ids := make([]string, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func cloneItems(items []model.RecommendationItem) []model.RecommendationItem {
	if items == nil {
		return nil
	}
	return append([]model.RecommendationItem(nil), items...)
}
