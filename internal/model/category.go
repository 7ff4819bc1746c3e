package model

import "fmt"

// Category is one of the four scored sub-scales of the questionnaire
type Category string

const (
	CategoryPersonal  Category = "personal"
	CategorySocial    Category = "social"
	CategoryAcademico Category = "academico"
	CategoryFisico    Category = "fisico"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryPersonal,
	CategorySocial,
	CategoryAcademico,
	CategoryFisico,
}

// ParseCategory validates a category coming from a URL or document key
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryPersonal, CategorySocial, CategoryAcademico, CategoryFisico:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Level is the BAJO < MEDIO < ALTO classification of a score
type Level string

const (
	LevelBajo  Level = "BAJO"
	LevelMedio Level = "MEDIO"
	LevelAlto  Level = "ALTO"
)

// Levels lists every level from lowest to highest
var Levels = []Level{LevelBajo, LevelMedio, LevelAlto}

// Rank orders levels; unknown levels rank below BAJO
func (l Level) Rank() int {
	switch l {
	case LevelBajo:
		return 1
	case LevelMedio:
		return 2
	case LevelAlto:
		return 3
	}
	return 0
}

// ParseLevel validates a level string
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelBajo, LevelMedio, LevelAlto:
		return Level(s), nil
	}
	return "", fmt.Errorf("unknown level %q", s)
}
