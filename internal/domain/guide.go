package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Topic difficulty tags emitted by generation.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Study session types.
const (
	SessionTypeLearning = "learning"
	SessionTypeRevision = "revision"
	SessionTypeQuiz     = "quiz"
)

// DegradedGuideTitle marks the sentinel content returned when generation
// fails. Callers detect it by title equality and must never persist it.
const DegradedGuideTitle = "Error Generating Guide"

type Topic struct {
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
}

type FlashCard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type QuizItem struct {
	Question        string   `json:"question"`
	PossibleAnswers []string `json:"possible_answers"`
	CorrectIndex    int      `json:"correct_index"`
	RelatedTopic    string   `json:"related_topic"`
}

type StudySession struct {
	DayOffset       int    `json:"day_offset"`
	Title           string `json:"title"`
	Details         string `json:"details"`
	DurationMinutes int    `json:"duration_minutes"`
	Type            string `json:"type"`
	Difficulty      string `json:"difficulty"`
	Completed       bool   `json:"completed"`
}

// GuideContent is the generation payload before it is attached to an owner
// and persisted.
type GuideContent struct {
	Title         string         `json:"title"`
	Summary       string         `json:"summary"`
	Topics        []Topic        `json:"topics"`
	StudyTips     []string       `json:"study_tips"`
	FlashCards    []FlashCard    `json:"flash_cards"`
	Quiz          []QuizItem     `json:"quiz"`
	StudySchedule []StudySession `json:"study_schedule"`
}

func (c *GuideContent) IsDegraded() bool {
	return c != nil && c.Title == DegradedGuideTitle
}

// Guide is the sole persisted entity. Nested sequences are stored as JSON
// columns; the record is written and updated as a whole.
type Guide struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	Title           string         `json:"title"`
	Summary         string         `json:"summary"`
	Goals           string         `json:"goals"`
	SourceFilename  string         `json:"filename"`
	Topics          []Topic        `gorm:"serializer:json" json:"topics"`
	StudyTips       []string       `gorm:"serializer:json" json:"study_tips"`
	FlashCards      []FlashCard    `gorm:"serializer:json" json:"flash_cards"`
	Quiz            []QuizItem     `gorm:"serializer:json" json:"quiz"`
	StudySchedule   []StudySession `gorm:"serializer:json" json:"study_schedule"`
	PlanExplanation string         `json:"plan_explanation,omitempty"`
	Extra           datatypes.JSON `json:"extra,omitempty"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"-"`
}

func (Guide) TableName() string { return "guide" }

// GuideSummary is the listing row: id, title, filename, created_at.
type GuideSummary struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	SourceFilename string    `json:"filename"`
	CreatedAt      time.Time `json:"created_at"`
}
