package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scholarai/scholar-backend/internal/domain"
	"github.com/scholarai/scholar-backend/internal/platform/genai"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

// GuideGenerator turns extracted source text into full guide content with a
// single model call. Any failure, from transport errors to schema violations
// in the reply, degrades to the sentinel content instead of erroring so the
// caller can decide what to surface.
type GuideGenerator interface {
	Generate(ctx context.Context, sourceText string, goals string) domain.GuideContent
}

type guideGenerator struct {
	log   *logger.Logger
	genai genai.Client
}

func NewGuideGenerator(log *logger.Logger, genaiClient genai.Client) GuideGenerator {
	return &guideGenerator{
		log:   log.With("service", "GuideGenerator"),
		genai: genaiClient,
	}
}

const generateSystemPrompt = `You are an expert study coach. From the provided source material, produce a complete study guide as a single JSON document. You must:
1. Tag topics by difficulty: write a concise title and a summary, then list the key topics, each rated Easy, Medium, or Hard.
2. Spaced repetition: insert dedicated revision sessions in the schedule for the hard topics so they are revisited before the plan ends.
3. Feasibility: keep every session between 30 and 60 minutes so daily study time stays realistic.
4. Personalization: give practical study tips tailored to this specific material.
5. Assessment: write exactly 10 flash cards and exactly 10 multiple-choice quiz questions, each question with exactly 4 possible answers and the index of the correct one, and lay out a day-by-day schedule of sessions (learning, revision, or quiz), each with a day offset from today, a duration in minutes, and a difficulty.
Base everything strictly on the source material. If the learner stated goals, weight topic coverage and the schedule toward them.`

func (g *guideGenerator) Generate(ctx context.Context, sourceText string, goals string) domain.GuideContent {
	user := buildGeneratePrompt(sourceText, goals)

	raw, err := g.genai.GenerateJSON(ctx, generateSystemPrompt, user, "study_guide", guideSchema())
	if err != nil {
		g.log.Error("guide generation failed", "error", err)
		return degradedContent()
	}

	content, err := decodeGuideContent(raw)
	if err != nil {
		g.log.Error("guide generation returned invalid content", "error", err)
		return degradedContent()
	}
	return content
}

func buildGeneratePrompt(sourceText string, goals string) string {
	var b strings.Builder
	if goals = strings.TrimSpace(goals); goals != "" {
		b.WriteString("Learner goals: ")
		b.WriteString(goals)
		b.WriteString("\n\n")
	}
	b.WriteString("Source material:\n")
	b.WriteString(sourceText)
	return b.String()
}

// degradedContent is the sentinel returned when generation cannot produce a
// valid guide. It is recognized downstream by its title and never persisted.
func degradedContent() domain.GuideContent {
	return domain.GuideContent{
		Title:         domain.DegradedGuideTitle,
		Summary:       "The study guide could not be generated from this material. Please try uploading the file again.",
		Topics:        []domain.Topic{},
		StudyTips:     []string{},
		FlashCards:    []domain.FlashCard{},
		Quiz:          []domain.QuizItem{},
		StudySchedule: []domain.StudySession{},
	}
}

func decodeGuideContent(raw map[string]any) (domain.GuideContent, error) {
	var content domain.GuideContent

	buf, err := json.Marshal(raw)
	if err != nil {
		return content, fmt.Errorf("re-encode model output: %w", err)
	}
	dec := json.NewDecoder(strings.NewReader(string(buf)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&content); err != nil {
		return content, fmt.Errorf("decode guide content: %w", err)
	}
	if err := validateGuideContent(&content); err != nil {
		return content, err
	}
	return content, nil
}

func validateGuideContent(content *domain.GuideContent) error {
	if strings.TrimSpace(content.Title) == "" {
		return fmt.Errorf("empty title")
	}
	if strings.TrimSpace(content.Summary) == "" {
		return fmt.Errorf("empty summary")
	}
	if len(content.FlashCards) != 10 {
		return fmt.Errorf("expected 10 flash cards, got %d", len(content.FlashCards))
	}
	if len(content.Quiz) != 10 {
		return fmt.Errorf("expected 10 quiz items, got %d", len(content.Quiz))
	}
	for i, t := range content.Topics {
		if !validDifficulty(t.Difficulty) {
			return fmt.Errorf("topic %d: invalid difficulty %q", i, t.Difficulty)
		}
	}
	for i, q := range content.Quiz {
		if len(q.PossibleAnswers) != 4 {
			return fmt.Errorf("quiz item %d: expected 4 answers, got %d", i, len(q.PossibleAnswers))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex > 3 {
			return fmt.Errorf("quiz item %d: correct_index %d out of range", i, q.CorrectIndex)
		}
	}
	if err := validateSchedule(content.StudySchedule); err != nil {
		return err
	}
	// New guides always start with nothing completed.
	for i := range content.StudySchedule {
		content.StudySchedule[i].Completed = false
	}
	return nil
}

func validateSchedule(schedule []domain.StudySession) error {
	if len(schedule) == 0 {
		return fmt.Errorf("empty study schedule")
	}
	for i, s := range schedule {
		if s.DayOffset < 0 {
			return fmt.Errorf("session %d: negative day_offset %d", i, s.DayOffset)
		}
		if s.DurationMinutes <= 0 {
			return fmt.Errorf("session %d: non-positive duration %d", i, s.DurationMinutes)
		}
		if !validSessionType(s.Type) {
			return fmt.Errorf("session %d: invalid type %q", i, s.Type)
		}
		if !validDifficulty(s.Difficulty) {
			return fmt.Errorf("session %d: invalid difficulty %q", i, s.Difficulty)
		}
	}
	return nil
}

func validDifficulty(d string) bool {
	switch d {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
		return true
	}
	return false
}

func validSessionType(t string) bool {
	switch t {
	case domain.SessionTypeLearning, domain.SessionTypeRevision, domain.SessionTypeQuiz:
		return true
	}
	return false
}

func difficultyEnum() []string {
	return []string{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard}
}

func sessionTypeEnum() []string {
	return []string{domain.SessionTypeLearning, domain.SessionTypeRevision, domain.SessionTypeQuiz}
}

func studySessionSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"day_offset", "title", "details", "duration_minutes", "type", "difficulty", "completed"},
		"properties": map[string]any{
			"day_offset":       map[string]any{"type": "integer", "minimum": 0},
			"title":            map[string]any{"type": "string"},
			"details":          map[string]any{"type": "string"},
			"duration_minutes": map[string]any{"type": "integer", "minimum": 1},
			"type":             map[string]any{"type": "string", "enum": sessionTypeEnum()},
			"difficulty":       map[string]any{"type": "string", "enum": difficultyEnum()},
			"completed":        map[string]any{"type": "boolean"},
		},
	}
}

func guideSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"title", "summary", "topics", "study_tips", "flash_cards", "quiz", "study_schedule"},
		"properties": map[string]any{
			"title":   map[string]any{"type": "string"},
			"summary": map[string]any{"type": "string"},
			"topics": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"name", "difficulty"},
					"properties": map[string]any{
						"name":       map[string]any{"type": "string"},
						"difficulty": map[string]any{"type": "string", "enum": difficultyEnum()},
					},
				},
			},
			"study_tips": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"flash_cards": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"question", "answer"},
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"answer":   map[string]any{"type": "string"},
					},
				},
			},
			"quiz": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"question", "possible_answers", "correct_index", "related_topic"},
					"properties": map[string]any{
						"question":         map[string]any{"type": "string"},
						"possible_answers": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"correct_index":    map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
						"related_topic":    map[string]any{"type": "string"},
					},
				},
			},
			"study_schedule": map[string]any{
				"type":  "array",
				"items": studySessionSchema(),
			},
		},
	}
}
