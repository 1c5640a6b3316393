package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/scholarai/scholar-backend/internal/domain"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

type fakeGenAI struct {
	jsonResp map[string]any
	jsonErr  error
	textResp string
	textErr  error

	jsonCalls      int
	textCalls      int
	lastSystem     string
	lastUser       string
	lastSchemaName string
	lastPrompt     string
}

func (f *fakeGenAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.jsonCalls++
	f.lastSystem = system
	f.lastUser = user
	f.lastSchemaName = schemaName
	return f.jsonResp, f.jsonErr
}

func (f *fakeGenAI) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.textCalls++
	f.lastPrompt = prompt
	return f.textResp, f.textErr
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return log
}

func validGuidePayload() map[string]any {
	cards := make([]any, 0, 10)
	quiz := make([]any, 0, 10)
	for i := 0; i < 10; i++ {
		cards = append(cards, map[string]any{
			"question": "q",
			"answer":   "a",
		})
		quiz = append(quiz, map[string]any{
			"question":         "q",
			"possible_answers": []any{"a", "b", "c", "d"},
			"correct_index":    float64(1),
			"related_topic":    "Cells",
		})
	}
	return map[string]any{
		"title":       "Cell Biology",
		"summary":     "Structure and function of cells.",
		"topics":      []any{map[string]any{"name": "Cells", "difficulty": "Easy"}},
		"study_tips":  []any{"Draw the organelles."},
		"flash_cards": cards,
		"quiz":        quiz,
		"study_schedule": []any{
			map[string]any{
				"day_offset":       float64(0),
				"title":            "Intro",
				"details":          "Read the summary.",
				"duration_minutes": float64(30),
				"type":             "learning",
				"difficulty":       "Easy",
				"completed":        true,
			},
		},
	}
}

func TestGenerateReturnsModelContent(t *testing.T) {
	ai := &fakeGenAI{jsonResp: validGuidePayload()}
	gen := NewGuideGenerator(testLogger(t), ai)

	content := gen.Generate(context.Background(), "source text", "pass the exam")
	if content.IsDegraded() {
		t.Fatalf("unexpected degraded content: %+v", content)
	}
	if content.Title != "Cell Biology" {
		t.Fatalf("title: want=%q got=%q", "Cell Biology", content.Title)
	}
	if len(content.FlashCards) != 10 || len(content.Quiz) != 10 {
		t.Fatalf("cards=%d quiz=%d, want 10/10", len(content.FlashCards), len(content.Quiz))
	}
	if content.Quiz[0].CorrectIndex != 1 {
		t.Fatalf("correct_index: want=1 got=%d", content.Quiz[0].CorrectIndex)
	}
	if ai.jsonCalls != 1 {
		t.Fatalf("generation must be a single call, got %d", ai.jsonCalls)
	}
	if !strings.Contains(ai.lastUser, "pass the exam") {
		t.Fatalf("goals missing from prompt: %q", ai.lastUser)
	}
	if !strings.Contains(ai.lastUser, "source text") {
		t.Fatalf("source missing from prompt: %q", ai.lastUser)
	}
}

func TestGenerateInstructionCarriesAllDuties(t *testing.T) {
	ai := &fakeGenAI{jsonResp: validGuidePayload()}
	gen := NewGuideGenerator(testLogger(t), ai)

	gen.Generate(context.Background(), "src", "")

	system := strings.ToLower(ai.lastSystem)
	for _, duty := range []string{
		"difficulty",
		"spaced repetition",
		"revision",
		"between 30 and 60 minutes",
		"study tips",
		"10 flash cards",
		"10 multiple-choice quiz questions",
		"day-by-day",
	} {
		if !strings.Contains(system, duty) {
			t.Fatalf("system instruction missing %q:\n%s", duty, ai.lastSystem)
		}
	}
}

func TestGenerateForcesSessionsIncomplete(t *testing.T) {
	ai := &fakeGenAI{jsonResp: validGuidePayload()}
	gen := NewGuideGenerator(testLogger(t), ai)

	content := gen.Generate(context.Background(), "src", "")
	for i, s := range content.StudySchedule {
		if s.Completed {
			t.Fatalf("session %d must start incomplete", i)
		}
	}
}

func TestGenerateDegradesOnTransportError(t *testing.T) {
	ai := &fakeGenAI{jsonErr: errors.New("upstream 500")}
	gen := NewGuideGenerator(testLogger(t), ai)

	content := gen.Generate(context.Background(), "src", "")
	if !content.IsDegraded() {
		t.Fatalf("expected degraded content, got %+v", content)
	}
	if content.Title != domain.DegradedGuideTitle {
		t.Fatalf("sentinel title: want=%q got=%q", domain.DegradedGuideTitle, content.Title)
	}
	if len(content.FlashCards) != 0 || len(content.StudySchedule) != 0 {
		t.Fatal("degraded content must carry empty sequences")
	}
}

func TestGenerateDegradesOnWrongCardCount(t *testing.T) {
	payload := validGuidePayload()
	payload["flash_cards"] = []any{map[string]any{"question": "q", "answer": "a"}}
	ai := &fakeGenAI{jsonResp: payload}
	gen := NewGuideGenerator(testLogger(t), ai)

	if content := gen.Generate(context.Background(), "src", ""); !content.IsDegraded() {
		t.Fatalf("expected degraded content, got %+v", content)
	}
}

func TestGenerateDegradesOnBadCorrectIndex(t *testing.T) {
	payload := validGuidePayload()
	quiz := payload["quiz"].([]any)
	quiz[3].(map[string]any)["correct_index"] = float64(7)
	ai := &fakeGenAI{jsonResp: payload}
	gen := NewGuideGenerator(testLogger(t), ai)

	if content := gen.Generate(context.Background(), "src", ""); !content.IsDegraded() {
		t.Fatalf("expected degraded content, got %+v", content)
	}
}

func TestGenerateDegradesOnUnknownSessionType(t *testing.T) {
	payload := validGuidePayload()
	sched := payload["study_schedule"].([]any)
	sched[0].(map[string]any)["type"] = "cramming"
	ai := &fakeGenAI{jsonResp: payload}
	gen := NewGuideGenerator(testLogger(t), ai)

	if content := gen.Generate(context.Background(), "src", ""); !content.IsDegraded() {
		t.Fatalf("expected degraded content, got %+v", content)
	}
}
