package services

import (
	"fmt"
	"strings"

	"github.com/scholarai/scholar-backend/internal/domain"
	"github.com/scholarai/scholar-backend/internal/platform/apierr"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

// Export variants.
const (
	ExportFlashcards = "flashcards"
	ExportQuiz       = "quiz"
	ExportSummary    = "summary"
)

// ExportDocument is a rendered download.
type ExportDocument struct {
	Filename    string
	ContentType string
	Bytes       []byte
}

// ExportService renders guide content into downloadable Markdown documents.
type ExportService interface {
	Render(guide *domain.Guide, variant string) (*ExportDocument, error)
}

type exportService struct {
	log *logger.Logger
}

func NewExportService(log *logger.Logger) ExportService {
	return &exportService{log: log.With("service", "ExportService")}
}

func (s *exportService) Render(guide *domain.Guide, variant string) (*ExportDocument, error) {
	if guide == nil {
		return nil, apierr.InvalidRequest(fmt.Errorf("guide required"))
	}

	var (
		body string
		err  error
	)
	switch variant {
	case ExportFlashcards:
		body = renderFlashcards(guide)
	case ExportQuiz:
		body, err = renderQuiz(guide)
	case ExportSummary:
		body = renderSummary(guide)
	default:
		return nil, apierr.InvalidRequest(fmt.Errorf("unknown export variant %q", variant))
	}
	if err != nil {
		return nil, err
	}

	return &ExportDocument{
		Filename:    fmt.Sprintf("%s_%s.md", slugify(guide.Title), variant),
		ContentType: "text/markdown; charset=utf-8",
		Bytes:       []byte(body),
	}, nil
}

func renderFlashcards(guide *domain.Guide) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: Flash Cards\n\n", guide.Title)
	for i, card := range guide.FlashCards {
		fmt.Fprintf(&b, "## Card %d\n\n**Q:** %s\n\n**A:** %s\n\n", i+1, card.Question, card.Answer)
	}
	return b.String()
}

func renderQuiz(guide *domain.Guide) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: Quiz\n\n", guide.Title)
	for i, q := range guide.Quiz {
		fmt.Fprintf(&b, "## Question %d\n\n%s\n\n", i+1, q.Question)
		for j, ans := range q.PossibleAnswers {
			fmt.Fprintf(&b, "%d. %s\n", j+1, ans)
		}
		b.WriteString("\n")
	}
	b.WriteString("---\n\n## Answer Key\n\n")
	for i, q := range guide.Quiz {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.PossibleAnswers) {
			return "", fmt.Errorf("quiz item %d: correct_index %d out of range", i, q.CorrectIndex)
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.PossibleAnswers[q.CorrectIndex])
	}
	return b.String(), nil
}

func renderSummary(guide *domain.Guide) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", guide.Title, guide.Summary)

	if len(guide.Topics) > 0 {
		b.WriteString("## Topics\n\n")
		for _, t := range guide.Topics {
			fmt.Fprintf(&b, "- %s (%s)\n", t.Name, t.Difficulty)
		}
		b.WriteString("\n")
	}
	if len(guide.StudyTips) > 0 {
		b.WriteString("## Study Tips\n\n")
		for _, tip := range guide.StudyTips {
			fmt.Fprintf(&b, "- %s\n", tip)
		}
		b.WriteString("\n")
	}
	if len(guide.StudySchedule) > 0 {
		b.WriteString("## Study Schedule\n\n")
		for _, sess := range guide.StudySchedule {
			mark := " "
			if sess.Completed {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] Day %d: %s (%d min, %s)\n",
				mark, sess.DayOffset, sess.Title, sess.DurationMinutes, sess.Type)
		}
	}
	return b.String()
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "guide"
	}
	return out
}
