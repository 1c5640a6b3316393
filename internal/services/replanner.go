package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/scholarai/scholar-backend/internal/data/repos/guides"
	"github.com/scholarai/scholar-backend/internal/domain"
	"github.com/scholarai/scholar-backend/internal/platform/apierr"
	"github.com/scholarai/scholar-backend/internal/platform/ctxutil"
	"github.com/scholarai/scholar-backend/internal/platform/dbctx"
	"github.com/scholarai/scholar-backend/internal/platform/genai"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

// Replanner rebuilds the remaining schedule of a guide after the learner
// fell behind. Only incomplete sessions are handed to the model; completed
// history is discarded. Unlike initial generation there is no degraded
// fallback: a replan either fully replaces the schedule or fails loud and
// leaves the stored guide untouched.
type Replanner interface {
	Replan(ctx context.Context, id uuid.UUID, missedReason string) (*domain.Guide, error)
}

type replanner struct {
	log   *logger.Logger
	genai genai.Client
	repo  guides.GuideRepo
}

func NewReplanner(log *logger.Logger, genaiClient genai.Client, repo guides.GuideRepo) Replanner {
	return &replanner{
		log:   log.With("service", "Replanner"),
		genai: genaiClient,
		repo:  repo,
	}
}

const replanSystemPrompt = `You are an expert study coach. The learner fell behind on their study plan. Rebuild a realistic schedule from the remaining sessions, starting from today (day offset 0). You may reorder, merge, split, and re-time sessions, but every remaining topic must stay covered. Also write a short, encouraging explanation of the new plan. Respond with a single JSON document.`

func (r *replanner) Replan(ctx context.Context, id uuid.UUID, missedReason string) (*domain.Guide, error) {
	ctx = ctxutil.Default(ctx)

	guide, err := r.repo.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, err
	}

	remaining := incompleteSessions(guide.StudySchedule)
	if len(remaining) == 0 {
		return nil, apierr.InvalidRequest(fmt.Errorf("guide %s has no incomplete sessions to replan", id))
	}

	user, err := buildReplanPrompt(guide, remaining, missedReason)
	if err != nil {
		return nil, apierr.GenerationFailed(fmt.Errorf("build replan prompt: %w", err))
	}

	raw, err := r.genai.GenerateJSON(ctx, replanSystemPrompt, user, "replanned_schedule", replanSchema())
	if err != nil {
		return nil, apierr.GenerationFailed(fmt.Errorf("replan guide %s: %w", id, err))
	}

	schedule, explanation, err := decodeReplan(raw)
	if err != nil {
		return nil, apierr.GenerationFailed(fmt.Errorf("replan guide %s: %w", id, err))
	}

	if err := r.repo.UpdateSchedule(dbctx.New(ctx), id, schedule, explanation); err != nil {
		return nil, err
	}
	r.log.Info("guide replanned", "guide_id", id, "sessions", len(schedule))

	return r.repo.GetByID(dbctx.New(ctx), id)
}

func incompleteSessions(schedule []domain.StudySession) []domain.StudySession {
	out := make([]domain.StudySession, 0, len(schedule))
	for _, s := range schedule {
		if !s.Completed {
			out = append(out, s)
		}
	}
	return out
}

func buildReplanPrompt(guide *domain.Guide, remaining []domain.StudySession, missedReason string) (string, error) {
	serialized, err := json.MarshalIndent(remaining, "", "  ")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Guide title: %s\n", guide.Title)
	if goals := strings.TrimSpace(guide.Goals); goals != "" {
		fmt.Fprintf(&b, "Learner goals: %s\n", goals)
	}
	if reason := strings.TrimSpace(missedReason); reason != "" {
		fmt.Fprintf(&b, "Why the learner fell behind: %s\n", reason)
	}
	b.WriteString("Remaining sessions:\n")
	b.Write(serialized)
	return b.String(), nil
}

type replanPayload struct {
	StudySchedule   []domain.StudySession `json:"study_schedule"`
	PlanExplanation string                `json:"plan_explanation"`
}

func decodeReplan(raw map[string]any) ([]domain.StudySession, string, error) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, "", fmt.Errorf("re-encode model output: %w", err)
	}
	var payload replanPayload
	dec := json.NewDecoder(strings.NewReader(string(buf)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, "", fmt.Errorf("decode replan: %w", err)
	}
	if err := validateSchedule(payload.StudySchedule); err != nil {
		return nil, "", err
	}
	for i := range payload.StudySchedule {
		payload.StudySchedule[i].Completed = false
	}
	if strings.TrimSpace(payload.PlanExplanation) == "" {
		return nil, "", fmt.Errorf("empty plan explanation")
	}
	return payload.StudySchedule, payload.PlanExplanation, nil
}

func replanSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"study_schedule", "plan_explanation"},
		"properties": map[string]any{
			"study_schedule": map[string]any{
				"type":  "array",
				"items": studySessionSchema(),
			},
			"plan_explanation": map[string]any{"type": "string"},
		},
	}
}
