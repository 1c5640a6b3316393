package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/scholarai/scholar-backend/internal/data/repos/guides"
	"github.com/scholarai/scholar-backend/internal/data/repos/testutil"
	"github.com/scholarai/scholar-backend/internal/platform/apierr"
	"github.com/scholarai/scholar-backend/internal/platform/dbctx"
)

func dbctxForTest(t *testing.T) dbctx.Context {
	t.Helper()
	return dbctx.New(context.Background())
}

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, path, originalName string) (string, error) {
	f.calls++
	return f.text, f.err
}

func newGuideServiceForTest(t *testing.T, ai *fakeGenAI, ext *fakeExtractor) (GuideService, guides.GuideRepo) {
	t.Helper()
	log := testutil.Logger(t)
	repo := guides.NewGuideRepo(testutil.Tx(t), log)
	gen := NewGuideGenerator(log, ai)
	return NewGuideService(log, ext, gen, repo), repo
}

func TestCreateFromUploadPersistsGuide(t *testing.T) {
	ai := &fakeGenAI{jsonResp: validGuidePayload()}
	ext := &fakeExtractor{text: "lecture transcript"}
	svc, _ := newGuideServiceForTest(t, ai, ext)

	userID := uuid.New()
	guide, err := svc.CreateFromUpload(context.Background(), userID, "/tmp/f.txt", "f.txt", "ace the midterm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if guide.ID == uuid.Nil {
		t.Fatal("guide must get an id")
	}
	if guide.UserID != userID {
		t.Fatalf("user: want=%s got=%s", userID, guide.UserID)
	}
	if guide.Title != "Cell Biology" {
		t.Fatalf("title: want=%q got=%q", "Cell Biology", guide.Title)
	}
	if guide.Goals != "ace the midterm" {
		t.Fatalf("goals: want=%q got=%q", "ace the midterm", guide.Goals)
	}
	if guide.SourceFilename != "f.txt" {
		t.Fatalf("filename: want=%q got=%q", "f.txt", guide.SourceFilename)
	}
	if ai.jsonCalls != 1 {
		t.Fatalf("upload must trigger exactly one generation call, got %d", ai.jsonCalls)
	}

	stored, err := svc.Get(context.Background(), guide.ID)
	if err != nil {
		t.Fatalf("get after create: %v", err)
	}
	if len(stored.FlashCards) != 10 || len(stored.Quiz) != 10 {
		t.Fatalf("stored cards=%d quiz=%d", len(stored.FlashCards), len(stored.Quiz))
	}
}

func TestCreateFromUploadNeverPersistsDegradedGuide(t *testing.T) {
	ai := &fakeGenAI{jsonErr: errors.New("model down")}
	ext := &fakeExtractor{text: "some text"}
	svc, _ := newGuideServiceForTest(t, ai, ext)

	userID := uuid.New()
	_, err := svc.CreateFromUpload(context.Background(), userID, "/tmp/f.txt", "f.txt", "")
	if !apierr.IsCode(err, apierr.CodeGenerationFailed) {
		t.Fatalf("want generation_failed, got %v", err)
	}

	list, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("degraded guide must not be persisted, found %d rows", len(list))
	}
}

func TestCreateFromUploadPropagatesExtractionError(t *testing.T) {
	ai := &fakeGenAI{jsonResp: validGuidePayload()}
	ext := &fakeExtractor{err: apierr.ExtractionFailed(errors.New("no text"))}
	svc, _ := newGuideServiceForTest(t, ai, ext)

	_, err := svc.CreateFromUpload(context.Background(), uuid.New(), "/tmp/f.pdf", "f.pdf", "")
	if !apierr.IsCode(err, apierr.CodeExtractionFailed) {
		t.Fatalf("want extraction_failed, got %v", err)
	}
	if ai.jsonCalls != 0 {
		t.Fatalf("generation must not run after extraction failure, got %d calls", ai.jsonCalls)
	}
}

func TestSetSessionCompletedFlipsOnlyTargetSession(t *testing.T) {
	ai := &fakeGenAI{jsonResp: validGuidePayload()}
	svc, repo := newGuideServiceForTest(t, ai, &fakeExtractor{text: "x"})

	userID := uuid.New()
	seeded := testutil.SeedGuide(userID)
	if err := repo.Create(dbctxForTest(t), seeded); err != nil {
		t.Fatalf("seed: %v", err)
	}

	updated, err := svc.SetSessionCompleted(context.Background(), seeded.ID, 1, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.StudySchedule[1].Completed {
		t.Fatal("session 1 must be completed")
	}
	if updated.StudySchedule[0].Completed || updated.StudySchedule[2].Completed {
		t.Fatal("other sessions must be untouched")
	}
}

func TestSetSessionCompletedOutOfRangeLeavesGuideUnchanged(t *testing.T) {
	ai := &fakeGenAI{jsonResp: validGuidePayload()}
	svc, repo := newGuideServiceForTest(t, ai, &fakeExtractor{text: "x"})

	seeded := testutil.SeedGuide(uuid.New())
	if err := repo.Create(dbctxForTest(t), seeded); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.SetSessionCompleted(context.Background(), seeded.ID, 7, true)
	if !apierr.IsCode(err, apierr.CodeIndexOutOfRange) {
		t.Fatalf("want index_out_of_range, got %v", err)
	}

	stored, err := svc.Get(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for i, s := range stored.StudySchedule {
		if s.Completed {
			t.Fatalf("session %d flipped despite invalid index", i)
		}
	}
}

func TestDeleteGuide(t *testing.T) {
	ai := &fakeGenAI{jsonResp: validGuidePayload()}
	svc, repo := newGuideServiceForTest(t, ai, &fakeExtractor{text: "x"})

	seeded := testutil.SeedGuide(uuid.New())
	if err := repo.Create(dbctxForTest(t), seeded); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Delete(context.Background(), seeded.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), seeded.ID); !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("want not_found after delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), seeded.ID); !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("second delete: want not_found, got %v", err)
	}
}
