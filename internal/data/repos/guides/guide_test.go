package guides

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scholarai/scholar-backend/internal/data/repos/testutil"
	"github.com/scholarai/scholar-backend/internal/domain"
	"github.com/scholarai/scholar-backend/internal/platform/apierr"
	"github.com/scholarai/scholar-backend/internal/platform/dbctx"
)

func newRepoForTest(t *testing.T) (GuideRepo, dbctx.Context) {
	t.Helper()
	repo := NewGuideRepo(testutil.Tx(t), testutil.Logger(t))
	return repo, dbctx.New(context.Background())
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	repo, c := newRepoForTest(t)
	seeded := testutil.SeedGuide(uuid.New())

	if err := repo.Create(c, seeded); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(c, seeded.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != seeded.Title {
		t.Fatalf("title: want=%q got=%q", seeded.Title, got.Title)
	}
	if len(got.Topics) != 2 || got.Topics[1].Name != "Calvin cycle" {
		t.Fatalf("topics did not round-trip: %+v", got.Topics)
	}
	if len(got.Quiz) != 1 || got.Quiz[0].CorrectIndex != 0 {
		t.Fatalf("quiz did not round-trip: %+v", got.Quiz)
	}
	if len(got.StudySchedule) != 3 {
		t.Fatalf("schedule did not round-trip: %+v", got.StudySchedule)
	}
}

func TestGetMissingGuide(t *testing.T) {
	repo, c := newRepoForTest(t)

	if _, err := repo.GetByID(c, uuid.New()); !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("want not_found, got %v", err)
	}
}

func TestListByUserFiltersAndOrders(t *testing.T) {
	repo, c := newRepoForTest(t)
	owner := uuid.New()
	stranger := uuid.New()

	older := testutil.SeedGuide(owner)
	older.Title = "Older"
	older.CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	newer := testutil.SeedGuide(owner)
	newer.Title = "Newer"
	foreign := testutil.SeedGuide(stranger)

	for _, g := range []*domain.Guide{older, newer, foreign} {
		if err := repo.Create(c, g); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := repo.ListByUser(c, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("want 2 rows, got %d", len(list))
	}
	if list[0].Title != "Newer" || list[1].Title != "Older" {
		t.Fatalf("wrong order: %q then %q", list[0].Title, list[1].Title)
	}
}

func TestUpdateScheduleReplacesWhole(t *testing.T) {
	repo, c := newRepoForTest(t)
	seeded := testutil.SeedGuide(uuid.New())
	if err := repo.Create(c, seeded); err != nil {
		t.Fatalf("create: %v", err)
	}

	replacement := []domain.StudySession{
		{DayOffset: 0, Title: "Fresh start", Details: "d", DurationMinutes: 20, Type: domain.SessionTypeRevision, Difficulty: domain.DifficultyEasy},
	}
	if err := repo.UpdateSchedule(c, seeded.ID, replacement, "lighter plan"); err != nil {
		t.Fatalf("update schedule: %v", err)
	}

	got, err := repo.GetByID(c, seeded.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.StudySchedule) != 1 || got.StudySchedule[0].Title != "Fresh start" {
		t.Fatalf("schedule not replaced: %+v", got.StudySchedule)
	}
	if got.PlanExplanation != "lighter plan" {
		t.Fatalf("explanation: want=%q got=%q", "lighter plan", got.PlanExplanation)
	}
	if got.Title != seeded.Title {
		t.Fatal("unrelated fields must survive a schedule update")
	}
}

func TestSetSessionCompletedBounds(t *testing.T) {
	repo, c := newRepoForTest(t)
	seeded := testutil.SeedGuide(uuid.New())
	if err := repo.Create(c, seeded); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, idx := range []int{-1, 3, 42} {
		if _, err := repo.SetSessionCompleted(c, seeded.ID, idx, true); !apierr.IsCode(err, apierr.CodeIndexOutOfRange) {
			t.Fatalf("index %d: want index_out_of_range, got %v", idx, err)
		}
	}

	got, err := repo.SetSessionCompleted(c, seeded.ID, 2, true)
	if err != nil {
		t.Fatalf("set completed: %v", err)
	}
	if !got.StudySchedule[2].Completed {
		t.Fatal("session 2 must be completed")
	}
}

func TestDeleteByID(t *testing.T) {
	repo, c := newRepoForTest(t)
	seeded := testutil.SeedGuide(uuid.New())
	if err := repo.Create(c, seeded); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.DeleteByID(c, seeded.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteByID(c, seeded.ID); !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("want not_found on second delete, got %v", err)
	}
}
