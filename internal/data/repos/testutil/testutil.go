package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/scholarai/scholar-backend/internal/domain"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

var (
	dbOnce sync.Once
	dbConn *gorm.DB
	dbErr  error
)

// DB returns a process-wide in-memory sqlite database with the schema
// migrated. Tests isolate themselves with Tx.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	dbOnce.Do(func() {
		dbConn, dbErr = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
		if dbErr != nil {
			return
		}
		sqlDB, err := dbConn.DB()
		if err != nil {
			dbErr = err
			return
		}
		// A single connection keeps the shared in-memory db alive.
		sqlDB.SetMaxOpenConns(1)
		dbErr = dbConn.AutoMigrate(&domain.Guide{})
	})
	if dbErr != nil {
		t.Fatalf("open test db: %v", dbErr)
	}
	return dbConn
}

// Tx begins a transaction rolled back when the test finishes.
func Tx(t *testing.T) *gorm.DB {
	t.Helper()
	tx := DB(t).Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})
	return tx
}

func Logger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return log
}

// SeedGuide builds a persistable guide with a three-session schedule.
func SeedGuide(userID uuid.UUID) *domain.Guide {
	now := time.Now().UTC()
	return &domain.Guide{
		ID:             uuid.New(),
		UserID:         userID,
		Title:          "Photosynthesis Basics",
		Summary:        "Light-dependent and light-independent reactions.",
		SourceFilename: "photosynthesis.pdf",
		Topics: []domain.Topic{
			{Name: "Light reactions", Difficulty: domain.DifficultyMedium},
			{Name: "Calvin cycle", Difficulty: domain.DifficultyHard},
		},
		StudyTips: []string{"Review diagrams before reading."},
		FlashCards: []domain.FlashCard{
			{Question: "Where do light reactions occur?", Answer: "Thylakoid membranes."},
		},
		Quiz: []domain.QuizItem{
			{
				Question:        "What does the Calvin cycle produce?",
				PossibleAnswers: []string{"Glucose precursors", "Oxygen", "ATP only", "Chlorophyll"},
				CorrectIndex:    0,
				RelatedTopic:    "Calvin cycle",
			},
		},
		StudySchedule: []domain.StudySession{
			{DayOffset: 0, Title: "Overview", Details: "Skim the summary.", DurationMinutes: 30, Type: domain.SessionTypeLearning, Difficulty: domain.DifficultyEasy},
			{DayOffset: 1, Title: "Light reactions", Details: "Work through flash cards.", DurationMinutes: 45, Type: domain.SessionTypeLearning, Difficulty: domain.DifficultyMedium},
			{DayOffset: 2, Title: "Quiz yourself", Details: "Take the quiz.", DurationMinutes: 30, Type: domain.SessionTypeQuiz, Difficulty: domain.DifficultyMedium},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
