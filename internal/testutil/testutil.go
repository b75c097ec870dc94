package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/quizforge/quizforge/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a fresh in-memory database for one test and migrates the full
// schema. Each call gets its own database, so tests never share state.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Quiz{},
		&model.Question{},
		&model.Attempt{},
		&model.AIFeedback{},
		&model.Notification{},
	)
	if err != nil {
		tb.Fatalf("failed to migrate test database: %v", err)
	}

	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func SeedUser(tb testing.TB, db *gorm.DB, role string) *model.User {
	tb.Helper()
	user := &model.User{
		Email: uuid.NewString() + "@example.com",
		Name:  "Test " + role,
		Role:  role,
	}
	if err := db.Create(user).Error; err != nil {
		tb.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// QuestionSpec describes one seeded question: marks plus the index of the
// correct choice among four.
type QuestionSpec struct {
	Marks        float64
	CorrectIndex int
	Topic        string
}

func SeedQuiz(tb testing.TB, db *gorm.DB, creatorID uint, published bool, specs ...QuestionSpec) *model.Quiz {
	tb.Helper()
	quiz := &model.Quiz{
		Title:     "Quiz " + uuid.NewString()[:8],
		CreatorID: creatorID,
		Settings: model.QuizSettings{
			DurationMinutes: 30,
			IsPublished:     published,
		},
	}
	var total float64
	for i, spec := range specs {
		choices := []model.Choice{
			{Text: "choice a"}, {Text: "choice b"}, {Text: "choice c"}, {Text: "choice d"},
		}
		topics := []string{}
		if spec.Topic != "" {
			topics = append(topics, spec.Topic)
		}
		quiz.Questions = append(quiz.Questions, model.Question{
			Source:       model.SourceManual,
			Stem:         fmt.Sprintf("Question %d", i+1),
			Choices:      choices,
			CorrectIndex: spec.CorrectIndex,
			Marks:        spec.Marks,
			Difficulty:   "medium",
			TopicTags:    topics,
			CreatedBy:    creatorID,
		})
		total += spec.Marks
	}
	quiz.Settings.TotalMarks = total
	if err := db.Create(quiz).Error; err != nil {
		tb.Fatalf("failed to seed quiz: %v", err)
	}
	return quiz
}
