package repository

import (
	"github.com/quizforge/quizforge/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeedbackRepository interface {
	Upsert(feedback *model.AIFeedback) error
	FindByAttemptID(attemptID uint) (*model.AIFeedback, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Upsert inserts the per-attempt feedback row or replaces its payload when
// one already exists (one row per attempt).
func (r *feedbackRepository) Upsert(feedback *model.AIFeedback) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"student_id", "payload", "updated_at"}),
	}).Create(feedback).Error
}

func (r *feedbackRepository) FindByAttemptID(attemptID uint) (*model.AIFeedback, error) {
	var feedback model.AIFeedback
	if err := r.db.Where("attempt_id = ?", attemptID).First(&feedback).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}
