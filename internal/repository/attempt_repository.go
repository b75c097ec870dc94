package repository

import (
	"time"

	"github.com/quizforge/quizforge/internal/model"
	"gorm.io/gorm"
)

// AttemptFilter narrows List results. Nil and empty fields are ignored.
type AttemptFilter struct {
	QuizID    *uint
	QuizIDs   []uint
	StudentID *uint
	Submitted *bool
	Limit     int
}

// SubmissionUpdate carries every field of the grading outcome; they are
// persisted in one guarded UPDATE so a partial write is never observable.
type SubmissionUpdate struct {
	Answers       []model.SubmittedAnswer
	AnswerResults []model.AnswerResult
	Score         float64
	MaxScore      float64
	SubmittedAt   time.Time
}

type AttemptRepository interface {
	FindByID(id uint) (*model.Attempt, error)
	FindByIDWithQuiz(id uint) (*model.Attempt, error)
	FindAll(filter AttemptFilter) ([]model.Attempt, error)
	Count(filter AttemptFilter) (int64, error)
	FindOrCreateUnsubmitted(quizID, studentID uint, maxScore float64) (*model.Attempt, error)
	HasSubmitted(quizID, studentID uint) (bool, error)
	SetStartToken(id uint, token string) error
	MarkSubmitted(id uint, update SubmissionUpdate) (int64, error)
	SetFeedback(id uint, payload model.FeedbackPayload) error
	SetRevaluationRequests(id uint, requests []model.RevaluationRequest) error
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithQuiz(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Preload("Quiz").
		Preload("Quiz.Questions").
		Preload("Student").
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindAll(filter AttemptFilter) ([]model.Attempt, error) {
	var attempts []model.Attempt
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	err := applyAttemptFilter(r.db.Preload("Quiz").Preload("Student"), filter).
		Order("submitted_at DESC").Limit(limit).Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) Count(filter AttemptFilter) (int64, error) {
	var count int64
	err := applyAttemptFilter(r.db.Model(&model.Attempt{}), filter).Count(&count).Error
	return count, err
}

func applyAttemptFilter(query *gorm.DB, filter AttemptFilter) *gorm.DB {
	if filter.QuizID != nil {
		query = query.Where("quiz_id = ?", *filter.QuizID)
	}
	if len(filter.QuizIDs) > 0 {
		query = query.Where("quiz_id IN ?", filter.QuizIDs)
	}
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Submitted != nil {
		query = query.Where("is_submitted = ?", *filter.Submitted)
	}
	return query
}

// FindOrCreateUnsubmitted is the atomic find-or-create keyed on
// (quiz, student, unsubmitted): it reuses the open attempt when one exists
// and creates a fresh zero-score one otherwise, inside a single transaction
// so two racing starts cannot both insert.
func (r *attemptRepository) FindOrCreateUnsubmitted(quizID, studentID uint, maxScore float64) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.
			Where(&model.Attempt{QuizID: quizID, StudentID: studentID}).
			Where("is_submitted = ?", false).
			Attrs(model.Attempt{
				Score:    0,
				MaxScore: maxScore,
				Answers:  []model.SubmittedAnswer{},
			}).
			FirstOrCreate(&attempt).Error
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) HasSubmitted(quizID, studentID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Attempt{}).
		Where("quiz_id = ? AND student_id = ? AND is_submitted = ?", quizID, studentID, true).
		Count(&count).Error
	return count > 0, err
}

func (r *attemptRepository) SetStartToken(id uint, token string) error {
	return r.db.Model(&model.Attempt{}).Where("id = ?", id).
		UpdateColumn("start_token", token).Error
}

// MarkSubmitted performs the compare-and-swap state transition: the UPDATE is
// conditional on is_submitted still being false, so of two racing submits at
// most one grading outcome is retained. Returns the number of rows updated;
// zero means the attempt was already submitted.
func (r *attemptRepository) MarkSubmitted(id uint, update SubmissionUpdate) (int64, error) {
	submittedAt := update.SubmittedAt
	res := r.db.Model(&model.Attempt{}).
		Where("id = ? AND is_submitted = ?", id, false).
		Select("Answers", "AnswerResults", "Score", "MaxScore", "IsSubmitted", "SubmittedAt", "StartToken").
		Updates(&model.Attempt{
			Answers:       update.Answers,
			AnswerResults: update.AnswerResults,
			Score:         update.Score,
			MaxScore:      update.MaxScore,
			IsSubmitted:   true,
			SubmittedAt:   &submittedAt,
			StartToken:    nil,
		})
	return res.RowsAffected, res.Error
}

func (r *attemptRepository) SetFeedback(id uint, payload model.FeedbackPayload) error {
	return r.db.Model(&model.Attempt{}).Where("id = ?", id).
		Select("AIFeedback").
		Updates(&model.Attempt{AIFeedback: &payload}).Error
}

func (r *attemptRepository) SetRevaluationRequests(id uint, requests []model.RevaluationRequest) error {
	return r.db.Model(&model.Attempt{}).Where("id = ?", id).
		Select("RevaluationRequests").
		Updates(&model.Attempt{RevaluationRequests: requests}).Error
}
