package repository

import (
	"github.com/quizforge/quizforge/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(question *model.Question) error
	CreateBatch(questions []*model.Question) error
	FindByID(id uint) (*model.Question, error)
	FindByIDs(ids []uint) ([]model.Question, error)
	FindByQuizID(quizID uint) ([]model.Question, error)
	FindBank(creatorID uint, limit int) ([]model.Question, error)
	Update(question *model.Question) error
	AssignQuiz(ids []uint, quizID uint) error
	ReleaseFromQuiz(quizID uint, keepIDs []uint) error
	Delete(id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *questionRepository) CreateBatch(questions []*model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Create(questions).Error
}

func (r *questionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	var questions []model.Question
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindByQuizID(quizID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Where("quiz_id = ?", quizID).Order("id ASC").Find(&questions).Error
	return questions, err
}

// FindBank returns reusable bank questions: unassigned ones plus those the
// caller created.
func (r *questionRepository) FindBank(creatorID uint, limit int) ([]model.Question, error) {
	var questions []model.Question
	if limit <= 0 {
		limit = 100
	}
	err := r.db.
		Where("created_by = ? OR quiz_id IS NULL", creatorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) Update(question *model.Question) error {
	return r.db.Save(question).Error
}

func (r *questionRepository) AssignQuiz(ids []uint, quizID uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&model.Question{}).Where("id IN ?", ids).
		UpdateColumn("quiz_id", quizID).Error
}

// ReleaseFromQuiz returns questions dropped from a quiz's set back to the
// bank (quiz_id NULL). keepIDs are the ids that remain assigned.
func (r *questionRepository) ReleaseFromQuiz(quizID uint, keepIDs []uint) error {
	query := r.db.Model(&model.Question{}).Where("quiz_id = ?", quizID)
	if len(keepIDs) > 0 {
		query = query.Where("id NOT IN ?", keepIDs)
	}
	return query.UpdateColumn("quiz_id", nil).Error
}

func (r *questionRepository) Delete(id uint) error {
	return r.db.Delete(&model.Question{}, id).Error
}
