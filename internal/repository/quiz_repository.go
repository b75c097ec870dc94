package repository

import (
	"github.com/quizforge/quizforge/internal/model"
	"gorm.io/gorm"
)

// QuizFilter narrows List results. Nil fields are ignored.
type QuizFilter struct {
	Published *bool
	CreatorID *uint
	Limit     int
}

type QuizRepository interface {
	Create(quiz *model.Quiz) error
	FindByID(id uint) (*model.Quiz, error)
	FindByIDWithQuestions(id uint) (*model.Quiz, error)
	FindAll(filter QuizFilter) ([]model.Quiz, error)
	Update(quiz *model.Quiz) error
	SetTotalMarks(id uint, total float64) error
	IncrementAttemptsCount(id uint) error
	Count() (int64, error)
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) Create(quiz *model.Quiz) error {
	return r.db.Create(quiz).Error
}

func (r *quizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.db.Preload("Creator").First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepository) FindByIDWithQuestions(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.
		Preload("Creator").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id ASC")
		}).
		First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepository) FindAll(filter QuizFilter) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	query := r.db.Preload("Creator").Preload("Questions")
	if filter.Published != nil {
		query = query.Where("setting_is_published = ?", *filter.Published)
	}
	if filter.CreatorID != nil {
		query = query.Where("creator_id = ?", *filter.CreatorID)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	err := query.Order("created_at DESC").Limit(limit).Find(&quizzes).Error
	return quizzes, err
}

func (r *quizRepository) Update(quiz *model.Quiz) error {
	return r.db.Save(quiz).Error
}

func (r *quizRepository) SetTotalMarks(id uint, total float64) error {
	return r.db.Model(&model.Quiz{}).Where("id = ?", id).
		UpdateColumn("setting_total_marks", total).Error
}

func (r *quizRepository) IncrementAttemptsCount(id uint) error {
	return r.db.Model(&model.Quiz{}).Where("id = ?", id).
		UpdateColumn("setting_attempts_count", gorm.Expr("setting_attempts_count + ?", 1)).Error
}

func (r *quizRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Quiz{}).Count(&count).Error
	return count, err
}
