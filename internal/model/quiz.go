package model

import (
	"time"

	"gorm.io/gorm"
)

// QuizSettings is stored embedded on the quiz row.
type QuizSettings struct {
	DurationMinutes   int        `json:"duration_minutes" gorm:"default:60"`
	TotalMarks        float64    `json:"total_marks" gorm:"default:0"`
	PassMarks         float64    `json:"pass_marks" gorm:"default:0"`
	DifficultyOverall string     `json:"difficulty_overall" gorm:"default:'medium'"`
	ShuffleQuestions  bool       `json:"shuffle_questions" gorm:"default:false"`
	IsPublished       bool       `json:"is_published" gorm:"default:false"`
	ScheduledAt       *time.Time `json:"scheduled_at,omitempty"`
	AllowedClassIDs   []uint     `json:"allowed_classes" gorm:"serializer:json"`
	AllowRetake       bool       `json:"allow_retake" gorm:"default:false"`
	AttemptsCount     int        `json:"attempts_count" gorm:"default:0"`
}

// Quiz is a draft until Settings.IsPublished is set; only published quizzes
// are attemptable. Settings.TotalMarks is recomputed explicitly whenever the
// question set changes (see service.QuizService).
type Quiz struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description,omitempty"`
	CreatorID   uint           `json:"creator_id" gorm:"not null;index"`
	Creator     User           `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Questions   []Question     `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	Settings    QuizSettings   `json:"settings" gorm:"embedded;embeddedPrefix:setting_"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
