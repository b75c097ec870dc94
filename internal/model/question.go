package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	SourceManual = "manual"
	SourceAI     = "ai"
	SourceImport = "import"
)

const (
	MinChoices = 2
	MaxChoices = 6
)

type Choice struct {
	Text string `json:"text"`
	Meta string `json:"meta,omitempty"`
}

// Question is a multiple-choice question. A nil QuizID marks a reusable bank
// entry not bound to any quiz.
type Question struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	QuizID       *uint          `json:"quiz_id" gorm:"index"`
	Source       string         `json:"source" gorm:"default:'manual'"`
	Stem         string         `json:"stem" gorm:"type:text;not null"`
	Choices      []Choice       `json:"choices" gorm:"serializer:json"`
	CorrectIndex int            `json:"correct_index"`
	Marks        float64        `json:"marks" gorm:"default:1"`
	Difficulty   string         `json:"difficulty" gorm:"default:'medium'"`
	TopicTags    []string       `json:"topic_tags" gorm:"serializer:json"`
	Explanation  string         `json:"explanation" gorm:"type:text"`
	CreatedBy    uint           `json:"created_by" gorm:"index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// PrimaryTopic is the topic used when summarizing an answer for feedback.
func (q *Question) PrimaryTopic() string {
	if len(q.TopicTags) > 0 {
		return q.TopicTags[0]
	}
	return "General"
}
