package dto

import "time"

type ChoiceDTO struct {
	Text string `json:"text" binding:"required"`
	Meta string `json:"meta,omitempty"`
}

type QuestionCreateRequest struct {
	QuizID       *uint       `json:"quiz_id"`
	Stem         string      `json:"stem" binding:"required"`
	Choices      []ChoiceDTO `json:"choices" binding:"required,min=2,max=6,dive"`
	CorrectIndex *int        `json:"correct_index" binding:"required,min=0"`
	Marks        float64     `json:"marks" binding:"omitempty,gt=0"`
	Difficulty   string      `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	TopicTags    []string    `json:"topic_tags"`
	Explanation  string      `json:"explanation"`
}

type QuestionUpdateRequest struct {
	Stem         *string     `json:"stem"`
	Choices      []ChoiceDTO `json:"choices" binding:"omitempty,dive"`
	CorrectIndex *int        `json:"correct_index"`
	Marks        *float64    `json:"marks" binding:"omitempty,gt=0"`
	Difficulty   *string     `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	TopicTags    []string    `json:"topic_tags"`
	Explanation  *string     `json:"explanation"`
}

// QuestionResponse is the staff-facing view, correct answer included.
type QuestionResponse struct {
	ID           uint        `json:"id"`
	QuizID       *uint       `json:"quiz_id"`
	Source       string      `json:"source"`
	Stem         string      `json:"stem"`
	Choices      []ChoiceDTO `json:"choices"`
	CorrectIndex int         `json:"correct_index"`
	Marks        float64     `json:"marks"`
	Difficulty   string      `json:"difficulty"`
	TopicTags    []string    `json:"topic_tags,omitempty"`
	Explanation  string      `json:"explanation,omitempty"`
	CreatedBy    uint        `json:"created_by"`
	CreatedAt    time.Time   `json:"created_at"`
}

// QuestionView is what a student sees while taking a quiz: the correct index
// and explanation are withheld.
type QuestionView struct {
	ID         uint        `json:"id"`
	Stem       string      `json:"stem"`
	Choices    []ChoiceDTO `json:"choices"`
	Marks      float64     `json:"marks"`
	Difficulty string      `json:"difficulty"`
	TopicTags  []string    `json:"topic_tags,omitempty"`
}
