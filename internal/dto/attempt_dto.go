package dto

import (
	"time"

	"github.com/quizforge/quizforge/internal/model"
)

type StartAttemptRequest struct {
	QuizID uint `json:"quizId" binding:"required"`
}

type AnswerSubmission struct {
	QuestionID       uint `json:"questionId" binding:"required"`
	SelectedIndex    *int `json:"selectedIndex" binding:"required,min=0"`
	TimeTakenSeconds int  `json:"timeTakenSeconds" binding:"omitempty,min=0"`
}

type SubmitAttemptRequest struct {
	Answers    []AnswerSubmission `json:"answers" binding:"required,dive"`
	StartToken string             `json:"startToken"`
}

type RevaluationCreateRequest struct {
	Reason string `json:"reason"`
}

type QuizSummary struct {
	ID       uint                 `json:"id"`
	Title    string               `json:"title"`
	Settings QuizSettingsResponse `json:"settings"`
}

type AttemptResponse struct {
	ID                  uint                       `json:"id"`
	QuizID              uint                       `json:"quiz_id"`
	Quiz                *QuizSummary               `json:"quiz,omitempty"`
	StudentID           uint                       `json:"student_id"`
	Answers             []model.SubmittedAnswer    `json:"answers"`
	AnswerResults       []model.AnswerResult       `json:"answer_results,omitempty"`
	Score               float64                    `json:"score"`
	MaxScore            float64                    `json:"max_score"`
	AIFeedback          *model.FeedbackPayload     `json:"ai_feedback,omitempty"`
	IsSubmitted         bool                       `json:"is_submitted"`
	SubmittedAt         *time.Time                 `json:"submitted_at,omitempty"`
	RevaluationRequests []model.RevaluationRequest `json:"revaluation_requests,omitempty"`
	StartToken          *string                    `json:"start_token,omitempty"`
	CreatedAt           time.Time                  `json:"created_at"`
}

type StartAttemptResponse struct {
	Attempt  AttemptResponse `json:"attempt"`
	Quiz     QuizTakeView    `json:"quiz"`
	Duration int             `json:"duration"`
}

type SubmitAttemptResponse struct {
	Attempt  AttemptResponse `json:"attempt"`
	Score    float64         `json:"score"`
	MaxScore float64         `json:"maxScore"`
}
