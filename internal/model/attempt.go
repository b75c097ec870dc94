package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	RevalPending  = "pending"
	RevalApproved = "approved"
	RevalRejected = "rejected"
)

type SubmittedAnswer struct {
	QuestionID       uint `json:"question_id"`
	SelectedIndex    int  `json:"selected_index"`
	TimeTakenSeconds int  `json:"time_taken_seconds"`
}

type AnswerResult struct {
	QuestionID uint `json:"question_id"`
	IsCorrect  bool `json:"is_correct"`
}

type WeakTopic struct {
	Topic  string `json:"topic"`
	Advice string `json:"advice"`
}

type FeedbackPayload struct {
	Summary            string      `json:"summary"`
	WeakTopics         []WeakTopic `json:"weak_topics"`
	ImprovementTips    string      `json:"improvement_tips"`
	RecommendedActions string      `json:"recommended_actions"`
}

type RevaluationRequest struct {
	TeacherID   uint      `json:"teacher_id"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	Response    string    `json:"response,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// Attempt is one student's run at one quiz. The answer, result, feedback and
// revaluation lists live on the attempt row as JSON columns so submission is
// a single-row update: every field of the grading outcome commits together.
//
// At most one unsubmitted attempt exists per (quiz, student); start reuses it.
// Once IsSubmitted is set, answers/score/max score/submitted-at are frozen and
// only AIFeedback and RevaluationRequests may still change.
type Attempt struct {
	ID                  uint                 `gorm:"primarykey" json:"id"`
	QuizID              uint                 `json:"quiz_id" gorm:"not null;index:idx_attempts_quiz_student"`
	Quiz                Quiz                 `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	StudentID           uint                 `json:"student_id" gorm:"not null;index:idx_attempts_quiz_student"`
	Student             User                 `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Answers             []SubmittedAnswer    `json:"answers" gorm:"serializer:json"`
	AnswerResults       []AnswerResult       `json:"answer_results" gorm:"serializer:json"`
	Score               float64              `json:"score" gorm:"default:0"`
	MaxScore            float64              `json:"max_score" gorm:"default:0"`
	AIFeedback          *FeedbackPayload     `json:"ai_feedback,omitempty" gorm:"serializer:json"`
	IsSubmitted         bool                 `json:"is_submitted" gorm:"default:false;index"`
	SubmittedAt         *time.Time           `json:"submitted_at,omitempty"`
	RevaluationRequests []RevaluationRequest `json:"revaluation_requests" gorm:"serializer:json"`
	StartToken          *string              `json:"start_token,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	DeletedAt           gorm.DeletedAt       `gorm:"index" json:"-"`
}
