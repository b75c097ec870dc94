package dto

import "time"

type QuizSettingsInput struct {
	DurationMinutes   *int     `json:"duration_minutes" binding:"omitempty,min=1"`
	PassMarks         *float64 `json:"pass_marks" binding:"omitempty,min=0"`
	DifficultyOverall *string  `json:"difficulty_overall" binding:"omitempty,oneof=easy medium hard"`
	ShuffleQuestions  *bool    `json:"shuffle_questions"`
	IsPublished       *bool    `json:"is_published"`
	AllowedClassIDs   []uint   `json:"allowed_classes"`
	AllowRetake       *bool    `json:"allow_retake"`
}

type QuizCreateRequest struct {
	Title       string                  `json:"title" binding:"required"`
	Description string                  `json:"description"`
	QuestionIDs []uint                  `json:"question_ids"`
	Questions   []QuestionCreateRequest `json:"questions" binding:"omitempty,dive"`
	Settings    *QuizSettingsInput      `json:"settings"`
}

type QuizUpdateRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	QuestionIDs []uint             `json:"question_ids"`
	Settings    *QuizSettingsInput `json:"settings"`
}

type QuizSettingsResponse struct {
	DurationMinutes   int        `json:"duration_minutes"`
	TotalMarks        float64    `json:"total_marks"`
	PassMarks         float64    `json:"pass_marks"`
	DifficultyOverall string     `json:"difficulty_overall"`
	ShuffleQuestions  bool       `json:"shuffle_questions"`
	IsPublished       bool       `json:"is_published"`
	ScheduledAt       *time.Time `json:"scheduled_at,omitempty"`
	AllowedClassIDs   []uint     `json:"allowed_classes,omitempty"`
	AllowRetake       bool       `json:"allow_retake"`
	AttemptsCount     int        `json:"attempts_count"`
}

type QuizResponse struct {
	ID          uint                 `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Creator     *UserResponse        `json:"creator,omitempty"`
	Questions   []QuestionResponse   `json:"questions,omitempty"`
	Settings    QuizSettingsResponse `json:"settings"`
	CreatedAt   time.Time            `json:"created_at"`
}

// QuizTakeView is the quiz as handed to a student starting an attempt:
// questions in presentation order with answer fields withheld.
type QuizTakeView struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Questions   []QuestionView `json:"questions"`
}

// QuizGenerateRequest carries extracted document text for AI question
// generation. Upload handling and text extraction happen upstream.
type QuizGenerateRequest struct {
	Title        string `json:"title"`
	Text         string `json:"text" binding:"required,min=100"`
	MaxQuestions int    `json:"max_questions" binding:"omitempty,min=1,max=25"`
}

type QuizGenerateResponse struct {
	Quiz     QuizResponse `json:"quiz"`
	Accepted int          `json:"accepted"`
	Dropped  int          `json:"dropped"`
	Message  string       `json:"message"`
}
