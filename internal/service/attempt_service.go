package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	mathrand "math/rand"
	"time"

	"github.com/jinzhu/copier"
	"github.com/quizforge/quizforge/config"
	"github.com/quizforge/quizforge/internal/apperr"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptService interface {
	Start(ident model.Identity, req dto.StartAttemptRequest) (*dto.StartAttemptResponse, error)
	Submit(ctx context.Context, ident model.Identity, attemptID uint, req dto.SubmitAttemptRequest) (*dto.SubmitAttemptResponse, error)
	Get(ident model.Identity, attemptID uint) (*dto.AttemptResponse, error)
	List(ident model.Identity, filter repository.AttemptFilter) ([]dto.AttemptResponse, error)
	RequestRevaluation(ident model.Identity, attemptID uint, req dto.RevaluationCreateRequest) (*dto.AttemptResponse, error)
}

type attemptService struct {
	attemptRepo      repository.AttemptRepository
	quizRepo         repository.QuizRepository
	feedbackRepo     repository.FeedbackRepository
	notificationRepo repository.NotificationRepository
	llm              LLMService
	cfg              *config.Config
}

func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	quizRepo repository.QuizRepository,
	feedbackRepo repository.FeedbackRepository,
	notificationRepo repository.NotificationRepository,
	llm LLMService,
	cfg *config.Config,
) AttemptService {
	return &attemptService{
		attemptRepo:      attemptRepo,
		quizRepo:         quizRepo,
		feedbackRepo:     feedbackRepo,
		notificationRepo: notificationRepo,
		llm:              llm,
		cfg:              cfg,
	}
}

// Start opens or resumes the student's attempt on a quiz. Repeated calls
// before submission return the same attempt, each time with a fresh start
// token; the previous token stops working.
func (s *attemptService) Start(ident model.Identity, req dto.StartAttemptRequest) (*dto.StartAttemptResponse, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(req.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("quiz not found")
		}
		return nil, err
	}
	if !quiz.Settings.IsPublished {
		return nil, apperr.Forbidden("quiz is not available")
	}

	if !quiz.Settings.AllowRetake {
		submitted, err := s.attemptRepo.HasSubmitted(quiz.ID, ident.UserID)
		if err != nil {
			return nil, err
		}
		if submitted {
			return nil, apperr.Forbidden("you have already attempted this quiz")
		}
	}

	attempt, err := s.attemptRepo.FindOrCreateUnsubmitted(quiz.ID, ident.UserID, quiz.Settings.TotalMarks)
	if err != nil {
		return nil, err
	}

	token, err := newStartToken()
	if err != nil {
		return nil, err
	}
	if err := s.attemptRepo.SetStartToken(attempt.ID, token); err != nil {
		return nil, err
	}
	attempt.StartToken = &token

	questions := make([]dto.QuestionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		choices := make([]dto.ChoiceDTO, len(q.Choices))
		for i, c := range q.Choices {
			choices[i] = dto.ChoiceDTO{Text: c.Text, Meta: c.Meta}
		}
		questions = append(questions, dto.QuestionView{
			ID:         q.ID,
			Stem:       q.Stem,
			Choices:    choices,
			Marks:      q.Marks,
			Difficulty: q.Difficulty,
			TopicTags:  q.TopicTags,
		})
	}
	if quiz.Settings.ShuffleQuestions {
		mathrand.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	attemptResp, err := toAttemptResponse(attempt, nil)
	if err != nil {
		return nil, err
	}
	attemptResp.AnswerResults = nil

	return &dto.StartAttemptResponse{
		Attempt: *attemptResp,
		Quiz: dto.QuizTakeView{
			ID:          quiz.ID,
			Title:       quiz.Title,
			Description: quiz.Description,
			Questions:   questions,
		},
		Duration: quiz.Settings.DurationMinutes,
	}, nil
}

// Submit grades the attempt and freezes it. Grading, score and submitted-at
// land in one guarded update; a concurrent or repeated submit loses the race
// and gets a conflict with the stored result untouched. Everything after the
// flip (attempt counter, AI feedback, notification) is best effort.
func (s *attemptService) Submit(ctx context.Context, ident model.Identity, attemptID uint, req dto.SubmitAttemptRequest) (*dto.SubmitAttemptResponse, error) {
	attempt, err := s.attemptRepo.FindByIDWithQuiz(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("attempt not found")
		}
		return nil, err
	}
	if attempt.StudentID != ident.UserID {
		return nil, apperr.Forbidden("this attempt belongs to another student")
	}
	if attempt.IsSubmitted {
		return nil, apperr.Conflict("attempt has already been submitted")
	}
	if attempt.StartToken == nil || req.StartToken == "" || *attempt.StartToken != req.StartToken {
		return nil, apperr.Forbidden("invalid or expired start token")
	}

	questionsByID := make(map[uint]*model.Question, len(attempt.Quiz.Questions))
	for i := range attempt.Quiz.Questions {
		questionsByID[attempt.Quiz.Questions[i].ID] = &attempt.Quiz.Questions[i]
	}

	answers := make([]model.SubmittedAnswer, 0, len(req.Answers))
	results := make([]model.AnswerResult, 0, len(req.Answers))
	var score float64
	for _, a := range req.Answers {
		selected := -1
		if a.SelectedIndex != nil {
			selected = *a.SelectedIndex
		}
		answers = append(answers, model.SubmittedAnswer{
			QuestionID:       a.QuestionID,
			SelectedIndex:    selected,
			TimeTakenSeconds: a.TimeTakenSeconds,
		})
		question, ok := questionsByID[a.QuestionID]
		correct := ok && selected == question.CorrectIndex
		if correct {
			score += question.Marks
		}
		results = append(results, model.AnswerResult{QuestionID: a.QuestionID, IsCorrect: correct})
	}
	maxScore := attempt.Quiz.Settings.TotalMarks

	submittedAt := time.Now()
	rows, err := s.attemptRepo.MarkSubmitted(attempt.ID, repository.SubmissionUpdate{
		Answers:       answers,
		AnswerResults: results,
		Score:         score,
		MaxScore:      maxScore,
		SubmittedAt:   submittedAt,
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, apperr.Conflict("attempt has already been submitted")
	}

	if err := s.quizRepo.IncrementAttemptsCount(attempt.QuizID); err != nil {
		log.Error().Err(err).Uint("quizID", attempt.QuizID).Msg("Failed to increment quiz attempts count")
	}

	feedback := s.generateFeedback(ctx, attempt, answers, results, score, maxScore, questionsByID)
	s.notifyResult(attempt, score, maxScore)

	attempt.Answers = answers
	attempt.AnswerResults = results
	attempt.Score = score
	attempt.MaxScore = maxScore
	attempt.IsSubmitted = true
	attempt.SubmittedAt = &submittedAt
	attempt.StartToken = nil
	attempt.AIFeedback = &feedback

	resp, err := toAttemptResponse(attempt, &attempt.Quiz)
	if err != nil {
		return nil, err
	}
	return &dto.SubmitAttemptResponse{Attempt: *resp, Score: score, MaxScore: maxScore}, nil
}

// generateFeedback runs the AI tutor with a deadline and stores whatever
// comes back, falling back to canned feedback on any failure. Submission is
// already committed at this point, so errors are logged and swallowed.
func (s *attemptService) generateFeedback(
	ctx context.Context,
	attempt *model.Attempt,
	answers []model.SubmittedAnswer,
	results []model.AnswerResult,
	score, maxScore float64,
	questionsByID map[uint]*model.Question,
) model.FeedbackPayload {
	items := make([]FeedbackItem, 0, len(results))
	selectedByQuestion := make(map[uint]int, len(answers))
	for _, a := range answers {
		selectedByQuestion[a.QuestionID] = a.SelectedIndex
	}
	for _, r := range results {
		question := questionsByID[r.QuestionID]
		item := FeedbackItem{Correct: r.IsCorrect, Topic: "General", Question: "Unknown", Answer: "Not answered"}
		if question != nil {
			item.Question = question.Stem
			item.Topic = question.PrimaryTopic()
			if idx, ok := selectedByQuestion[r.QuestionID]; ok && idx >= 0 && idx < len(question.Choices) {
				item.Answer = question.Choices[idx].Text
			}
		}
		items = append(items, item)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Feedback.Timeout)
	defer cancel()

	payload, err := s.llm.GenerateFeedback(genCtx, FeedbackInput{Score: score, MaxScore: maxScore, Items: items})
	if err != nil {
		log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("AI feedback generation failed, using fallback")
		payload = fallbackFeedback()
	}

	if err := s.attemptRepo.SetFeedback(attempt.ID, payload); err != nil {
		log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("Failed to store attempt feedback")
	}
	if err := s.feedbackRepo.Upsert(&model.AIFeedback{
		AttemptID: attempt.ID,
		StudentID: attempt.StudentID,
		Payload:   payload,
	}); err != nil {
		log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("Failed to upsert feedback record")
	}
	return payload
}

func (s *attemptService) notifyResult(attempt *model.Attempt, score, maxScore float64) {
	metadata, err := json.Marshal(map[string]any{"attempt_id": attempt.ID, "quiz_id": attempt.QuizID})
	if err != nil {
		metadata = nil
	}
	notification := &model.Notification{
		UserID:   attempt.StudentID,
		Type:     model.NotifyResultPublished,
		Title:    "Quiz result available",
		Body:     fmt.Sprintf("You scored %g/%g on %q.", score, maxScore, attempt.Quiz.Title),
		Metadata: datatypes.JSON(metadata),
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		log.Error().Err(err).Uint("studentID", attempt.StudentID).Msg("Failed to create result notification")
	}
}

func (s *attemptService) Get(ident model.Identity, attemptID uint) (*dto.AttemptResponse, error) {
	attempt, err := s.attemptRepo.FindByIDWithQuiz(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("attempt not found")
		}
		return nil, err
	}
	if attempt.StudentID != ident.UserID && !ident.IsStaff() {
		return nil, apperr.Forbidden("not authorized to view this attempt")
	}
	return toAttemptResponse(attempt, &attempt.Quiz)
}

func (s *attemptService) List(ident model.Identity, filter repository.AttemptFilter) ([]dto.AttemptResponse, error) {
	if !ident.IsStaff() {
		filter.StudentID = &ident.UserID
	}
	attempts, err := s.attemptRepo.FindAll(filter)
	if err != nil {
		return nil, err
	}
	return toAttemptResponses(attempts)
}

// RequestRevaluation appends a pending request addressed to the quiz
// creator. Only the attempt's owner may ask, and only after submission.
func (s *attemptService) RequestRevaluation(ident model.Identity, attemptID uint, req dto.RevaluationCreateRequest) (*dto.AttemptResponse, error) {
	attempt, err := s.attemptRepo.FindByIDWithQuiz(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("attempt not found")
		}
		return nil, err
	}
	if attempt.StudentID != ident.UserID {
		return nil, apperr.Forbidden("this attempt belongs to another student")
	}
	if !attempt.IsSubmitted {
		return nil, apperr.Conflict("attempt has not been submitted yet")
	}

	requests := append(attempt.RevaluationRequests, model.RevaluationRequest{
		TeacherID:   attempt.Quiz.CreatorID,
		Reason:      req.Reason,
		Status:      model.RevalPending,
		RequestedAt: time.Now(),
	})
	if err := s.attemptRepo.SetRevaluationRequests(attempt.ID, requests); err != nil {
		return nil, err
	}
	attempt.RevaluationRequests = requests

	return toAttemptResponse(attempt, &attempt.Quiz)
}

func newStartToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate start token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func toAttemptResponse(attempt *model.Attempt, quiz *model.Quiz) (*dto.AttemptResponse, error) {
	var resp dto.AttemptResponse
	if err := copier.Copy(&resp, attempt); err != nil {
		return nil, err
	}
	resp.Quiz = nil
	if quiz != nil && quiz.ID != 0 {
		var settings dto.QuizSettingsResponse
		if err := copier.Copy(&settings, &quiz.Settings); err != nil {
			return nil, err
		}
		resp.Quiz = &dto.QuizSummary{ID: quiz.ID, Title: quiz.Title, Settings: settings}
	}
	return &resp, nil
}
