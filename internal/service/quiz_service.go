package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"github.com/quizforge/quizforge/internal/apperr"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type QuizService interface {
	Create(ident model.Identity, req dto.QuizCreateRequest) (*dto.QuizResponse, error)
	Update(ident model.Identity, id uint, req dto.QuizUpdateRequest) (*dto.QuizResponse, error)
	Publish(ident model.Identity, id uint, scheduledAt *time.Time) (*dto.QuizResponse, error)
	Get(ident model.Identity, id uint) (*dto.QuizResponse, error)
	List(ident model.Identity, filter repository.QuizFilter) ([]dto.QuizResponse, error)
	GenerateFromText(ctx context.Context, ident model.Identity, req dto.QuizGenerateRequest) (*dto.QuizGenerateResponse, error)
	RecomputeTotalMarks(quizID uint) error
}

type quizService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	llm          LLMService
}

func NewQuizService(quizRepo repository.QuizRepository, questionRepo repository.QuestionRepository, llm LLMService) QuizService {
	return &quizService{quizRepo: quizRepo, questionRepo: questionRepo, llm: llm}
}

func (s *quizService) Create(ident model.Identity, req dto.QuizCreateRequest) (*dto.QuizResponse, error) {
	quiz := &model.Quiz{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CreatorID:   ident.UserID,
		Settings:    model.QuizSettings{DurationMinutes: 60},
	}
	applySettings(&quiz.Settings, req.Settings)

	for _, q := range req.Questions {
		choices := choicesFromDTO(q.Choices)
		correctIndex := 0
		if q.CorrectIndex != nil {
			correctIndex = *q.CorrectIndex
		}
		if err := validateQuestionFields(q.Stem, choices, correctIndex); err != nil {
			return nil, err
		}
		marks := q.Marks
		if marks <= 0 {
			marks = 1
		}
		difficulty := q.Difficulty
		if difficulty == "" {
			difficulty = "medium"
		}
		quiz.Questions = append(quiz.Questions, model.Question{
			Source:       model.SourceManual,
			Stem:         strings.TrimSpace(q.Stem),
			Choices:      choices,
			CorrectIndex: correctIndex,
			Marks:        marks,
			Difficulty:   difficulty,
			TopicTags:    q.TopicTags,
			Explanation:  q.Explanation,
			CreatedBy:    ident.UserID,
		})
	}

	if err := s.quizRepo.Create(quiz); err != nil {
		return nil, err
	}

	if len(req.QuestionIDs) > 0 {
		existing, err := s.questionRepo.FindByIDs(req.QuestionIDs)
		if err != nil {
			return nil, err
		}
		if len(existing) != len(req.QuestionIDs) {
			return nil, apperr.Validation("one or more question ids do not exist")
		}
		if err := s.questionRepo.AssignQuiz(req.QuestionIDs, quiz.ID); err != nil {
			return nil, err
		}
	}

	if err := s.RecomputeTotalMarks(quiz.ID); err != nil {
		return nil, err
	}
	return s.loadResponse(quiz.ID)
}

func (s *quizService) Update(ident model.Identity, id uint, req dto.QuizUpdateRequest) (*dto.QuizResponse, error) {
	quiz, err := s.findOwned(ident, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	applySettings(&quiz.Settings, req.Settings)

	if err := s.quizRepo.Update(quiz); err != nil {
		return nil, err
	}

	if req.QuestionIDs != nil {
		existing, err := s.questionRepo.FindByIDs(req.QuestionIDs)
		if err != nil {
			return nil, err
		}
		if len(existing) != len(req.QuestionIDs) {
			return nil, apperr.Validation("one or more question ids do not exist")
		}
		// Dropped questions go back to the bank rather than being deleted.
		if err := s.questionRepo.ReleaseFromQuiz(quiz.ID, req.QuestionIDs); err != nil {
			return nil, err
		}
		if len(req.QuestionIDs) > 0 {
			if err := s.questionRepo.AssignQuiz(req.QuestionIDs, quiz.ID); err != nil {
				return nil, err
			}
		}
	}

	if err := s.RecomputeTotalMarks(quiz.ID); err != nil {
		return nil, err
	}
	return s.loadResponse(quiz.ID)
}

func (s *quizService) Publish(ident model.Identity, id uint, scheduledAt *time.Time) (*dto.QuizResponse, error) {
	quiz, err := s.findOwned(ident, id)
	if err != nil {
		return nil, err
	}
	quiz.Settings.IsPublished = true
	quiz.Settings.ScheduledAt = scheduledAt
	if err := s.quizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return s.loadResponse(quiz.ID)
}

func (s *quizService) Get(ident model.Identity, id uint) (*dto.QuizResponse, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("quiz not found")
		}
		return nil, err
	}
	resp, err := toQuizResponse(quiz)
	if err != nil {
		return nil, err
	}
	// Students never see the questions of an unpublished quiz, and never the
	// correct answers of a published one.
	if !ident.IsStaff() {
		if !quiz.Settings.IsPublished {
			resp.Questions = nil
		} else {
			for i := range resp.Questions {
				resp.Questions[i].CorrectIndex = -1
				resp.Questions[i].Explanation = ""
			}
		}
	}
	return resp, nil
}

func (s *quizService) List(ident model.Identity, filter repository.QuizFilter) ([]dto.QuizResponse, error) {
	if !ident.IsStaff() {
		published := true
		filter.Published = &published
	} else if ident.Role == model.RoleTeacher {
		filter.CreatorID = &ident.UserID
	}
	quizzes, err := s.quizRepo.FindAll(filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		resp, err := toQuizResponse(&quizzes[i])
		if err != nil {
			return nil, err
		}
		resp.Questions = nil
		out = append(out, *resp)
	}
	return out, nil
}

// GenerateFromText builds a draft quiz out of AI-generated question
// candidates. Invalid candidates are dropped silently; an AI hard failure
// still yields an empty draft the teacher can fill in by hand.
func (s *quizService) GenerateFromText(ctx context.Context, ident model.Identity, req dto.QuizGenerateRequest) (*dto.QuizGenerateResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Generated Quiz " + time.Now().Format("2006-01-02 15:04")
	}
	maxQuestions := req.MaxQuestions
	if maxQuestions <= 0 {
		maxQuestions = 10
	}

	candidates, llmErr := s.llm.GenerateQuestions(ctx, req.Text, maxQuestions)
	if llmErr != nil {
		log.Error().Err(llmErr).Msg("AI question generation failed, creating empty draft")
	}

	quiz := &model.Quiz{
		Title:     title,
		CreatorID: ident.UserID,
		Settings:  model.QuizSettings{DurationMinutes: 60},
	}

	dropped := 0
	for _, c := range candidates {
		choices := make([]model.Choice, len(c.Choices))
		for i, text := range c.Choices {
			choices[i] = model.Choice{Text: text}
		}
		if err := validateQuestionFields(c.Stem, choices, c.CorrectIndex); err != nil {
			dropped++
			continue
		}
		marks := c.Marks
		if marks <= 0 {
			marks = 1
		}
		difficulty := c.Difficulty
		if difficulty == "" {
			difficulty = "medium"
		}
		quiz.Questions = append(quiz.Questions, model.Question{
			Source:       model.SourceAI,
			Stem:         strings.TrimSpace(c.Stem),
			Choices:      choices,
			CorrectIndex: c.CorrectIndex,
			Marks:        marks,
			Difficulty:   difficulty,
			TopicTags:    c.TopicTags,
			Explanation:  c.Explanation,
			CreatedBy:    ident.UserID,
		})
	}

	if err := s.quizRepo.Create(quiz); err != nil {
		return nil, err
	}
	if err := s.RecomputeTotalMarks(quiz.ID); err != nil {
		return nil, err
	}

	resp, err := s.loadResponse(quiz.ID)
	if err != nil {
		return nil, err
	}

	message := "quiz draft created"
	switch {
	case llmErr != nil:
		message = "AI generation failed, empty draft created"
	case dropped > 0:
		message = "some generated questions were invalid and skipped"
	}
	return &dto.QuizGenerateResponse{
		Quiz:     *resp,
		Accepted: len(quiz.Questions),
		Dropped:  dropped,
		Message:  message,
	}, nil
}

// RecomputeTotalMarks re-derives setting_total_marks from the current
// question set. Called at every question-set mutation site.
func (s *quizService) RecomputeTotalMarks(quizID uint) error {
	questions, err := s.questionRepo.FindByQuizID(quizID)
	if err != nil {
		return err
	}
	var total float64
	for _, q := range questions {
		total += q.Marks
	}
	return s.quizRepo.SetTotalMarks(quizID, total)
}

func (s *quizService) findOwned(ident model.Identity, id uint) (*model.Quiz, error) {
	quiz, err := s.quizRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("quiz not found")
		}
		return nil, err
	}
	if quiz.CreatorID != ident.UserID && ident.Role != model.RoleAdmin {
		return nil, apperr.Forbidden("not authorized to modify this quiz")
	}
	return quiz, nil
}

func (s *quizService) loadResponse(id uint) (*dto.QuizResponse, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(id)
	if err != nil {
		return nil, err
	}
	return toQuizResponse(quiz)
}

func toQuizResponse(quiz *model.Quiz) (*dto.QuizResponse, error) {
	var resp dto.QuizResponse
	if err := copier.Copy(&resp, quiz); err != nil {
		return nil, err
	}
	if quiz.Creator.ID != 0 {
		var creator dto.UserResponse
		if err := copier.Copy(&creator, &quiz.Creator); err != nil {
			return nil, err
		}
		resp.Creator = &creator
	}
	return &resp, nil
}

func applySettings(settings *model.QuizSettings, in *dto.QuizSettingsInput) {
	if in == nil {
		return
	}
	if in.DurationMinutes != nil {
		settings.DurationMinutes = *in.DurationMinutes
	}
	if in.PassMarks != nil {
		settings.PassMarks = *in.PassMarks
	}
	if in.DifficultyOverall != nil {
		settings.DifficultyOverall = *in.DifficultyOverall
	}
	if in.ShuffleQuestions != nil {
		settings.ShuffleQuestions = *in.ShuffleQuestions
	}
	if in.IsPublished != nil {
		settings.IsPublished = *in.IsPublished
	}
	if in.AllowedClassIDs != nil {
		settings.AllowedClassIDs = in.AllowedClassIDs
	}
	if in.AllowRetake != nil {
		settings.AllowRetake = *in.AllowRetake
	}
}
