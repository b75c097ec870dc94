package service

import (
	"errors"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/quizforge/quizforge/internal/apperr"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/repository"
	"gorm.io/gorm"
)

type QuestionService interface {
	Create(ident model.Identity, req dto.QuestionCreateRequest) (*dto.QuestionResponse, error)
	Update(ident model.Identity, id uint, req dto.QuestionUpdateRequest) (*dto.QuestionResponse, error)
	Bank(ident model.Identity, limit int) ([]dto.QuestionResponse, error)
}

type questionService struct {
	questionRepo repository.QuestionRepository
	quizService  QuizService
}

func NewQuestionService(questionRepo repository.QuestionRepository, quizService QuizService) QuestionService {
	return &questionService{questionRepo: questionRepo, quizService: quizService}
}

// validateQuestionFields is the shared rule for every path that produces a
// question, manual or AI-imported: non-empty stem, 2..6 choices, correct
// index inside the choice range.
func validateQuestionFields(stem string, choices []model.Choice, correctIndex int) error {
	if strings.TrimSpace(stem) == "" {
		return apperr.Validation("question stem is required")
	}
	if len(choices) < model.MinChoices || len(choices) > model.MaxChoices {
		return apperr.Validation("choices must be between %d and %d", model.MinChoices, model.MaxChoices)
	}
	if correctIndex < 0 || correctIndex >= len(choices) {
		return apperr.Validation("correct index must be within choices range")
	}
	return nil
}

func choicesFromDTO(in []dto.ChoiceDTO) []model.Choice {
	choices := make([]model.Choice, len(in))
	for i, c := range in {
		choices[i] = model.Choice{Text: c.Text, Meta: c.Meta}
	}
	return choices
}

func (s *questionService) Create(ident model.Identity, req dto.QuestionCreateRequest) (*dto.QuestionResponse, error) {
	choices := choicesFromDTO(req.Choices)
	correctIndex := 0
	if req.CorrectIndex != nil {
		correctIndex = *req.CorrectIndex
	}
	if err := validateQuestionFields(req.Stem, choices, correctIndex); err != nil {
		return nil, err
	}

	marks := req.Marks
	if marks <= 0 {
		marks = 1
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}

	question := &model.Question{
		QuizID:       req.QuizID,
		Source:       model.SourceManual,
		Stem:         strings.TrimSpace(req.Stem),
		Choices:      choices,
		CorrectIndex: correctIndex,
		Marks:        marks,
		Difficulty:   difficulty,
		TopicTags:    req.TopicTags,
		Explanation:  req.Explanation,
		CreatedBy:    ident.UserID,
	}
	if err := s.questionRepo.Create(question); err != nil {
		return nil, err
	}

	if question.QuizID != nil {
		if err := s.quizService.RecomputeTotalMarks(*question.QuizID); err != nil {
			return nil, err
		}
	}

	return toQuestionResponse(question)
}

func (s *questionService) Update(ident model.Identity, id uint, req dto.QuestionUpdateRequest) (*dto.QuestionResponse, error) {
	question, err := s.questionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("question not found")
		}
		return nil, err
	}

	if question.CreatedBy != ident.UserID && ident.Role != model.RoleAdmin {
		return nil, apperr.Forbidden("not authorized to edit this question")
	}

	if req.Stem != nil {
		question.Stem = strings.TrimSpace(*req.Stem)
	}
	if req.Choices != nil {
		question.Choices = choicesFromDTO(req.Choices)
	}
	if req.CorrectIndex != nil {
		question.CorrectIndex = *req.CorrectIndex
	}
	if req.Marks != nil {
		question.Marks = *req.Marks
	}
	if req.Difficulty != nil {
		question.Difficulty = *req.Difficulty
	}
	if req.TopicTags != nil {
		question.TopicTags = req.TopicTags
	}
	if req.Explanation != nil {
		question.Explanation = *req.Explanation
	}

	if err := validateQuestionFields(question.Stem, question.Choices, question.CorrectIndex); err != nil {
		return nil, err
	}
	if err := s.questionRepo.Update(question); err != nil {
		return nil, err
	}

	if question.QuizID != nil {
		if err := s.quizService.RecomputeTotalMarks(*question.QuizID); err != nil {
			return nil, err
		}
	}

	return toQuestionResponse(question)
}

func (s *questionService) Bank(ident model.Identity, limit int) ([]dto.QuestionResponse, error) {
	questions, err := s.questionRepo.FindBank(ident.UserID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.QuestionResponse, 0, len(questions))
	for i := range questions {
		resp, err := toQuestionResponse(&questions[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

func toQuestionResponse(q *model.Question) (*dto.QuestionResponse, error) {
	var resp dto.QuestionResponse
	if err := copier.Copy(&resp, q); err != nil {
		return nil, err
	}
	return &resp, nil
}
