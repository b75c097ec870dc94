package service

import (
	"math"

	"github.com/quizforge/quizforge/internal/apperr"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/repository"
)

type ReportService interface {
	DashboardStats(ident model.Identity) (*dto.DashboardStatsResponse, error)
	StudentReport(ident model.Identity, studentID uint) (*dto.StudentReportResponse, error)
	TeacherReport(ident model.Identity, teacherID uint) (*dto.TeacherReportResponse, error)
}

type reportService struct {
	userRepo     repository.UserRepository
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
}

func NewReportService(
	userRepo repository.UserRepository,
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
) ReportService {
	return &reportService{
		userRepo:     userRepo,
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
	}
}

// DashboardStats returns platform totals plus the five most recently
// submitted attempts. Staff only.
func (s *reportService) DashboardStats(ident model.Identity) (*dto.DashboardStatsResponse, error) {
	if !ident.IsStaff() {
		return nil, apperr.Forbidden("access denied")
	}

	totalUsers, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	totalQuizzes, err := s.quizRepo.Count()
	if err != nil {
		return nil, err
	}
	submitted := true
	totalAttempts, err := s.attemptRepo.Count(repository.AttemptFilter{Submitted: &submitted})
	if err != nil {
		return nil, err
	}

	recent, err := s.attemptRepo.FindAll(repository.AttemptFilter{Submitted: &submitted, Limit: 5})
	if err != nil {
		return nil, err
	}
	recentResponses, err := toAttemptResponses(recent)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardStatsResponse{
		TotalUsers:     totalUsers,
		TotalQuizzes:   totalQuizzes,
		TotalAttempts:  totalAttempts,
		RecentAttempts: recentResponses,
	}, nil
}

// StudentReport aggregates a student's submitted attempts. Students may only
// view their own report; staff may view any student's.
func (s *reportService) StudentReport(ident model.Identity, studentID uint) (*dto.StudentReportResponse, error) {
	if !ident.IsStaff() && studentID != ident.UserID {
		return nil, apperr.Forbidden("not authorized to view this report")
	}

	submitted := true
	attempts, err := s.attemptRepo.FindAll(repository.AttemptFilter{
		StudentID: &studentID,
		Submitted: &submitted,
		Limit:     200,
	})
	if err != nil {
		return nil, err
	}

	report := &dto.StudentReportResponse{
		StudentID:      studentID,
		TotalAttempts:  len(attempts),
		Attempts:       []dto.AttemptResponse{},
		TopicBreakdown: map[string]dto.TopicStat{},
	}

	var pctSum float64
	for i := range attempts {
		a := &attempts[i]
		report.TotalScore += a.Score
		report.TotalMaxScore += a.MaxScore
		if a.MaxScore > 0 {
			pctSum += a.Score / a.MaxScore * 100
		}
	}
	if len(attempts) > 0 {
		report.AvgScore = round2(pctSum / float64(len(attempts)))
	}

	report.Attempts, err = toAttemptResponses(attempts)
	if err != nil {
		return nil, err
	}

	topics, err := s.topicsByQuestion(attempts)
	if err != nil {
		return nil, err
	}
	for i := range attempts {
		for _, result := range attempts[i].AnswerResults {
			topic, ok := topics[result.QuestionID]
			if !ok {
				topic = "General"
			}
			stat := report.TopicBreakdown[topic]
			stat.Total++
			if result.IsCorrect {
				stat.Correct++
			}
			report.TopicBreakdown[topic] = stat
		}
	}

	return report, nil
}

// TeacherReport aggregates submitted attempts across all quizzes a teacher
// created, with a per-quiz average score.
func (s *reportService) TeacherReport(ident model.Identity, teacherID uint) (*dto.TeacherReportResponse, error) {
	quizzes, err := s.quizRepo.FindAll(repository.QuizFilter{CreatorID: &teacherID, Limit: 200})
	if err != nil {
		return nil, err
	}

	report := &dto.TeacherReportResponse{
		TeacherID:    teacherID,
		TotalQuizzes: len(quizzes),
		QuizStats:    []dto.QuizStat{},
	}
	if len(quizzes) == 0 {
		return report, nil
	}

	quizIDs := make([]uint, 0, len(quizzes))
	for i := range quizzes {
		quizIDs = append(quizIDs, quizzes[i].ID)
	}
	submitted := true
	attempts, err := s.attemptRepo.FindAll(repository.AttemptFilter{
		QuizIDs:   quizIDs,
		Submitted: &submitted,
		Limit:     1000,
	})
	if err != nil {
		return nil, err
	}
	report.TotalAttempts = len(attempts)

	byQuiz := make(map[uint][]*model.Attempt)
	for i := range attempts {
		byQuiz[attempts[i].QuizID] = append(byQuiz[attempts[i].QuizID], &attempts[i])
	}
	for i := range quizzes {
		quiz := &quizzes[i]
		quizAttempts := byQuiz[quiz.ID]
		var pctSum float64
		for _, a := range quizAttempts {
			if a.MaxScore > 0 {
				pctSum += a.Score / a.MaxScore * 100
			}
		}
		stat := dto.QuizStat{
			QuizID:        quiz.ID,
			Title:         quiz.Title,
			TotalAttempts: len(quizAttempts),
		}
		if len(quizAttempts) > 0 {
			stat.AvgScore = round2(pctSum / float64(len(quizAttempts)))
		}
		report.QuizStats = append(report.QuizStats, stat)
	}

	return report, nil
}

// topicsByQuestion resolves the primary topic of every question referenced by
// the attempts' graded answers. Deleted questions simply stay unmapped.
func (s *reportService) topicsByQuestion(attempts []model.Attempt) (map[uint]string, error) {
	seen := map[uint]bool{}
	ids := []uint{}
	for i := range attempts {
		for _, result := range attempts[i].AnswerResults {
			if !seen[result.QuestionID] {
				seen[result.QuestionID] = true
				ids = append(ids, result.QuestionID)
			}
		}
	}
	if len(ids) == 0 {
		return map[uint]string{}, nil
	}
	questions, err := s.questionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	topics := make(map[uint]string, len(questions))
	for i := range questions {
		topics[questions[i].ID] = questions[i].PrimaryTopic()
	}
	return topics, nil
}

func toAttemptResponses(attempts []model.Attempt) ([]dto.AttemptResponse, error) {
	responses := make([]dto.AttemptResponse, 0, len(attempts))
	for i := range attempts {
		resp, err := toAttemptResponse(&attempts[i], &attempts[i].Quiz)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
