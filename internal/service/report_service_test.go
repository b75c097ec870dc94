package service

import (
	"testing"
	"time"

	"github.com/quizforge/quizforge/internal/apperr"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/repository"
	"github.com/quizforge/quizforge/internal/testutil"
	"gorm.io/gorm"
)

func newReportFixture(t *testing.T) (*gorm.DB, ReportService) {
	t.Helper()
	db := testutil.DB(t)
	svc := NewReportService(
		repository.NewUserRepository(db),
		repository.NewQuizRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewAttemptRepository(db),
	)
	return db, svc
}

func seedSubmittedAttempt(t *testing.T, db *gorm.DB, quizID, studentID uint, score, maxScore float64, results []model.AnswerResult) *model.Attempt {
	t.Helper()
	now := time.Now()
	attempt := &model.Attempt{
		QuizID:        quizID,
		StudentID:     studentID,
		Score:         score,
		MaxScore:      maxScore,
		AnswerResults: results,
		IsSubmitted:   true,
		SubmittedAt:   &now,
	}
	if err := db.Create(attempt).Error; err != nil {
		t.Fatalf("failed to seed attempt: %v", err)
	}
	return attempt
}

func TestDashboardStats_StaffOnlyWithTotals(t *testing.T) {
	db, svc := newReportFixture(t)
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)
	student := testutil.SeedUser(t, db, model.RoleStudent)
	quiz := testutil.SeedQuiz(t, db, teacher.ID, true, testutil.QuestionSpec{Marks: 2})

	seedSubmittedAttempt(t, db, quiz.ID, student.ID, 2, 2, nil)
	if err := db.Create(&model.Attempt{QuizID: quiz.ID, StudentID: student.ID}).Error; err != nil {
		t.Fatalf("failed to seed open attempt: %v", err)
	}

	_, err := svc.DashboardStats(ident(student))
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden for student, got %v", err)
	}

	stats, err := svc.DashboardStats(ident(teacher))
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalUsers != 2 || stats.TotalQuizzes != 1 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.TotalAttempts != 1 {
		t.Fatalf("open attempts must not be counted, got %d", stats.TotalAttempts)
	}
	if len(stats.RecentAttempts) != 1 || stats.RecentAttempts[0].QuizID != quiz.ID {
		t.Fatalf("unexpected recent attempts: %+v", stats.RecentAttempts)
	}
}

func TestStudentReport_AggregatesScoresAndTopics(t *testing.T) {
	db, svc := newReportFixture(t)
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)
	student := testutil.SeedUser(t, db, model.RoleStudent)
	quiz := testutil.SeedQuiz(t, db, teacher.ID, true,
		testutil.QuestionSpec{Marks: 5, Topic: "Algebra"},
		testutil.QuestionSpec{Marks: 5, Topic: "Geometry"},
	)
	q1, q2 := quiz.Questions[0].ID, quiz.Questions[1].ID

	seedSubmittedAttempt(t, db, quiz.ID, student.ID, 5, 10, []model.AnswerResult{
		{QuestionID: q1, IsCorrect: true},
		{QuestionID: q2, IsCorrect: false},
	})
	seedSubmittedAttempt(t, db, quiz.ID, student.ID, 10, 10, []model.AnswerResult{
		{QuestionID: q1, IsCorrect: true},
		{QuestionID: 9999, IsCorrect: true},
	})

	report, err := svc.StudentReport(ident(student), student.ID)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if report.TotalAttempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", report.TotalAttempts)
	}
	if report.AvgScore != 75 {
		t.Fatalf("expected avg 75, got %g", report.AvgScore)
	}
	if report.TotalScore != 15 || report.TotalMaxScore != 20 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if got := report.TopicBreakdown["Algebra"]; got.Correct != 2 || got.Total != 2 {
		t.Fatalf("unexpected algebra stats: %+v", got)
	}
	if got := report.TopicBreakdown["Geometry"]; got.Correct != 0 || got.Total != 1 {
		t.Fatalf("unexpected geometry stats: %+v", got)
	}
	// Answers whose question no longer exists land under General.
	if got := report.TopicBreakdown["General"]; got.Correct != 1 || got.Total != 1 {
		t.Fatalf("unexpected general stats: %+v", got)
	}
}

func TestStudentReport_StudentsSeeOnlyTheirOwn(t *testing.T) {
	db, svc := newReportFixture(t)
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)
	student := testutil.SeedUser(t, db, model.RoleStudent)
	other := testutil.SeedUser(t, db, model.RoleStudent)

	_, err := svc.StudentReport(ident(other), student.ID)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := svc.StudentReport(ident(teacher), student.ID); err != nil {
		t.Fatalf("staff should see any student: %v", err)
	}
	if _, err := svc.StudentReport(ident(student), student.ID); err != nil {
		t.Fatalf("students should see themselves: %v", err)
	}
}

func TestTeacherReport_PerQuizAverages(t *testing.T) {
	db, svc := newReportFixture(t)
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)
	student := testutil.SeedUser(t, db, model.RoleStudent)
	active := testutil.SeedQuiz(t, db, teacher.ID, true, testutil.QuestionSpec{Marks: 10})
	idle := testutil.SeedQuiz(t, db, teacher.ID, true, testutil.QuestionSpec{Marks: 10})

	seedSubmittedAttempt(t, db, active.ID, student.ID, 10, 10, nil)
	seedSubmittedAttempt(t, db, active.ID, student.ID, 5, 10, nil)

	report, err := svc.TeacherReport(ident(teacher), teacher.ID)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if report.TotalQuizzes != 2 || report.TotalAttempts != 2 {
		t.Fatalf("unexpected totals: %+v", report)
	}

	stats := map[uint]int{}
	for _, s := range report.QuizStats {
		stats[s.QuizID] = s.TotalAttempts
		switch s.QuizID {
		case active.ID:
			if s.AvgScore != 75 {
				t.Fatalf("expected avg 75 for active quiz, got %g", s.AvgScore)
			}
		case idle.ID:
			if s.AvgScore != 0 || s.TotalAttempts != 0 {
				t.Fatalf("idle quiz should have zero stats: %+v", s)
			}
		}
	}
	if stats[active.ID] != 2 {
		t.Fatalf("expected 2 attempts on active quiz, got %d", stats[active.ID])
	}
}
