package service

import (
	"context"
	"errors"
	"testing"

	"github.com/quizforge/quizforge/internal/apperr"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/repository"
	"github.com/quizforge/quizforge/internal/testutil"
	"gorm.io/gorm"
)

func newQuizFixture(t *testing.T, llm LLMService) (*gorm.DB, QuizService, QuestionService) {
	t.Helper()
	db := testutil.DB(t)
	quizRepo := repository.NewQuizRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	quizSvc := NewQuizService(quizRepo, questionRepo, llm)
	questionSvc := NewQuestionService(questionRepo, quizSvc)
	return db, quizSvc, questionSvc
}

func intPtr(v int) *int { return &v }

func quizQuestion(stem string, marks float64) dto.QuestionCreateRequest {
	return dto.QuestionCreateRequest{
		Stem: stem,
		Choices: []dto.ChoiceDTO{
			{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"},
		},
		CorrectIndex: intPtr(1),
		Marks:        marks,
	}
}

func TestGetQuiz_IncludesCreator(t *testing.T) {
	db, quizSvc, _ := newQuizFixture(t, &stubLLM{})
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)

	created, err := quizSvc.Create(ident(teacher), dto.QuizCreateRequest{
		Title:     "History 101",
		Questions: []dto.QuestionCreateRequest{quizQuestion("Who?", 1)},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	resp, err := quizSvc.Get(ident(teacher), created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if resp.Creator == nil {
		t.Fatalf("expected creator in response")
	}
	if resp.Creator.ID != teacher.ID || resp.Creator.Email != teacher.Email {
		t.Fatalf("unexpected creator: %+v", resp.Creator)
	}
}

func TestCreateQuiz_TotalMarksDerivedFromQuestions(t *testing.T) {
	db, quizSvc, _ := newQuizFixture(t, &stubLLM{})
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)

	resp, err := quizSvc.Create(ident(teacher), dto.QuizCreateRequest{
		Title: "Algebra Basics",
		Questions: []dto.QuestionCreateRequest{
			quizQuestion("What is 2+2?", 2),
			quizQuestion("What is 3*3?", 3),
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if resp.Settings.TotalMarks != 5 {
		t.Fatalf("expected total marks 5, got %g", resp.Settings.TotalMarks)
	}
	if len(resp.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(resp.Questions))
	}
}

func TestCreateQuiz_InvalidInlineQuestionRejected(t *testing.T) {
	db, quizSvc, _ := newQuizFixture(t, &stubLLM{})
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)

	bad := quizQuestion("One choice only", 1)
	bad.Choices = []dto.ChoiceDTO{{Text: "a"}}
	_, err := quizSvc.Create(ident(teacher), dto.QuizCreateRequest{Title: "Broken", Questions: []dto.QuestionCreateRequest{bad}})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected Validation error, got %v", err)
	}
}

func TestUpdateQuiz_ReplacingQuestionSetRecomputesAndReleases(t *testing.T) {
	db, quizSvc, questionSvc := newQuizFixture(t, &stubLLM{})
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)

	created, err := quizSvc.Create(ident(teacher), dto.QuizCreateRequest{
		Title: "History",
		Questions: []dto.QuestionCreateRequest{
			quizQuestion("When did WW2 end?", 2),
			quizQuestion("Who wrote the Magna Carta?", 4),
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	bank, err := questionSvc.Create(ident(teacher), quizQuestion("Bank question", 5))
	if err != nil {
		t.Fatalf("bank question create failed: %v", err)
	}

	keep := created.Questions[0].ID
	updated, err := quizSvc.Update(ident(teacher), created.ID, dto.QuizUpdateRequest{
		QuestionIDs: []uint{keep, bank.ID},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Settings.TotalMarks != 7 {
		t.Fatalf("expected total marks 7 after swap, got %g", updated.Settings.TotalMarks)
	}

	// The question dropped from the set is released to the bank, not deleted.
	var released model.Question
	if err := db.First(&released, created.Questions[1].ID).Error; err != nil {
		t.Fatalf("dropped question should still exist: %v", err)
	}
	if released.QuizID != nil {
		t.Fatalf("expected dropped question released to bank, got quiz_id %v", *released.QuizID)
	}
}

func TestUpdateQuiz_NonCreatorForbidden(t *testing.T) {
	db, quizSvc, _ := newQuizFixture(t, &stubLLM{})
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)
	other := testutil.SeedUser(t, db, model.RoleTeacher)

	created, err := quizSvc.Create(ident(teacher), dto.QuizCreateRequest{Title: "Mine"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	title := "Hijacked"
	_, err = quizSvc.Update(ident(other), created.ID, dto.QuizUpdateRequest{Title: &title})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected Forbidden for non-creator, got %v", err)
	}
}

func TestGetQuiz_StudentViewHidesAnswers(t *testing.T) {
	db, quizSvc, _ := newQuizFixture(t, &stubLLM{})
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)
	student := testutil.SeedUser(t, db, model.RoleStudent)

	created, err := quizSvc.Create(ident(teacher), dto.QuizCreateRequest{
		Title:     "Physics",
		Questions: []dto.QuestionCreateRequest{quizQuestion("F = ?", 1)},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Unpublished: students see no questions at all.
	resp, err := quizSvc.Get(ident(student), created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(resp.Questions) != 0 {
		t.Fatalf("expected no questions for unpublished quiz, got %d", len(resp.Questions))
	}

	if _, err := quizSvc.Publish(ident(teacher), created.ID, nil); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	resp, err = quizSvc.Get(ident(student), created.ID)
	if err != nil {
		t.Fatalf("get after publish failed: %v", err)
	}
	if len(resp.Questions) != 1 {
		t.Fatalf("expected questions after publish, got %d", len(resp.Questions))
	}
	if resp.Questions[0].CorrectIndex != -1 || resp.Questions[0].Explanation != "" {
		t.Fatalf("expected answers hidden from student, got %+v", resp.Questions[0])
	}
}

func TestListQuizzes_StudentsSeePublishedOnly(t *testing.T) {
	db, quizSvc, _ := newQuizFixture(t, &stubLLM{})
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)
	student := testutil.SeedUser(t, db, model.RoleStudent)

	published, err := quizSvc.Create(ident(teacher), dto.QuizCreateRequest{Title: "Live"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := quizSvc.Publish(ident(teacher), published.ID, nil); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if _, err := quizSvc.Create(ident(teacher), dto.QuizCreateRequest{Title: "Draft"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	visible, err := quizSvc.List(ident(student), repository.QuizFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(visible) != 1 || visible[0].Title != "Live" {
		t.Fatalf("expected only the published quiz, got %+v", visible)
	}
}

func TestGenerateFromText_FiltersInvalidCandidates(t *testing.T) {
	llm := &stubLLM{candidates: []QuestionCandidate{
		{Stem: "Valid one", Choices: []string{"a", "b", "c", "d"}, CorrectIndex: 0, Marks: 1},
		{Stem: "", Choices: []string{"a", "b"}, CorrectIndex: 0},                        // empty stem
		{Stem: "Bad index", Choices: []string{"a", "b"}, CorrectIndex: 5},               // out of range
		{Stem: "Too few", Choices: []string{"only"}, CorrectIndex: 0},                   // one choice
		{Stem: "Valid two", Choices: []string{"a", "b", "c"}, CorrectIndex: 2, Marks: 2},
	}}
	db, quizSvc, _ := newQuizFixture(t, llm)
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)

	resp, err := quizSvc.GenerateFromText(context.Background(), ident(teacher), dto.QuizGenerateRequest{
		Title: "Generated",
		Text:  "some long document text",
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if resp.Accepted != 2 || resp.Dropped != 3 {
		t.Fatalf("expected 2 accepted / 3 dropped, got %d / %d", resp.Accepted, resp.Dropped)
	}
	if resp.Quiz.Settings.IsPublished {
		t.Fatalf("generated quiz must be a draft")
	}
	if resp.Quiz.Settings.TotalMarks != 3 {
		t.Fatalf("expected total marks 3, got %g", resp.Quiz.Settings.TotalMarks)
	}
	for _, q := range resp.Quiz.Questions {
		if q.Source != model.SourceAI {
			t.Fatalf("expected AI source, got %q", q.Source)
		}
	}
}

func TestGenerateFromText_LLMFailureStillCreatesEmptyDraft(t *testing.T) {
	llm := &stubLLM{generateErr: errors.New("model unavailable")}
	db, quizSvc, _ := newQuizFixture(t, llm)
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)

	resp, err := quizSvc.GenerateFromText(context.Background(), ident(teacher), dto.QuizGenerateRequest{
		Title: "Empty Draft",
		Text:  "document text",
	})
	if err != nil {
		t.Fatalf("generate must not fail outright: %v", err)
	}
	if resp.Accepted != 0 {
		t.Fatalf("expected no questions, got %d", resp.Accepted)
	}
	if resp.Quiz.Title != "Empty Draft" {
		t.Fatalf("unexpected title %q", resp.Quiz.Title)
	}
}
