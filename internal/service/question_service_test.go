package service

import (
	"testing"

	"github.com/quizforge/quizforge/internal/apperr"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/testutil"
)

func TestValidateQuestionFields(t *testing.T) {
	four := []model.Choice{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}}

	if err := validateQuestionFields("What is 2+2?", four, 1); err != nil {
		t.Fatalf("valid question rejected: %v", err)
	}
	if err := validateQuestionFields("  ", four, 0); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected Validation for blank stem, got %v", err)
	}
	if err := validateQuestionFields("q", []model.Choice{{Text: "only"}}, 0); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected Validation for one choice, got %v", err)
	}
	seven := make([]model.Choice, 7)
	for i := range seven {
		seven[i] = model.Choice{Text: "c"}
	}
	if err := validateQuestionFields("q", seven, 0); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected Validation for seven choices, got %v", err)
	}
	if err := validateQuestionFields("q", four, 4); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected Validation for out-of-range index, got %v", err)
	}
	if err := validateQuestionFields("q", four, -1); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected Validation for negative index, got %v", err)
	}
}

func TestCreateQuestion_DefaultsApplied(t *testing.T) {
	db, _, questionSvc := newQuizFixture(t, &stubLLM{})
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)

	req := quizQuestion("No marks given", 0)
	resp, err := questionSvc.Create(ident(teacher), req)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if resp.Marks != 1 {
		t.Fatalf("expected default marks 1, got %g", resp.Marks)
	}
	if resp.Difficulty != "medium" {
		t.Fatalf("expected default difficulty medium, got %q", resp.Difficulty)
	}
	if resp.Source != model.SourceManual {
		t.Fatalf("expected manual source, got %q", resp.Source)
	}
}

func TestUpdateQuestion_OwnershipEnforced(t *testing.T) {
	db, _, questionSvc := newQuizFixture(t, &stubLLM{})
	owner := testutil.SeedUser(t, db, model.RoleTeacher)
	other := testutil.SeedUser(t, db, model.RoleTeacher)
	admin := testutil.SeedUser(t, db, model.RoleAdmin)

	created, err := questionSvc.Create(ident(owner), quizQuestion("Original", 2))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stem := "Changed"
	_, err = questionSvc.Update(ident(other), created.ID, dto.QuestionUpdateRequest{Stem: &stem})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected Forbidden for non-owner, got %v", err)
	}

	updated, err := questionSvc.Update(ident(admin), created.ID, dto.QuestionUpdateRequest{Stem: &stem})
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if updated.Stem != "Changed" {
		t.Fatalf("expected updated stem, got %q", updated.Stem)
	}
}

func TestQuestionBank_ReturnsUnassignedAndOwn(t *testing.T) {
	db, quizSvc, questionSvc := newQuizFixture(t, &stubLLM{})
	teacher := testutil.SeedUser(t, db, model.RoleTeacher)
	colleague := testutil.SeedUser(t, db, model.RoleTeacher)

	if _, err := questionSvc.Create(ident(teacher), quizQuestion("Mine, unassigned", 1)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := questionSvc.Create(ident(colleague), quizQuestion("Theirs, unassigned", 1)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// A question attached to a quiz stays out of the bank list only if it
	// belongs to someone else; the owner still sees their own.
	if _, err := quizSvc.Create(ident(colleague), dto.QuizCreateRequest{
		Title:     "Colleague quiz",
		Questions: []dto.QuestionCreateRequest{quizQuestion("Attached elsewhere", 1)},
	}); err != nil {
		t.Fatalf("quiz create failed: %v", err)
	}

	bank, err := questionSvc.Bank(ident(teacher), 0)
	if err != nil {
		t.Fatalf("bank failed: %v", err)
	}
	if len(bank) != 2 {
		t.Fatalf("expected 2 bank questions (own + unassigned), got %d", len(bank))
	}
}
