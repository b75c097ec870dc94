package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/repository"
	"github.com/quizforge/quizforge/internal/service"
)

type AttemptController struct {
	attemptSvc service.AttemptService
}

func NewAttemptController(attemptSvc service.AttemptService) *AttemptController {
	return &AttemptController{attemptSvc: attemptSvc}
}

// Start godoc
// @Summary Start or resume an attempt
// @Description Opens the caller's unsubmitted attempt on a quiz, issuing a fresh start token
// @Tags attempts
// @Accept json
// @Produce json
// @Param body body dto.StartAttemptRequest true "Quiz to attempt"
// @Success 200 {object} dto.Envelope{data=dto.StartAttemptResponse}
// @Failure 403 {object} dto.Envelope "Quiz unpublished or retake not allowed"
// @Failure 404 {object} dto.Envelope "Quiz not found"
// @Security BearerAuth
// @Router /attempts/start [post]
func (ctrl *AttemptController) Start(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	var req dto.StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	resp, err := ctrl.attemptSvc.Start(ident, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// Submit godoc
// @Summary Submit an attempt
// @Description Grade the attempt and freeze its result. Repeat submissions get 409.
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path int true "Attempt ID"
// @Param body body dto.SubmitAttemptRequest true "Answers and start token"
// @Success 200 {object} dto.Envelope{data=dto.SubmitAttemptResponse}
// @Failure 403 {object} dto.Envelope "Wrong owner or invalid start token"
// @Failure 409 {object} dto.Envelope "Already submitted"
// @Security BearerAuth
// @Router /attempts/{id}/submit [post]
func (ctrl *AttemptController) Submit(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	resp, err := ctrl.attemptSvc.Submit(c.Request.Context(), ident, id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// Get godoc
// @Summary Get an attempt
// @Description Retrieve one attempt; students may only view their own
// @Tags attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} dto.Envelope{data=dto.AttemptResponse}
// @Failure 403 {object} dto.Envelope "Not the attempt owner"
// @Failure 404 {object} dto.Envelope "Attempt not found"
// @Security BearerAuth
// @Router /attempts/{id} [get]
func (ctrl *AttemptController) Get(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := ctrl.attemptSvc.Get(ident, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// List godoc
// @Summary List attempts
// @Description Students list their own attempts; staff may filter by quiz or student
// @Tags attempts
// @Produce json
// @Param quiz_id query int false "Filter by quiz"
// @Param student_id query int false "Filter by student (staff only)"
// @Param limit query int false "Max results"
// @Success 200 {object} dto.Envelope{data=[]dto.AttemptResponse}
// @Security BearerAuth
// @Router /attempts [get]
func (ctrl *AttemptController) List(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	var filter repository.AttemptFilter
	if v := c.Query("quiz_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			quizID := uint(id)
			filter.QuizID = &quizID
		}
	}
	if v := c.Query("student_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			studentID := uint(id)
			filter.StudentID = &studentID
		}
	}
	if v := c.Query("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			filter.Limit = limit
		}
	}
	resp, err := ctrl.attemptSvc.List(ident, filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// RequestRevaluation godoc
// @Summary Request a revaluation
// @Description Ask the quiz creator to review a submitted attempt's grading
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path int true "Attempt ID"
// @Param body body dto.RevaluationCreateRequest true "Reason"
// @Success 201 {object} dto.Envelope{data=dto.AttemptResponse}
// @Failure 409 {object} dto.Envelope "Attempt not submitted yet"
// @Security BearerAuth
// @Router /attempts/{id}/reval [post]
func (ctrl *AttemptController) RequestRevaluation(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RevaluationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	resp, err := ctrl.attemptSvc.RequestRevaluation(ident, id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, resp)
}
