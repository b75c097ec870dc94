package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/repository"
	"github.com/quizforge/quizforge/internal/service"
)

type QuizController struct {
	quizSvc service.QuizService
}

func NewQuizController(quizSvc service.QuizService) *QuizController {
	return &QuizController{quizSvc: quizSvc}
}

// Create godoc
// @Summary Create a quiz
// @Description Create a quiz with inline questions and/or existing bank question ids
// @Tags quizzes
// @Accept json
// @Produce json
// @Param body body dto.QuizCreateRequest true "Quiz data"
// @Success 201 {object} dto.Envelope{data=dto.QuizResponse}
// @Failure 400 {object} dto.Envelope "Invalid request body"
// @Security BearerAuth
// @Router /quizzes [post]
func (ctrl *QuizController) Create(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	var req dto.QuizCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	resp, err := ctrl.quizSvc.Create(ident, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, resp)
}

// Update godoc
// @Summary Update a quiz
// @Description Update quiz metadata, settings, or its question set
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param body body dto.QuizUpdateRequest true "Fields to update"
// @Success 200 {object} dto.Envelope{data=dto.QuizResponse}
// @Failure 403 {object} dto.Envelope "Not the quiz creator"
// @Failure 404 {object} dto.Envelope "Quiz not found"
// @Security BearerAuth
// @Router /quizzes/{id} [put]
func (ctrl *QuizController) Update(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.QuizUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	resp, err := ctrl.quizSvc.Update(ident, id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

type publishRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// Publish godoc
// @Summary Publish a quiz
// @Description Mark a quiz visible to students, optionally scheduled
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.Envelope{data=dto.QuizResponse}
// @Failure 403 {object} dto.Envelope "Not the quiz creator"
// @Security BearerAuth
// @Router /quizzes/{id}/publish [post]
func (ctrl *QuizController) Publish(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		bindErr(c, err)
		return
	}
	resp, err := ctrl.quizSvc.Publish(ident, id, req.ScheduledAt)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// Get godoc
// @Summary Get a quiz
// @Description Retrieve a quiz; students see published quizzes without answers
// @Tags quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.Envelope{data=dto.QuizResponse}
// @Failure 404 {object} dto.Envelope "Quiz not found"
// @Security BearerAuth
// @Router /quizzes/{id} [get]
func (ctrl *QuizController) Get(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := ctrl.quizSvc.Get(ident, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// List godoc
// @Summary List quizzes
// @Description Role-scoped listing: students see published quizzes only
// @Tags quizzes
// @Produce json
// @Param limit query int false "Max results"
// @Success 200 {object} dto.Envelope{data=[]dto.QuizResponse}
// @Security BearerAuth
// @Router /quizzes [get]
func (ctrl *QuizController) List(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	var filter repository.QuizFilter
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	resp, err := ctrl.quizSvc.List(ident, filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// Generate godoc
// @Summary Generate a quiz draft from document text
// @Description Produce MCQ candidates with AI, keep the valid ones, and save a draft quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param body body dto.QuizGenerateRequest true "Source text"
// @Success 201 {object} dto.Envelope{data=dto.QuizGenerateResponse}
// @Failure 400 {object} dto.Envelope "Text too short"
// @Security BearerAuth
// @Router /quizzes/generate [post]
func (ctrl *QuizController) Generate(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	var req dto.QuizGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	resp, err := ctrl.quizSvc.GenerateFromText(c.Request.Context(), ident, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, resp)
}
