package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/service"
)

type QuestionController struct {
	questionSvc service.QuestionService
}

func NewQuestionController(questionSvc service.QuestionService) *QuestionController {
	return &QuestionController{questionSvc: questionSvc}
}

// Create godoc
// @Summary Create a question
// @Description Create a bank question, or attach it to a quiz directly
// @Tags questions
// @Accept json
// @Produce json
// @Param body body dto.QuestionCreateRequest true "Question data"
// @Success 201 {object} dto.Envelope{data=dto.QuestionResponse}
// @Failure 400 {object} dto.Envelope "Invalid question"
// @Security BearerAuth
// @Router /questions [post]
func (ctrl *QuestionController) Create(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	var req dto.QuestionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	resp, err := ctrl.questionSvc.Create(ident, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, resp)
}

// Update godoc
// @Summary Update a question
// @Description Update a question owned by the caller (admins may edit any)
// @Tags questions
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param body body dto.QuestionUpdateRequest true "Fields to update"
// @Success 200 {object} dto.Envelope{data=dto.QuestionResponse}
// @Failure 403 {object} dto.Envelope "Not the question owner"
// @Failure 404 {object} dto.Envelope "Question not found"
// @Security BearerAuth
// @Router /questions/{id} [put]
func (ctrl *QuestionController) Update(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.QuestionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	resp, err := ctrl.questionSvc.Update(ident, id, req)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// Bank godoc
// @Summary List reusable bank questions
// @Description Unassigned questions plus those created by the caller
// @Tags questions
// @Produce json
// @Param limit query int false "Max results"
// @Success 200 {object} dto.Envelope{data=[]dto.QuestionResponse}
// @Security BearerAuth
// @Router /questions/bank [get]
func (ctrl *QuestionController) Bank(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}
	resp, err := ctrl.questionSvc.Bank(ident, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}
