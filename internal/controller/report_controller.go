package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quizforge/internal/service"
)

type ReportController struct {
	reportSvc service.ReportService
}

func NewReportController(reportSvc service.ReportService) *ReportController {
	return &ReportController{reportSvc: reportSvc}
}

// DashboardStats godoc
// @Summary Dashboard statistics
// @Description Platform totals and the most recent submitted attempts
// @Tags reports
// @Produce json
// @Success 200 {object} dto.Envelope{data=dto.DashboardStatsResponse}
// @Failure 403 {object} dto.Envelope
// @Security BearerAuth
// @Router /dashboard/stats [get]
func (ctrl *ReportController) DashboardStats(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	resp, err := ctrl.reportSvc.DashboardStats(ident)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// StudentReport godoc
// @Summary Student performance report
// @Description Score aggregates over a student's submitted attempts. "me" resolves to the caller.
// @Tags reports
// @Produce json
// @Param id path string true "Student ID or me"
// @Success 200 {object} dto.Envelope{data=dto.StudentReportResponse}
// @Failure 403 {object} dto.Envelope
// @Security BearerAuth
// @Router /reports/student/{id} [get]
func (ctrl *ReportController) StudentReport(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	studentID := ident.UserID
	if c.Param("id") != "me" {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		studentID = id
	}
	resp, err := ctrl.reportSvc.StudentReport(ident, studentID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// TeacherReport godoc
// @Summary Teacher analytics
// @Description Per-quiz attempt counts and average scores. "me" resolves to the caller.
// @Tags reports
// @Produce json
// @Param id path string true "Teacher ID or me"
// @Success 200 {object} dto.Envelope{data=dto.TeacherReportResponse}
// @Failure 403 {object} dto.Envelope
// @Security BearerAuth
// @Router /reports/teacher/{id} [get]
func (ctrl *ReportController) TeacherReport(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	teacherID := ident.UserID
	if c.Param("id") != "me" {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		teacherID = id
	}
	resp, err := ctrl.reportSvc.TeacherReport(ident, teacherID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}
