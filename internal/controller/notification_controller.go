package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/service"
)

type NotificationController struct {
	notificationSvc service.NotificationService
}

func NewNotificationController(notificationSvc service.NotificationService) *NotificationController {
	return &NotificationController{notificationSvc: notificationSvc}
}

// List godoc
// @Summary List notifications
// @Description Newest first, optionally unread only
// @Tags notifications
// @Produce json
// @Param unread query bool false "Unread only"
// @Param limit query int false "Max results"
// @Success 200 {object} dto.Envelope{data=[]dto.NotificationResponse}
// @Security BearerAuth
// @Router /notifications [get]
func (ctrl *NotificationController) List(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	limit := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	resp, err := ctrl.notificationSvc.List(ident, unreadOnly, limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

// MarkRead godoc
// @Summary Mark notifications read
// @Description Marks the given ids read, or everything when no ids are sent
// @Tags notifications
// @Accept json
// @Produce json
// @Param body body dto.MarkReadRequest true "Notification ids (empty = all)"
// @Success 200 {object} dto.Envelope
// @Security BearerAuth
// @Router /notifications/mark-read [post]
func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	ident, ok := mustIdentity(c)
	if !ok {
		return
	}
	var req dto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	if err := ctrl.notificationSvc.MarkRead(ident, req); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"marked": true})
}
