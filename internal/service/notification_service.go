package service

import (
	"github.com/jinzhu/copier"
	"github.com/quizforge/quizforge/internal/dto"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/repository"
)

type NotificationService interface {
	List(ident model.Identity, unreadOnly bool, limit int) ([]dto.NotificationResponse, error)
	MarkRead(ident model.Identity, req dto.MarkReadRequest) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ident model.Identity, unreadOnly bool, limit int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.FindByUser(ident.UserID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		var resp dto.NotificationResponse
		if err := copier.Copy(&resp, &notifications[i]); err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// MarkRead with no ids marks everything read for the caller.
func (s *notificationService) MarkRead(ident model.Identity, req dto.MarkReadRequest) error {
	if len(req.NotificationIDs) == 0 {
		return s.repo.MarkAllRead(ident.UserID)
	}
	return s.repo.MarkRead(ident.UserID, req.NotificationIDs)
}
