package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotifyNewQuiz         = "new_quiz"
	NotifyResultPublished = "result_published"
	NotifyRevalUpdate     = "reval_update"
	NotifyAnnouncement    = "announcement"
)

type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `json:"user_id" gorm:"not null;index:idx_notifications_user_read"`
	Type      string         `json:"type" gorm:"not null"`
	Title     string         `json:"title" gorm:"not null"`
	Body      string         `json:"body" gorm:"type:text;not null"`
	IsRead    bool           `json:"is_read" gorm:"default:false;index:idx_notifications_user_read"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
