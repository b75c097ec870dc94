package model

import "time"

// AIFeedback is a denormalized copy of an attempt's feedback payload, kept in
// its own table for independent query access. One row per attempt, upserted
// whenever feedback generation succeeds.
type AIFeedback struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	AttemptID uint            `json:"attempt_id" gorm:"not null;uniqueIndex"`
	StudentID uint            `json:"student_id" gorm:"index"`
	Payload   FeedbackPayload `json:"payload" gorm:"serializer:json"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
