package dto

// TopicStat counts graded answers per question topic.
type TopicStat struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

type DashboardStatsResponse struct {
	TotalUsers     int64             `json:"total_users"`
	TotalQuizzes   int64             `json:"total_quizzes"`
	TotalAttempts  int64             `json:"total_attempts"`
	RecentAttempts []AttemptResponse `json:"recent_attempts"`
}

type StudentReportResponse struct {
	StudentID      uint                 `json:"student_id"`
	TotalAttempts  int                  `json:"total_attempts"`
	AvgScore       float64              `json:"avg_score"`
	TotalScore     float64              `json:"total_score"`
	TotalMaxScore  float64              `json:"total_max_score"`
	Attempts       []AttemptResponse    `json:"attempts"`
	TopicBreakdown map[string]TopicStat `json:"topic_breakdown"`
}

type QuizStat struct {
	QuizID        uint    `json:"quiz_id"`
	Title         string  `json:"title"`
	TotalAttempts int     `json:"total_attempts"`
	AvgScore      float64 `json:"avg_score"`
}

type TeacherReportResponse struct {
	TeacherID     uint       `json:"teacher_id"`
	TotalQuizzes  int        `json:"total_quizzes"`
	TotalAttempts int        `json:"total_attempts"`
	QuizStats     []QuizStat `json:"quiz_stats"`
}
