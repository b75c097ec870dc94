package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quizforge/quizforge/config"
	"github.com/quizforge/quizforge/database"
	_ "github.com/quizforge/quizforge/docs" // Swagger docs - auto-generated
	"github.com/quizforge/quizforge/internal/controller"
	"github.com/quizforge/quizforge/internal/logger"
	"github.com/quizforge/quizforge/internal/middleware"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/quizforge/quizforge/internal/repository"
	"github.com/quizforge/quizforge/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title QuizForge API
// @version 1.0
// @description Quiz authoring, taking and grading API with AI question generation and feedback.
// @host localhost:8080
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewUserRepository,
			repository.NewQuizRepository,
			repository.NewQuestionRepository,
			repository.NewAttemptRepository,
			repository.NewFeedbackRepository,
			repository.NewNotificationRepository,
		),

		fx.Provide(
			service.NewTokenService,
			service.NewAuthService,
			service.NewGeminiLLMService,
			service.NewQuizService,
			service.NewQuestionService,
			service.NewAttemptService,
			service.NewNotificationService,
			service.NewReportService,
		),

		fx.Provide(
			controller.NewAuthController,
			controller.NewQuizController,
			controller.NewQuestionController,
			controller.NewAttemptController,
			controller.NewNotificationController,
			controller.NewReportController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer wires the API surface and manages the HTTP
// server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	tokens service.TokenService,
	authCtrl *controller.AuthController,
	quizCtrl *controller.QuizController,
	questionCtrl *controller.QuestionController,
	attemptCtrl *controller.AttemptController,
	notificationCtrl *controller.NotificationController,
	reportCtrl *controller.ReportController,
) {
	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authCtrl.Register)
		auth.POST("/login", authCtrl.Login)
		auth.POST("/refresh", authCtrl.Refresh)
	}

	authed := api.Group("")
	authed.Use(middleware.Authenticate(tokens))
	{
		staffOnly := middleware.RequireRoles(model.RoleTeacher, model.RoleAdmin)

		quizzes := authed.Group("/quizzes")
		quizzes.GET("", quizCtrl.List)
		quizzes.GET("/:id", quizCtrl.Get)
		quizzes.POST("", staffOnly, quizCtrl.Create)
		quizzes.PUT("/:id", staffOnly, quizCtrl.Update)
		quizzes.POST("/:id/publish", staffOnly, quizCtrl.Publish)
		quizzes.POST("/generate", staffOnly, quizCtrl.Generate)

		questions := authed.Group("/questions")
		questions.Use(staffOnly)
		questions.POST("", questionCtrl.Create)
		questions.PUT("/:id", questionCtrl.Update)
		questions.GET("/bank", questionCtrl.Bank)

		attempts := authed.Group("/attempts")
		attempts.POST("/start", attemptCtrl.Start)
		attempts.GET("", attemptCtrl.List)
		attempts.GET("/:id", attemptCtrl.Get)
		attempts.POST("/:id/submit", attemptCtrl.Submit)
		attempts.POST("/:id/reval", attemptCtrl.RequestRevaluation)

		notifications := authed.Group("/notifications")
		notifications.GET("", notificationCtrl.List)
		notifications.POST("/mark-read", notificationCtrl.MarkRead)

		authed.GET("/dashboard/stats", staffOnly, reportCtrl.DashboardStats)

		reports := authed.Group("/reports")
		reports.GET("/student/:id", reportCtrl.StudentReport)
		reports.GET("/teacher/:id", staffOnly, reportCtrl.TeacherReport)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("QuizForge API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Quiz{},
		&model.Question{},
		&model.Attempt{},
		&model.AIFeedback{},
		&model.Notification{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
