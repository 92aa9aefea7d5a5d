package api

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/technofest-ar/platform-api/internal/auth"
	"github.com/technofest-ar/platform-api/internal/database"
	"github.com/technofest-ar/platform-api/internal/logger"
	"github.com/technofest-ar/platform-api/internal/repository"
	"github.com/technofest-ar/platform-api/internal/services"
	"github.com/technofest-ar/platform-api/pkg/config"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, db *sql.DB, cfg *config.Config, log logger.Logger) {
	dbWrapper := &database.DB{DB: db}
	svcs := services.NewServices(db, cfg, log)
	repos := repository.NewRepositories(db)

	secureCookies := cfg.Environment == "production"
	authHandler := NewAuthHandler(svcs.Auth, secureCookies)
	registrationHandler := NewRegistrationHandler(svcs.Registration)
	submissionHandler := NewSubmissionHandler(svcs.Submission, cfg.UploadDir)
	evaluationHandler := NewEvaluationHandler(svcs.Evaluation)
	exportHandler := NewExportHandler(svcs.Export)
	versionHandler := NewProgramVersionHandler(repos.ProgramVersion)
	healthHandler := NewHealthHandler(dbWrapper)

	// Public routes
	public := r.Group("/api/v1")
	{
		public.GET("/health", healthHandler.Health)

		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/logout", authHandler.Logout)

		// Participant-facing registration, no account needed
		public.POST("/teams", registrationHandler.RegisterTeam)
		public.POST("/individuals", registrationHandler.RegisterIndividual)

		// Showcase of staff-picked projects
		public.GET("/submissions/featured", submissionHandler.Featured)

		public.GET("/versions/active", versionHandler.GetActive)
	}

	// Routes for any authenticated admin
	protected := r.Group("/api/v1")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/admins", authHandler.ListAdmins)

		// Team endpoints
		protected.GET("/teams", registrationHandler.ListTeams)
		protected.GET("/teams/:id", registrationHandler.GetTeam)
		protected.PUT("/teams/:id/telegram", registrationHandler.UpdateTelegramLink)
		protected.GET("/teams/:id/submissions", submissionHandler.GetByTeam)

		// Individual participant endpoints
		protected.GET("/individuals", registrationHandler.ListIndividuals)

		// Submission endpoints
		protected.POST("/submissions", submissionHandler.Create)
		protected.GET("/submissions", submissionHandler.List)
		protected.GET("/submissions/:id", submissionHandler.Get)
		protected.POST("/submissions/:id/attachments", submissionHandler.UploadAttachments)
		protected.GET("/submissions/:id/attachments/:kind", submissionHandler.DownloadAttachment)
		protected.GET("/submissions/stats", submissionHandler.Stats)

		// Evaluation endpoints
		protected.POST("/submissions/:id/evaluations", evaluationHandler.SubmitEvaluation)
		protected.GET("/submissions/:id/evaluations", evaluationHandler.GetEvaluations)
		protected.GET("/submissions/:id/score", evaluationHandler.GetScore)
		protected.GET("/evaluations/top", evaluationHandler.TopSubmissions)
		protected.GET("/evaluations/stats", evaluationHandler.Stats)

		// PDF exports
		protected.GET("/export/projects/:id", exportHandler.ProjectPDF)
		protected.GET("/export/report", exportHandler.RankedReportPDF)
		protected.GET("/export/teams/:id", exportHandler.TeamPDF)

		protected.GET("/versions", versionHandler.List)
	}

	// Routes restricted to superadmins
	admin := r.Group("/api/v1")
	admin.Use(auth.JWTMiddleware(cfg.JWTSecret))
	admin.Use(auth.RequireSuperAdmin())
	{
		admin.PUT("/admins/:id/weight", authHandler.UpdateWeight)

		admin.POST("/versions", versionHandler.Create)

		admin.POST("/teams/assign", registrationHandler.AssignIndividuals)
		admin.POST("/teams/:id/invites", exportHandler.SendTelegramInvites)

		admin.PUT("/submissions/:id/featured", submissionHandler.SetFeatured)

		admin.POST("/submissions/:id/evaluations/automated", evaluationHandler.RunAutomated)
		admin.POST("/evaluations/automated", evaluationHandler.RunAutomatedBulk)
	}
}
