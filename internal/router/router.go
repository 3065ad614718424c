package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/nurseprep-backend/internal/config"
	"github.com/stemsi/nurseprep-backend/internal/handler"
	"github.com/stemsi/nurseprep-backend/internal/logger"
	"github.com/stemsi/nurseprep-backend/internal/metrics"
	"github.com/stemsi/nurseprep-backend/internal/middleware"
	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/response"
	"github.com/stemsi/nurseprep-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	StudentMgmt   *handler.StudentManagementHandler
	AdminUser     *handler.AdminUserHandler
	Dashboard     *handler.DashboardHandler
	Media         *handler.MediaHandler
	Exam          *handler.ExamHandler
	Question      *handler.QuestionHandler
	WS            *handler.WSHandler
	Monitor       *handler.MonitorHandler
	System        *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// authLimiter guards the login endpoints; the caller owns its lifetime.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	authLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the access log and every handler share it.
	router.Use(response.RequestIDMiddleware(log))
	router.Use(logger.AccessLog(log))
	router.Use(metrics.Middleware())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", metrics.Handler())
	router.Static("/uploads", cfg.UploadDir)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/student/login", authLimiter.Middleware(), handlers.Auth.StudentLogin)
		auth.POST("/admin/login", authLimiter.Middleware(), handlers.Auth.AdminLogin)

		// Authenticated profile routes
		auth.POST("/student/logout", middleware.RequireStudentJWT(authService), handlers.Auth.StudentLogout)
		auth.GET("/student/me",
			middleware.RequireStudentJWT(authService),
			middleware.CheckSingleDeviceSession(authService),
			handlers.Auth.GetStudentProfile,
		)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/lobby", handlers.StudentPortal.GetLobby)
		studentAPI.POST("/exams/:exam_id/join", handlers.StudentPortal.JoinExam)
		studentAPI.GET("/exams/:exam_id/paper", handlers.StudentPortal.GetExamPaper)
		studentAPI.GET("/exams/:exam_id/state", handlers.StudentPortal.GetExamState)
		studentAPI.GET("/exams/:exam_id/review", handlers.StudentPortal.GetReview)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireStudentWSAuth(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		ws.GET("/student/exams/:exam_id/stream", handlers.WS.ExamWebSocketStream)
	}

	// ─── 4. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Student management
		adminAPI.GET("/students",
			middleware.RequirePermission(model.PermissionStudentsRead),
			handlers.StudentMgmt.ListStudents,
		)
		adminAPI.POST("/students",
			middleware.RequirePermission(model.PermissionStudentsWrite),
			handlers.StudentMgmt.CreateStudent,
		)
		adminAPI.PUT("/students/:id",
			middleware.RequirePermission(model.PermissionStudentsWrite),
			handlers.StudentMgmt.UpdateStudent,
		)
		adminAPI.DELETE("/students/:id",
			middleware.RequirePermission(model.PermissionStudentsWrite),
			handlers.StudentMgmt.DeleteStudent,
		)
		adminAPI.POST("/students/:id/reset-session",
			middleware.RequirePermission(model.PermissionStudentsResetSession),
			handlers.StudentMgmt.ResetStudentSession,
		)

		// Staff accounts
		adminAPI.GET("/roles",
			middleware.RequirePermission(model.PermissionAdminsManage),
			handlers.AdminUser.GetRoles,
		)
		adminAPI.GET("/admins",
			middleware.RequirePermission(model.PermissionAdminsManage),
			handlers.AdminUser.ListAdmins,
		)
		adminAPI.POST("/admins",
			middleware.RequirePermission(model.PermissionAdminsManage),
			handlers.AdminUser.CreateAdmin,
		)
		adminAPI.PUT("/admins/:id",
			middleware.RequirePermission(model.PermissionAdminsManage),
			handlers.AdminUser.UpdateAdmin,
		)
		adminAPI.DELETE("/admins/:id",
			middleware.RequirePermission(model.PermissionAdminsManage),
			handlers.AdminUser.DeleteAdmin,
		)

		adminAPI.GET("/dashboard",
			middleware.RequirePermission(model.PermissionExamsRead),
			handlers.Dashboard.GetDashboardData,
		)

		// Question banks
		qbankWrite := middleware.RequireAnyPermission(model.PermissionQBanksWriteOwn, model.PermissionQBanksWriteAll)
		adminAPI.GET("/qbanks",
			middleware.RequirePermission(model.PermissionExamsRead),
			handlers.Question.ListQBanks,
		)
		adminAPI.POST("/qbanks", qbankWrite, handlers.Question.CreateQBank)
		adminAPI.POST("/qbanks/validate", qbankWrite, handlers.Question.ValidateQuestions)
		adminAPI.GET("/qbanks/:qbank_id",
			middleware.RequirePermission(model.PermissionExamsRead),
			handlers.Question.GetQBank,
		)
		adminAPI.GET("/qbanks/:qbank_id/questions", qbankWrite, handlers.Question.ListQuestions)
		adminAPI.POST("/qbanks/:qbank_id/questions", qbankWrite, handlers.Question.AddQuestion)
		adminAPI.PUT("/qbanks/:qbank_id/questions", qbankWrite, handlers.Question.ReplaceQuestions)
		adminAPI.DELETE("/questions/:question_id", qbankWrite, handlers.Question.DeleteQuestion)
		adminAPI.POST("/media/upload", qbankWrite, handlers.Media.UploadMedia)

		// Exam management
		adminAPI.GET("/exams",
			middleware.RequirePermission(model.PermissionExamsRead),
			handlers.Exam.ListExams,
		)
		adminAPI.POST("/exams",
			middleware.RequirePermission(model.PermissionExamsWriteOwn),
			handlers.Exam.CreateExam,
		)
		adminAPI.GET("/exams/:exam_id",
			middleware.RequirePermission(model.PermissionExamsRead),
			handlers.Exam.GetExam,
		)
		adminAPI.PATCH("/exams/:exam_id",
			middleware.RequirePermission(model.PermissionExamsWriteOwn),
			handlers.Exam.UpdateExam,
		)
		adminAPI.POST("/exams/:exam_id/publish",
			middleware.RequirePermission(model.PermissionExamsPublish),
			handlers.Exam.PublishExam,
		)
		adminAPI.POST("/exams/:exam_id/refresh-cache",
			middleware.RequirePermission(model.PermissionExamsPublish),
			handlers.Exam.RefreshExamCache,
		)
		adminAPI.GET("/exams/:exam_id/results",
			middleware.RequirePermission(model.PermissionExamsRead),
			handlers.Exam.GetExamResults,
		)
		adminAPI.GET("/exams/:exam_id/results/:student_id",
			middleware.RequirePermission(model.PermissionExamsRead),
			handlers.Exam.GetStudentReview,
		)
		adminAPI.GET("/exams/:exam_id/monitor",
			middleware.RequirePermission(model.PermissionExamsRead),
			handlers.Monitor.MonitorExamSSE,
		)

		adminAPI.GET("/system/status",
			middleware.RequirePermission(model.PermissionExamsRead),
			handlers.System.SystemStatus,
		)
	}

	return router
}
