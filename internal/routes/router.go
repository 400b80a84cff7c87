package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-records-api/api/swagger"
	"github.com/noah-isme/school-records-api/internal/handler"
	"github.com/noah-isme/school-records-api/internal/middleware"
	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/internal/service"
	"github.com/noah-isme/school-records-api/pkg/config"
	"github.com/noah-isme/school-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-records-api/pkg/middleware/requestid"
	"github.com/noah-isme/school-records-api/pkg/sessioncookie"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *service.MetricsService
	DB         pinger
	Auth       *service.AuthService
	Cookies    *sessioncookie.Codec
	Students   *service.StudentService
	Attendance *service.AttendanceService
	Grades     *service.GradeService
	Behavior   *service.BehaviorService
	Stats      *service.StatsService
	Export     *service.ExportService
	Audit      auditWriter
}

// SetupRoutes builds the engine with the global middleware chain, the public
// health endpoints, login and the session-aware API group.
func SetupRoutes(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))

	metricsHandler := handler.NewMetricsHandler(deps.Metrics, deps.DB, deps.Logger)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.Config.APIPrefix)
	auth := handler.NewAuthHandler(deps.Auth, deps.Cookies, deps.Logger)
	// Login never reads the incoming session, so a session store outage
	// must not block it.
	api.POST("/login", auth.Login)

	sessioned := api.Group("")
	sessioned.Use(middleware.Session(deps.Auth, deps.Cookies))
	sessioned.POST("/logout", auth.Logout)
	sessioned.GET("/me", auth.Me)

	authRequired := sessioned.Group("")
	authRequired.Use(middleware.RequireSession())
	registerStudentRoutes(authRequired, deps)
	registerRecordRoutes(authRequired, deps)

	return r
}

func registerStudentRoutes(group *gin.RouterGroup, deps Dependencies) {
	teacherOnly := middleware.RequireRoles(models.RoleTeacher)
	students := handler.NewStudentHandler(deps.Students, deps.Export)
	group.GET("/students", teacherOnly, students.List)
	group.POST("/students", teacherOnly, middleware.Audit(deps.Audit, deps.Logger, models.AuditActionStudentCreate, "student"), students.Create)
	group.GET("/students/:id", students.Get)
	group.GET("/students/:id/export", students.Export)

	stats := handler.NewStatsHandler(deps.Stats)
	group.GET("/stats", teacherOnly, stats.Get)
}

func registerRecordRoutes(group *gin.RouterGroup, deps Dependencies) {
	records := handler.NewRecordHandler(deps.Attendance, deps.Grades, deps.Behavior)
	teachers := group.Group("")
	teachers.Use(middleware.RequireRoles(models.RoleTeacher))
	teachers.POST("/attendance", middleware.Audit(deps.Audit, deps.Logger, models.AuditActionAttendanceCreate, "attendance"), records.AddAttendance)
	teachers.POST("/grades", middleware.Audit(deps.Audit, deps.Logger, models.AuditActionGradeCreate, "grade"), records.AddGrade)
	teachers.POST("/behavior", middleware.Audit(deps.Audit, deps.Logger, models.AuditActionBehaviorCreate, "behavior"), records.AddBehavior)
}
