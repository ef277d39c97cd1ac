package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/handler"
	"github.com/campushub/timetable-api/internal/middleware"
	"github.com/campushub/timetable-api/internal/models"
	"github.com/campushub/timetable-api/internal/service"
	"github.com/campushub/timetable-api/pkg/config"
	"github.com/campushub/timetable-api/pkg/logger"
	corsmiddleware "github.com/campushub/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushub/timetable-api/pkg/middleware/requestid"
)

// Handlers collects every HTTP handler mounted by New.
type Handlers struct {
	Auth         *handler.AuthHandler
	Course       *handler.CourseHandler
	Room         *handler.RoomHandler
	Resource     *handler.ResourceHandler
	Faculty      *handler.FacultyHandler
	Booking      *handler.BookingHandler
	Session      *handler.SessionHandler
	Enrollment   *handler.EnrollmentHandler
	Timetable    *handler.TimetableHandler
	Notification *handler.NotificationHandler
	Metrics      *handler.MetricsHandler
}

// New assembles the gin engine: global middleware, operational endpoints
// and the versioned API route table.
func New(cfg *config.Config, logr *zap.Logger, authSvc *service.AuthService, metricsSvc *service.MetricsService, h Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "route not found"})
	})

	authn := middleware.JWT(authSvc)
	admin := middleware.RequireRoles(models.RoleAdmin)
	facultyOrAdmin := middleware.RequireRoles(models.RoleFaculty, models.RoleAdmin)
	selfOrStaff := middleware.RBAC("SELF", string(models.RoleFaculty), string(models.RoleAdmin))

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.GET("/me", authn, h.Auth.Me)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", h.Course.List)
		courses.GET("/:id", h.Course.Get)
		courses.POST("", authn, facultyOrAdmin, h.Course.Create)
		courses.PUT("/:id", authn, facultyOrAdmin, h.Course.Update)
		courses.DELETE("/:id", authn, facultyOrAdmin, h.Course.Delete)
	}

	rooms := api.Group("/rooms")
	{
		rooms.GET("", h.Room.List)
		rooms.POST("", authn, facultyOrAdmin, h.Room.Create)
		rooms.PATCH("/:id/availability", authn, facultyOrAdmin, h.Room.UpdateAvailability)
		rooms.DELETE("/:id", authn, facultyOrAdmin, h.Room.Delete)
	}

	resources := api.Group("/resources")
	{
		resources.GET("", h.Resource.List)
		resources.POST("", authn, facultyOrAdmin, h.Resource.Create)
		resources.PATCH("/:id/availability", authn, facultyOrAdmin, h.Resource.UpdateAvailability)
		resources.DELETE("/:id", authn, facultyOrAdmin, h.Resource.Delete)
	}

	faculty := api.Group("/faculty", authn)
	{
		faculty.GET("", h.Faculty.List)
		faculty.POST("/assign-course", admin, h.Faculty.AssignCourse)
	}

	bookings := api.Group("/bookings", authn)
	{
		bookings.GET("", admin, h.Booking.List)
		bookings.GET("/:id", admin, h.Booking.Get)
		bookings.POST("", facultyOrAdmin, h.Booking.Create)
		bookings.PUT("/:id", facultyOrAdmin, h.Booking.Update)
		bookings.DELETE("/:id", facultyOrAdmin, h.Booking.Delete)
	}

	sessions := api.Group("/class-sessions", authn, facultyOrAdmin)
	{
		sessions.GET("", h.Session.List)
		sessions.POST("", h.Session.Create)
		sessions.PUT("/:id", h.Session.Update)
		sessions.DELETE("/:id", h.Session.Delete)
	}

	enrollments := api.Group("/enrollments", authn)
	{
		enrollments.POST("/enroll", h.Enrollment.Enroll)
		enrollments.GET("/student/:studentId", selfOrStaff, h.Enrollment.ListByStudent)
		enrollments.GET("/course/:courseId", facultyOrAdmin, h.Enrollment.ListByCourse)
		enrollments.DELETE("/:id", facultyOrAdmin, h.Enrollment.Delete)
	}

	timetable := api.Group("/timetable", authn)
	{
		timetable.GET("/:studentId", selfOrStaff, h.Timetable.Get)
		timetable.GET("/:studentId/export", selfOrStaff, h.Timetable.Export)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("/announcements", h.Notification.Announcements)
		notifications.POST("/announcement", authn, facultyOrAdmin, h.Notification.Announce)
		notifications.POST("/timetable-update", authn, facultyOrAdmin, h.Notification.TimetableUpdate)
	}

	return r
}
