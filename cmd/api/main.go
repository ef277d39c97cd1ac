package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "github.com/campushub/timetable-api/api/swagger"
	"github.com/campushub/timetable-api/internal/handler"
	"github.com/campushub/timetable-api/internal/repository"
	"github.com/campushub/timetable-api/internal/router"
	"github.com/campushub/timetable-api/internal/service"
	"github.com/campushub/timetable-api/pkg/cache"
	"github.com/campushub/timetable-api/pkg/config"
	"github.com/campushub/timetable-api/pkg/database"
	"github.com/campushub/timetable-api/pkg/jobs"
	"github.com/campushub/timetable-api/pkg/logger"
	"github.com/campushub/timetable-api/pkg/mail"
)

// @title CampusHub Timetable API
// @version 1.0.0
// @description University timetabling backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, timetable cache disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	mailer := mail.NewSMTP(cfg.Mail, logr)
	validate := service.NewValidator()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	resourceSvc := service.NewResourceService(resourceRepo, validate, logr)
	facultySvc := service.NewFacultyService(facultyRepo, userRepo, courseRepo, validate, logr)
	bookingSvc := service.NewBookingService(bookingRepo, roomRepo, resourceRepo, metricsSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, userRepo, courseRepo, validate, logr)

	notificationSvc := service.NewNotificationService(notificationRepo, userRepo, enrollmentRepo, mailer, jobs.QueueConfig{
		Workers:    cfg.Notifications.WorkerCount,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	}, metricsSvc, validate, logr)

	timetableSvc := service.NewTimetableService(enrollmentRepo, sessionRepo, cacheRepo, cfg.Timetable.CacheTTL, metricsSvc, logr)
	sessionSvc := service.NewSessionService(sessionRepo, courseRepo, roomRepo, facultyRepo, notificationSvc, timetableSvc, metricsSvc, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Course:       handler.NewCourseHandler(courseSvc),
		Room:         handler.NewRoomHandler(roomSvc),
		Resource:     handler.NewResourceHandler(resourceSvc),
		Faculty:      handler.NewFacultyHandler(facultySvc),
		Booking:      handler.NewBookingHandler(bookingSvc),
		Session:      handler.NewSessionHandler(sessionSvc),
		Enrollment:   handler.NewEnrollmentHandler(enrollmentSvc),
		Timetable:    handler.NewTimetableHandler(timetableSvc),
		Notification: handler.NewNotificationHandler(notificationSvc),
		Metrics:      handler.NewMetricsHandler(metricsSvc, db.Ping),
	}

	engine := router.New(cfg, logr, authSvc, metricsSvc, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
