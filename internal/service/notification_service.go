package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
	"github.com/campushub/timetable-api/pkg/jobs"
	"github.com/campushub/timetable-api/pkg/mail"
)

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByType(ctx context.Context, t models.NotificationType) ([]models.Notification, error)
}

type notificationUserRepository interface {
	ListEmailsByRole(ctx context.Context, role models.UserRole) ([]string, error)
}

type notificationEnrollmentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentWithStudent, error)
}

// AnnouncementRequest broadcasts a message to every student.
type AnnouncementRequest struct {
	Message string `json:"message" validate:"required"`
}

type emailJobPayload struct {
	To      []string
	Bcc     []string
	Subject string
	Body    string
}

// NotificationService stores broadcast records and dispatches the emails
// behind them through a background queue so request latency never waits on
// SMTP.
type NotificationService struct {
	repo        notificationRepository
	users       notificationUserRepository
	enrollments notificationEnrollmentRepository
	mailer      mail.Mailer
	queue       *jobs.Queue
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewNotificationService instantiates NotificationService and its dispatch
// queue. Call Start before use and Stop on shutdown. metrics may be nil.
func NewNotificationService(repo notificationRepository, users notificationUserRepository, enrollments notificationEnrollmentRepository, mailer mail.Mailer, queueCfg jobs.QueueConfig, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		repo:        repo,
		users:       users,
		enrollments: enrollments,
		mailer:      mailer,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
	if queueCfg.Logger == nil {
		queueCfg.Logger = logger
	}
	s.queue = jobs.NewQueue("notifications", s.handleEmailJob, queueCfg)
	return s
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the dispatch workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Announce stores an announcement and emails every student, bcc'd so
// addresses are not disclosed.
func (s *NotificationService) Announce(ctx context.Context, req AnnouncementRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}

	notification := &models.Notification{
		Message: req.Message,
		Type:    models.NotificationAnnouncement,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store announcement")
	}

	emails, err := s.users.ListEmailsByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student emails")
	}

	if len(emails) > 0 {
		s.enqueue(emailJobPayload{
			Bcc:     emails,
			Subject: "Announcement",
			Body:    req.Message,
		})
	}
	return notification, nil
}

// BroadcastTimetableUpdate emails every student individually that the
// timetable changed.
func (s *NotificationService) BroadcastTimetableUpdate(ctx context.Context) error {
	emails, err := s.users.ListEmailsByRole(ctx, models.RoleStudent)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student emails")
	}
	for _, email := range emails {
		s.enqueue(emailJobPayload{
			To:      []string{email},
			Subject: "Timetable Update",
			Body:    "There is an update to the timetable. Please check the latest timetable.",
		})
	}
	return nil
}

// List returns stored notifications of the given type.
func (s *NotificationService) List(ctx context.Context, t models.NotificationType) ([]models.Notification, error) {
	notifications, err := s.repo.ListByType(ctx, t)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// NotifyTimetableUpdate stores a timetable-update record and emails each
// enrolled student individually. Failures are logged, never surfaced to
// the write that triggered them.
func (s *NotificationService) NotifyTimetableUpdate(ctx context.Context, courseID, message string) {
	notification := &models.Notification{
		Message: message,
		Type:    models.NotificationTimetableUpdate,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to store timetable update notification", zap.Error(err))
	}

	roster, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Warn("failed to list enrolled students for notification",
			zap.String("course_id", courseID), zap.Error(err))
		return
	}

	for _, enrollment := range roster {
		s.enqueue(emailJobPayload{
			To:      []string{enrollment.StudentEmail},
			Subject: "Timetable Update",
			Body:    message,
		})
	}
}

func (s *NotificationService) enqueue(payload emailJobPayload) {
	if err := s.queue.Enqueue(jobs.Job{Type: "email", Payload: payload}); err != nil {
		s.logger.Warn("failed to enqueue notification email", zap.Error(err))
		return
	}
	s.metrics.RecordEmailQueued()
}

func (s *NotificationService) handleEmailJob(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(emailJobPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	return s.mailer.Send(mail.Message{
		To:      payload.To,
		Bcc:     payload.Bcc,
		Subject: payload.Subject,
		Body:    payload.Body,
	})
}
