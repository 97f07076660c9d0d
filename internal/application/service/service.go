package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	appmetrics "github.com/jmassie/standard-forestry-operations-api/internal/application/metrics"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/notify"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/store"
)

type ApplicationStore interface {
	CreateIfIDAvailable(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id models.ApplicationID) (*models.Application, error)
	FindForUpdate(ctx context.Context, id models.ApplicationID) (*models.Application, error)
	List(ctx context.Context) ([]*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	Patch(ctx context.Context, id models.ApplicationID, p models.Patch, now time.Time) error
	Delete(ctx context.Context, id models.ApplicationID, now time.Time) error
}

type SettStore interface {
	Create(ctx context.Context, sett *models.Sett) error
	DeleteByApplication(ctx context.Context, applicationID models.ApplicationID) error
	ListByApplications(ctx context.Context, ids []models.ApplicationID) (map[models.ApplicationID][]*models.Sett, error)
}

type RevocationStore interface {
	Create(ctx context.Context, r *models.Revocation) error
	ListByApplication(ctx context.Context, applicationID models.ApplicationID) ([]*models.Revocation, error)
}

// Notifier sends the confirmation email.
type Notifier interface {
	SendEmail(ctx context.Context, email notify.Email) error
}

// StoreTx groups store calls into one all-or-nothing unit. Stores find the
// transaction in the context passed to fn.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// IDGenerator draws a candidate identity.
type IDGenerator func() models.ApplicationID

// NotificationConfig identifies the confirmation email sent after an update.
type NotificationConfig struct {
	TemplateID string
	ReplyToID  string
}

// DefaultNotificationConfig is the licensing team's confirmation template.
var DefaultNotificationConfig = NotificationConfig{
	TemplateID: "843889da-5a85-470c-a9e5-38f68cdb9ae1",
	ReplyToID:  "4b49467e-2a35-4713-9d92-809c55bf1cdd",
}

// maxAllocationAttempts bounds identity redraws under contention.
const maxAllocationAttempts = 10

// Service orchestrates the application lifecycle: identity allocation, full
// and partial updates, and revocation.
type Service struct {
	applications ApplicationStore
	setts        SettStore
	revocations  RevocationStore
	tx           StoreTx
	notifier     Notifier
	notification NotificationConfig
	nextID       IDGenerator
	logger       *slog.Logger
	metrics      *appmetrics.Metrics
	tracer       trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *appmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStoreTx sets the transaction runner. Without it the service uses an
// in-memory transaction, which only protects stores registered with it.
func WithStoreTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithNotification sets the sender and template used for confirmation emails.
func WithNotification(sender Notifier, cfg NotificationConfig) Option {
	return func(s *Service) {
		s.notifier = sender
		s.notification = cfg
	}
}

func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Service) {
		s.nextID = gen
	}
}

// New constructs a Service.
func New(applications ApplicationStore, setts SettStore, revocations RevocationStore, opts ...Option) *Service {
	s := &Service{
		applications: applications,
		setts:        setts,
		revocations:  revocations,
		notification: DefaultNotificationConfig,
		nextID:       randomID,
		tracer:       otel.Tracer("github.com/jmassie/standard-forestry-operations-api/internal/application/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = store.NewMemoryTx()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogSender(s.logger)
	}
	return s
}

// randomID draws uniformly from 1..MaxApplicationID.
func randomID() models.ApplicationID {
	return models.ApplicationID(rand.IntN(models.MaxApplicationID) + 1)
}
