package notification

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/messaging"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
)

const defaultPublishTimeout = 3 * time.Second

// Service hands notification requests to the broker without waiting for
// them. There is no retry and no delivery guarantee; failures are logged
// and counted.
type Service interface {
	Notify(req model.NotificationRequest)
	// Close waits for in-flight publishes.
	Close()
}

type service struct {
	broker  messaging.Broker
	timeout time.Duration
	logger  *logger.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

func NewService(broker messaging.Broker, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) Service {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &service{
		broker:  broker,
		timeout: timeout,
		logger:  log.With("notification"),
		metrics: m,
	}
}

func (s *service) Notify(req model.NotificationRequest) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// detached from the request: the caller has already responded
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		channel := string(req.Channel)
		if err := s.broker.Publish(ctx, messaging.NotificationsChannel, req); err != nil {
			s.metrics.NotificationsFailed.WithLabelValues(channel).Inc()
			s.logger.Error(err, "failed to publish notification",
				"notification_id", req.ID,
				"channel", channel,
				"appointment_id", req.AppointmentID,
			)
			return
		}
		s.metrics.NotificationsPublished.WithLabelValues(channel).Inc()
	}()
}

func (s *service) Close() {
	s.wg.Wait()
}
