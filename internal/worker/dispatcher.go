package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/notify"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/messaging"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
)

type DispatcherConfig struct {
	SendTimeout time.Duration
}

// Dispatcher consumes notification requests from the broker and hands each
// to the sender registered for its channel. Failed deliveries are logged and
// counted, never retried.
type Dispatcher struct {
	broker  messaging.Broker
	senders map[model.NotificationChannel]notify.Sender
	config  DispatcherConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewDispatcher(
	broker messaging.Broker,
	senders map[model.NotificationChannel]notify.Sender,
	config DispatcherConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Dispatcher {
	if config.SendTimeout <= 0 {
		config.SendTimeout = 10 * time.Second
	}
	return &Dispatcher{
		broker:  broker,
		senders: senders,
		config:  config,
		logger:  logger.With("dispatcher"),
		metrics: metrics,
	}
}

// Start blocks until ctx is cancelled or the subscription ends.
func (d *Dispatcher) Start(ctx context.Context) error {
	msgs, err := d.broker.Subscribe(ctx, messaging.NotificationsChannel)
	if err != nil {
		return err
	}

	d.logger.Info("Starting notification dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Shutting down notification dispatcher")
			return nil
		case payload, ok := <-msgs:
			if !ok {
				d.logger.Info("Notification subscription closed")
				return nil
			}
			d.handle(ctx, payload)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, payload []byte) {
	var req model.NotificationRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		d.metrics.NotificationsDispatched.WithLabelValues("unknown", "malformed").Inc()
		d.logger.Error(err, "Failed to decode notification request")
		return
	}

	channel := string(req.Channel)
	sender, ok := d.senders[req.Channel]
	if !ok {
		d.metrics.NotificationsDispatched.WithLabelValues(channel, "unsupported").Inc()
		d.logger.Warn("No sender for notification channel", "channel", channel, "notification_id", req.ID)
		return
	}

	timer := prometheus.NewTimer(d.metrics.DispatchLatency.WithLabelValues(channel))
	defer timer.ObserveDuration()

	sendCtx, cancel := context.WithTimeout(ctx, d.config.SendTimeout)
	defer cancel()

	if err := sender.Send(sendCtx, req); err != nil {
		status := "failed"
		if errors.Is(err, notify.ErrNoRecipient) {
			status = "skipped"
		}
		d.metrics.NotificationsDispatched.WithLabelValues(channel, status).Inc()
		d.logger.Error(err, "Failed to deliver notification",
			"notification_id", req.ID,
			"channel", channel,
			"appointment_id", req.AppointmentID)
		return
	}

	d.metrics.NotificationsDispatched.WithLabelValues(channel, "sent").Inc()
}
