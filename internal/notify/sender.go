// Package notify delivers notification requests to patients over email, SMS
// and WhatsApp.
package notify

import (
	"context"
	"errors"

	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
)

var ErrNoRecipient = errors.New("notification has no recipient")

type Sender interface {
	Send(ctx context.Context, req model.NotificationRequest) error
}

// LogSender only logs. It stands in for channels with no configured gateway.
type LogSender struct {
	logger *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{logger: log.With("notify")}
}

func (s *LogSender) Send(ctx context.Context, req model.NotificationRequest) error {
	if req.Recipient == "" {
		return ErrNoRecipient
	}
	s.logger.Info("notification not delivered, no gateway configured",
		"notification_id", req.ID,
		"channel", string(req.Channel),
		"appointment_id", req.AppointmentID,
	)
	return ctx.Err()
}
