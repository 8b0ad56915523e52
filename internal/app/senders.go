package app

import (
	"github.com/jwalitptl/hospital-ops/internal/config"
	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/internal/notify"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
)

// NewSenders picks a sender per channel. Channels without a configured
// transport fall back to logging.
func NewSenders(cfg config.NotificationsConfig, log *logger.Logger) map[model.NotificationChannel]notify.Sender {
	fallback := notify.NewLogSender(log)
	senders := map[model.NotificationChannel]notify.Sender{
		model.NotificationChannelSMS:      fallback,
		model.NotificationChannelWhatsApp: fallback,
		model.NotificationChannelEmail:    fallback,
	}

	if cfg.SMTP.Host != "" {
		senders[model.NotificationChannelEmail] = notify.NewEmailSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	if cfg.Gateway.URL != "" {
		gw := notify.NewGatewaySender(notify.GatewayConfig{
			URL:     cfg.Gateway.URL,
			APIKey:  cfg.Gateway.APIKey,
			Timeout: cfg.Gateway.Timeout,
			Logger:  log.Zerolog(),
		})
		senders[model.NotificationChannelSMS] = gw
		senders[model.NotificationChannelWhatsApp] = gw
	}
	return senders
}
