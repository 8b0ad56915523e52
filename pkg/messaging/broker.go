package messaging

import (
	"context"
	"errors"
)

// NotificationsChannel carries NotificationRequest payloads.
const NotificationsChannel = "notifications"

var (
	ErrBrokerClosed   = errors.New("broker closed")
	ErrSubscriberBusy = errors.New("subscriber buffer full")
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Pinger is implemented by brokers that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
