package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/pkg/logger"
	"github.com/jwalitptl/hospital-ops/pkg/messaging"
	"github.com/jwalitptl/hospital-ops/pkg/metrics"
)

type mockBroker struct {
	mock.Mock
}

func (m *mockBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

func (m *mockBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	args := m.Called(ctx, channel)
	return nil, args.Error(1)
}

func (m *mockBroker) Close() error {
	return m.Called().Error(0)
}

func TestService_NotifyPublishes(t *testing.T) {
	broker := new(mockBroker)
	m := metrics.NewTestMetrics()
	svc := NewService(broker, 0, logger.Nop(), m)

	broker.On("Publish", mock.Anything, messaging.NotificationsChannel, mock.MatchedBy(func(req model.NotificationRequest) bool {
		return req.Channel == model.NotificationChannelSMS && req.ID != "" && !req.CreatedAt.IsZero()
	})).Return(nil).Once()

	svc.Notify(model.NotificationRequest{Channel: model.NotificationChannelSMS, Recipient: "+91980000000", AppointmentID: "A1"})
	svc.Close()

	broker.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsPublished.WithLabelValues("sms")))
}

func TestService_NotifyFailureIsSwallowed(t *testing.T) {
	broker := new(mockBroker)
	m := metrics.NewTestMetrics()
	svc := NewService(broker, 0, logger.Nop(), m)

	broker.On("Publish", mock.Anything, messaging.NotificationsChannel, mock.Anything).
		Return(errors.New("connection refused")).Once()

	assert.NotPanics(t, func() {
		svc.Notify(model.NotificationRequest{Channel: model.NotificationChannelEmail})
		svc.Close()
	})

	broker.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsFailed.WithLabelValues("email")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.NotificationsPublished.WithLabelValues("email")))
}
