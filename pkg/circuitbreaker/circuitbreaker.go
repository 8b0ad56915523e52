// Package circuitbreaker builds the breakers that guard outbound calls to
// Redis and the messaging gateway.
package circuitbreaker

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
)

type Settings struct {
	Name string
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before a trial call.
	OpenTimeout time.Duration
	Logger      zerolog.Logger
}

func New(settings Settings) *gobreaker.CircuitBreaker {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = defaultFailureThreshold
	}
	timeout := settings.OpenTimeout
	if timeout <= 0 {
		timeout = defaultOpenTimeout
	}
	logger := settings.Logger

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}
