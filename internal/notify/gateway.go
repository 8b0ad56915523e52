package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/jwalitptl/hospital-ops/internal/model"
	"github.com/jwalitptl/hospital-ops/pkg/circuitbreaker"
)

type GatewayConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	// FailureThreshold and OpenTimeout tune the breaker around the gateway.
	FailureThreshold uint32
	OpenTimeout      time.Duration
	Logger           zerolog.Logger
}

// GatewaySender posts SMS and WhatsApp messages to an HTTP messaging
// gateway as JSON.
type GatewaySender struct {
	url    string
	apiKey string
	client *http.Client
	cb     *gobreaker.CircuitBreaker
}

type gatewayMessage struct {
	Channel   string `json:"channel"`
	To        string `json:"to"`
	Message   string `json:"message"`
	Reference string `json:"reference,omitempty"`
}

func NewGatewaySender(cfg GatewayConfig) *GatewaySender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GatewaySender{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
		cb: circuitbreaker.New(circuitbreaker.Settings{
			Name:             "messaging-gateway",
			FailureThreshold: cfg.FailureThreshold,
			OpenTimeout:      cfg.OpenTimeout,
			Logger:           cfg.Logger,
		}),
	}
}

func (s *GatewaySender) Send(ctx context.Context, req model.NotificationRequest) error {
	if req.Recipient == "" {
		return ErrNoRecipient
	}

	body, err := json.Marshal(gatewayMessage{
		Channel:   string(req.Channel),
		To:        req.Recipient,
		Message:   req.Message,
		Reference: req.AppointmentID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal gateway message: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	_, err = s.cb.Execute(func() (interface{}, error) {
		resp, err := s.client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("gateway request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	return err
}
