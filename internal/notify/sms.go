package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"trafix/internal/platform/config"
	"trafix/pkg/platform/sentinel"
)

// SMSDispatcher posts messages to an HTTP SMS gateway. The sender identity is
// pre-provisioned with the gateway; this client only references it.
type SMSDispatcher struct {
	gatewayURL string
	apiKey     string
	sender     string
	client     *http.Client
}

// NewSMSDispatcher builds a dispatcher from the SMS gateway configuration.
func NewSMSDispatcher(cfg config.SMSConfig) (*SMSDispatcher, error) {
	if cfg.GatewayURL == "" {
		return nil, fmt.Errorf("sms gateway URL is required")
	}
	return &SMSDispatcher{
		gatewayURL: cfg.GatewayURL,
		apiKey:     cfg.APIKey,
		sender:     cfg.Sender,
		client:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type smsRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send performs one delivery attempt. Non-2xx responses and transport errors
// surface as sentinel.ErrUnavailable so callers can distinguish delivery
// failure from validation failure.
func (d *SMSDispatcher) Send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(smsRequest{From: d.sender, To: phone, Message: message})
	if err != nil {
		return fmt.Errorf("marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway unreachable: %w", sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sms gateway returned %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}
	return nil
}
