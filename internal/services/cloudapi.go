package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agriconnect/whatsapp-backend/pkg/logger"
)

const defaultGraphURL = "https://graph.facebook.com"

// CloudAPIConfig holds WhatsApp Cloud API credentials.
type CloudAPIConfig struct {
	AccessToken   string
	PhoneNumberID string
	APIVersion    string
	GraphURL      string
	Timeout       time.Duration
}

// CloudAPIDispatcher sends text messages through the WhatsApp Cloud API.
type CloudAPIDispatcher struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	logger      *logger.Logger
}

type cloudTextMessage struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Text             cloudText `json:"text"`
}

type cloudText struct {
	Body string `json:"body"`
}

// NewCloudAPIDispatcher validates the credentials and builds a dispatcher.
func NewCloudAPIDispatcher(cfg CloudAPIConfig, log *logger.Logger) (*CloudAPIDispatcher, error) {
	if cfg.AccessToken == "" || cfg.PhoneNumberID == "" {
		return nil, errors.New("WHATSAPP_ACCESS_TOKEN and WHATSAPP_PHONE_NUMBER_ID are required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v18.0"
	}
	if cfg.GraphURL == "" {
		cfg.GraphURL = defaultGraphURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &CloudAPIDispatcher{
		endpoint:    fmt.Sprintf("%s/%s/%s/messages", strings.TrimRight(cfg.GraphURL, "/"), cfg.APIVersion, cfg.PhoneNumberID),
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      logger.OrGlobal(log),
	}, nil
}

// Send posts a single text message. No retries: a failed reply is simply lost.
func (c *CloudAPIDispatcher) Send(ctx context.Context, to, body string) error {
	if to == "" {
		return errors.New("whatsapp: recipient required")
	}

	payload, err := json.Marshal(cloudTextMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             cloudText{Body: body},
	})
	if err != nil {
		return fmt.Errorf("whatsapp: failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("whatsapp: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp: send failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}
	return nil
}
