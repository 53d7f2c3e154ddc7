package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Sender delivers a single HTML email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// APIClient delivers mail through an HTTP mail API such as Mailtrap. One
// POST per message, bearer-key authenticated.
type APIClient struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	fromEmail  string
	fromName   string
	logger     *slog.Logger
}

type APIClientConfig struct {
	APIURL    string
	APIKey    string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

func NewAPIClient(cfg APIClientConfig, logger *slog.Logger) *APIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &APIClient{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		logger:     logger,
	}
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendRequest struct {
	From    address   `json:"from"`
	To      []address `json:"to"`
	Subject string    `json:"subject"`
	HTML    string    `json:"html"`
}

func (c *APIClient) Send(ctx context.Context, to, subject, htmlBody string) error {
	payload, err := json.Marshal(sendRequest{
		From:    address{Email: c.fromEmail, Name: c.fromName},
		To:      []address{{Email: to}},
		Subject: subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	c.logger.Debug("mail sent", "to", to, "subject", subject)
	return nil
}

// LogSender stands in for a real mail API in development: it logs the
// message instead of delivering it.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, subject, htmlBody string) error {
	s.logger.Info("mail delivery skipped, no mail API configured",
		"to", to,
		"subject", subject,
		"body_length", len(htmlBody))
	return nil
}
