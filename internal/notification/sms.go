package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type SMSConfig struct {
	APIURL string
	APIKey string
	Sender string
	DryRun bool
}

// SMSClient sends text messages through a Mobizon-style HTTP gateway.
type SMSClient struct {
	config SMSConfig
	client *http.Client
	logger *slog.Logger
}

type smsResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

func NewSMSClient(config SMSConfig, logger *slog.Logger) *SMSClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMSClient{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// ErrSMSNotConfigured is returned when a real send is attempted without an
// API key.
var ErrSMSNotConfigured = errors.New("sms gateway api key is not configured")

// SendSMS delivers text to a domestic mobile number. In dry-run mode the
// message is only logged.
func (c *SMSClient) SendSMS(ctx context.Context, phoneNumber, text string) error {
	recipient := internationalNumber(phoneNumber)

	if c.config.DryRun {
		c.logger.Info("sms dry-run", "recipient", recipient, "sender", c.config.Sender, "text", text)
		return nil
	}
	if c.config.APIKey == "" {
		return ErrSMSNotConfigured
	}

	form := url.Values{
		"apiKey":    {c.config.APIKey},
		"recipient": {recipient},
		"text":      {text},
	}
	if c.config.Sender != "" {
		form.Set("from", c.config.Sender)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("failed to read sms response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	var result smsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse sms response: %w", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("sms gateway returned error code %d: %s", result.Code, result.Message)
	}

	c.logger.Info("sms sent", "recipient", recipient, "message_id", result.Data.MessageID)
	return nil
}

// internationalNumber turns 010-1234-5678 into 821012345678.
func internationalNumber(phoneNumber string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phoneNumber)
	if strings.HasPrefix(digits, "0") {
		return "82" + digits[1:]
	}
	return digits
}
