package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/clinic-tools/pkg/logging"
)

var twilioSendTracer = otel.Tracer("clinictools.internal.messaging.twilio_send")

const defaultTwilioBaseURL = "https://api.twilio.com"

// OutboundSMS is a single message handed to a Sender.
type OutboundSMS struct {
	To   string
	From string
	Body string
}

// Sender submits one SMS and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg OutboundSMS) (string, error)
}

// TwilioSender posts SMS messages using Twilio's REST API.
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// TwilioOption customises a TwilioSender.
type TwilioOption func(*TwilioSender)

// WithTwilioBaseURL points the sender at a different API host.
func WithTwilioBaseURL(base string) TwilioOption {
	return func(s *TwilioSender) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			s.baseURL = base
		}
	}
}

// WithTwilioHTTPClient swaps the underlying HTTP client.
func WithTwilioHTTPClient(client *http.Client) TwilioOption {
	return func(s *TwilioSender) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewTwilioSender builds a sender with sane defaults.
func NewTwilioSender(accountSID, authToken, defaultFrom string, logger *logging.Logger, opts ...TwilioOption) *TwilioSender {
	if logger == nil {
		logger = logging.Default()
	}
	s := &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       defaultFrom,
		baseURL:    defaultTwilioBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Sender = (*TwilioSender)(nil)

// Send dispatches a single SMS. Failures are returned as-is; nothing is retried.
func (s *TwilioSender) Send(ctx context.Context, msg OutboundSMS) (string, error) {
	if s.accountSID == "" || s.authToken == "" {
		return "", errors.New("messaging: twilio credentials missing")
	}
	if msg.To == "" {
		return "", errors.New("messaging: to required")
	}
	if msg.From == "" {
		msg.From = s.from
	}
	if msg.From == "" {
		return "", errors.New("messaging: from required")
	}
	if strings.TrimSpace(msg.Body) == "" {
		return "", errors.New("messaging: body required")
	}

	ctx, span := twilioSendTracer.Start(ctx, "messaging.twilio.send")
	defer span.End()
	span.SetAttributes(attribute.String("clinictools.to", msg.To))

	payload := url.Values{}
	payload.Set("To", msg.To)
	payload.Set("From", msg.From)
	payload.Set("Body", msg.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, url.PathEscape(s.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("twilio send failed: %s", formatTwilioError(resp.StatusCode, body))
		span.RecordError(err)
		span.SetStatus(codes.Error, "non-2xx")
		return "", err
	}

	var parsed struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("twilio send: decode response: %w", err)
	}
	if parsed.SID == "" {
		return "", errors.New("twilio send: response missing sid")
	}
	span.SetAttributes(attribute.String("twilio.sid", parsed.SID))
	s.logger.Info("twilio sms sent", "to", msg.To, "sid", parsed.SID, "provider_status", parsed.Status)
	return parsed.SID, nil
}

type twilioAPIError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func formatTwilioError(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fmt.Sprintf("status %d", status)
	}
	var parsed twilioAPIError
	if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil && parsed.Message != "" {
		if parsed.Code != 0 {
			return fmt.Sprintf("status %d code %d: %s", status, parsed.Code, parsed.Message)
		}
		return fmt.Sprintf("status %d: %s", status, parsed.Message)
	}
	// Fallback: return raw body (truncated by ReadAll limit).
	return fmt.Sprintf("status %d: %s", status, trimmed)
}
