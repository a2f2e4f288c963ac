package messaging

import (
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/clinic-tools/pkg/logging"
)

// ProviderConfig captures the credentials required to build the outbound sender.
type ProviderConfig struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	TwilioBaseURL    string
	Timeout          time.Duration

	// BreakerFailures consecutive failures open the circuit for
	// BreakerCooldown. Zero disables the breaker.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// BuildSender instantiates the Twilio sender. When credentials are missing it
// returns nil and a reason naming the absent settings.
func BuildSender(cfg ProviderConfig, logger *logging.Logger) (Sender, string) {
	if logger == nil {
		logger = logging.Default()
	}
	var missing []string
	if strings.TrimSpace(cfg.TwilioAccountSID) == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID missing")
	}
	if strings.TrimSpace(cfg.TwilioAuthToken) == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN missing")
	}
	if strings.TrimSpace(cfg.TwilioFromNumber) == "" {
		missing = append(missing, "TWILIO_FROM_NUMBER missing")
	}
	if len(missing) > 0 {
		return nil, strings.Join(missing, ", ")
	}

	opts := []TwilioOption{WithTwilioBaseURL(cfg.TwilioBaseURL)}
	if cfg.Timeout > 0 {
		opts = append(opts, WithTwilioHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	twilio := NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger, opts...)
	if cfg.BreakerFailures == 0 {
		return twilio, ""
	}
	return NewBreakerSender(twilio, cfg.BreakerFailures, cfg.BreakerCooldown, logger), ""
}
