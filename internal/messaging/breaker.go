package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/wolfman30/clinic-tools/pkg/logging"
)

// ErrCircuitOpen is returned while the breaker refuses sends.
var ErrCircuitOpen = errors.New("sms circuit open")

// BreakerSender stops calling the provider after consecutive failures and
// lets one trial send through once the cooldown expires. Each message is still
// attempted at most once.
type BreakerSender struct {
	next Sender
	cb   *gobreaker.CircuitBreaker[string]
}

// NewBreakerSender wraps next. failures is the consecutive failure count
// that opens the circuit.
func NewBreakerSender(next Sender, failures uint32, cooldown time.Duration, logger *logging.Logger) *BreakerSender {
	if logger == nil {
		logger = logging.Default()
	}
	if failures == 0 {
		failures = 1
	}
	settings := gobreaker.Settings{
		Name:        "twilio-sms",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("sms circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		// Caller cancellation says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &BreakerSender{next: next, cb: gobreaker.NewCircuitBreaker[string](settings)}
}

// Send forwards msg unless the circuit is open.
func (b *BreakerSender) Send(ctx context.Context, msg OutboundSMS) (string, error) {
	sid, err := b.cb.Execute(func() (string, error) {
		return b.next.Send(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", ErrCircuitOpen
	}
	return sid, err
}
