package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/clinic-tools/internal/messaging/templates"
	"github.com/wolfman30/clinic-tools/pkg/logging"
)

var (
	// ErrTransportUnconfigured is returned when no sender credentials were supplied.
	ErrTransportUnconfigured = errors.New("sms transport not configured")
	// ErrTransportFailure wraps any error raised by the sender.
	ErrTransportFailure = errors.New("sms transport failure")
)

// AppointmentSMS is the transient request to notify a patient.
type AppointmentSMS struct {
	PhoneNumber     string
	PatientName     string
	AppointmentTime string
}

// Delivery describes a submitted message.
type Delivery struct {
	To   string
	Body string
	SID  string
}

// Notifier composes appointment confirmations and hands them to a Sender.
type Notifier struct {
	sender   Sender
	reason   string
	phone    PhoneOptions
	renderer templates.Renderer
	logger   *logging.Logger
}

// NewNotifier wires a notifier. A nil sender leaves the notifier in the
// unconfigured state; reason explains why and is surfaced to callers.
func NewNotifier(sender Sender, reason string, phone PhoneOptions, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Notifier{
		sender: sender,
		reason: reason,
		phone:  phone,
		logger: logger,
	}
}

// Configured reports whether a transport is available.
func (n *Notifier) Configured() bool {
	return n != nil && n.sender != nil
}

// Notify normalises the destination, renders the body and submits it once.
func (n *Notifier) Notify(ctx context.Context, req AppointmentSMS) (Delivery, error) {
	var phone PhoneOptions
	if n != nil {
		phone = n.phone
	}
	to, err := NormalizeE164(req.PhoneNumber, phone)
	if err != nil {
		return Delivery{}, err
	}
	if !n.Configured() {
		if n != nil && n.reason != "" {
			return Delivery{}, fmt.Errorf("%w: %s", ErrTransportUnconfigured, n.reason)
		}
		return Delivery{}, ErrTransportUnconfigured
	}

	body, err := n.renderer.AppointmentSMS(templates.AppointmentData{
		PatientName:     req.PatientName,
		AppointmentTime: req.AppointmentTime,
	})
	if err != nil {
		return Delivery{}, err
	}

	sid, err := n.sender.Send(ctx, OutboundSMS{To: to, Body: body})
	if err != nil {
		n.logger.Error("sms sending failed", "to", to, "error", err)
		return Delivery{}, fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}
	return Delivery{To: to, Body: body, SID: sid}, nil
}
