package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-tools/pkg/logging"
)

type stubSender struct {
	calls []OutboundSMS
	sid   string
	err   error
}

func (s *stubSender) Send(_ context.Context, msg OutboundSMS) (string, error) {
	s.calls = append(s.calls, msg)
	return s.sid, s.err
}

func TestNotifierNotify(t *testing.T) {
	sender := &stubSender{sid: "SM42"}
	n := NewNotifier(sender, "", PhoneOptions{Permissive: true}, logging.Discard())

	got, err := n.Notify(context.Background(), AppointmentSMS{
		PhoneNumber:     "98765 43210",
		PatientName:     "Ravi",
		AppointmentTime: "2026-10-20 10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "SM42", got.SID)
	assert.Equal(t, "+919876543210", got.To)
	assert.Equal(t, "Hello Ravi, your appointment is scheduled at 2026-10-20 10:00.", got.Body)
	require.Len(t, sender.calls, 1)
	assert.Equal(t, "+919876543210", sender.calls[0].To)
}

func TestNotifierInvalidPhoneNeverSends(t *testing.T) {
	sender := &stubSender{sid: "SM42"}
	n := NewNotifier(sender, "", PhoneOptions{}, logging.Discard())

	_, err := n.Notify(context.Background(), AppointmentSMS{PhoneNumber: "abc", PatientName: "Ravi", AppointmentTime: "now"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPhoneNumber))
	assert.Empty(t, sender.calls)
}

func TestNilNotifierIsUnconfigured(t *testing.T) {
	var n *Notifier
	assert.False(t, n.Configured())

	_, err := n.Notify(context.Background(), AppointmentSMS{PhoneNumber: "9876543210", PatientName: "Ravi", AppointmentTime: "now"})
	assert.True(t, errors.Is(err, ErrTransportUnconfigured))

	_, err = n.Notify(context.Background(), AppointmentSMS{PhoneNumber: "abc", PatientName: "Ravi", AppointmentTime: "now"})
	assert.True(t, errors.Is(err, ErrInvalidPhoneNumber))
}

func TestNotifierUnconfigured(t *testing.T) {
	n := NewNotifier(nil, "TWILIO_ACCOUNT_SID missing", PhoneOptions{}, logging.Discard())
	assert.False(t, n.Configured())

	_, err := n.Notify(context.Background(), AppointmentSMS{PhoneNumber: "9876543210", PatientName: "Ravi", AppointmentTime: "now"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransportUnconfigured))
	assert.Contains(t, err.Error(), "TWILIO_ACCOUNT_SID missing")
}

func TestNotifierTransportFailure(t *testing.T) {
	sender := &stubSender{err: errors.New("connection reset")}
	n := NewNotifier(sender, "", PhoneOptions{}, logging.Discard())

	_, err := n.Notify(context.Background(), AppointmentSMS{PhoneNumber: "9876543210", PatientName: "Ravi", AppointmentTime: "now"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransportFailure))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Len(t, sender.calls, 1)
}
