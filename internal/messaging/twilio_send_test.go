package messaging

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-tools/pkg/logging"
)

func TestTwilioSenderSend(t *testing.T) {
	var gotForm url.Values
	var gotPath, gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		raw, _ := io.ReadAll(r.Body)
		gotForm, _ = url.ParseQuery(string(raw))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	sender := NewTwilioSender("AC1", "token", "+15550001111", logging.Discard(), WithTwilioBaseURL(srv.URL+"/"))
	sid, err := sender.Send(context.Background(), OutboundSMS{To: "+919876543210", Body: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "SM123", sid)
	assert.Equal(t, "/2010-04-01/Accounts/AC1/Messages.json", gotPath)
	assert.Equal(t, "AC1", gotUser)
	assert.Equal(t, "token", gotPass)
	assert.Equal(t, "+919876543210", gotForm.Get("To"))
	assert.Equal(t, "+15550001111", gotForm.Get("From"))
	assert.Equal(t, "hi", gotForm.Get("Body"))
}

func TestTwilioSenderNoRetryOnFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"code":20503,"message":"Service unavailable"}`))
	}))
	defer srv.Close()

	sender := NewTwilioSender("AC1", "token", "+15550001111", logging.Discard(), WithTwilioBaseURL(srv.URL))
	_, err := sender.Send(context.Background(), OutboundSMS{To: "+919876543210", Body: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503 code 20503: Service unavailable")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTwilioSenderValidation(t *testing.T) {
	ctx := context.Background()
	_, err := NewTwilioSender("", "", "+1555", logging.Discard()).Send(ctx, OutboundSMS{To: "+1", Body: "x"})
	assert.ErrorContains(t, err, "credentials missing")

	sender := NewTwilioSender("AC1", "token", "", logging.Discard())
	_, err = sender.Send(ctx, OutboundSMS{To: "+1", Body: "x"})
	assert.ErrorContains(t, err, "from required")

	_, err = sender.Send(ctx, OutboundSMS{From: "+1", Body: "x"})
	assert.ErrorContains(t, err, "to required")

	_, err = sender.Send(ctx, OutboundSMS{To: "+1", From: "+2", Body: "  "})
	assert.ErrorContains(t, err, "body required")
}

func TestFormatTwilioError(t *testing.T) {
	assert.Equal(t, "status 500", formatTwilioError(500, nil))
	assert.Equal(t, "status 400: bad", formatTwilioError(400, []byte(`{"message":"bad"}`)))
	assert.Equal(t, "status 502: <html>", formatTwilioError(502, []byte(" <html> ")))
}
