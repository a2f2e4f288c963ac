package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/clinic-tools/internal/config"
	"github.com/wolfman30/clinic-tools/internal/tools"
	"github.com/wolfman30/clinic-tools/pkg/logging"
)

func TestSetupToolMetricsExposesMetrics(t *testing.T) {
	handler, toolMetrics := setupToolMetrics()
	require.NotNil(t, handler)
	require.NotNil(t, toolMetrics)

	toolMetrics.ObserveInvocation("queue_appointment", "success", 0)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "clinic_tools_invocations_total")
}

func TestSetupArchiveDisabledWithoutBucket(t *testing.T) {
	archiver, err := setupArchive(context.Background(), &appconfig.Config{}, logging.Discard())
	require.NoError(t, err)
	assert.Nil(t, archiver)
}

func TestSetupArchiveWithBucket(t *testing.T) {
	cfg := &appconfig.Config{
		AWSRegion:           "us-east-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
		ArchiveBucket:       "clinic-artifacts",
	}
	archiver, err := setupArchive(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	assert.NotNil(t, archiver)
}

func testConfig(t *testing.T) *appconfig.Config {
	t.Helper()
	dir := t.TempDir()
	return &appconfig.Config{
		Env:                     "test",
		AppointmentsPath:        filepath.Join(dir, "appointments.xlsx"),
		HealthRecordPath:        filepath.Join(dir, "health_record.pdf"),
		TwilioBaseURL:           "https://api.twilio.com",
		PhoneDefaultCountryCode: "+91",
		PhonePermissive:         true,
	}
}

func postTool(t *testing.T, h http.Handler, name, body string) (int, tools.Result) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/tools/"+name, strings.NewReader(body)))
	var res tools.Result
	if rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	}
	return rr.Code, res
}

func TestBuildHandlerServesTools(t *testing.T) {
	cfg := testConfig(t)
	h, err := buildHandler(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	code, res := postTool(t, h, tools.ToolQueueAppointment,
		`{"patient_name":"Asha","age":34,"gender":"F","phone_number":"9876543210","issue":"fever"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, tools.StatusSuccess, res.Status)
	assert.Equal(t, "Patient Asha queued successfully.", res.Message)
	_, err = os.Stat(cfg.AppointmentsPath)
	assert.NoError(t, err)

	code, res = postTool(t, h, tools.ToolGenerateHealthRecord, `{
		"patient_name":"Asha","age":34,"gender":"F","phone_number":"9876543210",
		"symptoms":"fever","duration":"3 days","chronic_conditions":"none",
		"family_history":"none","diagnosis":"viral fever","prescriptions":"rest"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, tools.StatusSuccess, res.Status)
	_, err = os.Stat(cfg.HealthRecordPath)
	assert.NoError(t, err)

	code, res = postTool(t, h, tools.ToolSendAppointmentSMS,
		`{"phone_number":"9876543210","patient_name":"Asha","appointment_time":"10 AM"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, tools.StatusError, res.Status)

	code, _ = postTool(t, h, tools.ToolQueueAppointment, `{"patient_name":"Asha","age":"34"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = postTool(t, h, "unknown_tool", `{}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBuildHandlerListsTools(t *testing.T) {
	h, err := buildHandler(context.Background(), testConfig(t), logging.Discard())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tools", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	var names []string
	for _, tool := range body.Tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{
		tools.ToolQueueAppointment,
		tools.ToolSendAppointmentSMS,
		tools.ToolGenerateHealthRecord,
	}, names)
}
