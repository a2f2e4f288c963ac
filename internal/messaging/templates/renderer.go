package templates

import (
	"bytes"
	"fmt"
	"text/template"
)

// AppointmentConfirmation is the SMS body sent after an appointment is booked.
const AppointmentConfirmation = "Hello {{.PatientName}}, your appointment is scheduled at {{.AppointmentTime}}."

// AppointmentData feeds AppointmentConfirmation.
type AppointmentData struct {
	PatientName     string
	AppointmentTime string
}

// Renderer renders small text templates for outbound messaging.
type Renderer struct{}

// Render compiles the provided template text with strict missing-key semantics.
// Values are inserted verbatim; no HTML escaping is applied.
func (Renderer) Render(name, tmpl string, data any) (string, error) {
	if tmpl == "" {
		return "", fmt.Errorf("templates: template text required")
	}
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("templates: parse: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("templates: execute: %w", err)
	}
	return buf.String(), nil
}

// AppointmentSMS renders the confirmation body.
func (r Renderer) AppointmentSMS(data AppointmentData) (string, error) {
	return r.Render("appointment_confirmation", AppointmentConfirmation, data)
}
