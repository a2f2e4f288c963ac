package appointments

import (
	"errors"
	"time"
)

// QueuedAtLayout formats the server-assigned timestamp column.
const QueuedAtLayout = "2006-01-02 15:04:05"

// ErrPersistence wraps every failure to create, open, append to or save the log.
var ErrPersistence = errors.New("appointment log persistence failed")

// Header is the fixed first row of the appointment log.
var Header = []string{
	"Patient ID", "Name", "Age", "Gender", "Phone Number",
	"Issue", "Appointment Time", "Queued At",
}

// columnWidths matches Header one-to-one.
var columnWidths = []float64{14, 20, 6, 10, 16, 40, 20, 22}

// Appointment is one caller-supplied booking. QueuedAt is never taken from the
// caller; the recorder stamps it at write time.
type Appointment struct {
	PatientID       string
	PatientName     string
	Age             int
	Gender          string
	PhoneNumber     string
	Issue           string
	AppointmentTime string
}

func (a Appointment) row(queuedAt time.Time) []any {
	return []any{
		a.PatientID,
		a.PatientName,
		a.Age,
		a.Gender,
		a.PhoneNumber,
		a.Issue,
		a.AppointmentTime,
		queuedAt.Format(QueuedAtLayout),
	}
}
