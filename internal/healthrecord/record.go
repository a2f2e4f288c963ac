package healthrecord

import (
	"errors"
	"strconv"
)

// ErrRender wraps every failure while drawing or writing the document.
var ErrRender = errors.New("health record render failed")

// HealthRecord holds the ten fields printed on the document, in print order.
type HealthRecord struct {
	PatientName       string
	Age               int
	Gender            string
	PhoneNumber       string
	Symptoms          string
	Duration          string
	ChronicConditions string
	FamilyHistory     string
	Diagnosis         string
	Prescriptions     string
}

// Lines returns one "Label: value" entry per field. Values are not escaped.
func (h HealthRecord) Lines() []string {
	return []string{
		"Patient Name: " + h.PatientName,
		"Age: " + strconv.Itoa(h.Age),
		"Gender: " + h.Gender,
		"Phone Number: " + h.PhoneNumber,
		"Symptoms: " + h.Symptoms,
		"Duration: " + h.Duration,
		"Chronic Conditions: " + h.ChronicConditions,
		"Family History: " + h.FamilyHistory,
		"Diagnosis: " + h.Diagnosis,
		"Prescriptions: " + h.Prescriptions,
	}
}

// Document describes a rendered file.
type Document struct {
	Path  string
	Pages int
	Lines int
}
