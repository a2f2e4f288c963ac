package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Required text fields are pointers so that an empty string is accepted
// while an absent or null key is rejected.

// AppointmentRequest is the input of queue_appointment.
type AppointmentRequest struct {
	PatientID       string  `json:"patient_id,omitempty"`
	PatientName     *string `json:"patient_name" validate:"required"`
	Age             *int    `json:"age" validate:"required,gte=0,lte=150"`
	Gender          *string `json:"gender" validate:"required"`
	PhoneNumber     *string `json:"phone_number" validate:"required"`
	Issue           *string `json:"issue" validate:"required"`
	AppointmentTime string  `json:"appointment_time,omitempty"`
}

// SMSNotifyRequest is the input of send_appointment_sms.
type SMSNotifyRequest struct {
	PhoneNumber     *string `json:"phone_number" validate:"required"`
	PatientName     *string `json:"patient_name" validate:"required"`
	AppointmentTime *string `json:"appointment_time" validate:"required"`
}

// HealthRecordRequest is the input of generate_health_record.
type HealthRecordRequest struct {
	PatientName       *string `json:"patient_name" validate:"required"`
	Age               *int    `json:"age" validate:"required,gte=0,lte=150"`
	Gender            *string `json:"gender" validate:"required"`
	PhoneNumber       *string `json:"phone_number" validate:"required"`
	Symptoms          *string `json:"symptoms" validate:"required"`
	Duration          *string `json:"duration" validate:"required"`
	ChronicConditions *string `json:"chronic_conditions" validate:"required"`
	FamilyHistory     *string `json:"family_history" validate:"required"`
	Diagnosis         *string `json:"diagnosis" validate:"required"`
	Prescriptions     *string `json:"prescriptions" validate:"required"`
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// decodeArgs parses raw JSON arguments into dst and validates them.
// Unknown fields are ignored.
func decodeArgs(raw json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &InputError{Problems: []string{"arguments object required"}}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(dst); err != nil {
		return &InputError{Problems: []string{describeDecodeError(err)}}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &InputError{Problems: []string{"unexpected data after arguments object"}}
	}

	if err := requestValidator().Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &InputError{Problems: []string{err.Error()}}
		}
		problems := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			problems = append(problems, describeFieldError(fe))
		}
		return &InputError{Problems: problems}
	}
	return nil
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field != "" {
			return fmt.Sprintf("%s: expected %s", typeErr.Field, typeErr.Type)
		}
		return fmt.Sprintf("expected object, got %s", typeErr.Value)
	}
	return "malformed JSON: " + err.Error()
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + ": field required"
	case "gte":
		return fmt.Sprintf("%s: must be >= %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s: must be <= %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag())
	}
}
