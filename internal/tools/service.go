package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wolfman30/clinic-tools/internal/appointments"
	"github.com/wolfman30/clinic-tools/internal/healthrecord"
	"github.com/wolfman30/clinic-tools/internal/messaging"
	"github.com/wolfman30/clinic-tools/internal/observability/metrics"
	"github.com/wolfman30/clinic-tools/pkg/logging"
)

// AppointmentRecorder persists appointments.
type AppointmentRecorder interface {
	Record(ctx context.Context, appt appointments.Appointment) (string, error)
}

// SMSNotifier sends appointment confirmations.
type SMSNotifier interface {
	Notify(ctx context.Context, req messaging.AppointmentSMS) (messaging.Delivery, error)
}

// RecordGenerator renders health records.
type RecordGenerator interface {
	Generate(ctx context.Context, rec healthrecord.HealthRecord) (healthrecord.Document, error)
}

// Archiver copies generated artifacts to long-term storage.
type Archiver interface {
	ArchiveHealthRecord(ctx context.Context, path string) (string, error)
	ArchiveAppointmentLog(ctx context.Context, path string) (string, error)
}

// Service implements the three tool bodies. Every method returns a Result
// and never an error: failures, including panics, become error results.
type Service struct {
	recorder  AppointmentRecorder
	notifier  SMSNotifier
	generator RecordGenerator
	archiver  Archiver
	metrics   *metrics.ToolMetrics
	logger    *logging.Logger
}

// ServiceConfig wires a Service. Archiver and Metrics are optional.
type ServiceConfig struct {
	Recorder  AppointmentRecorder
	Notifier  SMSNotifier
	Generator RecordGenerator
	Archiver  Archiver
	Metrics   *metrics.ToolMetrics
	Logger    *logging.Logger
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Service{
		recorder:  cfg.Recorder,
		notifier:  cfg.Notifier,
		generator: cfg.Generator,
		archiver:  cfg.Archiver,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
}

// QueueAppointment appends the appointment to the log.
func (s *Service) QueueAppointment(ctx context.Context, req AppointmentRequest) (res Result) {
	logger := s.logger.WithTool(ToolQueueAppointment)
	defer s.finish(ToolQueueAppointment, logger, time.Now(), &res)

	logger.Info("saving appointment")
	appt := appointments.Appointment{
		PatientID:       req.PatientID,
		PatientName:     value(req.PatientName),
		Gender:          value(req.Gender),
		PhoneNumber:     value(req.PhoneNumber),
		Issue:           value(req.Issue),
		AppointmentTime: req.AppointmentTime,
	}
	if req.Age != nil {
		appt.Age = *req.Age
	}

	path, err := s.recorder.Record(ctx, appt)
	if err != nil {
		logger.Error("failed to save appointment", "error", err)
		return ErrorResult(err)
	}
	s.archive(ctx, logger, path, archiverAppointmentLog)

	logger.Info("appointment saved", "path", path)
	return Result{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("Patient %s queued successfully.", value(req.PatientName)),
		Path:    path,
	}
}

// SendAppointmentSMS notifies the patient of their appointment time.
func (s *Service) SendAppointmentSMS(ctx context.Context, req SMSNotifyRequest) (res Result) {
	logger := s.logger.WithTool(ToolSendAppointmentSMS)
	defer s.finish(ToolSendAppointmentSMS, logger, time.Now(), &res)

	logger.Info("sending sms notification")
	delivery, err := s.notifier.Notify(ctx, messaging.AppointmentSMS{
		PhoneNumber:     value(req.PhoneNumber),
		PatientName:     value(req.PatientName),
		AppointmentTime: value(req.AppointmentTime),
	})
	if err != nil {
		s.metrics.ObserveSMS(smsOutcome(err))
		logger.Error("sms sending failed", "error", err)
		return ErrorResult(err)
	}
	s.metrics.ObserveSMS("sent")

	logger.Info("sms sent", "to", delivery.To, "sid", delivery.SID)
	return Result{
		Status:  StatusSent,
		Message: "SMS sent to " + delivery.To,
		SMS:     delivery.Body,
		SID:     delivery.SID,
	}
}

// GenerateHealthRecord renders the record to the configured PDF path.
func (s *Service) GenerateHealthRecord(ctx context.Context, req HealthRecordRequest) (res Result) {
	logger := s.logger.WithTool(ToolGenerateHealthRecord)
	defer s.finish(ToolGenerateHealthRecord, logger, time.Now(), &res)

	logger.Info("generating health record pdf")
	rec := healthrecord.HealthRecord{
		PatientName:       value(req.PatientName),
		Gender:            value(req.Gender),
		PhoneNumber:       value(req.PhoneNumber),
		Symptoms:          value(req.Symptoms),
		Duration:          value(req.Duration),
		ChronicConditions: value(req.ChronicConditions),
		FamilyHistory:     value(req.FamilyHistory),
		Diagnosis:         value(req.Diagnosis),
		Prescriptions:     value(req.Prescriptions),
	}
	if req.Age != nil {
		rec.Age = *req.Age
	}

	doc, err := s.generator.Generate(ctx, rec)
	if err != nil {
		logger.Error("failed to generate pdf", "error", err)
		return ErrorResult(err)
	}
	s.archive(ctx, logger, doc.Path, archiverHealthRecord)

	logger.Info("pdf generated", "path", doc.Path, "pages", doc.Pages)
	return Result{
		Status:  StatusSuccess,
		Message: "Health record PDF generated successfully.",
		Path:    doc.Path,
	}
}

// finish converts a panic into an error result and records metrics.
func (s *Service) finish(tool string, logger *logging.Logger, start time.Time, res *Result) {
	if r := recover(); r != nil {
		logger.Error("tool panicked", "panic", r)
		*res = ErrorResult(fmt.Errorf("internal error: %v", r))
	}
	s.metrics.ObserveInvocation(tool, res.Status, time.Since(start))
}

type archiveKind int

const (
	archiverAppointmentLog archiveKind = iota
	archiverHealthRecord
)

// archive is best effort; the tool result does not depend on it.
func (s *Service) archive(ctx context.Context, logger *logging.Logger, path string, kind archiveKind) {
	if s.archiver == nil {
		return
	}
	var (
		key string
		err error
	)
	switch kind {
	case archiverAppointmentLog:
		key, err = s.archiver.ArchiveAppointmentLog(ctx, path)
	case archiverHealthRecord:
		key, err = s.archiver.ArchiveHealthRecord(ctx, path)
	}
	if err != nil {
		logger.Warn("archive upload failed", "path", path, "error", err)
		return
	}
	if key != "" {
		logger.Debug("archived", "path", path, "s3_key", key)
	}
}

func smsOutcome(err error) string {
	switch {
	case errors.Is(err, messaging.ErrInvalidPhoneNumber):
		return "invalid_phone"
	case errors.Is(err, messaging.ErrTransportUnconfigured):
		return "unconfigured"
	case errors.Is(err, messaging.ErrCircuitOpen):
		return "circuit_open"
	default:
		return "failed"
	}
}
