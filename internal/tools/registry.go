package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	ToolQueueAppointment     = "queue_appointment"
	ToolSendAppointmentSMS   = "send_appointment_sms"
	ToolGenerateHealthRecord = "generate_health_record"
)

// Handler runs one tool. The error return is reserved for input rejected
// before the tool body runs; tool failures are reported in the Result.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Descriptor is one entry in the static tool table.
type Descriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
	Handler     Handler     `json:"-"`
}

// Registry is an immutable, ordered set of tools built once at start-up.
type Registry struct {
	order  []Descriptor
	byName map[string]Descriptor
}

// NewRegistry builds the registry from descriptors. Duplicate names are a
// programming error and panic.
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{byName: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if _, dup := r.byName[d.Name]; dup {
			panic(fmt.Sprintf("tools: duplicate tool %q", d.Name))
		}
		r.order = append(r.order, d)
		r.byName[d.Name] = d
	}
	return r
}

// Descriptors returns the tools in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.order))
	copy(out, r.order)
	return out
}

// Lookup returns the descriptor for name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Invoke decodes args and runs the named tool.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	d, ok := r.byName[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return d.Handler(ctx, args)
}

// Descriptors returns the clinic tools backed by s, in a fixed order.
func (s *Service) Descriptors() []Descriptor {
	return []Descriptor{
		{
			Name:        ToolQueueAppointment,
			Description: "Record a patient appointment in the clinic's appointment log.",
			InputSchema: appointmentSchema,
			Handler: func(ctx context.Context, args json.RawMessage) (Result, error) {
				var req AppointmentRequest
				if err := decodeArgs(args, &req); err != nil {
					return Result{}, err
				}
				return s.QueueAppointment(ctx, req), nil
			},
		},
		{
			Name:        ToolSendAppointmentSMS,
			Description: "Send the patient an SMS confirming their appointment time.",
			InputSchema: smsSchema,
			Handler: func(ctx context.Context, args json.RawMessage) (Result, error) {
				var req SMSNotifyRequest
				if err := decodeArgs(args, &req); err != nil {
					return Result{}, err
				}
				return s.SendAppointmentSMS(ctx, req), nil
			},
		},
		{
			Name:        ToolGenerateHealthRecord,
			Description: "Generate a PDF health record for the patient.",
			InputSchema: healthRecordSchema,
			Handler: func(ctx context.Context, args json.RawMessage) (Result, error) {
				var req HealthRecordRequest
				if err := decodeArgs(args, &req); err != nil {
					return Result{}, err
				}
				return s.GenerateHealthRecord(ctx, req), nil
			},
		},
	}
}
