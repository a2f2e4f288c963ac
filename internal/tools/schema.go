package tools

// Property is a single JSON Schema property.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
}

// InputSchema is the JSON Schema advertised for a tool's arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

type field struct {
	name     string
	prop     Property
	required bool
}

func text(name, description string) field {
	return field{name: name, prop: Property{Type: "string", Description: description}, required: true}
}

func optionalText(name, description string) field {
	f := text(name, description)
	f.required = false
	return f
}

func age() field {
	lo, hi := 0.0, 150.0
	return field{
		name:     "age",
		prop:     Property{Type: "integer", Description: "Patient age in years", Minimum: &lo, Maximum: &hi},
		required: true,
	}
}

func objectSchema(fields ...field) InputSchema {
	s := InputSchema{Type: "object", Properties: make(map[string]Property, len(fields))}
	for _, f := range fields {
		s.Properties[f.name] = f.prop
		if f.required {
			s.Required = append(s.Required, f.name)
		}
	}
	return s
}

var (
	appointmentSchema = objectSchema(
		optionalText("patient_id", "External patient identifier, if known"),
		text("patient_name", "Patient full name"),
		age(),
		text("gender", "Patient gender"),
		text("phone_number", "Patient phone number in any format"),
		text("issue", "Reason for the visit"),
		optionalText("appointment_time", "Requested appointment time"),
	)

	smsSchema = objectSchema(
		text("phone_number", "Destination phone number in any format"),
		text("patient_name", "Patient name used in the greeting"),
		text("appointment_time", "Appointment time as it should appear in the message"),
	)

	healthRecordSchema = objectSchema(
		text("patient_name", "Patient full name"),
		age(),
		text("gender", "Patient gender"),
		text("phone_number", "Patient phone number"),
		text("symptoms", "Reported symptoms"),
		text("duration", "How long the symptoms have lasted"),
		text("chronic_conditions", "Known chronic conditions"),
		text("family_history", "Relevant family history"),
		text("diagnosis", "Diagnosis"),
		text("prescriptions", "Prescribed medication"),
	)
)
