package archive

import "time"

// Kind labels what an archived object is.
type Kind string

const (
	KindHealthRecord   Kind = "health_record"
	KindAppointmentLog Kind = "appointment_log"
)

// ManifestEntry is one JSONL line in the monthly manifest.
type ManifestEntry struct {
	Kind       Kind      `json:"kind"`
	S3Key      string    `json:"s3_key"`
	SourcePath string    `json:"source_path"`
	SizeBytes  int       `json:"size_bytes"`
	ArchivedAt time.Time `json:"archived_at"`
}
