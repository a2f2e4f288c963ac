package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/wolfman30/clinic-tools/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store copies generated artifacts to S3. If bucket is empty, all operations are no-ops.
type Store struct {
	bucket   string
	s3Client S3API
	now      func() time.Time
	newID    func() string
	logger   *logging.Logger

	// manifestMu serialises the read-modify-write of the manifest object.
	manifestMu sync.Mutex
}

// NewStore creates an archive Store.
func NewStore(s3Client S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		bucket:   bucket,
		s3Client: s3Client,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		logger:   logger,
	}
}

// Enabled returns true if archival is configured (bucket is set).
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// ArchiveHealthRecord uploads a rendered PDF under a unique dated key.
func (s *Store) ArchiveHealthRecord(ctx context.Context, path string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	now := s.now()
	key := fmt.Sprintf("health-records/%d/%02d/%02d/%s.pdf", now.Year(), now.Month(), now.Day(), s.newID())
	return s.upload(ctx, KindHealthRecord, path, key, "application/pdf")
}

// ArchiveAppointmentLog replaces the bucket's copy of the appointment log.
func (s *Store) ArchiveAppointmentLog(ctx context.Context, path string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	key := "appointments/" + filepath.Base(path)
	return s.upload(ctx, KindAppointmentLog, path, key,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func (s *Store) upload(ctx context.Context, kind Kind, path, key, contentType string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("archive: read %s: %w", path, err)
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("archive: s3 put %s: %w", key, err)
	}
	s.logger.Info("archived artifact to S3", "kind", kind, "s3_key", key, "size_bytes", len(data))

	entry := ManifestEntry{
		Kind:       kind,
		S3Key:      key,
		SourcePath: path,
		SizeBytes:  len(data),
		ArchivedAt: s.now(),
	}
	if err := s.AppendManifest(ctx, entry); err != nil {
		// The artifact itself is already stored.
		s.logger.Warn("failed to append manifest", "error", err, "s3_key", key)
	}
	return key, nil
}

// AppendManifest appends a JSONL line to the monthly manifest file.
// Uses read-modify-write since S3 doesn't support append.
func (s *Store) AppendManifest(ctx context.Context, entry ManifestEntry) error {
	if !s.Enabled() {
		return nil
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}

	at := entry.ArchivedAt
	if at.IsZero() {
		at = s.now()
	}
	manifestKey := fmt.Sprintf("manifests/%d-%02d.jsonl", at.Year(), at.Month())

	s.manifestMu.Lock()
	defer s.manifestMu.Unlock()

	var existing []byte
	getResp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(manifestKey),
	})
	if err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("archive: s3 get manifest: %w", err)
		}
		s.logger.Debug("manifest not found, creating new", "key", manifestKey)
	} else {
		existing, err = io.ReadAll(getResp.Body)
		getResp.Body.Close()
		if err != nil {
			return fmt.Errorf("archive: read manifest: %w", err)
		}
	}

	var buf bytes.Buffer
	if len(existing) > 0 {
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(line)
	buf.WriteByte('\n')

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(manifestKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put manifest: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") || strings.Contains(msg, "StatusCode: 404")
}
