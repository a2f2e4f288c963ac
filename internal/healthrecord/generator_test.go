package healthrecord

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-tools/pkg/logging"
)

func sampleRecord() HealthRecord {
	return HealthRecord{
		PatientName:       "Asha Verma",
		Age:               34,
		Gender:            "Female",
		PhoneNumber:       "+919876543210",
		Symptoms:          "fever, cough",
		Duration:          "3 days",
		ChronicConditions: "none",
		FamilyHistory:     "diabetes",
		Diagnosis:         "viral infection",
		Prescriptions:     "paracetamol",
	}
}

func TestGenerateSinglePage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health_record.pdf")
	gen := NewGenerator(path, logging.Discard())

	doc, err := gen.Generate(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Pages)
	assert.Equal(t, 10, doc.Lines)
	assert.True(t, filepath.IsAbs(doc.Path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestGenerateWrapsOntoNewPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health_record.pdf")
	rec := sampleRecord()
	rec.Symptoms = strings.Repeat("persistent headache with nausea ", 600)

	doc, err := NewGenerator(path, logging.Discard()).Generate(context.Background(), rec)
	require.NoError(t, err)
	assert.Greater(t, doc.Lines, LetterMetrics.Capacity())
	assert.GreaterOrEqual(t, doc.Pages, 2)
}

func TestGenerateOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health_record.pdf")
	gen := NewGenerator(path, logging.Discard())

	long := sampleRecord()
	long.Diagnosis = strings.Repeat("x ", 3000)
	_, err := gen.Generate(context.Background(), long)
	require.NoError(t, err)
	first, err := os.Stat(path)
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), sampleRecord())
	require.NoError(t, err)
	second, err := os.Stat(path)
	require.NoError(t, err)
	assert.Less(t, second.Size(), first.Size())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerateUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := NewGenerator(filepath.Join(blocker, "record.pdf"), logging.Discard()).Generate(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRender))
}

func TestGenerateFileIsWorldReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "health_record.pdf")
	_, err := NewGenerator(path, logging.Discard()).Generate(context.Background(), sampleRecord())
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
