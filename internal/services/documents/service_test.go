package documents

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/common"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Upload.MaxSizeMB = 1
	return NewService(cfg, nil, nil, nil, arbor.NewLogger())
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Upload(context.Background(), "report.pdf", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Reason, "empty")
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc := newTestService(t)
	content := append([]byte("%PDF-1.7"), make([]byte, 2*1024*1024)...)

	_, err := svc.Upload(context.Background(), "report.pdf", content)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Reason, "maximum size")
}

func TestUploadRejectsNonPDFContent(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Upload(context.Background(), "report.pdf", []byte("<html>not a pdf</html>"))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "file is not a PDF", validationErr.Reason)
}

func TestUploadRejectsTruncatedPDF(t *testing.T) {
	svc := newTestService(t)

	// Carries the magic prefix but is not a parseable document.
	_, err := svc.Upload(context.Background(), "report.pdf", []byte("%PDF-1.7\ngarbage"))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Reason, "not a valid PDF")
}

func TestIsPDFFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"report.pdf", true},
		{"REPORT.PDF", true},
		{"archive/report.Pdf", true},
		{"report.pdf.exe", false},
		{"report.txt", false},
		{"report", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPDFFilename(tt.filename))
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Reason: "file is not a PDF"}
	assert.True(t, strings.Contains(err.Error(), "not a PDF"))
}
