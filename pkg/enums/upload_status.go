package enums

import "fmt"

// UploadStatus tracks PDF ingestion progress for the chat pipeline.
type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "PENDING"
	UploadStatusProcessing UploadStatus = "PROCESSING"
	UploadStatusFailed     UploadStatus = "FAILED"
	UploadStatusSuccess    UploadStatus = "SUCCESS"
)

var validUploadStatuses = []UploadStatus{
	UploadStatusPending,
	UploadStatusProcessing,
	UploadStatusFailed,
	UploadStatusSuccess,
}

// String implements fmt.Stringer.
func (s UploadStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known UploadStatus.
func (s UploadStatus) IsValid() bool {
	for _, candidate := range validUploadStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseUploadStatus converts raw input into an UploadStatus.
func ParseUploadStatus(value string) (UploadStatus, error) {
	for _, candidate := range validUploadStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid upload status %q", value)
}
