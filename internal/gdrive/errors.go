package gdrive

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// Materialization errors. Each marks a single file as unavailable; none
// of them aborts an ingestion run.
var (
	// ErrExportTooLarge indicates a Workspace file exceeds the export size limit.
	ErrExportTooLarge = errors.New("gdrive: file too large for export")

	// ErrNotDownloadable indicates the file content cannot be fetched.
	ErrNotDownloadable = errors.New("gdrive: file cannot be downloaded")

	// ErrUnsupportedType indicates a file whose content type is skipped.
	ErrUnsupportedType = errors.New("gdrive: unsupported content type")
)

// Drive API error reasons for the failure modes we classify.
const (
	reasonExportSizeLimit = "exportSizeLimitExceeded"
	reasonNotDownloadable = "fileNotDownloadable"
)

// IsExportSizeLimit returns true if the error indicates the export size
// limit was exceeded.
func IsExportSizeLimit(err error) bool {
	return errors.Is(err, ErrExportTooLarge) || hasReason(err, reasonExportSizeLimit)
}

// IsNotDownloadable returns true if the error indicates the file content
// is not downloadable.
func IsNotDownloadable(err error) bool {
	return errors.Is(err, ErrNotDownloadable) || hasReason(err, reasonNotDownloadable)
}

// IsRateLimited returns true if the error is a 429 from the Drive API.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}

// WrapFetchError converts a Drive API error into one of the typed
// materialization errors where it matches a known reason.
func WrapFetchError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case hasReason(err, reasonExportSizeLimit):
		return ErrExportTooLarge
	case hasReason(err, reasonNotDownloadable):
		return ErrNotDownloadable
	default:
		return err
	}
}

func hasReason(err error, reason string) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	for _, item := range gerr.Errors {
		if item.Reason == reason {
			return true
		}
	}
	return strings.Contains(gerr.Message, reason)
}
