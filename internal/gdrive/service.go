// Package gdrive lists and materializes files from a Google Drive folder
// tree using a service-account credential.
package gdrive

import (
	"context"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// NewService creates a read-only Google Drive API service from a
// service-account credentials file.
func NewService(ctx context.Context, credentialsPath string) (*drive.Service, error) {
	return drive.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(drive.DriveReadonlyScope),
	)
}
