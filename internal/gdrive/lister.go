package gdrive

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"drive-rag/internal/models"
)

// listPageSize is the number of children requested per listing call.
const listPageSize = 100

// pageLister fetches one page of a folder's children. Narrow interface
// so traversal can be tested without the Drive API.
type pageLister interface {
	listPage(ctx context.Context, folderID, pageToken string) (*drive.FileList, error)
}

type drivePages struct {
	svc     *drive.Service
	limiter *RateLimiter
}

func (d *drivePages) listPage(ctx context.Context, folderID, pageToken string) (*drive.FileList, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	call := d.svc.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed = false", folderID)).
		Spaces("drive").
		Fields(googleapi.Field("nextPageToken, files(id, name, mimeType, size)")).
		PageSize(listPageSize).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}

// Lister enumerates all files reachable from a root folder.
type Lister struct {
	pages pageLister
	log   zerolog.Logger
}

// NewLister creates a Lister backed by the Drive API.
func NewLister(svc *drive.Service, limiter *RateLimiter, log zerolog.Logger) *Lister {
	return &Lister{
		pages: &drivePages{svc: svc, limiter: limiter},
		log:   log,
	}
}

// ListAll walks the folder tree breadth-first and returns every
// non-folder item with its path relative to the root, plus the number of
// folders whose listing failed. A failing folder contributes zero files;
// traversal continues with the remaining queued folders.
func (l *Lister) ListAll(ctx context.Context, rootID string) ([]models.RemoteFile, int) {
	type queued struct {
		id   string
		path string
	}

	var files []models.RemoteFile
	failedFolders := 0
	queue := []queued{{id: rootID}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		pageToken := ""
		for {
			list, err := l.pages.listPage(ctx, current.id, pageToken)
			if err != nil {
				l.log.Warn().Err(err).Str("folder_id", current.id).Msg("Error listing folder, skipping subtree")
				failedFolders++
				break
			}

			for _, item := range list.Files {
				if item.MimeType == MimeTypeFolder {
					childPath := item.Name
					if current.path != "" {
						childPath = current.path + "/" + item.Name
					}
					queue = append(queue, queued{id: item.Id, path: childPath})
					continue
				}
				files = append(files, models.RemoteFile{
					ID:       item.Id,
					Name:     item.Name,
					MimeType: item.MimeType,
					Size:     item.Size,
					Path:     current.path,
				})
			}

			pageToken = list.NextPageToken
			if pageToken == "" {
				break
			}
		}
	}

	return files, failedFolders
}
