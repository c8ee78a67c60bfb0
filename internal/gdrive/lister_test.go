package gdrive

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/api/drive/v3"
)

// fakePages serves folder listings from an in-memory tree. Pages are
// keyed by folderID plus page token.
type fakePages struct {
	pages map[string]map[string]*drive.FileList
	fail  map[string]bool
	calls int
}

func (f *fakePages) listPage(ctx context.Context, folderID, pageToken string) (*drive.FileList, error) {
	f.calls++
	if f.fail[folderID] {
		return nil, errors.New("listing failed")
	}
	byToken, ok := f.pages[folderID]
	if !ok {
		return &drive.FileList{}, nil
	}
	list, ok := byToken[pageToken]
	if !ok {
		return &drive.FileList{}, nil
	}
	return list, nil
}

func file(id, name, mime string) *drive.File {
	return &drive.File{Id: id, Name: name, MimeType: mime}
}

func TestListAllWalksTree(t *testing.T) {
	pages := &fakePages{pages: map[string]map[string]*drive.FileList{
		"root": {"": &drive.FileList{Files: []*drive.File{
			file("f1", "report.pdf", "application/pdf"),
			file("sub", "Projects", MimeTypeFolder),
		}}},
		"sub": {"": &drive.FileList{Files: []*drive.File{
			file("f2", "notes.txt", "text/plain"),
			file("deep", "Archive", MimeTypeFolder),
		}}},
		"deep": {"": &drive.FileList{Files: []*drive.File{
			file("f3", "plan", MimeTypeDoc),
		}}},
	}}
	l := &Lister{pages: pages, log: zerolog.Nop()}

	files, failed := l.ListAll(context.Background(), "root")

	if failed != 0 {
		t.Fatalf("failed folders = %d, want 0", failed)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}

	paths := map[string]string{}
	for _, f := range files {
		paths[f.ID] = f.Path
	}
	if paths["f1"] != "" {
		t.Errorf("root file path = %q, want empty", paths["f1"])
	}
	if paths["f2"] != "Projects" {
		t.Errorf("first level path = %q, want Projects", paths["f2"])
	}
	if paths["f3"] != "Projects/Archive" {
		t.Errorf("nested path = %q, want Projects/Archive", paths["f3"])
	}
}

func TestListAllPaginates(t *testing.T) {
	pages := &fakePages{pages: map[string]map[string]*drive.FileList{
		"root": {
			"": &drive.FileList{
				Files:         []*drive.File{file("f1", "a.txt", "text/plain")},
				NextPageToken: "p2",
			},
			"p2": &drive.FileList{
				Files:         []*drive.File{file("f2", "b.txt", "text/plain")},
				NextPageToken: "p3",
			},
			"p3": &drive.FileList{
				Files: []*drive.File{file("f3", "c.txt", "text/plain")},
			},
		},
	}}
	l := &Lister{pages: pages, log: zerolog.Nop()}

	files, failed := l.ListAll(context.Background(), "root")

	if failed != 0 {
		t.Fatalf("failed folders = %d, want 0", failed)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3", len(files))
	}
	if pages.calls != 3 {
		t.Errorf("made %d listing calls, want 3", pages.calls)
	}
}

func TestListAllSkipsFailingFolder(t *testing.T) {
	pages := &fakePages{
		pages: map[string]map[string]*drive.FileList{
			"root": {"": &drive.FileList{Files: []*drive.File{
				file("bad", "Broken", MimeTypeFolder),
				file("good", "Fine", MimeTypeFolder),
				file("f1", "top.txt", "text/plain"),
			}}},
			"good": {"": &drive.FileList{Files: []*drive.File{
				file("f2", "inner.txt", "text/plain"),
			}}},
		},
		fail: map[string]bool{"bad": true},
	}
	l := &Lister{pages: pages, log: zerolog.Nop()}

	files, failed := l.ListAll(context.Background(), "root")

	if failed != 1 {
		t.Fatalf("failed folders = %d, want 1", failed)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2 (siblings of the failing folder)", len(files))
	}
}

func TestListAllFailingRoot(t *testing.T) {
	pages := &fakePages{fail: map[string]bool{"root": true}}
	l := &Lister{pages: pages, log: zerolog.Nop()}

	files, failed := l.ListAll(context.Background(), "root")

	if failed != 1 {
		t.Fatalf("failed folders = %d, want 1", failed)
	}
	if len(files) != 0 {
		t.Fatalf("got %d files, want 0", len(files))
	}
}
