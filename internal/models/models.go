package models

// Metadata keys attached to every extracted document and its chunks.
const (
	MetaFileName = "file_name"
	MetaFilePath = "file_path"
	MetaSource   = "source"
	MetaSegment  = "segment"
	MetaChunk    = "chunk"
	MetaText     = "text"
)

// RemoteFile is one non-folder item discovered in the Drive tree.
type RemoteFile struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
	// Path is the slash-joined folder path relative to the root folder,
	// empty for files directly under the root.
	Path string
}

// Source returns the provenance identifier stored with every chunk.
func (f RemoteFile) Source() string {
	return "gdrive:" + f.ID
}

// Document is one plain-text document extracted from a local artifact.
// A single remote file may produce several documents (one per PDF page,
// one per spreadsheet sheet).
type Document struct {
	Text     string
	Metadata map[string]string
}

// Chunk is a contiguous token span of a document, carrying the parent
// document's metadata plus its own sequence marker.
type Chunk struct {
	Text     string
	Index    int
	Tokens   int
	Metadata map[string]string
}
