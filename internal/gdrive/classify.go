package gdrive

// Google Workspace MIME types.
const (
	MimeTypeFolder   = "application/vnd.google-apps.folder"
	MimeTypeShortcut = "application/vnd.google-apps.shortcut"
	MimeTypeForm     = "application/vnd.google-apps.form"
	MimeTypeDoc      = "application/vnd.google-apps.document"
	MimeTypeSheet    = "application/vnd.google-apps.spreadsheet"
	MimeTypeSlides   = "application/vnd.google-apps.presentation"
)

// Export formats for Google Workspace files. Plain text and CSV are
// chosen over PDF so that no layout parsing is needed downstream.
const (
	ExportMimeText = "text/plain"
	ExportMimeCSV  = "text/csv"
)

// Class partitions content types into how the materializer handles them.
type Class int

const (
	// ClassDirect files are downloaded as-is.
	ClassDirect Class = iota
	// ClassExport files are Workspace natives rendered by the Drive API.
	ClassExport
	// ClassSkip files are known non-text types (images, video, archives).
	ClassSkip
	// ClassUnknown files have an unrecognized content type.
	ClassUnknown
)

// Classification describes how to materialize one content type.
type Classification struct {
	Class Class
	// Ext is the filename extension hint for the local artifact.
	Ext string
	// ExportMime is the target format for ClassExport files.
	ExportMime string
}

// Directly downloadable types the extractor understands.
var directTypes = map[string]string{
	"application/pdf": ".pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
	"application/vnd.ms-powerpoint":                  ".ppt",
	"application/vnd.oasis.opendocument.spreadsheet": ".ods",
	"text/plain":    ".txt",
	"text/csv":      ".csv",
	"text/markdown": ".md",
}

// Workspace natives and their export targets.
var exportTypes = map[string]Classification{
	MimeTypeDoc:    {Class: ClassExport, Ext: ".txt", ExportMime: ExportMimeText},
	MimeTypeSheet:  {Class: ClassExport, Ext: ".csv", ExportMime: ExportMimeCSV},
	MimeTypeSlides: {Class: ClassExport, Ext: ".txt", ExportMime: ExportMimeText},
}

// Types that are counted but never processed.
var skipTypes = map[string]struct{}{
	MimeTypeFolder:     {},
	MimeTypeShortcut:   {},
	MimeTypeForm:       {},
	"image/jpeg":       {},
	"image/png":        {},
	"image/gif":        {},
	"image/webp":       {},
	"image/svg+xml":    {},
	"video/mp4":        {},
	"video/quicktime":  {},
	"video/x-msvideo":  {},
	"audio/mpeg":       {},
	"audio/wav":        {},
	"application/zip":  {},
	"application/x-zip": {},
}

// Classify maps a content type to its materialization class. All
// membership checks live here; callers branch on the returned variant.
func Classify(mimeType string) Classification {
	if cls, ok := exportTypes[mimeType]; ok {
		return cls
	}
	if ext, ok := directTypes[mimeType]; ok {
		return Classification{Class: ClassDirect, Ext: ext}
	}
	if _, ok := skipTypes[mimeType]; ok {
		return Classification{Class: ClassSkip}
	}
	return Classification{Class: ClassUnknown}
}
