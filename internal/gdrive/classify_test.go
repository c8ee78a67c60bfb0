package gdrive

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		want     Class
		wantExt  string
		wantMime string
	}{
		{
			name:     "pdf downloads directly",
			mimeType: "application/pdf",
			want:     ClassDirect,
			wantExt:  ".pdf",
		},
		{
			name:     "docx downloads directly",
			mimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			want:     ClassDirect,
			wantExt:  ".docx",
		},
		{
			name:     "google doc exports as plain text",
			mimeType: MimeTypeDoc,
			want:     ClassExport,
			wantExt:  ".txt",
			wantMime: ExportMimeText,
		},
		{
			name:     "google sheet exports as csv",
			mimeType: MimeTypeSheet,
			want:     ClassExport,
			wantExt:  ".csv",
			wantMime: ExportMimeCSV,
		},
		{
			name:     "google slides export as plain text",
			mimeType: MimeTypeSlides,
			want:     ClassExport,
			wantExt:  ".txt",
			wantMime: ExportMimeText,
		},
		{
			name:     "folder is skipped",
			mimeType: MimeTypeFolder,
			want:     ClassSkip,
		},
		{
			name:     "image is skipped",
			mimeType: "image/png",
			want:     ClassSkip,
		},
		{
			name:     "google form is skipped",
			mimeType: MimeTypeForm,
			want:     ClassSkip,
		},
		{
			name:     "unrecognized type is unknown",
			mimeType: "application/x-shockwave-flash",
			want:     ClassUnknown,
		},
		{
			name:     "empty type is unknown",
			mimeType: "",
			want:     ClassUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.mimeType)
			if got.Class != tt.want {
				t.Errorf("Classify(%q).Class = %v, want %v", tt.mimeType, got.Class, tt.want)
			}
			if got.Ext != tt.wantExt {
				t.Errorf("Classify(%q).Ext = %q, want %q", tt.mimeType, got.Ext, tt.wantExt)
			}
			if got.ExportMime != tt.wantMime {
				t.Errorf("Classify(%q).ExportMime = %q, want %q", tt.mimeType, got.ExportMime, tt.wantMime)
			}
		})
	}
}
