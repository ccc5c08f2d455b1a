package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ctpsstaff/gdrive-mirror/internal/drive"
)

const (
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeOdt  = "application/vnd.oasis.opendocument.text"
	mimeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePptx = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

func exportLinks(mimes ...string) map[string]string {
	links := make(map[string]string, len(mimes))
	for _, m := range mimes {
		links[m] = "https://export/" + m
	}

	return links
}

func TestResolveExport_NoExportLinks(t *testing.T) {
	f := drive.File{MimeType: "image/jpeg"}

	got := ResolveExport(f)
	assert.Equal(t, ExportSpec{MimeType: "image/jpeg", Suffix: ""}, got)
}

func TestResolveExport_PriorityOrder(t *testing.T) {
	tests := []struct {
		name  string
		links map[string]string
		want  ExportSpec
	}{
		{
			name:  "docx wins over everything",
			links: exportLinks(mimeDocx, mimeOdt, "application/rtf", "application/pdf"),
			want:  ExportSpec{MimeType: mimeDocx, Suffix: ".docx"},
		},
		{
			name:  "odt when no docx",
			links: exportLinks(mimeOdt, "application/rtf"),
			want:  ExportSpec{MimeType: mimeOdt, Suffix: ".odt"},
		},
		{
			name:  "xlsx for spreadsheets",
			links: exportLinks(mimeXlsx, "text/csv", "application/pdf"),
			want:  ExportSpec{MimeType: mimeXlsx, Suffix: ".xlsx"},
		},
		{
			name:  "csv when no office or opendocument sheet",
			links: exportLinks("text/csv", "text/tsv"),
			want:  ExportSpec{MimeType: "text/csv", Suffix: ".csv"},
		},
		{
			name:  "pptx for presentations",
			links: exportLinks(mimePptx, "application/vnd.oasis.opendocument.presentation"),
			want:  ExportSpec{MimeType: mimePptx, Suffix: ".pptx"},
		},
		{
			name:  "jpeg for drawings",
			links: exportLinks("image/jpeg", "image/png", "image/svg"),
			want:  ExportSpec{MimeType: "image/jpeg", Suffix: ".jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveExport(drive.File{
				MimeType:    "application/vnd.google-apps.document",
				ExportLinks: tt.links,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveExport_PDFFallback(t *testing.T) {
	f := drive.File{
		MimeType:    "application/vnd.google-apps.drawing",
		ExportLinks: exportLinks("application/x-something-obscure"),
	}

	got := ResolveExport(f)
	assert.Equal(t, ExportSpec{MimeType: "application/pdf", Suffix: ".pdf"}, got)
}

func TestResolveExport_DeterministicAcrossMapOrder(t *testing.T) {
	// Map iteration order is random; the result must not be.
	f := drive.File{
		MimeType:    "application/vnd.google-apps.document",
		ExportLinks: exportLinks(mimeOdt, mimeDocx, "application/rtf"),
	}

	for range 20 {
		assert.Equal(t, ".docx", ResolveExport(f).Suffix)
	}
}
