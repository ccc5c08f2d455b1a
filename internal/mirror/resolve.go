// Package mirror implements the one-shot depth-first mirroring of a Drive
// folder tree onto a local directory: export format resolution, local name
// sanitization, and the recursive tree walk itself.
package mirror

import "github.com/ctpsstaff/gdrive-mirror/internal/drive"

// ExportSpec is the concrete representation to request for a file: the
// MIME type to ask the API for and the local file extension it implies.
// Computed once per file at download time, never persisted.
type ExportSpec struct {
	MimeType string
	Suffix   string
}

// exportPreference is the fixed priority order for picking an export
// format, first match wins. Native office formats are preferred over
// open-document equivalents, and any structured format over the lossy
// PDF fallback.
var exportPreference = []ExportSpec{
	// Document formats.
	{MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Suffix: ".docx"},
	{MimeType: "application/vnd.oasis.opendocument.text", Suffix: ".odt"},
	{MimeType: "application/rtf", Suffix: ".rtf"},
	// Spreadsheet formats.
	{MimeType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Suffix: ".xlsx"},
	{MimeType: "application/x-vnd.oasis.opendocument.spreadsheet", Suffix: ".ods"},
	{MimeType: "text/csv", Suffix: ".csv"},
	{MimeType: "text/tsv", Suffix: ".tsv"},
	// Presentation formats.
	{MimeType: "application/vnd.openxmlformats-officedocument.presentationml.presentation", Suffix: ".pptx"},
	{MimeType: "application/vnd.oasis.opendocument.presentation", Suffix: ".odp"},
	// Drawing and image formats.
	{MimeType: "image/jpeg", Suffix: ".jpg"},
	{MimeType: "image/png", Suffix: ".png"},
	{MimeType: "image/svg", Suffix: ".svg"},
}

// pdfFallback is used when a document exports none of the preferred formats.
var pdfFallback = ExportSpec{MimeType: "application/pdf", Suffix: ".pdf"}

// ResolveExport decides which representation to download for a file.
// Files without export links have exactly one native representation: their
// own MIME type, with an empty suffix (the local extension then comes from
// the title itself, if any). Google-native documents get the first
// available format in preference order, falling back to PDF.
// Pure function of the file's metadata.
func ResolveExport(f drive.File) ExportSpec {
	if len(f.ExportLinks) == 0 {
		return ExportSpec{MimeType: f.MimeType}
	}

	for _, pref := range exportPreference {
		if _, ok := f.ExportLinks[pref.MimeType]; ok {
			return pref
		}
	}

	return pdfFallback
}
