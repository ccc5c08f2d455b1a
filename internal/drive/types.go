package drive

// Reserved Drive MIME type tags. A folder is a file with the folder MIME
// type and no content; forms cannot be exported or downloaded at all.
const (
	MimeTypeFolder = "application/vnd.google-apps.folder"
	MimeTypeForm   = "application/vnd.google-apps.form"
)

// File represents a Drive file resource (file, folder, or Google-native
// document). Fields are normalized from the v2 API response; callers
// never see raw API data.
type File struct {
	ID       string
	Title    string // display name; NOT unique within a folder
	MimeType string

	// ExportLinks maps exportable MIME type -> export URL. Present only
	// for Google-native editable documents, which have no single native
	// byte stream. Nil for ordinary uploaded files.
	ExportLinks map[string]string

	// DownloadURL is the authenticated content URL for ordinary files.
	// Empty for Google-native documents and folders.
	DownloadURL string

	FileSize int64 // 0 when the API omits it (folders, native docs)
	Trashed  bool
}

// IsFolder reports whether the file is a Drive folder.
func (f File) IsFolder() bool {
	return f.MimeType == MimeTypeFolder
}

// IsForm reports whether the file is a Google Form, which has no
// downloadable or exportable representation.
func (f File) IsForm() bool {
	return f.MimeType == MimeTypeForm
}
