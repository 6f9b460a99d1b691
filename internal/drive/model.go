package drive

import "net/url"

// Mime types the client cares about.
const (
	MimeFolder    = "application/vnd.google-apps.folder"
	MimeGoogleDoc = "application/vnd.google-apps.document"
	MimePDF       = "application/pdf"
	MimeText      = "text/plain"
	MimeDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// RootName is the display name of the drive root.
const RootName = "My Drive"

var summarizable = map[string]bool{
	MimePDF:       true,
	MimeText:      true,
	MimeDocx:      true,
	MimeGoogleDoc: true,
}

// FileEntry is one item of a folder listing.
type FileEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// IsFolder reports whether the entry is a folder.
func (f FileEntry) IsFolder() bool {
	return f.MimeType == MimeFolder
}

// Summarizable reports whether the backend can summarize the entry.
func (f FileEntry) Summarizable() bool {
	return summarizable[f.MimeType]
}

// WebURL returns the Drive web address of the entry.
func (f FileEntry) WebURL() string {
	id := url.PathEscape(f.ID)
	switch f.MimeType {
	case MimeFolder:
		return "https://drive.google.com/drive/folders/" + id
	case MimeGoogleDoc:
		return "https://docs.google.com/document/d/" + id + "/edit"
	default:
		return "https://drive.google.com/file/d/" + id + "/view"
	}
}

// FolderStackEntry is one element of the navigation stack. An empty ID is
// the drive root.
type FolderStackEntry struct {
	ID   string
	Name string
}

// IsRoot reports whether the entry is the drive root.
func (e FolderStackEntry) IsRoot() bool {
	return e.ID == ""
}

// AsFolder converts a folder listing entry into a stack entry.
func (f FileEntry) AsFolder() FolderStackEntry {
	return FolderStackEntry{ID: f.ID, Name: f.Name}
}
