package shared

import "context"

// Storage folders for uploaded files
const (
	FolderAvatars      = "avatars"
	FolderCompanyLogos = "company-logos"
	FolderEventImages  = "events"
)

// ObjectStorage stores uploaded files and serves them by public URL
type ObjectStorage interface {
	// Upload stores data under folder and returns the object's public URL
	Upload(ctx context.Context, folder, filename string, data []byte, contentType string) (string, error)

	// DeleteByURL removes the object a public URL points to.
	// URLs that do not belong to the store are ignored.
	DeleteByURL(ctx context.Context, url string) error
}

// FileUpload is an uploaded file already read into memory
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
