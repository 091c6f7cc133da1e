package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/t1tandr/uevent/internal/domain/shared"
)

// DefaultMaxUploadSize caps a single uploaded file
const DefaultMaxUploadSize int64 = 5 << 20

// Upload errors
var (
	ErrFileTooLarge    = shared.NewDomainError("FILE_TOO_LARGE", "File exceeds the maximum allowed size")
	ErrInvalidFileType = shared.NewDomainError("INVALID_FILE_TYPE", "File type is not allowed")
	ErrFileRequired    = shared.NewDomainError("FILE_REQUIRED", "File is required")
)

// uploadPolicy restricts what a multipart field may carry
type uploadPolicy struct {
	maxSize int64
	types   []string
}

var (
	avatarTypes = []string{"image/png", "image/jpeg"}
	imageTypes  = []string{"image/png", "image/jpeg", "image/webp"}
)

func newUploadPolicy(maxSize int64, types []string) uploadPolicy {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return uploadPolicy{maxSize: maxSize, types: types}
}

// read loads an uploaded file, checking its size and sniffed content type
func (p uploadPolicy) read(fh *multipart.FileHeader) (shared.FileUpload, error) {
	if fh.Size > p.maxSize {
		return shared.FileUpload{}, ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return shared.FileUpload{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, p.maxSize+1))
	if err != nil {
		return shared.FileUpload{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > p.maxSize {
		return shared.FileUpload{}, ErrFileTooLarge
	}

	contentType := http.DetectContentType(data)
	if !slices.Contains(p.types, contentType) {
		return shared.FileUpload{}, ErrInvalidFileType
	}
	return shared.FileUpload{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

// single reads one file from field; a missing field returns nil
func (p uploadPolicy) single(c *gin.Context, field string) (*shared.FileUpload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, shared.NewDomainError("INVALID_MULTIPART", "Invalid multipart form")
	}
	upload, err := p.read(fh)
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

// many reads every file of field
func (p uploadPolicy) many(c *gin.Context, field string) ([]shared.FileUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_MULTIPART", "Invalid multipart form")
	}
	headers := form.File[field]
	uploads := make([]shared.FileUpload, 0, len(headers))
	for _, fh := range headers {
		upload, err := p.read(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}
