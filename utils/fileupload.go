package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxPhotoSize is 5MB in bytes
	MaxPhotoSize = 5 * 1024 * 1024
	// MaxPhotosPerUpload bounds one multipart submission
	MaxPhotosPerUpload = 4
)

// allowedPhotoFormats are the accepted photo file extensions.
var allowedPhotoFormats = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidatePhotoFile validates one uploaded photo's format and size.
func ValidatePhotoFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxPhotoSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxPhotoSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedPhotoFormats[ext] {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only .jpg, .jpeg and .png files are allowed",
		}
	}

	return nil
}

// ValidatePhotoBatch validates a multipart photo submission as a whole:
// 1..4 files, each individually valid.
func ValidatePhotoBatch(fileHeaders []*multipart.FileHeader) error {
	if len(fileHeaders) == 0 {
		return &FileUploadError{
			Code:    "NO_PHOTOS",
			Message: "At least one photo is required",
		}
	}
	if len(fileHeaders) > MaxPhotosPerUpload {
		return &FileUploadError{
			Code:    "TOO_MANY_PHOTOS",
			Message: fmt.Sprintf("At most %d photos per upload", MaxPhotosPerUpload),
		}
	}
	for _, fh := range fileHeaders {
		if err := ValidatePhotoFile(fh); err != nil {
			return err
		}
	}
	return nil
}
