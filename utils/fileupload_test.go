package utils

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func header(name string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name, Size: size}
}

func TestValidatePhotoFile(t *testing.T) {
	tests := []struct {
		name         string
		fileHeader   *multipart.FileHeader
		expectedCode string
	}{
		{"valid jpg", header("before.jpg", 1024), ""},
		{"valid jpeg", header("before.jpeg", 1024), ""},
		{"valid png", header("after.png", 1024), ""},
		{"uppercase extension accepted", header("AFTER.JPG", 1024), ""},
		{"exactly at the size limit", header("big.jpg", MaxPhotoSize), ""},
		{"too large", header("huge.jpg", MaxPhotoSize+1), "FILE_TOO_LARGE"},
		{"unsupported format", header("report.pdf", 1024), "INVALID_FILE_FORMAT"},
		{"no extension", header("photo", 1024), "INVALID_FILE_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhotoFile(tt.fileHeader)
			if tt.expectedCode == "" {
				assert.NoError(t, err)
				return
			}
			var uerr *FileUploadError
			assert.ErrorAs(t, err, &uerr)
			assert.Equal(t, tt.expectedCode, uerr.Code)
		})
	}
}

func TestValidatePhotoBatch(t *testing.T) {
	valid := header("a.jpg", 1024)

	t.Run("empty batch", func(t *testing.T) {
		err := ValidatePhotoBatch(nil)
		var uerr *FileUploadError
		assert.ErrorAs(t, err, &uerr)
		assert.Equal(t, "NO_PHOTOS", uerr.Code)
	})

	t.Run("too many photos", func(t *testing.T) {
		batch := []*multipart.FileHeader{valid, valid, valid, valid, valid}
		err := ValidatePhotoBatch(batch)
		var uerr *FileUploadError
		assert.ErrorAs(t, err, &uerr)
		assert.Equal(t, "TOO_MANY_PHOTOS", uerr.Code)
	})

	t.Run("one bad file fails the batch", func(t *testing.T) {
		batch := []*multipart.FileHeader{valid, header("notes.txt", 10)}
		err := ValidatePhotoBatch(batch)
		var uerr *FileUploadError
		assert.ErrorAs(t, err, &uerr)
		assert.Equal(t, "INVALID_FILE_FORMAT", uerr.Code)
	})

	t.Run("four valid photos", func(t *testing.T) {
		batch := []*multipart.FileHeader{valid, valid, valid, valid}
		assert.NoError(t, ValidatePhotoBatch(batch))
	})
}
