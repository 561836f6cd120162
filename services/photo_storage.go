package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appConfig "github.com/lokaclean/lokaclean-api/config"
	"github.com/lokaclean/lokaclean-api/models"
)

// PhotoStorage stores before/after photos and serves them back through
// expiring URLs. Keys are opaque to the rest of the system. The scope
// groups one submission's photos ("orders/42", or a draft scope while
// the booking is not persisted yet).
type PhotoStorage interface {
	UploadPhoto(scope string, kind models.PhotoKind, position int, fileHeader *multipart.FileHeader) (string, error)
	GetPresignedURL(key string) (string, error)
	DeletePhoto(key string) error
}

var photoStorageInstance PhotoStorage

// InitPhotoStorage initializes the S3-backed photo storage.
func InitPhotoStorage() (PhotoStorage, error) {
	cfg := appConfig.GetConfig()

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.AWSRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	photoStorageInstance = &S3PhotoStorage{
		client: s3.NewFromConfig(awsConfig),
		bucket: cfg.AWSS3Bucket,
	}
	return photoStorageInstance, nil
}

// GetPhotoStorage returns the initialized photo storage instance
func GetPhotoStorage() PhotoStorage {
	return photoStorageInstance
}

// SetPhotoStorage sets the photo storage instance (primarily for testing)
func SetPhotoStorage(storage PhotoStorage) {
	photoStorageInstance = storage
}

// S3PhotoStorage stores photos in an S3 bucket under
// {scope}/{kind}_{position}_{timestamp}{ext}.
type S3PhotoStorage struct {
	client *s3.Client
	bucket string
}

// UploadPhoto uploads one photo and returns its storage key.
func (s *S3PhotoStorage) UploadPhoto(scope string, kind models.PhotoKind, position int, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("warning: failed to close file: %v", closeErr)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := fmt.Sprintf("%s/%s_%d_%d%s", scope, kind, position, time.Now().Unix(), ext)

	contentType := "image/jpeg"
	if ext == ".png" {
		contentType = "image/png"
	}

	_, err = s.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return key, nil
}

// GetPresignedURL generates a presigned URL for a stored photo, valid for
// one hour.
func (s *S3PhotoStorage) GetPresignedURL(key string) (string, error) {
	if key == "" {
		return "", nil
	}

	presignClient := s3.NewPresignClient(s.client)
	request, err := presignClient.PresignGetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = time.Hour
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return request.URL, nil
}

// DeletePhoto deletes a stored photo.
func (s *S3PhotoStorage) DeletePhoto(key string) error {
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo from S3: %w", err)
	}

	return nil
}
