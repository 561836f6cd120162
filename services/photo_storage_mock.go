package services

import (
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/lokaclean/lokaclean-api/models"
)

// MockPhotoStorage is an in-memory PhotoStorage for testing.
type MockPhotoStorage struct {
	mu     sync.RWMutex
	photos map[string][]byte // storage key -> content
}

// NewMockPhotoStorage creates a new mock photo storage.
func NewMockPhotoStorage() *MockPhotoStorage {
	return &MockPhotoStorage{photos: make(map[string][]byte)}
}

// SetAsMockForTesting sets this mock as the global photo storage instance.
func (m *MockPhotoStorage) SetAsMockForTesting() {
	SetPhotoStorage(m)
}

// UploadPhoto simulates storing a photo and returns a deterministic key.
func (m *MockPhotoStorage) UploadPhoto(scope string, kind models.PhotoKind, position int, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content := make([]byte, fileHeader.Size)
	if _, err := file.Read(content); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := fmt.Sprintf("%s/%s_%d_%s", scope, kind, position, fileHeader.Filename)

	m.mu.Lock()
	m.photos[key] = content
	m.mu.Unlock()

	return key, nil
}

// GetPresignedURL returns a fake URL for a stored key.
func (m *MockPhotoStorage) GetPresignedURL(key string) (string, error) {
	if key == "" {
		return "", nil
	}
	// Keys seeded directly into the database by tests get a URL too, so
	// existence is deliberately not checked here.
	return fmt.Sprintf("https://test-bucket.s3.ap-southeast-1.amazonaws.com/%s?mock=true", key), nil
}

// DeletePhoto removes a photo from mock storage.
func (m *MockPhotoStorage) DeletePhoto(key string) error {
	m.mu.Lock()
	delete(m.photos, key)
	m.mu.Unlock()
	return nil
}

// PhotoExists checks if a key exists in mock storage.
func (m *MockPhotoStorage) PhotoExists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.photos[key]
	return exists
}

// Clear removes all photos from mock storage.
func (m *MockPhotoStorage) Clear() {
	m.mu.Lock()
	m.photos = make(map[string][]byte)
	m.mu.Unlock()
}
