package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Storage service error constants
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)

// IsUnsupportedFileType checks whether err is an unsupported file type error
func IsUnsupportedFileType(err error) bool {
	return errors.Is(err, ErrUnsupportedFileType)
}

// StorageService persists uploaded documents and returns public URLs
type StorageService interface {
	// Upload stores data under a generated object key scoped to the
	// organization and returns the public URL together with the key.
	Upload(ctx context.Context, data []byte, originalName string, orgID uint) (url, objectKey string, err error)
	// Delete removes the object; deleting a missing object is not an error.
	Delete(ctx context.Context, objectKey string) error
}

// GCSStorageService implements StorageService on Google Cloud Storage
type GCSStorageService struct {
	bucketName      string
	credentialsJSON string
	publicBaseURL   string
}

// NewGCSStorageService creates a GCS-backed storage service. When
// credentialsJSON is empty, application default credentials are used.
func NewGCSStorageService(bucketName, credentialsJSON, publicBaseURL string) (StorageService, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if publicBaseURL == "" {
		publicBaseURL = "https://storage.googleapis.com/" + bucketName
	}
	return &GCSStorageService{
		bucketName:      bucketName,
		credentialsJSON: credentialsJSON,
		publicBaseURL:   strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (s *GCSStorageService) newClient(ctx context.Context) (*storage.Client, error) {
	if strings.TrimSpace(s.credentialsJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(s.credentialsJSON)))
	}
	return storage.NewClient(ctx)
}

// allowedMimeTypes lists document content types accepted for ingestion
var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
}

// DetectDocumentMimeType sniffs the content type of an uploaded document,
// falling back to the extension for PDFs that sniff as octet-stream
func DetectDocumentMimeType(data []byte, originalName string) string {
	mimeType := http.DetectContentType(data)
	if mimeType == "application/octet-stream" && strings.EqualFold(path.Ext(originalName), ".pdf") {
		mimeType = "application/pdf"
	}
	return mimeType
}

// Upload stores the document bytes in the bucket and returns its public URL
func (s *GCSStorageService) Upload(ctx context.Context, data []byte, originalName string, orgID uint) (string, string, error) {
	mimeType := DetectDocumentMimeType(data, originalName)
	if !allowedMimeTypes[mimeType] {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, mimeType)
	}

	ext := strings.ToLower(path.Ext(originalName))
	if ext == "" {
		ext = ".bin"
	}
	objectKey := fmt.Sprintf("organizations/%d/documents/%s%s", orgID, uuid.New().String(), ext)

	client, err := s.newClient(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer client.Close()

	wc := client.Bucket(s.bucketName).Object(objectKey).NewWriter(ctx)
	wc.ContentType = mimeType
	wc.Metadata = map[string]string{
		"x-goog-acl": "public-read",
	}

	if _, err := wc.Write(data); err != nil {
		return "", "", fmt.Errorf("failed to upload document: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", "", fmt.Errorf("failed to close storage writer: %w", err)
	}

	return s.publicBaseURL + "/" + objectKey, objectKey, nil
}

// Delete removes the object from the bucket; a missing object is treated as deleted
func (s *GCSStorageService) Delete(ctx context.Context, objectKey string) error {
	client, err := s.newClient(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer client.Close()

	err = client.Bucket(s.bucketName).Object(objectKey).Delete(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// MockStorageService is an in-memory StorageService for tests and local runs
type MockStorageService struct {
	mu      sync.Mutex
	objects map[string][]byte

	UploadErr error
	DeleteErr error
	Deleted   []string
}

// NewMockStorageService creates an in-memory storage service
func NewMockStorageService() *MockStorageService {
	return &MockStorageService{objects: make(map[string][]byte)}
}

func (m *MockStorageService) Upload(_ context.Context, data []byte, originalName string, orgID uint) (string, string, error) {
	if m.UploadErr != nil {
		return "", "", m.UploadErr
	}

	ext := strings.ToLower(path.Ext(originalName))
	if ext == "" {
		ext = ".bin"
	}
	objectKey := fmt.Sprintf("organizations/%d/documents/%s%s", orgID, uuid.New().String(), ext)

	m.mu.Lock()
	m.objects[objectKey] = data
	m.mu.Unlock()

	return "https://storage.local/" + objectKey, objectKey, nil
}

func (m *MockStorageService) Delete(_ context.Context, objectKey string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	m.mu.Lock()
	delete(m.objects, objectKey)
	m.Deleted = append(m.Deleted, objectKey)
	m.mu.Unlock()
	return nil
}

// Object returns stored bytes for assertions in tests
func (m *MockStorageService) Object(objectKey string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectKey]
	return data, ok
}
