package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDocumentMimeType(t *testing.T) {
	t.Run("PDFMagicBytes", func(t *testing.T) {
		assert.Equal(t, "application/pdf", DetectDocumentMimeType([]byte("%PDF-1.4 body"), "invoice.pdf"))
	})

	t.Run("PNGMagicBytes", func(t *testing.T) {
		png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
		assert.Equal(t, "image/png", DetectDocumentMimeType(png, "scan.png"))
	})

	t.Run("OctetStreamWithPDFExtension", func(t *testing.T) {
		binary := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
		assert.Equal(t, "application/pdf", DetectDocumentMimeType(binary, "invoice.PDF"))
	})

	t.Run("OctetStreamWithoutExtensionStays", func(t *testing.T) {
		binary := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
		assert.Equal(t, "application/octet-stream", DetectDocumentMimeType(binary, "blob"))
	})
}

func TestMockStorageService(t *testing.T) {
	ctx := context.Background()

	t.Run("UploadScopesKeyToOrganization", func(t *testing.T) {
		mock := NewMockStorageService()

		url, objectKey, err := mock.Upload(ctx, []byte("%PDF-1.4"), "invoice.pdf", 12)
		require.NoError(t, err)

		assert.Contains(t, objectKey, "organizations/12/documents/")
		assert.Contains(t, objectKey, ".pdf")
		assert.Contains(t, url, objectKey)

		data, ok := mock.Object(objectKey)
		require.True(t, ok)
		assert.Equal(t, []byte("%PDF-1.4"), data)
	})

	t.Run("DeleteRecordsKey", func(t *testing.T) {
		mock := NewMockStorageService()

		_, objectKey, err := mock.Upload(ctx, []byte("%PDF-1.4"), "invoice.pdf", 12)
		require.NoError(t, err)

		require.NoError(t, mock.Delete(ctx, objectKey))
		_, ok := mock.Object(objectKey)
		assert.False(t, ok)
		assert.Contains(t, mock.Deleted, objectKey)
	})

	t.Run("InjectedErrors", func(t *testing.T) {
		mock := NewMockStorageService()
		mock.UploadErr = ErrStorageUnavailable
		mock.DeleteErr = ErrStorageUnavailable

		_, _, err := mock.Upload(ctx, []byte("x"), "invoice.pdf", 1)
		assert.ErrorIs(t, err, ErrStorageUnavailable)
		assert.ErrorIs(t, mock.Delete(ctx, "any"), ErrStorageUnavailable)
	})
}

func TestIsUnsupportedFileType(t *testing.T) {
	assert.True(t, IsUnsupportedFileType(ErrUnsupportedFileType))
	assert.False(t, IsUnsupportedFileType(ErrStorageUnavailable))
	assert.False(t, IsUnsupportedFileType(nil))
}

func TestGCSStorageServiceConfig(t *testing.T) {
	t.Run("BucketRequired", func(t *testing.T) {
		_, err := NewGCSStorageService("", "", "")
		assert.Error(t, err)
	})

	t.Run("DefaultPublicBaseURL", func(t *testing.T) {
		service, err := NewGCSStorageService("carbontrace-docs", "", "")
		require.NoError(t, err)

		gcs, ok := service.(*GCSStorageService)
		require.True(t, ok)
		assert.Equal(t, "https://storage.googleapis.com/carbontrace-docs", gcs.publicBaseURL)
	})
}
