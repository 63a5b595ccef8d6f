package storage_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	storage "recanto_moriah/internal/storage/filestorage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFileStorage(t *testing.T) (*storage.LocalFileStorage, string) {
	t.Helper()

	tempDir := t.TempDir()
	fs, err := storage.NewLocalFileStorage(tempDir, "http://test.local/uploads/")
	require.NoError(t, err)

	return fs, tempDir
}

func createTestFile(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	file.Close()

	return header
}

func TestLocalFileStorage_Save(t *testing.T) {
	fs, tempDir := setupFileStorage(t)
	ctx := context.Background()

	t.Run("stores under the given key", func(t *testing.T) {
		testFile := createTestFile(t, "photo.jpg", "jpeg bytes")

		size, err := fs.Save(ctx, testFile, "media/123-abcd1234-photo.jpg")
		require.NoError(t, err)
		assert.Equal(t, int64(10), size)

		data, err := os.ReadFile(filepath.Join(tempDir, "media", "123-abcd1234-photo.jpg"))
		require.NoError(t, err)
		assert.Equal(t, "jpeg bytes", string(data))
	})

	t.Run("canceled context aborts the write", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		testFile := createTestFile(t, "photo.jpg", "jpeg bytes")
		_, err := fs.Save(cctx, testFile, "media/canceled.jpg")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unopenable header is an error", func(t *testing.T) {
		_, err := fs.Save(ctx, &multipart.FileHeader{Filename: "bad.jpg"}, "media/bad.jpg")
		assert.Error(t, err)
	})
}

func TestLocalFileStorage_Delete(t *testing.T) {
	fs, tempDir := setupFileStorage(t)
	ctx := context.Background()

	t.Run("removes a stored object", func(t *testing.T) {
		testFile := createTestFile(t, "gone.jpg", "bytes")
		_, err := fs.Save(ctx, testFile, "media/gone.jpg")
		require.NoError(t, err)

		require.NoError(t, fs.Delete(ctx, "media/gone.jpg"))

		_, err = os.Stat(filepath.Join(tempDir, "media", "gone.jpg"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing object is an error", func(t *testing.T) {
		assert.Error(t, fs.Delete(ctx, "media/never-existed.jpg"))
	})
}

func TestLocalFileStorage_PublicURL(t *testing.T) {
	fs, _ := setupFileStorage(t)

	assert.Equal(t,
		"http://test.local/uploads/media/123-abcd1234-photo.jpg",
		fs.PublicURL("media/123-abcd1234-photo.jpg"),
	)
}

func TestNewLocalFileStorage(t *testing.T) {
	t.Run("creates the base directory", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "uploads")

		fs, err := storage.NewLocalFileStorage(base, "http://test.local")
		require.NoError(t, err)
		assert.NotNil(t, fs)

		info, err := os.Stat(base)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("unwritable root is an error", func(t *testing.T) {
		_, err := storage.NewLocalFileStorage("/proc/nope/uploads", "http://test.local")
		assert.Error(t, err)
	})
}
