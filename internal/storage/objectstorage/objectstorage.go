package objectstorage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// ObjectStorage хранилище бинарных объектов: обложки, подписи контрактов,
// изображения галереи. Загрузка синхронная, возвращает публичный URL.
type ObjectStorage interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, path string) error
}

const maxUploadSize = 20 << 20 // 20MB

type SupabaseStorage struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func New(supabaseURL, serviceKey, bucket string) *SupabaseStorage {
	baseURL := strings.TrimSuffix(supabaseURL, "/")

	return &SupabaseStorage{
		client:  storage.NewClient(baseURL+"/storage/v1", serviceKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

func (s *SupabaseStorage) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	const op = "objectstorage.Upload"

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%s: empty payload", op)
	}
	if len(data) > maxUploadSize {
		return "", fmt.Errorf("%s: payload exceeds %d bytes", op, maxUploadSize)
	}

	upsert := true
	_, err := s.client.UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.PublicURL(path), nil
}

func (s *SupabaseStorage) Delete(ctx context.Context, path string) error {
	const op = "objectstorage.Delete"

	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.RemoveFile(s.bucket, []string{path})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *SupabaseStorage) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, path)
}
