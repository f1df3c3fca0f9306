package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ErrImagesUnavailable indique que MinIO n'est pas configuré.
var ErrImagesUnavailable = errors.New("MinIO non initialisé")

type ImageStore interface {
	Upload(ctx context.Context, productID, filename string, r io.Reader, size int64, contentType string) (string, error)
	SignURLs(ctx context.Context, keys []string) []string
}

type MinIOImages struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

func NewMinIOImages(client *minio.Client, bucket string, ttl time.Duration) *MinIOImages {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MinIOImages{client: client, bucket: bucket, ttl: ttl}
}

// ObjectKey retourne la clé products/<id>/<uuid><ext> d'une nouvelle image.
func ObjectKey(productID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("products/%s/%s%s", productID, uuid.NewString(), ext)
}

func (m *MinIOImages) Upload(ctx context.Context, productID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if m == nil || m.client == nil {
		return "", ErrImagesUnavailable
	}

	key := ObjectKey(productID, filename)
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	log.Printf("🪣 Image envoyée: %s/%s", m.bucket, key)
	return key, nil
}

// SignURLs remplace chaque clé d'objet par une URL présignée.
// Les URL absolues sont laissées telles quelles.
func (m *MinIOImages) SignURLs(ctx context.Context, keys []string) []string {
	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = key
		if m == nil || m.client == nil || isAbsoluteURL(key) {
			continue
		}
		signed, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.ttl, make(url.Values))
		if err != nil {
			log.Printf("⚠️ URL signée impossible pour %s: %v", key, err)
			continue
		}
		out[i] = signed.String()
	}
	return out
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
