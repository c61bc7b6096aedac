package ports

import "context"

// ObjectStorage almacenamiento de archivos (XML autorizados, PDFs).
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}
