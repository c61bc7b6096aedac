package ports

import (
	"context"

	"github.com/jhoicas/erp-api/pkg/deadcode"
)

// DeadCodeScanner analiza un árbol de código fuente en busca de archivos y exports sin uso.
type DeadCodeScanner interface {
	Scan(ctx context.Context, opts deadcode.Options) (*deadcode.Report, error)
}
