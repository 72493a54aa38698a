package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// loadFromFS reads name from filesystem. Leading "/" and "./" are dropped so
// locations copied from form actions or config files resolve inside the FS.
func loadFromFS(ctx context.Context, filesystem fs.FS, name string) ([]byte, error) {
	if filesystem == nil {
		return nil, ErrNoFileSystem
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(name)), "/")
	if clean == "" || !fs.ValidPath(clean) {
		return nil, errors.New("formpath openapi: fs path is required")
	}
	data, err := fs.ReadFile(filesystem, clean)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", clean, err)
	}
	return data, nil
}
