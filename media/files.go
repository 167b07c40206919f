package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// SaveUpload spools a multipart upload to a temp file under dir so it can
// be handed to the media host. The caller removes the file afterward.
func SaveUpload(file multipart.File, filename string, dir string, maxBytes int64) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, uuid.NewString()+filepath.Ext(filename))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	var src io.Reader = file
	if maxBytes > 0 {
		src = io.LimitReader(file, maxBytes+1)
	}

	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if maxBytes > 0 && n > maxBytes {
		os.Remove(path)
		return "", fmt.Errorf("upload exceeds the %d byte limit", maxBytes)
	}

	return path, nil
}

// Cleanup removes a temp file, best-effort.
func Cleanup(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}
