package filestore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ImageMaxAge is the browser cache lifetime of served images.
const ImageMaxAge = 30 * 24 * time.Hour

// Local stores files in a directory on disk.
type Local struct {
	dir string
	now func() time.Time
}

// NewLocal creates dir if needed and returns a Local rooted there.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Local{dir: dir, now: time.Now}, nil
}

func (l *Local) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	key := Key(l.now(), name)
	f, err := os.OpenFile(filepath.Join(l.dir, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", key, err)
	}
	slog.InfoContext(ctx, "file stored", "driver", DriverLocal, "key", key)
	return key, nil
}

// Handler serves the stored files with a long-lived cache header.
func (l *Local) Handler() http.Handler {
	fs := http.FileServer(http.Dir(l.dir))
	cache := fmt.Sprintf("public, max-age=%d", int(ImageMaxAge.Seconds()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cache)
		fs.ServeHTTP(w, r)
	})
}
