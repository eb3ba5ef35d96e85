// Package filestore persists uploaded product images. Two drivers exist: a local directory
// that is also served over HTTP, and an S3 bucket.
package filestore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store saves an uploaded file and returns the key it was stored under.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Driver names accepted by configuration.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Key returns the storage key for an upload named name: "<unix-ms>-<8 hex>-<clean name>".
// Directory parts and characters outside [A-Za-z0-9._-] are removed from name.
func Key(now time.Time, name string) string {
	clean := unsafeChars.ReplaceAllString(filepath.Base(strings.ReplaceAll(name, `\`, "/")), "_")
	clean = strings.TrimLeft(clean, ".")
	if clean == "" {
		clean = "file"
	}
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), uuid.NewString()[:8], clean)
}
