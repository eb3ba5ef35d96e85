package filestore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.UnixMilli(1737532800000)

func TestKey(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":            "photo.jpg",
		"../../etc/passwd":     "passwd",
		`C:\Users\me\shot.png`: "shot.png",
		"my holiday (1).jpeg":  "my_holiday_1_.jpeg",
		"..":                   "file",
		"":                     "file",
		".hidden":              "hidden",
	}
	for in, want := range cases {
		key := Key(fixed, in)
		parts := strings.SplitN(key, "-", 3)
		require.Len(t, parts, 3, key)
		assert.Equal(t, "1737532800000", parts[0])
		assert.Len(t, parts[1], 8)
		assert.Equal(t, want, parts[2], "name %q", in)
	}
	assert.NotEqual(t, Key(fixed, "a.jpg"), Key(fixed, "a.jpg"))
}

func TestLocalSaveAndServe(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(filepath.Join(dir, "images"))
	require.NoError(t, err)
	l.now = func() time.Time { return fixed }

	key, err := l.Save(context.Background(), "bolt.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "1737532800000-"))
	assert.True(t, strings.HasSuffix(key, "-bolt.png"))

	data, err := os.ReadFile(filepath.Join(dir, "images", key))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	rec := httptest.NewRecorder()
	l.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+key, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=2592000", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "png-bytes", rec.Body.String())
}

type fakeUploader struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = input
	b, _ := io.ReadAll(input.Body)
	f.body = string(b)
	return &manager.UploadOutput{}, nil
}

func TestS3Save(t *testing.T) {
	up := &fakeUploader{}
	s := NewS3WithUploader(up, "bucket", "images/")
	s.now = func() time.Time { return fixed }

	key, err := s.Save(context.Background(), "bolt.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "bucket", *up.input.Bucket)
	assert.Equal(t, "images/"+key, *up.input.Key)
	assert.Equal(t, "png-bytes", up.body)

	up.err = errors.New("access denied")
	_, err = s.Save(context.Background(), "bolt.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, up.err)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{Region: "eu-west-1"})
	assert.Error(t, err)
}
