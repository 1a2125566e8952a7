package deploy

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type object struct {
	body         string
	contentType  string
	cacheControl string
}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]object
	err     error
}

func (b *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if b.err != nil {
		return nil, b.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.objects == nil {
		b.objects = make(map[string]object)
	}
	b.objects[aws.ToString(in.Key)] = object{
		body:         string(data),
		contentType:  aws.ToString(in.ContentType),
		cacheControl: aws.ToString(in.CacheControl),
	}
	return &s3.PutObjectOutput{}, nil
}

func (b *fakeBucket) keys() []string {
	var out []string
	for k := range b.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func TestUploadDir(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"index.html":               "<p>home</p>",
		"blog/hello/index.html":    "<p>hello</p>",
		"blog/hello/salty_egg.jpg": "jpeg",
		"manifest.webmanifest":     "{}",
	})
	bucket := &fakeBucket{}
	u := newUploader(bucket, "site", "/www/", zaptest.NewLogger(t))

	n, err := u.UploadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []string{
		"www/blog/hello/index.html",
		"www/blog/hello/salty_egg.jpg",
		"www/index.html",
		"www/manifest.webmanifest",
	}, bucket.keys())

	home := bucket.objects["www/index.html"]
	assert.Equal(t, "<p>home</p>", home.body)
	assert.Equal(t, "text/html; charset=utf-8", home.contentType)
	assert.Equal(t, "no-cache", home.cacheControl)

	img := bucket.objects["www/blog/hello/salty_egg.jpg"]
	assert.Equal(t, "image/jpeg", img.contentType)
	assert.Equal(t, "public, max-age=86400", img.cacheControl)

	assert.Equal(t, "application/manifest+json", bucket.objects["www/manifest.webmanifest"].contentType)
}

func TestUploadDirWithoutPrefix(t *testing.T) {
	dir := writeTree(t, map[string]string{"index.html": "x"})
	bucket := &fakeBucket{}
	_, err := newUploader(bucket, "site", "", nil).UploadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html"}, bucket.keys())
}

func TestUploadDirError(t *testing.T) {
	dir := writeTree(t, map[string]string{"index.html": "x"})
	boom := errors.New("access denied")
	_, err := newUploader(&fakeBucket{err: boom}, "site", "", nil).UploadDir(context.Background(), dir)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "index.html")
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", ContentType("index.html"))
	assert.Equal(t, "application/manifest+json", ContentType("manifest.webmanifest"))
	assert.Equal(t, "application/octet-stream", ContentType("README"))
}

func TestCacheControl(t *testing.T) {
	assert.Equal(t, "no-cache", CacheControl("rss.xml"))
	assert.Equal(t, "no-cache", CacheControl("robots.txt"))
	assert.Equal(t, "public, max-age=86400", CacheControl("icons/icon-48x48.png"))
}
