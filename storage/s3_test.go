package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUploaderValidation(t *testing.T) {
	_, err := NewUploader(nil, Config{Bucket: "b"})
	assert.Error(t, err)

	_, err = NewUploader(Connect(Config{Region: "us-east-1"}), Config{})
	assert.Error(t, err)
}

func TestObjectURL(t *testing.T) {
	u, err := NewUploader(Connect(Config{Region: "us-east-1"}), Config{
		Bucket: "review-data",
		Prefix: "blazingtext/supervised",
	})
	require.NoError(t, err)

	assert.Equal(t, "s3://review-data/blazingtext/supervised/reviews.train", u.ObjectURL("reviews.train"))
}

func TestObjectURLNoPrefix(t *testing.T) {
	u, err := NewUploader(Connect(Config{Region: "us-east-1"}), Config{Bucket: "review-data"})
	require.NoError(t, err)

	assert.Equal(t, "s3://review-data/reviews.validation", u.ObjectURL("reviews.validation"))
}

// fakeS3 records every request it sees and answers like a minimal
// path-style S3.
type fakeS3 struct {
	mu           sync.Mutex
	paths        []string
	bucketStatus int
	bucketBody   string
}

func (f *fakeS3) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.paths = append(f.paths, r.Method+" "+r.URL.Path)
		f.mu.Unlock()

		// CreateBucket is a PUT on the bare bucket path.
		if r.Method == http.MethodPut && r.URL.Path == "/review-data" {
			if f.bucketStatus != 0 && f.bucketStatus != http.StatusOK {
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(f.bucketStatus)
				w.Write([]byte(f.bucketBody))
				return
			}
			w.WriteHeader(http.StatusOK)
			return
		}

		// PutObject.
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}
}

func (f *fakeS3) seen(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.paths {
		if p == path {
			return true
		}
	}
	return false
}

func newFakeUploader(t *testing.T, f *fakeS3) (*Uploader, *httptest.Server) {
	srv := httptest.NewServer(f.handler())
	cfg := Config{
		EndpointURL: srv.URL,
		Region:      "us-east-1",
		AccessKey:   "test",
		SecretKey:   "test",
		Bucket:      "review-data",
	}
	u, err := NewUploader(Connect(cfg), cfg)
	require.NoError(t, err)
	return u, srv
}

func writeTempFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestUploadChannelFilesCreatesBucketFirst(t *testing.T) {
	f := &fakeS3{}
	u, srv := newFakeUploader(t, f)
	defer srv.Close()

	trainPath := writeTempFile(t, "reviews.train", "__label__1 love it !\n")
	valPath := writeTempFile(t, "reviews.validation", "__label__-1 do n't bother .\n")

	trainURL, valURL, err := u.UploadChannelFiles(context.Background(), trainPath, valPath)
	require.NoError(t, err)

	assert.Equal(t, "s3://review-data/reviews.train", trainURL)
	assert.Equal(t, "s3://review-data/reviews.validation", valURL)

	assert.True(t, f.seen("PUT /review-data"), "bucket was not created, saw: %v", f.paths)
	assert.True(t, f.seen("PUT /review-data/reviews.train"), "train file not uploaded, saw: %v", f.paths)
	assert.True(t, f.seen("PUT /review-data/reviews.validation"), "validation file not uploaded, saw: %v", f.paths)
}

func TestEnsureBucketToleratesExistingBucket(t *testing.T) {
	f := &fakeS3{
		bucketStatus: http.StatusConflict,
		bucketBody: `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>BucketAlreadyOwnedByYou</Code><Message>Your previous request to create the named bucket succeeded and you already own it.</Message><BucketName>review-data</BucketName></Error>`,
	}
	u, srv := newFakeUploader(t, f)
	defer srv.Close()

	assert.NoError(t, u.EnsureBucket(context.Background()))
}

func TestEnsureBucketSurfacesOtherErrors(t *testing.T) {
	f := &fakeS3{
		bucketStatus: http.StatusForbidden,
		bucketBody: `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`,
	}
	u, srv := newFakeUploader(t, f)
	defer srv.Close()

	assert.Error(t, u.EnsureBucket(context.Background()))
}
