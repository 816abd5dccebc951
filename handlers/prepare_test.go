package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-reviewtrain/processor"
	"go-reviewtrain/storage"
	"go-reviewtrain/types"
)

func prepareRouter(p *processor.Pipeline) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/reviews/prepare", func(c *gin.Context) {
		PrepareDataset(c, p)
	})
	return r
}

// fakeS3Pipeline builds a Pipeline whose uploader talks to a stub S3.
func fakeS3Pipeline(t *testing.T) (*processor.Pipeline, *httptest.Server) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))

	cfg := storage.Config{
		EndpointURL: srv.URL,
		Region:      "us-east-1",
		AccessKey:   "test",
		SecretKey:   "test",
		Bucket:      "review-data",
	}
	uploader, err := storage.NewUploader(storage.Connect(cfg), cfg)
	require.NoError(t, err)

	return &processor.Pipeline{Uploader: uploader}, srv
}

func writeReviewsCSV(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "reviews.csv")
	csvData := "sentiment,review_body\n" +
		"1,Love this dress\n" +
		"1,Perfect fit and great quality\n" +
		"-1,I don't like this product!\n" +
		"-1,Runs small and itchy\n"
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0644))
	return path
}

func TestPrepareDatasetEmptyBodyUsesEnvDefaults(t *testing.T) {
	p, srv := fakeS3Pipeline(t)
	defer srv.Close()
	t.Setenv("REVIEWS_CSV", writeReviewsCSV(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reviews/prepare", strings.NewReader(""))
	prepareRouter(p).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats types.DatasetStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.TrainExamples+stats.ValExamples)
	assert.Equal(t, "s3://review-data/reviews.train", stats.TrainObjectURL)
}

func TestPrepareDatasetRejectsBadJSON(t *testing.T) {
	p, srv := fakeS3Pipeline(t)
	defer srv.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reviews/prepare", strings.NewReader("{not json"))
	prepareRouter(p).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrepareDatasetNoCSVConfigured(t *testing.T) {
	p, srv := fakeS3Pipeline(t)
	defer srv.Close()
	t.Setenv("REVIEWS_CSV", "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reviews/prepare", strings.NewReader(""))
	prepareRouter(p).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrepareDatasetUsesPerRequestWorkDir(t *testing.T) {
	p, srv := fakeS3Pipeline(t)
	defer srv.Close()
	t.Setenv("REVIEWS_CSV", writeReviewsCSV(t))

	// A fixed channel-file path in the shared temp dir would collide
	// across concurrent requests; make sure none is left behind.
	sharedPath := filepath.Join(os.TempDir(), "reviews.train")
	os.Remove(sharedPath)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reviews/prepare", strings.NewReader(""))
	prepareRouter(p).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, err := os.Stat(sharedPath)
	assert.True(t, os.IsNotExist(err), "channel file written to shared temp dir")
}
