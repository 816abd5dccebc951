package trainer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-reviewtrain/types"
)

func TestCreateTrainingJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/training-jobs", r.URL.Path)

		var req createJobRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "reviews-job-1", req.Name)
		assert.Equal(t, "s3://review-data/reviews.train", req.TrainDataURL)
		assert.Equal(t, "supervised", req.Hyperparameters.Mode)
		assert.Equal(t, 10, req.Hyperparameters.Epochs)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(JobDescription{Name: req.Name, Status: types.JobInProgress})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	desc, err := c.CreateTrainingJob(context.Background(), "reviews-job-1",
		"s3://review-data/reviews.train", "s3://review-data/reviews.validation",
		types.DefaultHyperparameters())
	require.NoError(t, err)
	assert.Equal(t, types.JobInProgress, desc.Status)
}

func TestCreateTrainingJobServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreateTrainingJob(context.Background(), "j", "s3://a", "s3://b",
		types.DefaultHyperparameters())
	assert.Error(t, err)
}

func TestDescribeTrainingJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/training-jobs/reviews-job-1", r.URL.Path)
		json.NewEncoder(w).Encode(JobDescription{
			Name:               "reviews-job-1",
			Status:             types.JobCompleted,
			ValidationAccuracy: 0.87,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	desc, err := c.DescribeTrainingJob(context.Background(), "reviews-job-1")
	require.NoError(t, err)
	assert.Equal(t, types.JobCompleted, desc.Status)
	assert.InDelta(t, 0.87, desc.ValidationAccuracy, 1e-9)
}

func TestWaitForCompletionPollsUntilDone(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		desc := JobDescription{Name: "j", Status: types.JobInProgress}
		if n >= 3 {
			desc.Status = types.JobCompleted
			desc.ValidationAccuracy = 0.9
		}
		json.NewEncoder(w).Encode(desc)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	desc, err := c.WaitForCompletion(context.Background(), "j", 2*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, types.JobCompleted, desc.Status)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
}

func TestWaitForCompletionFailedJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(JobDescription{
			Name:          "j",
			Status:        types.JobFailed,
			FailureReason: "bad channel data",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	desc, err := c.WaitForCompletion(context.Background(), "j", time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrJobFailed)
	assert.Equal(t, types.JobFailed, desc.Status)
}
