package trainer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"go-reviewtrain/types"
)

// Client talks to the managed text-classification training service. The
// service trains and hosts the model; we only hand it data locations and
// hyperparameters.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// JobDescription is what the service reports about a training job.
type JobDescription struct {
	Name               string          `json:"name"`
	Status             types.JobStatus `json:"status"`
	ValidationAccuracy float64         `json:"validation_accuracy,omitempty"`
	FailureReason      string          `json:"failure_reason,omitempty"`
}

type createJobRequest struct {
	Name              string                `json:"name"`
	TrainDataURL      string                `json:"train_data_url"`
	ValidationDataURL string                `json:"validation_data_url"`
	Hyperparameters   types.Hyperparameters `json:"hyperparameters"`
}

// CreateTrainingJob submits a new job and returns its handle.
func (c *Client) CreateTrainingJob(ctx context.Context, name, trainURL, valURL string, hp types.Hyperparameters) (*JobDescription, error) {
	payload := createJobRequest{
		Name:              name,
		TrainDataURL:      trainURL,
		ValidationDataURL: valURL,
		Hyperparameters:   hp,
	}

	var desc JobDescription
	if err := c.postJSON(ctx, c.BaseURL+"/training-jobs", payload, &desc); err != nil {
		return nil, fmt.Errorf("creating training job %s: %w", name, err)
	}
	return &desc, nil
}

// DescribeTrainingJob fetches the current status of a job.
func (c *Client) DescribeTrainingJob(ctx context.Context, name string) (*JobDescription, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/training-jobs/"+name, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("training service returned status: " + resp.Status)
	}

	var desc JobDescription
	if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

// ErrJobFailed is returned by WaitForCompletion when the remote job ends
// in the Failed state.
var ErrJobFailed = errors.New("training job failed")

// WaitForCompletion polls the job with Fibonacci backoff until it reaches
// a terminal status or maxWait passes.
func (c *Client) WaitForCompletion(ctx context.Context, name string, maxWait time.Duration) (*JobDescription, error) {
	var desc *JobDescription

	b := retry.NewFibonacci(2 * time.Second)
	b = retry.WithMaxDuration(maxWait, b)

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		d, err := c.DescribeTrainingJob(ctx, name)
		if err != nil {
			// Transient describe failures are worth another poll.
			return retry.RetryableError(err)
		}
		desc = d
		if !d.Status.Terminal() {
			log.Printf("Training job %s still %s, polling again", name, d.Status)
			return retry.RetryableError(fmt.Errorf("job %s not finished (%s)", name, d.Status))
		}
		return nil
	})
	if err != nil {
		return desc, fmt.Errorf("waiting for training job %s: %w", name, err)
	}

	if desc.Status == types.JobFailed {
		return desc, fmt.Errorf("%w: %s", ErrJobFailed, desc.FailureReason)
	}
	return desc, nil
}

func (c *Client) postJSON(ctx context.Context, url string, payload, out interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New("training service returned status: " + resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
