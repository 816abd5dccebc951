package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-reviewtrain/types"
)

// Client talks to the managed hosting side of the service: deploying a
// trained model behind an endpoint and invoking it.
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

type deployRequest struct {
	JobName              string `json:"job_name"`
	InstanceType         string `json:"instance_type"`
	InitialInstanceCount int    `json:"initial_instance_count"`
}

type deployResponse struct {
	EndpointName string `json:"endpoint_name"`
	Status       string `json:"status"`
}

// Deploy asks the service to host the model produced by jobName and
// returns the endpoint name to invoke.
func (c *Client) Deploy(ctx context.Context, jobName, instanceType string, instanceCount int) (string, error) {
	if instanceCount < 1 {
		instanceCount = 1
	}
	payload := deployRequest{
		JobName:              jobName,
		InstanceType:         instanceType,
		InitialInstanceCount: instanceCount,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/endpoints", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", errors.New("deploy returned status: " + resp.Status)
	}

	var out deployResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.EndpointName == "" {
		return "", errors.New("deploy response missing endpoint name")
	}
	return out.EndpointName, nil
}

type invokeRequest struct {
	Instances []string `json:"instances"`
}

// invokeResponse follows the hosted text classifier's shape: per instance,
// top labels with matching probabilities.
type invokeResponse struct {
	Predictions []struct {
		Label []string  `json:"label"`
		Prob  []float64 `json:"prob"`
	} `json:"predictions"`
}

// Predict sends tokenized instance strings to the endpoint and returns
// one label + confidence per instance.
func (c *Client) Predict(ctx context.Context, endpointName string, instances []string) ([]types.Prediction, error) {
	payload := invokeRequest{Instances: instances}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := c.BaseURL + "/endpoints/" + endpointName + "/invocations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("endpoint returned status: " + resp.Status)
	}

	var out invokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Predictions) != len(instances) {
		return nil, fmt.Errorf("endpoint returned %d predictions for %d instances", len(out.Predictions), len(instances))
	}

	results := make([]types.Prediction, len(instances))
	for i, p := range out.Predictions {
		pred := types.Prediction{Input: instances[i]}
		if len(p.Label) > 0 {
			pred.Label = p.Label[0]
		}
		if len(p.Prob) > 0 {
			pred.Confidence = p.Prob[0]
		}
		results[i] = pred
	}
	return results, nil
}

// Delete tears the endpoint down so it stops billing.
func (c *Client) Delete(ctx context.Context, endpointName string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.BaseURL+"/endpoints/"+endpointName, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errors.New("delete endpoint returned status: " + resp.Status)
	}
	return nil
}
