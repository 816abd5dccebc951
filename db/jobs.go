package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go-reviewtrain/types"
)

const (
	jobsCollection        = "trainingJobs"
	predictionsCollection = "predictions"
)

// SaveTrainingJob writes a job record keyed by its hashed name.
func SaveTrainingJob(client *firestore.Client, job types.TrainingJob) error {
	ctx := context.Background()

	if job.CreatedAt == "" {
		job.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	hashedJobID := HashString(job.Name)
	_, err := client.Collection(jobsCollection).Doc(hashedJobID).Set(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to save training job %s: %w", job.Name, err)
	}

	log.Printf("Saved training job %s with hashed ID: %s", job.Name, hashedJobID)
	return nil
}

// GetTrainingJob looks a job up by name.
func GetTrainingJob(client *firestore.Client, name string) (types.TrainingJob, error) {
	ctx := context.Background()
	var job types.TrainingJob

	doc, err := client.Collection(jobsCollection).Doc(HashString(name)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return job, fmt.Errorf("training job %s not found", name)
		}
		return job, fmt.Errorf("error getting training job %s: %w", name, err)
	}

	if err := doc.DataTo(&job); err != nil {
		return job, fmt.Errorf("error converting training job %s: %w", name, err)
	}
	job.ID = doc.Ref.ID
	return job, nil
}

// UpdateJobStatus moves a job to a new status, recording accuracy once
// the service reports it and the failure reason if there is one.
func UpdateJobStatus(client *firestore.Client, name string, jobStatus types.JobStatus, accuracy float64, failReason string) error {
	ctx := context.Background()

	update := map[string]interface{}{
		"status":    jobStatus,
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if jobStatus == types.JobCompleted {
		update["accuracy"] = accuracy
	}
	if failReason != "" {
		update["failReason"] = failReason
	}

	_, err := client.Collection(jobsCollection).Doc(HashString(name)).Set(ctx, update, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update status for job %s: %w", name, err)
	}

	log.Printf("Job %s is now %s", name, jobStatus)
	return nil
}

// SetJobEndpoint records which endpoint serves the job's model.
func SetJobEndpoint(client *firestore.Client, name, endpointName string) error {
	ctx := context.Background()

	_, err := client.Collection(jobsCollection).Doc(HashString(name)).Set(ctx, map[string]interface{}{
		"endpointName": endpointName,
		"updatedAt":    time.Now().UTC().Format(time.RFC3339),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to set endpoint for job %s: %w", name, err)
	}
	return nil
}

// GetPendingJobs returns every job the poller still has to check on.
func GetPendingJobs(client *firestore.Client) ([]types.TrainingJob, error) {
	ctx := context.Background()

	docs, err := client.Collection(jobsCollection).
		Where("status", "==", string(types.JobInProgress)).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, err
	}

	var jobs []types.TrainingJob
	for _, doc := range docs {
		var job types.TrainingJob
		if err := doc.DataTo(&job); err != nil {
			return nil, err
		}
		job.ID = doc.Ref.ID
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// SavePredictionBatch stores a batch of endpoint results under the job doc.
func SavePredictionBatch(client *firestore.Client, jobName string, preds []types.Prediction) (string, error) {
	ctx := context.Background()

	batchID := uuid.NewString()
	batchData := map[string]interface{}{
		"batchId":     batchID,
		"jobName":     jobName,
		"createdAt":   time.Now().UTC().Format(time.RFC3339),
		"predictions": preds,
	}

	_, err := client.Collection(jobsCollection).
		Doc(HashString(jobName)).
		Collection(predictionsCollection).
		Doc(batchID).
		Set(ctx, batchData)
	if err != nil {
		return "", fmt.Errorf("failed to save prediction batch for job %s: %w", jobName, err)
	}

	log.Printf("Saved prediction batch %s (%d predictions) for job %s", batchID, len(preds), jobName)
	return batchID, nil
}

// GetLowConfidencePredictions walks a job's prediction batches and
// returns every result under the confidence threshold.
func GetLowConfidencePredictions(client *firestore.Client, jobName string, threshold float64) ([]types.Prediction, error) {
	ctx := context.Background()

	iter := client.Collection(jobsCollection).
		Doc(HashString(jobName)).
		Collection(predictionsCollection).
		Documents(ctx)

	var low []types.Prediction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating prediction batches: %w", err)
		}

		var batch struct {
			Predictions []types.Prediction `firestore:"predictions"`
		}
		if err := doc.DataTo(&batch); err != nil {
			return nil, fmt.Errorf("error converting prediction batch: %w", err)
		}
		for _, p := range batch.Predictions {
			if p.Confidence < threshold {
				low = append(low, p)
			}
		}
	}

	return low, nil
}
