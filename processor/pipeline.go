package processor

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"go-reviewtrain/dataset"
	"go-reviewtrain/db"
	"go-reviewtrain/endpoint"
	"go-reviewtrain/storage"
	"go-reviewtrain/trainer"
	"go-reviewtrain/types"
)

// Pipeline wires the dataset, storage, trainer and endpoint pieces
// together. Handlers and cron jobs go through it instead of juggling the
// clients themselves.
type Pipeline struct {
	Trainer   *trainer.Client
	Endpoint  *endpoint.Client
	Uploader  *storage.Uploader
	Firestore *firestore.Client
}

// PrepareAndUpload runs the whole dataset step: read the CSV, normalize
// and tokenize, split, write the two channel files and push them to the
// bucket.
func (p *Pipeline) PrepareAndUpload(ctx context.Context, csvPath, workDir string, valFraction float64, seed int64) (types.DatasetStats, error) {
	var stats types.DatasetStats

	reviews, skipped, err := dataset.LoadReviews(csvPath)
	if err != nil {
		return stats, err
	}
	stats.TotalRows = len(reviews) + skipped
	stats.SkippedRows = skipped

	examples, labelCounts := dataset.Prepare(reviews)
	stats.LabelCounts = labelCounts

	train, val := dataset.StratifiedSplit(examples, valFraction, seed)
	stats.TrainExamples = len(train)
	stats.ValExamples = len(val)

	trainPath := filepath.Join(workDir, "reviews.train")
	valPath := filepath.Join(workDir, "reviews.validation")
	if err := dataset.WriteChannelFile(trainPath, train); err != nil {
		return stats, err
	}
	if err := dataset.WriteChannelFile(valPath, val); err != nil {
		return stats, err
	}

	trainURL, valURL, err := p.Uploader.UploadChannelFiles(ctx, trainPath, valPath)
	if err != nil {
		return stats, err
	}
	stats.TrainObjectURL = trainURL
	stats.ValObjectURL = valURL

	log.Printf("Prepared dataset: %d train / %d val examples, %d rows skipped",
		stats.TrainExamples, stats.ValExamples, stats.SkippedRows)
	return stats, nil
}

// StartTraining submits a job to the managed service and records it in
// Firestore.
func (p *Pipeline) StartTraining(ctx context.Context, trainURL, valURL string, hp types.Hyperparameters) (types.TrainingJob, error) {
	name := "reviews-" + uuid.NewString()[:8]

	desc, err := p.Trainer.CreateTrainingJob(ctx, name, trainURL, valURL, hp)
	if err != nil {
		return types.TrainingJob{}, err
	}

	job := types.TrainingJob{
		Name:         desc.Name,
		Status:       desc.Status,
		TrainDataURL: trainURL,
		ValDataURL:   valURL,
		Hyperparams:  hp,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if job.Status == "" {
		job.Status = types.JobInProgress
	}

	if p.Firestore != nil {
		if err := db.SaveTrainingJob(p.Firestore, job); err != nil {
			// The remote job exists either way; log and keep going.
			log.Printf("Warning: could not register job %s: %v", job.Name, err)
		}
	}

	return job, nil
}

// DeployJob puts a completed job's model behind an endpoint.
func (p *Pipeline) DeployJob(ctx context.Context, jobName, instanceType string) (string, error) {
	if p.Firestore != nil {
		job, err := db.GetTrainingJob(p.Firestore, jobName)
		if err != nil {
			return "", err
		}
		if job.Status != types.JobCompleted {
			return "", fmt.Errorf("job %s is %s, only Completed jobs can be deployed", jobName, job.Status)
		}
	}

	endpointName, err := p.Endpoint.Deploy(ctx, jobName, instanceType, 1)
	if err != nil {
		return "", err
	}

	if p.Firestore != nil {
		if err := db.SetJobEndpoint(p.Firestore, jobName, endpointName); err != nil {
			log.Printf("Warning: could not record endpoint for job %s: %v", jobName, err)
		}
	}

	log.Printf("Job %s deployed behind endpoint %s", jobName, endpointName)
	return endpointName, nil
}

// ScoreBatch tokenizes raw texts, sends them to the endpoint in one
// request and records the batch in Firestore.
func (p *Pipeline) ScoreBatch(ctx context.Context, jobName, endpointName string, texts []string) ([]types.Prediction, error) {
	instances := make([]string, 0, len(texts))
	for _, text := range texts {
		tokens := dataset.Tokenize(text)
		if len(tokens) == 0 {
			continue
		}
		instances = append(instances, strings.Join(tokens, " "))
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("no non-empty instances to score")
	}

	preds, err := p.Endpoint.Predict(ctx, endpointName, instances)
	if err != nil {
		return nil, err
	}

	if p.Firestore != nil && jobName != "" {
		if _, err := db.SavePredictionBatch(p.Firestore, jobName, preds); err != nil {
			log.Printf("Warning: could not save prediction batch: %v", err)
		}
	}

	return preds, nil
}

// ScoreFeed runs every post in a feed through the endpoint concurrently
// and collects the results.
func (p *Pipeline) ScoreFeed(ctx context.Context, endpointName string, feed types.FeedResponse) []types.ScoredPost {
	resultsChan := make(chan types.ScoredPost, len(feed.Feed))
	var wg sync.WaitGroup

	for _, v := range feed.Feed {
		if v.Post.URI == "" || v.Post.Record.Text == "" {
			continue
		}
		wg.Add(1)
		feedItem := v // capture variable for goroutine
		go func() {
			defer wg.Done()
			scored := types.ScoredPost{
				Author:  feedItem.Post.Author.DisplayName,
				Handle:  feedItem.Post.Author.Handle,
				Content: feedItem.Post.Record.Text,
			}

			tokens := dataset.Tokenize(feedItem.Post.Record.Text)
			if len(tokens) == 0 {
				scored.Error = "post tokenized to nothing"
				resultsChan <- scored
				return
			}

			preds, err := p.Endpoint.Predict(ctx, endpointName, []string{strings.Join(tokens, " ")})
			if err != nil {
				scored.Error = err.Error()
				resultsChan <- scored
				return
			}
			scored.Prediction = preds[0]
			resultsChan <- scored
		}()
	}

	wg.Wait()
	close(resultsChan)

	results := make([]types.ScoredPost, 0, len(feed.Feed))
	for result := range resultsChan {
		results = append(results, result)
	}
	return results
}
