package cronjobs

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/robfig/cron/v3"

	"go-reviewtrain/db"
	"go-reviewtrain/trainer"
)

// pollPendingJobs asks the training service about every registry job
// still InProgress and writes status changes back to Firestore.
func pollPendingJobs(firestoreClient *firestore.Client, trainerClient *trainer.Client) {
	jobs, err := db.GetPendingJobs(firestoreClient)
	if err != nil {
		log.Printf("Error listing pending jobs: %v", err)
		return
	}
	if len(jobs) == 0 {
		return
	}
	log.Printf("Polling %d pending training job(s)", len(jobs))

	for _, job := range jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		desc, err := trainerClient.DescribeTrainingJob(ctx, job.Name)
		cancel()
		if err != nil {
			log.Printf("Error describing job %s: %v", job.Name, err)
			continue
		}

		if desc.Status == job.Status {
			continue
		}
		if err := db.UpdateJobStatus(firestoreClient, job.Name, desc.Status, desc.ValidationAccuracy, desc.FailureReason); err != nil {
			log.Printf("Error updating job %s: %v", job.Name, err)
		}
	}
}

func InitCronJobs(firestoreClient *firestore.Client, trainerClient *trainer.Client) {
	log.Println("\nStarting Cron Jobs -------------------------------------------------------")
	c := cron.New()

	// Job poller: check pending training jobs every 5 minutes
	_, err := c.AddFunc("*/5 * * * *", func() {
		log.Println("\nCronJob: Training Job Poller Running")
		pollPendingJobs(firestoreClient, trainerClient)
	})
	if err != nil {
		log.Println("Error scheduling Training Job Poller", err)
	}

	c.Start()
}
