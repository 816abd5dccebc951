package handlers

import (
	"log"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"

	"go-reviewtrain/db"
	"go-reviewtrain/trainer"
)

// GetJobStatus returns the registry record for a job, refreshed with a
// live Describe when the job is still running.
func GetJobStatus(c *gin.Context, firestoreClient *firestore.Client, trainerClient *trainer.Client) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job name is required"})
		return
	}

	job, err := db.GetTrainingJob(firestoreClient, name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if !job.Status.Terminal() {
		desc, err := trainerClient.DescribeTrainingJob(c.Request.Context(), name)
		if err != nil {
			// Serve the stale registry record rather than failing.
			log.Printf("Describe for job %s failed, returning registry copy: %v", name, err)
		} else if desc.Status != job.Status {
			if err := db.UpdateJobStatus(firestoreClient, name, desc.Status, desc.ValidationAccuracy, desc.FailureReason); err != nil {
				log.Printf("Failed to update job %s after describe: %v", name, err)
			}
			job.Status = desc.Status
			job.Accuracy = desc.ValidationAccuracy
			job.FailReason = desc.FailureReason
		}
	}

	c.JSON(http.StatusOK, job)
}
