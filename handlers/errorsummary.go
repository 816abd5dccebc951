package handlers

import (
	"net/http"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"

	"go-reviewtrain/summarization"
)

// SummarizeErrors asks OpenAI what a job's low-confidence predictions
// have in common.
func SummarizeErrors(c *gin.Context, firestoreClient *firestore.Client) {
	var request struct {
		JobName   string  `json:"job_name"`
		Threshold float64 `json:"threshold"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.JobName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_name is required"})
		return
	}
	if request.Threshold <= 0 || request.Threshold > 1 {
		request.Threshold = 0.6
	}

	client := openai.NewClient(os.Getenv("OPENAI_API_KEY"))

	summary, count, err := summarization.SummarizeLowConfidence(
		c.Request.Context(), request.JobName, request.Threshold, firestoreClient, client)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if count == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "no low-confidence predictions recorded for this job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_name":  request.JobName,
		"threshold": request.Threshold,
		"count":     count,
		"summary":   summary,
	})
}
