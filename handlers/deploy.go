package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-reviewtrain/processor"
)

const defaultInstanceType = "ml.m5.large"

// DeployJob stands an inference endpoint up for a completed job.
func DeployJob(c *gin.Context, p *processor.Pipeline) {
	var request struct {
		JobName      string `json:"job_name"`
		InstanceType string `json:"instance_type"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.JobName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_name is required"})
		return
	}
	if request.InstanceType == "" {
		request.InstanceType = defaultInstanceType
	}

	endpointName, err := p.DeployJob(c.Request.Context(), request.JobName, request.InstanceType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_name":      request.JobName,
		"endpoint_name": endpointName,
	})
}
