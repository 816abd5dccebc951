package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-reviewtrain/processor"
)

// Predict tokenizes raw texts and forwards them to a deployed endpoint.
func Predict(c *gin.Context, p *processor.Pipeline) {
	var request struct {
		JobName      string   `json:"job_name"`
		EndpointName string   `json:"endpoint_name"`
		Instances    []string `json:"instances"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.EndpointName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint_name is required"})
		return
	}
	if len(request.Instances) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "instances must not be empty"})
		return
	}

	preds, err := p.ScoreBatch(c.Request.Context(), request.JobName, request.EndpointName, request.Instances)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": preds})
}
