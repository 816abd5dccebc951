package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-reviewtrain/processor"
	"go-reviewtrain/types"
)

// StartTraining submits a training job for already-uploaded channel files.
func StartTraining(c *gin.Context, p *processor.Pipeline) {
	var request struct {
		TrainDataURL      string                 `json:"train_data_url"`
		ValidationDataURL string                 `json:"validation_data_url"`
		Hyperparameters   *types.Hyperparameters `json:"hyperparameters"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.TrainDataURL == "" || request.ValidationDataURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "train_data_url and validation_data_url are required"})
		return
	}

	hp := types.DefaultHyperparameters()
	if request.Hyperparameters != nil {
		hp = *request.Hyperparameters
	}

	job, err := p.StartTraining(c.Request.Context(), request.TrainDataURL, request.ValidationDataURL, hp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_name":        job.Name,
		"status":          job.Status,
		"hyperparameters": job.Hyperparams,
	})
}
