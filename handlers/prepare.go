package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"go-reviewtrain/dataset"
	"go-reviewtrain/processor"
)

// PrepareDataset runs the CSV -> channel files -> bucket step and
// returns the dataset stats.
func PrepareDataset(c *gin.Context, p *processor.Pipeline) {
	var request struct {
		CSVPath     string  `json:"csv_path"`
		ValFraction float64 `json:"val_fraction"`
		Seed        int64   `json:"seed"`
	}
	// Body is optional; defaults come from the environment.
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	csvPath := request.CSVPath
	if csvPath == "" {
		csvPath = os.Getenv("REVIEWS_CSV")
	}
	if csvPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no csv_path in body and REVIEWS_CSV not set"})
		return
	}

	valFraction := request.ValFraction
	if valFraction == 0 {
		valFraction = dataset.DefaultValFraction
	}
	seed := request.Seed
	if seed == 0 {
		seed = 42
	}

	// Per-request scratch dir so concurrent prepares don't overwrite each
	// other's channel files.
	workDir, err := os.MkdirTemp("", "reviews-prepare-")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer os.RemoveAll(workDir)

	stats, err := p.PrepareAndUpload(c.Request.Context(), csvPath, workDir, valFraction, seed)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
