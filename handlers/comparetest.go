package handlers

import (
	"log"
	"net/http"

	language "cloud.google.com/go/language/apiv2"
	"github.com/gin-gonic/gin"

	"go-reviewtrain/nlp"
	"go-reviewtrain/processor"
)

// CompareSentimentTest scores one text with both the trained endpoint
// and the Cloud Natural Language API, side by side.
func CompareSentimentTest(c *gin.Context, p *processor.Pipeline, nlpClient *language.Client) {
	text := c.Query("text")
	if text == "" {
		text = "I don't like this product!"
	}
	endpointName := c.Query("endpoint")
	if endpointName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint query parameter is required"})
		return
	}

	preds, err := p.ScoreBatch(c.Request.Context(), "", endpointName, []string{text})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sentiment, err := nlp.AnalyzeSentiment(nlpClient, text)
	if err != nil {
		log.Printf("Error analyzing sentiment: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"text":     text,
			"endpoint": preds[0],
			"error":    "Cloud Natural Language comparison failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"text":     text,
		"endpoint": preds[0],
		"cloud_nl": gin.H{
			"sentiment": sentiment,
			"label":     nlp.ScoreToLabel(sentiment.Score),
		},
		"agree": preds[0].Label == nlp.ScoreToLabel(sentiment.Score),
	})
}
