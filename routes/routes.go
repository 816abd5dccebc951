package routes

import (
	"cloud.google.com/go/firestore"
	language "cloud.google.com/go/language/apiv2"
	"github.com/gin-gonic/gin"

	"go-reviewtrain/handlers"
	"go-reviewtrain/processor"
	"go-reviewtrain/trainer"
)

func SetupRouter(p *processor.Pipeline, firestoreClient *firestore.Client, trainerClient *trainer.Client, nlpClient *language.Client) *gin.Engine {
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Hello, welcome to the review sentiment trainer!",
		})
	})

	// api routes
	api := r.Group("/api/reviews")
	{
		api.POST("/prepare", func(c *gin.Context) {
			handlers.PrepareDataset(c, p)
		})
		api.POST("/train", func(c *gin.Context) {
			handlers.StartTraining(c, p)
		})
		api.GET("/jobs/:name", func(c *gin.Context) {
			handlers.GetJobStatus(c, firestoreClient, trainerClient)
		})
		api.POST("/deploy", func(c *gin.Context) {
			handlers.DeployJob(c, p)
		})
		api.POST("/predict", func(c *gin.Context) {
			handlers.Predict(c, p)
		})
		api.GET("/livetest", func(c *gin.Context) {
			handlers.LiveFeedTest(c, p)
		})
		api.GET("/comparetest", func(c *gin.Context) {
			handlers.CompareSentimentTest(c, p, nlpClient)
		})
		api.POST("/errorsummary", func(c *gin.Context) {
			handlers.SummarizeErrors(c, firestoreClient)
		})
	}

	return r
}
