package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"go-reviewtrain/cronjobs"
	"go-reviewtrain/db"
	"go-reviewtrain/endpoint"
	"go-reviewtrain/nlp"
	"go-reviewtrain/processor"
	"go-reviewtrain/routes"
	"go-reviewtrain/storage"
	"go-reviewtrain/trainer"
)

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}

	// Print and check env
	trainingURL := os.Getenv("TRAINING_API_URL")
	if trainingURL == "" {
		log.Fatal("TRAINING_API_URL is not set")
	}
	fmt.Println("TRAINING_API_URL: ", trainingURL)

	inferenceURL := os.Getenv("INFERENCE_API_URL")
	if inferenceURL == "" {
		// Most deployments serve both halves of the API from one host.
		inferenceURL = trainingURL
	}

	if os.Getenv("OPENAI_API_KEY") != "" {
		fmt.Println("OPENAI_API_KEY loaded")
	}

	// Init firestore
	firestoreClient, err := db.InitFirestore()
	if err != nil {
		log.Fatalf("Failed to initialize Firestore: %v", err)
	}
	defer db.CloseFirestore() // Firestore client is closed on exit

	// Init the Natural Language client for the comparison handler.
	nlpClient, err := nlp.InitLanguageClient()
	if err != nil {
		log.Fatalf("Failed to create Natural Language client: %v", err)
	}
	defer nlp.CloseLanguageClient()

	// S3 uploader for the channel files.
	s3Cfg := storage.ConfigFromEnv()
	uploader, err := storage.NewUploader(storage.Connect(s3Cfg), s3Cfg)
	if err != nil {
		log.Fatalf("Failed to set up S3 uploader: %v", err)
	}

	trainerClient := trainer.NewClient(trainingURL)
	endpointClient := endpoint.NewClient(inferenceURL)

	pipeline := &processor.Pipeline{
		Trainer:   trainerClient,
		Endpoint:  endpointClient,
		Uploader:  uploader,
		Firestore: firestoreClient,
	}

	// Initialize cron jobs
	cronjobs.InitCronJobs(firestoreClient, trainerClient)

	r := routes.SetupRouter(pipeline, firestoreClient, trainerClient, nlpClient)
	if err := r.Run(":8080"); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
