package nlp

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"sync"

	language "cloud.google.com/go/language/apiv2"
	"cloud.google.com/go/language/apiv2/languagepb"
	"google.golang.org/api/option"

	"go-reviewtrain/dataset"
	"go-reviewtrain/types"
)

// languageClient a singleton languageClient instance.
var (
	languageClient *language.Client
	clientOnce     sync.Once
)

// AnalyzeSentiment asks the Cloud Natural Language API for a document
// sentiment. Used as a second opinion next to the trained endpoint.
func AnalyzeSentiment(client *language.Client, text string) (types.Sentiment, error) {
	var sentiment types.Sentiment
	ctx := context.Background()
	req := &languagepb.AnalyzeSentimentRequest{
		Document: &languagepb.Document{
			Source: &languagepb.Document_Content{
				Content: text,
			},
			Type: languagepb.Document_PLAIN_TEXT,
		},
		EncodingType: languagepb.EncodingType_UTF8,
	}

	resp, err := client.AnalyzeSentiment(ctx, req)
	if err != nil {
		return sentiment, fmt.Errorf("AnalyzeSentiment error: %w", err)
	}

	sentiment.Score = resp.DocumentSentiment.Score
	sentiment.Magnitude = resp.DocumentSentiment.Magnitude

	return sentiment, nil
}

// ScoreToLabel buckets the NL API's continuous score into the same
// -1/0/1 label set the trained model uses, so the two are comparable.
func ScoreToLabel(score float32) string {
	switch {
	case score <= -0.25:
		return dataset.NormalizeLabel("-1")
	case score >= 0.25:
		return dataset.NormalizeLabel("1")
	default:
		return dataset.NormalizeLabel("0")
	}
}

// initializes and returns a language client.
func InitLanguageClient() (*language.Client, error) {
	var err error

	clientOnce.Do(func() {
		// Decode credentials
		encodedCreds := os.Getenv("NATURAL_LANGUAGE_CREDENTIALS")
		creds, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			log.Fatalf("Failed to decode Natural language credentials: %v", err)
		}

		// Create the Natural Language API client using the decoded credentials
		opt := option.WithCredentialsJSON(creds)
		languageClient, err = language.NewClient(context.Background(), opt)
		if err != nil {
			log.Fatalf("Failed to create Natural Language client: %v", err)
		}
	})

	return languageClient, err
}

func CloseLanguageClient() {
	if languageClient != nil {
		languageClient.Close()
	}
}
