package summarization

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/sashabaranov/go-openai"

	"go-reviewtrain/db"
	"go-reviewtrain/types"
)

const maxPredictionsForSummary = 50
const maxPromptLength = 15000 // Rough character limit for prompt

// SummarizeLowConfidence pulls a job's low-confidence predictions from
// Firestore and asks OpenAI what kinds of inputs the model struggles with.
func SummarizeLowConfidence(
	ctx context.Context,
	jobName string,
	threshold float64,
	firestoreClient *firestore.Client,
	openaiClient *openai.Client,
) (string, int, error) {
	preds, err := db.GetLowConfidencePredictions(firestoreClient, jobName, threshold)
	if err != nil {
		return "", 0, fmt.Errorf("fetching low-confidence predictions for %s: %w", jobName, err)
	}
	if len(preds) == 0 {
		return "", 0, nil
	}

	log.Printf("Summarizing %d low-confidence predictions for job %s", len(preds), jobName)

	combined := combinePredictions(preds)
	summary, err := callOpenAISummary(ctx, combined, openaiClient)
	if err != nil {
		return "", len(preds), err
	}
	return summary, len(preds), nil
}

func combinePredictions(preds []types.Prediction) string {
	var lines []string
	for i, p := range preds {
		if i >= maxPredictionsForSummary {
			break
		}
		lines = append(lines, fmt.Sprintf("%s (predicted %s, confidence %.2f)", p.Input, p.Label, p.Confidence))
	}

	combined := strings.Join(lines, "\n")
	if len(combined) > maxPromptLength {
		log.Printf("Warning: combined prediction text exceeds max length (%d), truncating.", maxPromptLength)
		combined = combined[:maxPromptLength]
	}
	return combined
}

// callOpenAISummary sends the predictions to OpenAI and requests a summary.
func callOpenAISummary(ctx context.Context, predText string, client *openai.Client) (string, error) {
	prompt := fmt.Sprintf("The following review texts were classified by a sentiment model with low confidence. Describe, in 2-3 sentences, what these inputs have in common (sarcasm, mixed sentiment, short texts, off-topic content, etc.) so we know what kind of training data to add:\n\n---\n%s\n---\n\nSummary:", predText)

	resp, err := client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4oMini,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an assistant that reviews sentiment-classifier mistakes and summarizes them concisely.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens: 150,
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI summary request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
