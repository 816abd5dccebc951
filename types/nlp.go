package types

// Sentiment is the document-level result from the Cloud Natural Language
// API, used as a second opinion next to the trained endpoint.
type Sentiment struct {
	Magnitude float32 `firestore:"magnitude" json:"magnitude"`
	Score     float32 `firestore:"score" json:"score"`
}
