package types

// Review is one row of the input CSV: an integer sentiment (-1, 0, 1)
// and the free-text review body.
type Review struct {
	Sentiment  string `json:"sentiment"`
	ReviewBody string `json:"review_body"`
}

// Example is a review after normalization, ready to be written out as
// "__label__<sentiment> <space-joined lowercase tokens>".
type Example struct {
	Label  string   `json:"label"`
	Tokens []string `json:"tokens"`
}

// DatasetStats summarizes a preparation run.
type DatasetStats struct {
	TotalRows      int            `firestore:"totalRows" json:"total_rows"`
	SkippedRows    int            `firestore:"skippedRows" json:"skipped_rows"`
	TrainExamples  int            `firestore:"trainExamples" json:"train_examples"`
	ValExamples    int            `firestore:"valExamples" json:"val_examples"`
	LabelCounts    map[string]int `firestore:"labelCounts" json:"label_counts"`
	TrainObjectURL string         `firestore:"trainObjectUrl" json:"train_object_url"`
	ValObjectURL   string         `firestore:"valObjectUrl" json:"val_object_url"`
}

// Hyperparameters is the fixed set of knobs the managed training service
// accepts. Everything else about training is the service's business.
type Hyperparameters struct {
	Mode         string  `firestore:"mode" json:"mode"`
	Epochs       int     `firestore:"epochs" json:"epochs"`
	LearningRate float64 `firestore:"learningRate" json:"learning_rate"`
	MinCount     int     `firestore:"minCount" json:"min_count"`
	VectorDim    int     `firestore:"vectorDim" json:"vector_dim"`
	WordNgrams   int     `firestore:"wordNgrams" json:"word_ngrams"`
}

// DefaultHyperparameters are the values the exercise trains with.
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		Mode:         "supervised",
		Epochs:       10,
		LearningRate: 0.05,
		MinCount:     2,
		VectorDim:    10,
		WordNgrams:   2,
	}
}

type JobStatus string

const (
	JobInProgress JobStatus = "InProgress"
	JobCompleted  JobStatus = "Completed"
	JobFailed     JobStatus = "Failed"
)

// Terminal reports whether the job will never change status again.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// TrainingJob is a training job as stored in Firestore.
type TrainingJob struct {
	ID           string          `firestore:"-"` // tell firestore to ignore
	Name         string          `firestore:"name"`
	Status       JobStatus       `firestore:"status"`
	TrainDataURL string          `firestore:"trainDataUrl"`
	ValDataURL   string          `firestore:"valDataUrl"`
	Hyperparams  Hyperparameters `firestore:"hyperparams"`
	Accuracy     float64         `firestore:"accuracy,omitempty"`
	EndpointName string          `firestore:"endpointName,omitempty"`
	CreatedAt    string          `firestore:"createdAt"`
	UpdatedAt    string          `firestore:"updatedAt,omitempty"`
	FailReason   string          `firestore:"failReason,omitempty"`
}

// Prediction is one instance's result from the inference endpoint.
type Prediction struct {
	Input      string  `firestore:"input" json:"input"`
	Label      string  `firestore:"label" json:"label"`
	Confidence float64 `firestore:"confidence" json:"confidence"`
}

// ScoredPost pairs a live social media post with the endpoint's prediction.
type ScoredPost struct {
	Author     string     `json:"author"`
	Handle     string     `json:"handle"`
	Content    string     `json:"content"`
	Prediction Prediction `json:"prediction"`
	Error      string     `json:"error,omitempty"`
}
