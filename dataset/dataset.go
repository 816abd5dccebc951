package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go-reviewtrain/types"
)

// LabelPrefix is what the managed training service expects in front of
// every label in the channel files.
const LabelPrefix = "__label__"

// NormalizeLabel rewrites a sentiment value ("-1", "0", "1") into the
// __label__ form. Applying it twice yields the same string as once.
func NormalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, LabelPrefix) {
		return s
	}
	return LabelPrefix + s
}

// suffixes split off as their own token, treebank style.
var contractionSuffixes = []string{"'s", "'re", "'ve", "'ll", "'d", "'m"}

// Tokenize lowercases the text, strips commas and double quotes, splits
// punctuation away from words and breaks English contractions apart,
// so "I don't like this product!" becomes
// [i do n't like this product !].
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lowered) + 8)
	for _, r := range lowered {
		switch {
		case r == ',' || r == '"':
			// Stripped entirely before splitting.
		case strings.ContainsRune("!?.;:()[]", r):
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	var tokens []string
	for _, raw := range strings.Fields(b.String()) {
		tokens = append(tokens, splitContractions(raw)...)
	}
	return tokens
}

func splitContractions(tok string) []string {
	if !strings.Contains(tok, "'") {
		return []string{tok}
	}
	if strings.HasSuffix(tok, "n't") && len(tok) > 3 {
		return []string{tok[:len(tok)-3], "n't"}
	}
	for _, suf := range contractionSuffixes {
		if strings.HasSuffix(tok, suf) && len(tok) > len(suf) {
			return []string{tok[:len(tok)-len(suf)], suf}
		}
	}
	return []string{tok}
}

// FastTextLine renders one example as a channel-file line:
// "__label__<sentiment> <space-joined tokens>".
func FastTextLine(ex types.Example) string {
	return ex.Label + " " + strings.Join(ex.Tokens, " ")
}

// LoadReviews reads the input CSV. The header row must name a "sentiment"
// and a "review_body" column; rows missing either value are skipped and
// counted.
func LoadReviews(path string) ([]types.Review, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening reviews csv: %w", err)
	}
	defer f.Close()
	return ReadReviews(f)
}

// ReadReviews is LoadReviews over any reader, which makes testing easier.
func ReadReviews(r io.Reader) ([]types.Review, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("reading csv header: %w", err)
	}

	sentimentCol, bodyCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "sentiment":
			sentimentCol = i
		case "review_body":
			bodyCol = i
		}
	}
	if sentimentCol < 0 || bodyCol < 0 {
		return nil, 0, fmt.Errorf("csv header missing sentiment/review_body columns: %v", header)
	}

	var reviews []types.Review
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, count it and move on.
			skipped++
			continue
		}
		if len(row) <= sentimentCol || len(row) <= bodyCol {
			skipped++
			continue
		}
		sentiment := strings.TrimSpace(row[sentimentCol])
		body := strings.TrimSpace(row[bodyCol])
		if sentiment == "" || body == "" {
			skipped++
			continue
		}
		reviews = append(reviews, types.Review{Sentiment: sentiment, ReviewBody: body})
	}

	return reviews, skipped, nil
}

// Prepare turns raw reviews into labeled, tokenized examples.
// Reviews that tokenize to nothing are dropped.
func Prepare(reviews []types.Review) ([]types.Example, map[string]int) {
	examples := make([]types.Example, 0, len(reviews))
	labelCounts := make(map[string]int)

	for _, rv := range reviews {
		tokens := Tokenize(rv.ReviewBody)
		if len(tokens) == 0 {
			continue
		}
		label := NormalizeLabel(rv.Sentiment)
		labelCounts[label]++
		examples = append(examples, types.Example{Label: label, Tokens: tokens})
	}

	return examples, labelCounts
}
