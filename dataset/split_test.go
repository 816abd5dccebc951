package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-reviewtrain/types"
)

func makeExamples(label string, n int) []types.Example {
	out := make([]types.Example, n)
	for i := range out {
		out[i] = types.Example{Label: label, Tokens: []string{"tok", fmt.Sprint(i)}}
	}
	return out
}

func countLabels(examples []types.Example) map[string]int {
	counts := make(map[string]int)
	for _, ex := range examples {
		counts[ex.Label]++
	}
	return counts
}

func TestStratifiedSplitKeepsLabelProportions(t *testing.T) {
	var examples []types.Example
	examples = append(examples, makeExamples("__label__1", 100)...)
	examples = append(examples, makeExamples("__label__0", 50)...)
	examples = append(examples, makeExamples("__label__-1", 10)...)

	train, val := StratifiedSplit(examples, 0.1, 42)

	assert.Len(t, train, 144)
	assert.Len(t, val, 16)

	valCounts := countLabels(val)
	assert.Equal(t, 10, valCounts["__label__1"])
	assert.Equal(t, 5, valCounts["__label__0"])
	assert.Equal(t, 1, valCounts["__label__-1"])
}

func TestStratifiedSplitIsDeterministicPerSeed(t *testing.T) {
	examples := append(makeExamples("__label__1", 30), makeExamples("__label__-1", 30)...)

	train1, val1 := StratifiedSplit(examples, 0.2, 7)
	train2, val2 := StratifiedSplit(examples, 0.2, 7)

	assert.Equal(t, train1, train2)
	assert.Equal(t, val1, val2)
}

func TestStratifiedSplitHoldsOutAtLeastOne(t *testing.T) {
	examples := makeExamples("__label__0", 3)

	_, val := StratifiedSplit(examples, 0.1, 1)
	assert.Len(t, val, 1)
}

func TestWriteChannelFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.txt")
	examples := []types.Example{
		{Label: "__label__1", Tokens: []string{"love", "it", "!"}},
		{Label: "__label__-1", Tokens: []string{"do", "n't", "bother", "."}},
	}

	require.NoError(t, WriteChannelFile(path, examples))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "__label__1 love it !", lines[0])
	assert.Equal(t, "__label__-1 do n't bother .", lines[1])
}
