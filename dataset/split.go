package dataset

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"go-reviewtrain/types"
)

// DefaultValFraction is the share of each label held out for validation.
const DefaultValFraction = 0.1

// StratifiedSplit shuffles each label's examples with the given seed and
// holds out valFraction of them, so both halves keep the label
// proportions of the input.
func StratifiedSplit(examples []types.Example, valFraction float64, seed int64) (train, val []types.Example) {
	if valFraction <= 0 || valFraction >= 1 {
		valFraction = DefaultValFraction
	}

	byLabel := make(map[string][]types.Example)
	for _, ex := range examples {
		byLabel[ex.Label] = append(byLabel[ex.Label], ex)
	}

	// Iterate labels in a fixed order so the same seed gives the same split.
	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rng := rand.New(rand.NewSource(seed))
	for _, label := range labels {
		group := byLabel[label]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		nVal := int(float64(len(group)) * valFraction)
		if nVal == 0 && len(group) > 1 {
			nVal = 1
		}
		val = append(val, group[:nVal]...)
		train = append(train, group[nVal:]...)
	}

	return train, val
}

// WriteChannelFile writes one example per line in the
// "__label__<sentiment> <tokens>" format the training service consumes.
func WriteChannelFile(path string, examples []types.Example) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating channel file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, ex := range examples {
		if _, err := w.WriteString(FastTextLine(ex) + "\n"); err != nil {
			return fmt.Errorf("writing channel file %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing channel file %s: %w", path, err)
	}
	return nil
}
