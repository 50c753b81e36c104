package dataset

import (
	"sort"

	"github.com/tmakinen/fruitnet-go/internal/errors"
)

// LabelEncoder maps class label strings to dense integer indices 0..K-1.
// Classes are ordered lexicographically so the mapping depends only on the
// observed label set, not on sample order.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// FitLabels builds an encoder from the observed labels.
func FitLabels(labels []string) *LabelEncoder {
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		seen[label] = struct{}{}
	}

	classes := make([]string, 0, len(seen))
	for label := range seen {
		classes = append(classes, label)
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for i, class := range classes {
		index[class] = i
	}

	return &LabelEncoder{classes: classes, index: index}
}

// Encode returns the integer index for a label.
func (e *LabelEncoder) Encode(label string) (int, error) {
	i, ok := e.index[label]
	if !ok {
		return 0, errors.Newf("unknown class label: %s", label).
			Component("dataset").
			Category(errors.CategoryValidation).
			Context("label", label).
			Build()
	}
	return i, nil
}

// Decode returns the label for an integer index.
func (e *LabelEncoder) Decode(index int) (string, error) {
	if index < 0 || index >= len(e.classes) {
		return "", errors.Newf("class index %d out of range [0, %d)", index, len(e.classes)).
			Component("dataset").
			Category(errors.CategoryValidation).
			Build()
	}
	return e.classes[index], nil
}

// Classes returns the ordered class list.
func (e *LabelEncoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// NumClasses returns the number of distinct classes.
func (e *LabelEncoder) NumClasses() int {
	return len(e.classes)
}

// OneHot expands a class index into a one-hot vector of length numClasses.
func OneHot(index, numClasses int) []float64 {
	v := make([]float64, numClasses)
	v[index] = 1
	return v
}
