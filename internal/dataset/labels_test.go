package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelEncoderBijection(t *testing.T) {
	t.Parallel()

	encoder := FitLabels([]string{"banana", "apple", "cherry", "apple", "banana"})

	require.Equal(t, 3, encoder.NumClasses())
	assert.Equal(t, []string{"apple", "banana", "cherry"}, encoder.Classes())

	for _, class := range encoder.Classes() {
		index, err := encoder.Encode(class)
		require.NoError(t, err)

		decoded, err := encoder.Decode(index)
		require.NoError(t, err)
		assert.Equal(t, class, decoded)
	}
}

func TestLabelEncoderOrderIndependentOfSampleOrder(t *testing.T) {
	t.Parallel()

	a := FitLabels([]string{"pear", "apple", "pear"})
	b := FitLabels([]string{"apple", "pear", "apple", "apple"})

	assert.Equal(t, a.Classes(), b.Classes())
}

func TestLabelEncoderUnknownLabel(t *testing.T) {
	t.Parallel()

	encoder := FitLabels([]string{"apple"})

	_, err := encoder.Encode("durian")
	assert.Error(t, err)

	_, err = encoder.Decode(5)
	assert.Error(t, err)

	_, err = encoder.Decode(-1)
	assert.Error(t, err)
}

func TestOneHot(t *testing.T) {
	t.Parallel()

	v := OneHot(2, 4)
	assert.Equal(t, []float64{0, 0, 1, 0}, v)
}
