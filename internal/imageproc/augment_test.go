package imageproc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomTensor(width, height, channels int, seed int64) *Tensor {
	rng := rand.New(rand.NewSource(seed))
	t := NewTensor(width, height, channels)
	for i := range t.Data {
		t.Data[i] = rng.Float64()
	}
	return t
}

func defaultPolicy() AugmentPolicy {
	return AugmentPolicy{
		Rotation:       30,
		WidthShift:     0.1,
		HeightShift:    0.1,
		Shear:          0.2,
		Zoom:           0.2,
		HorizontalFlip: true,
	}
}

func TestAugmenterPreservesShapeAndRange(t *testing.T) {
	t.Parallel()

	src := randomTensor(28, 28, 3, 7)
	augmenter := NewAugmenter(defaultPolicy(), 42)

	for i := 0; i < 10; i++ {
		out := augmenter.Apply(src)

		require.Len(t, out.Data, len(src.Data))
		assert.Equal(t, src.Width, out.Width)
		assert.Equal(t, src.Height, out.Height)
		assert.Equal(t, src.Channels, out.Channels)

		// Nearest-neighbor sampling only copies existing values.
		for _, v := range out.Data {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestAugmenterDoesNotModifySource(t *testing.T) {
	t.Parallel()

	src := randomTensor(16, 16, 3, 3)
	original := make([]float64, len(src.Data))
	copy(original, src.Data)

	NewAugmenter(defaultPolicy(), 1).Apply(src)

	assert.Equal(t, original, src.Data)
}

func TestAugmenterDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	src := randomTensor(28, 28, 3, 5)
	a := NewAugmenter(defaultPolicy(), 42)
	b := NewAugmenter(defaultPolicy(), 42)

	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Apply(src).Data, b.Apply(src).Data)
	}
}

func TestAugmenterZeroPolicyIsIdentity(t *testing.T) {
	t.Parallel()

	src := randomTensor(28, 28, 3, 9)
	augmenter := NewAugmenter(AugmentPolicy{}, 42)

	out := augmenter.Apply(src)
	assert.Equal(t, src.Data, out.Data)
}
