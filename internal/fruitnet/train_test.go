package fruitnet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/gorgonia"

	"github.com/tmakinen/fruitnet-go/internal/dataset"
	"github.com/tmakinen/fruitnet-go/internal/imageproc"
)

// solidTensor returns a tensor filled with one RGB color. Solid images are
// invariant under the geometric augmentations, which keeps this fixture
// trivially separable.
func solidTensor(width, height int, r, g, b float64) *imageproc.Tensor {
	t := imageproc.NewTensor(width, height, 3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t.Set(0, y, x, r)
			t.Set(1, y, x, g)
			t.Set(2, y, x, b)
		}
	}
	return t
}

// twoColorSplit builds a 2-class dataset of solid red and green images.
// Classes in encoder order: green=0, red=1.
func twoColorSplit(width, height, trainPerClass, valPerClass int) *dataset.Split {
	split := &dataset.Split{}
	for i := 0; i < trainPerClass; i++ {
		split.TrainX = append(split.TrainX, solidTensor(width, height, 0, 1, 0))
		split.TrainY = append(split.TrainY, []float64{1, 0})
		split.TrainX = append(split.TrainX, solidTensor(width, height, 1, 0, 0))
		split.TrainY = append(split.TrainY, []float64{0, 1})
	}
	for i := 0; i < valPerClass; i++ {
		split.ValX = append(split.ValX, solidTensor(width, height, 0, 1, 0))
		split.ValY = append(split.ValY, []float64{1, 0})
		split.ValX = append(split.ValX, solidTensor(width, height, 1, 0, 0))
		split.ValY = append(split.ValY, []float64{0, 1})
	}
	return split
}

func TestTrainHistoryLength(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping training integration test in short mode")
	}

	settings := testSettings()
	settings.Training.Epochs = 2

	split := twoColorSplit(settings.Input.Width, settings.Input.Height, 8, 2)
	network, err := New(settings, []string{"green", "red"}, len(split.TrainX))
	require.NoError(t, err)

	augmenter := imageproc.NewAugmenter(imageproc.AugmentPolicy{
		Rotation:       settings.Augmentation.Rotation,
		WidthShift:     settings.Augmentation.WidthShift,
		HeightShift:    settings.Augmentation.HeightShift,
		Shear:          settings.Augmentation.Shear,
		Zoom:           settings.Augmentation.Zoom,
		HorizontalFlip: settings.Augmentation.HorizontalFlip,
	}, settings.Training.Seed)

	history, err := network.Train(split, augmenter)
	require.NoError(t, err)

	require.Len(t, history, settings.Training.Epochs)
	for _, m := range history {
		assert.GreaterOrEqual(t, m.Accuracy, 0.0)
		assert.LessOrEqual(t, m.Accuracy, 1.0)
		assert.GreaterOrEqual(t, m.ValAccuracy, 0.0)
		assert.LessOrEqual(t, m.ValAccuracy, 1.0)
		assert.GreaterOrEqual(t, m.Loss, 0.0)
		assert.GreaterOrEqual(t, m.ValLoss, 0.0)
	}
}

// Validation metrics must come from a deterministic forward pass: repeated
// evaluation of the same weights and data returns identical numbers, so no
// dropout noise leaks into the history.
func TestEvaluateIsRepeatable(t *testing.T) {
	settings := testSettings()
	settings.Training.BatchSize = 4

	split := twoColorSplit(settings.Input.Width, settings.Input.Height, 4, 3)
	network, err := New(settings, []string{"green", "red"}, len(split.TrainX))
	require.NoError(t, err)

	vm := gorgonia.NewTapeMachine(network.evalG)
	defer vm.Close()

	loss1, acc1, err := network.evaluate(vm, split.ValX, split.ValY)
	require.NoError(t, err)
	loss2, acc2, err := network.evaluate(vm, split.ValX, split.ValY)
	require.NoError(t, err)

	assert.Equal(t, loss1, loss2)
	assert.Equal(t, acc1, acc2)
}

func TestTrainSaveAndPredictOverfit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping training integration test in short mode")
	}

	settings := testSettings()
	settings.Training.Epochs = 15

	split := twoColorSplit(settings.Input.Width, settings.Input.Height, 16, 4)
	network, err := New(settings, []string{"green", "red"}, len(split.TrainX))
	require.NoError(t, err)

	history, err := network.Train(split, nil)
	require.NoError(t, err)
	require.Len(t, history, settings.Training.Epochs)

	path := filepath.Join(t.TempDir(), "models", "model.gob")
	require.NoError(t, network.Save(path))

	predictor, err := Load(path)
	require.NoError(t, err)
	defer predictor.Close()

	// An image identical to a training sample must come back with its true
	// label once the network has had enough epochs to overfit.
	label, confidence, err := predictor.Classify(solidTensor(settings.Input.Width, settings.Input.Height, 1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "red", label)
	assert.GreaterOrEqual(t, confidence, 0.5)

	label, _, err = predictor.Classify(solidTensor(settings.Input.Width, settings.Input.Height, 0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, "green", label)
}
