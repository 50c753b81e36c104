package dataset

import (
	"math/rand"

	"github.com/tmakinen/fruitnet-go/internal/conf"
	"github.com/tmakinen/fruitnet-go/internal/imageproc"
	"github.com/tmakinen/fruitnet-go/internal/logging"
)

// Split holds the train and validation subsets. Labels are one-hot encoded;
// data and labels share ordering within each subset.
type Split struct {
	TrainX []*imageproc.Tensor
	TrainY [][]float64
	ValX   []*imageproc.Tensor
	ValY   [][]float64
}

// Build decodes and preprocesses every labeled path with the canonical image
// transform, fits a label encoder over the observed label set, splits the
// data into train and validation subsets with the configured ratio and seed,
// and constructs the augmentation policy for training batches.
//
// A decode failure is fatal here: sanitization is assumed to have run.
func Build(paths []LabeledPath, settings *conf.Settings) (*Split, *LabelEncoder, *imageproc.Augmenter, error) {
	log := logging.ForComponent("dataset")
	log.Info("loading images", "count", len(paths))

	data := make([]*imageproc.Tensor, 0, len(paths))
	labels := make([]string, 0, len(paths))
	for _, p := range paths {
		t, err := imageproc.Load(p.Path, settings.Input.Width, settings.Input.Height, settings.Input.Channels)
		if err != nil {
			return nil, nil, nil, err
		}
		data = append(data, t)
		labels = append(labels, p.Label)
	}

	encoder := FitLabels(labels)
	log.Debug("fitted label encoder", "classes", encoder.Classes())

	encoded := make([][]float64, len(labels))
	for i, label := range labels {
		index, err := encoder.Encode(label)
		if err != nil {
			return nil, nil, nil, err
		}
		encoded[i] = OneHot(index, encoder.NumClasses())
	}

	// Deterministic index shuffle: the same inputs, seed and ratio always
	// produce the same split.
	indices := make([]int, len(data))
	for i := range indices {
		indices[i] = i
	}
	rng := rand.New(rand.NewSource(settings.Training.Seed))
	rng.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	valSize := int(float64(len(data)) * settings.Training.ValidationSplit)
	split := &Split{}
	for i, idx := range indices {
		if i < valSize {
			split.ValX = append(split.ValX, data[idx])
			split.ValY = append(split.ValY, encoded[idx])
		} else {
			split.TrainX = append(split.TrainX, data[idx])
			split.TrainY = append(split.TrainY, encoded[idx])
		}
	}

	log.Info("dataset split",
		"train", len(split.TrainX),
		"validation", len(split.ValX),
		"classes", encoder.NumClasses())

	augmenter := imageproc.NewAugmenter(imageproc.AugmentPolicy{
		Rotation:       settings.Augmentation.Rotation,
		WidthShift:     settings.Augmentation.WidthShift,
		HeightShift:    settings.Augmentation.HeightShift,
		Shear:          settings.Augmentation.Shear,
		Zoom:           settings.Augmentation.Zoom,
		HorizontalFlip: settings.Augmentation.HorizontalFlip,
	}, settings.Training.Seed)

	return split, encoder, augmenter, nil
}
