package analysis

import (
	"strings"
	"time"

	"github.com/tmakinen/fruitnet-go/internal/conf"
	"github.com/tmakinen/fruitnet-go/internal/dataset"
	"github.com/tmakinen/fruitnet-go/internal/datastore"
	"github.com/tmakinen/fruitnet-go/internal/errors"
	"github.com/tmakinen/fruitnet-go/internal/fruitnet"
	"github.com/tmakinen/fruitnet-go/internal/logging"
	"github.com/tmakinen/fruitnet-go/internal/report"
)

// Train runs the full training flow: collect cleaned images, build the
// dataset, train the network, persist the model artifact and render the
// training-history chart.
func Train(settings *conf.Settings) error {
	log := logging.ForComponent("analysis")
	startedAt := time.Now()

	paths, err := dataset.CollectImagePaths(settings.Paths.CleanedData, settings.Training.Seed)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.Newf("no images found under %s, run preprocessing first", settings.Paths.CleanedData).
			Component("analysis").
			Category(errors.CategoryNotFound).
			Build()
	}

	split, encoder, augmenter, err := dataset.Build(paths, settings)
	if err != nil {
		return err
	}

	network, err := fruitnet.New(settings, encoder.Classes(), len(split.TrainX))
	if err != nil {
		return err
	}

	history, err := network.Train(split, augmenter)
	if err != nil {
		return err
	}

	if err := network.Save(settings.Paths.Model); err != nil {
		return err
	}
	log.Info("serialized network", "path", settings.Paths.Model)

	if err := report.RenderHistory(history, settings.Paths.Plot); err != nil {
		return err
	}

	if store := datastore.New(settings); store != nil {
		if err := recordTrainingRun(store, settings, encoder, len(paths), startedAt, history); err != nil {
			// Recording is best effort, the artifact is already on disk.
			log.Warn("failed to record training run", "error", err)
		}
	}

	return nil
}

func recordTrainingRun(store datastore.Interface, settings *conf.Settings, encoder *dataset.LabelEncoder, samples int, startedAt time.Time, history fruitnet.History) error {
	if err := store.Open(); err != nil {
		return err
	}
	defer store.Close()

	final := history.Final()
	return store.SaveTrainingRun(&datastore.TrainingRun{
		StartedAt:        startedAt,
		Epochs:           settings.Training.Epochs,
		BatchSize:        settings.Training.BatchSize,
		Classes:          strings.Join(encoder.Classes(), ","),
		SampleCount:      samples,
		FinalLoss:        final.Loss,
		FinalValLoss:     final.ValLoss,
		FinalAccuracy:    final.Accuracy,
		FinalValAccuracy: final.ValAccuracy,
		ModelPath:        settings.Paths.Model,
	})
}
