package analysis

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/tmakinen/fruitnet-go/internal/conf"
	"github.com/tmakinen/fruitnet-go/internal/datastore"
	"github.com/tmakinen/fruitnet-go/internal/errors"
	"github.com/tmakinen/fruitnet-go/internal/fruitnet"
	"github.com/tmakinen/fruitnet-go/internal/logging"
)

// Predict classifies a single image with the persisted model and prints the
// top label with its confidence. When imagePath is empty a random image is
// drawn from the cleaned dataset.
func Predict(settings *conf.Settings, imagePath string) error {
	log := logging.ForComponent("analysis")

	if imagePath == "" {
		picked, err := pickRandomImage(settings.Paths.CleanedData)
		if err != nil {
			return err
		}
		imagePath = picked
		log.Info("no image given, picked a random one", "path", imagePath)
	}

	predictor, err := fruitnet.Load(settings.Paths.Model)
	if err != nil {
		return err
	}
	defer predictor.Close()

	label, confidence, err := predictor.ClassifyFile(imagePath)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %.2f%%\n", label, confidence*100)

	if store := datastore.New(settings); store != nil {
		if err := recordPrediction(store, imagePath, label, confidence); err != nil {
			log.Warn("failed to record prediction", "error", err)
		}
	}

	return nil
}

// pickRandomImage selects a random class directory under root, then a random
// file within it.
func pickRandomImage(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf("cleaned image directory does not exist: %s", root).
				Component("analysis").
				Category(errors.CategoryNotFound).
				Context("path", root).
				Build()
		}
		return "", errors.New(fmt.Errorf("reading cleaned directory %s: %w", root, err)).
			Component("analysis").
			Category(errors.CategoryFileIO).
			Context("path", root).
			Build()
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	if len(dirs) == 0 {
		return "", errors.Newf("no class directories under %s", root).
			Component("analysis").
			Category(errors.CategoryNotFound).
			Context("path", root).
			Build()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	classDir := filepath.Join(root, dirs[rng.Intn(len(dirs))])

	files, err := os.ReadDir(classDir)
	if err != nil {
		return "", errors.New(fmt.Errorf("reading class directory %s: %w", classDir, err)).
			Component("analysis").
			Category(errors.CategoryFileIO).
			Context("path", classDir).
			Build()
	}

	var names []string
	for _, file := range files {
		if !file.IsDir() {
			names = append(names, file.Name())
		}
	}
	if len(names) == 0 {
		return "", errors.Newf("no images in class directory %s", classDir).
			Component("analysis").
			Category(errors.CategoryNotFound).
			Context("path", classDir).
			Build()
	}

	return filepath.Join(classDir, names[rng.Intn(len(names))]), nil
}

func recordPrediction(store datastore.Interface, imagePath, label string, confidence float64) error {
	if err := store.Open(); err != nil {
		return err
	}
	defer store.Close()

	return store.SavePrediction(&datastore.Prediction{
		CreatedAt:  time.Now(),
		ImagePath:  imagePath,
		Label:      label,
		Confidence: confidence,
	})
}
