package fruitnet

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tmakinen/fruitnet-go/internal/errors"
)

// artifactVersion guards against loading artifacts written by an
// incompatible build.
const artifactVersion = 1

// Weight is one serialized weight tensor.
type Weight struct {
	Name  string
	Shape []int
	Data  []float64
}

// Artifact is the persisted form of a trained model: the class list in
// encoder order, the input shape and all weight tensors. Carrying the class
// list inside the artifact keeps the label mapping consistent between
// training and inference even when class directories change on disk.
type Artifact struct {
	Version  int
	Classes  []string
	Width    int
	Height   int
	Channels int
	Weights  []Weight
}

// Save serializes the trained network to path, creating parent directories
// and overwriting any existing artifact. The write goes through a temp file
// and rename, so readers never observe a partial artifact; concurrent
// training runs resolve as last writer wins.
func (n *Network) Save(path string) error {
	art := Artifact{
		Version:  artifactVersion,
		Classes:  n.Classes(),
		Width:    n.settings.Input.Width,
		Height:   n.settings.Input.Height,
		Channels: n.settings.Input.Channels,
	}

	for _, node := range n.model.learnables() {
		value := node.Value()
		if value == nil {
			return saveError(path, fmt.Errorf("weight %s has no value", node.Name()))
		}
		data, ok := value.Data().([]float64)
		if !ok {
			return saveError(path, fmt.Errorf("weight %s has unexpected backing type", node.Name()))
		}
		stored := make([]float64, len(data))
		copy(stored, data)
		art.Weights = append(art.Weights, Weight{
			Name:  node.Name(),
			Shape: append([]int(nil), value.Shape()...),
			Data:  stored,
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return saveError(path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "model-*.gob")
	if err != nil {
		return saveError(path, err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(&art); err != nil {
		tmp.Close()
		return saveError(path, err)
	}
	if err := tmp.Close(); err != nil {
		return saveError(path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return saveError(path, err)
	}
	return nil
}

// LoadArtifact reads a persisted model artifact from path.
func LoadArtifact(path string) (*Artifact, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf("no trained model found at %s, run training first", path).
				Component("fruitnet").
				Category(errors.CategoryNotFound).
				Context("path", path).
				Build()
		}
		return nil, errors.New(fmt.Errorf("opening model artifact %s: %w", path, err)).
			Component("fruitnet").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer file.Close()

	var art Artifact
	if err := gob.NewDecoder(file).Decode(&art); err != nil {
		return nil, errors.New(fmt.Errorf("decoding model artifact %s: %w", path, err)).
			Component("fruitnet").
			Category(errors.CategoryModelLoad).
			Context("path", path).
			Build()
	}

	if art.Version != artifactVersion {
		return nil, errors.Newf("model artifact version %d is not supported", art.Version).
			Component("fruitnet").
			Category(errors.CategoryModelLoad).
			Context("path", path).
			Build()
	}

	return &art, nil
}

func saveError(path string, err error) error {
	return errors.New(fmt.Errorf("saving model artifact %s: %w", path, err)).
		Component("fruitnet").
		Category(errors.CategoryModelSave).
		Context("path", path).
		Build()
}
