// Package dataset turns a labeled image directory into model-ready tensors:
// it collects and shuffles file paths, sanitizes raw trees, encodes labels and
// splits data into train and validation subsets.
package dataset

import (
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/tmakinen/fruitnet-go/internal/errors"
)

// LabeledPath is an image file path with the class label derived from its
// immediate parent directory.
type LabeledPath struct {
	Path  string
	Label string
}

// CollectImagePaths recursively enumerates all files under root, one
// subdirectory per class, and returns them in a deterministic seeded shuffle.
// The walk order is lexicographic, so two calls with the same seed over the
// same tree return identical orderings. An empty root yields an empty slice.
func CollectImagePaths(root string, seed int64) ([]LabeledPath, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf("image directory does not exist: %s", root).
				Component("dataset").
				Category(errors.CategoryNotFound).
				Context("path", root).
				Build()
		}
		return nil, errors.New(fmt.Errorf("accessing image directory %s: %w", root, err)).
			Component("dataset").
			Category(errors.CategoryFileIO).
			Context("path", root).
			Build()
	}
	if !info.IsDir() {
		return nil, errors.Newf("image directory path is not a directory: %s", root).
			Component("dataset").
			Category(errors.CategoryValidation).
			Context("path", root).
			Build()
	}

	var paths []LabeledPath
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		paths = append(paths, LabeledPath{
			Path:  path,
			Label: filepath.Base(filepath.Dir(path)),
		})
		return nil
	})
	if err != nil {
		return nil, errors.New(fmt.Errorf("walking image directory %s: %w", root, err)).
			Component("dataset").
			Category(errors.CategoryFileIO).
			Context("path", root).
			Build()
	}

	// WalkDir visits entries in lexical order, the shuffle below is the only
	// source of randomness and it is seeded.
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(paths), func(i, j int) {
		paths[i], paths[j] = paths[j], paths[i]
	})

	return paths, nil
}
