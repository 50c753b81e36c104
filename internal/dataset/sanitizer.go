package dataset

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/tmakinen/fruitnet-go/internal/errors"
	"github.com/tmakinen/fruitnet-go/internal/imageproc"
	"github.com/tmakinen/fruitnet-go/internal/logging"
)

// ClassCount reports per-class file counts before and after sanitization.
type ClassCount struct {
	Class string
	Raw   int
	Clean int
}

// Sanitize mirrors the raw image tree into cleanDir and removes every file
// from the mirror that does not decode as an image. The raw tree is never
// modified. Mirroring uses merge semantics, existing destination directories
// are reused and files overwritten, so re-running on an already-clean tree is
// a no-op. Returns per-class counts sorted by class name.
func Sanitize(rawDir, cleanDir string) ([]ClassCount, error) {
	log := logging.ForComponent("sanitizer")

	if _, err := os.Stat(rawDir); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf("raw image directory does not exist: %s", rawDir).
				Component("sanitizer").
				Category(errors.CategoryNotFound).
				Context("path", rawDir).
				Build()
		}
		return nil, errors.New(fmt.Errorf("accessing raw directory %s: %w", rawDir, err)).
			Component("sanitizer").
			Category(errors.CategoryFileIO).
			Context("path", rawDir).
			Build()
	}

	if err := copyTree(rawDir, cleanDir); err != nil {
		return nil, err
	}

	// Validate every file in the mirror, not only freshly copied ones, so a
	// second pass revalidates the whole clean tree.
	removed := 0
	err := filepath.WalkDir(cleanDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, decodeErr := imageproc.Decode(path); decodeErr != nil {
			log.Info("removing unreadable image", "path", path)
			if rmErr := os.Remove(path); rmErr != nil {
				return rmErr
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return nil, errors.New(fmt.Errorf("validating cleaned directory %s: %w", cleanDir, err)).
			Component("sanitizer").
			Category(errors.CategoryFileIO).
			Context("path", cleanDir).
			Build()
	}

	log.Debug("sanitization pass complete", "removed", removed)

	return classCounts(rawDir, cleanDir)
}

// copyTree mirrors src into dst, preserving relative structure. Existing
// destination files are overwritten.
func copyTree(src, dst string) error {
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		if info, statErr := os.Stat(target); statErr == nil && info.IsDir() {
			return fmt.Errorf("destination %s exists as a directory", target)
		}
		return copyFile(path, target)
	})
	if err != nil {
		return errors.New(fmt.Errorf("mirroring %s into %s: %w", src, dst, err)).
			Component("sanitizer").
			Category(errors.CategoryFileCopy).
			Context("source", src).
			Context("destination", dst).
			Build()
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// classCounts compares the top-level class subdirectories of the raw and
// clean trees.
func classCounts(rawDir, cleanDir string) ([]ClassCount, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, errors.New(fmt.Errorf("reading raw directory %s: %w", rawDir, err)).
			Component("sanitizer").
			Category(errors.CategoryFileIO).
			Context("path", rawDir).
			Build()
	}

	var counts []ClassCount
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		raw, err := countFiles(filepath.Join(rawDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		clean, err := countFiles(filepath.Join(cleanDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		counts = append(counts, ClassCount{Class: entry.Name(), Raw: raw, Clean: clean})
	}

	sort.Slice(counts, func(i, j int) bool { return counts[i].Class < counts[j].Class })
	return counts, nil
}

func countFiles(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, errors.New(fmt.Errorf("counting files in %s: %w", dir, err)).
			Component("sanitizer").
			Category(errors.CategoryFileIO).
			Context("path", dir).
			Build()
	}
	return count, nil
}
