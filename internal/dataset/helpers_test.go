package dataset

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeImage writes a small valid PNG of the given solid color.
func writeImage(t *testing.T, path string, c color.RGBA) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			// slight gradient so the file is not a degenerate constant
			img.Set(x, y, color.RGBA{R: c.R, G: c.G, B: uint8(int(c.B) + x%8), A: 255})
		}
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, img))
	require.NoError(t, file.Close())
}

// writeCorrupt writes a file that does not decode as an image.
func writeCorrupt(t *testing.T, path string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("definitely not an image"), 0o644))
}

// makeRawTree builds the canonical two-class test fixture: apple with five
// valid images plus one corrupt file, banana with four valid images.
func makeRawTree(t *testing.T, root string) {
	t.Helper()

	red := color.RGBA{R: 200, G: 30, B: 30}
	yellow := color.RGBA{R: 220, G: 210, B: 40}

	for i := 0; i < 5; i++ {
		writeImage(t, filepath.Join(root, "apple", appleName(i)), red)
	}
	writeCorrupt(t, filepath.Join(root, "apple", "broken.jpg"))

	for i := 0; i < 4; i++ {
		writeImage(t, filepath.Join(root, "banana", bananaName(i)), yellow)
	}
}

func appleName(i int) string {
	return "apple_" + string(rune('a'+i)) + ".png"
}

func bananaName(i int) string {
	return "banana_" + string(rune('a'+i)) + ".png"
}

// countTreeFiles counts regular files under root recursively.
func countTreeFiles(t *testing.T, root string) int {
	t.Helper()

	count := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}
