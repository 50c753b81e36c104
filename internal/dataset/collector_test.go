package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmakinen/fruitnet-go/internal/errors"
)

func TestCollectImagePathsDeterministic(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	makeRawTree(t, root)

	first, err := CollectImagePaths(root, 42)
	require.NoError(t, err)
	second, err := CollectImagePaths(root, 42)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same directory and seed must return identical orderings")
	assert.Len(t, first, 10) // 9 valid images + 1 corrupt file, collector does not decode
}

func TestCollectImagePathsSeedChangesOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	makeRawTree(t, root)

	first, err := CollectImagePaths(root, 42)
	require.NoError(t, err)
	second, err := CollectImagePaths(root, 43)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.ElementsMatch(t, first, second)
}

func TestCollectImagePathsLabels(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	makeRawTree(t, root)

	paths, err := CollectImagePaths(root, 1)
	require.NoError(t, err)

	for _, p := range paths {
		assert.Equal(t, filepath.Base(filepath.Dir(p.Path)), p.Label)
		assert.Contains(t, []string{"apple", "banana"}, p.Label)
	}
}

func TestCollectImagePathsMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := CollectImagePaths(filepath.Join(t.TempDir(), "does-not-exist"), 42)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCollectImagePathsEmptyRoot(t *testing.T) {
	t.Parallel()

	paths, err := CollectImagePaths(t.TempDir(), 42)
	require.NoError(t, err)
	assert.Empty(t, paths)
}
