package fruitnet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmakinen/fruitnet-go/internal/conf"
	"github.com/tmakinen/fruitnet-go/internal/errors"
	"github.com/tmakinen/fruitnet-go/internal/imageproc"
)

// testSettings returns settings shrunk so graph construction and the tape
// machine stay fast in unit tests.
func testSettings() *conf.Settings {
	s := conf.TestSettings()
	s.Input.Width = 16
	s.Input.Height = 16
	s.Training.Epochs = 3
	s.Training.BatchSize = 8
	return s
}

func TestNewRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	settings := testSettings()

	_, err := New(settings, []string{"apple"}, 10)
	require.Error(t, err, "a single class is not a classification problem")

	_, err = New(settings, []string{"apple", "banana"}, 0)
	require.Error(t, err)
}

func TestNewClampsBatchSize(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	settings.Training.BatchSize = 32

	network, err := New(settings, []string{"apple", "banana"}, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, network.batchSize)
}

func TestArtifactRoundTrip(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	network, err := New(settings, []string{"apple", "banana", "cherry"}, 12)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "models", "model.gob")
	require.NoError(t, network.Save(path))

	art, err := LoadArtifact(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"apple", "banana", "cherry"}, art.Classes)
	assert.Equal(t, settings.Input.Width, art.Width)
	assert.Equal(t, settings.Input.Height, art.Height)
	assert.Equal(t, settings.Input.Channels, art.Channels)
	require.Len(t, art.Weights, 5)
	for _, w := range art.Weights {
		assert.NotEmpty(t, w.Shape)
		assert.NotEmpty(t, w.Data)
	}
}

func TestSaveOverwritesExistingArtifact(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	path := filepath.Join(t.TempDir(), "model.gob")

	first, err := New(settings, []string{"apple", "banana"}, 8)
	require.NoError(t, err)
	require.NoError(t, first.Save(path))

	second, err := New(settings, []string{"kiwi", "mango"}, 8)
	require.NoError(t, err)
	require.NoError(t, second.Save(path))

	art, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"kiwi", "mango"}, art.Classes, "last writer wins")
}

func TestLoadArtifactMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadArtifact(filepath.Join(t.TempDir(), "missing.gob"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestPredictorFromSavedNetwork(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	network, err := New(settings, []string{"apple", "banana"}, 8)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, network.Save(path))

	predictor, err := Load(path)
	require.NoError(t, err)
	defer predictor.Close()

	width, height, channels := predictor.InputShape()
	assert.Equal(t, 16, width)
	assert.Equal(t, 16, height)
	assert.Equal(t, 3, channels)

	label, confidence, err := predictor.Classify(imageproc.NewTensor(width, height, channels))
	require.NoError(t, err)
	assert.Contains(t, []string{"apple", "banana"}, label)
	assert.GreaterOrEqual(t, confidence, 0.0)
	assert.LessOrEqual(t, confidence, 1.0)
}
