package conf

import "github.com/spf13/viper"

// setDefaults registers default values so partial config files still produce a
// complete Settings struct.
func setDefaults() {
	viper.SetDefault("debug", false)

	viper.SetDefault("paths.rawdata", "generated_data/raw_data")
	viper.SetDefault("paths.cleaneddata", "generated_data/cleaned_data")
	viper.SetDefault("paths.model", "generated_data/models/model.gob")
	viper.SetDefault("paths.plot", "generated_data/plots/training_history.png")

	viper.SetDefault("input.width", 28)
	viper.SetDefault("input.height", 28)
	viper.SetDefault("input.channels", 3)

	viper.SetDefault("training.epochs", 25)
	viper.SetDefault("training.batchsize", 32)
	viper.SetDefault("training.learningrate", 0.001)
	viper.SetDefault("training.validationsplit", 0.25)
	viper.SetDefault("training.seed", 42)

	viper.SetDefault("augmentation.rotation", 30.0)
	viper.SetDefault("augmentation.widthshift", 0.1)
	viper.SetDefault("augmentation.heightshift", 0.1)
	viper.SetDefault("augmentation.shear", 0.2)
	viper.SetDefault("augmentation.zoom", 0.2)
	viper.SetDefault("augmentation.horizontalflip", true)

	viper.SetDefault("output.sqlite.enabled", false)
	viper.SetDefault("output.sqlite.path", "generated_data/fruitnet.db")
}

// defaultConfig is written out when no config file exists.
const defaultConfig = `# FruitNet-Go configuration

debug: false				# print debug messages, can help with problem solving

# Filesystem layout, relative to the working directory
paths:
  rawdata: generated_data/raw_data						# raw labeled images, one subdirectory per class
  cleaneddata: generated_data/cleaned_data				# sanitized mirror of rawdata
  model: generated_data/models/model.gob				# trained model artifact
  plot: generated_data/plots/training_history.png		# loss/accuracy chart

# Model input shape, images are resized to width x height with channels colors
input:
  width: 28
  height: 28
  channels: 3

# Training settings
training:
  epochs: 25			# passes over the training set
  batchsize: 32			# samples per gradient step
  learningrate: 0.001	# initial Adam learning rate
  validationsplit: 0.25	# fraction of data held out for validation
  seed: 42				# seed for shuffles and splits, fixed for reproducibility

# Data augmentation applied to training batches on the fly
augmentation:
  rotation: 30.0		# max rotation in degrees
  widthshift: 0.1		# max horizontal shift as fraction of width
  heightshift: 0.1		# max vertical shift as fraction of height
  shear: 0.2			# max shear factor
  zoom: 0.2				# max zoom factor
  horizontalflip: true	# randomly mirror images horizontally

# Output settings
output:
  sqlite:
    enabled: false					# true to record training runs and predictions
    path: generated_data/fruitnet.db	# path to sqlite database
`

// TestSettings returns settings with defaults suitable for unit tests,
// bypassing viper and the config file search.
func TestSettings() *Settings {
	var s Settings
	s.Paths.RawData = "generated_data/raw_data"
	s.Paths.CleanedData = "generated_data/cleaned_data"
	s.Paths.Model = "generated_data/models/model.gob"
	s.Paths.Plot = "generated_data/plots/training_history.png"
	s.Input.Width = 28
	s.Input.Height = 28
	s.Input.Channels = 3
	s.Training.Epochs = 25
	s.Training.BatchSize = 32
	s.Training.LearningRate = 0.001
	s.Training.ValidationSplit = 0.25
	s.Training.Seed = 42
	s.Augmentation.Rotation = 30.0
	s.Augmentation.WidthShift = 0.1
	s.Augmentation.HeightShift = 0.1
	s.Augmentation.Shear = 0.2
	s.Augmentation.Zoom = 0.2
	s.Augmentation.HorizontalFlip = true
	s.Output.SQLite.Path = "generated_data/fruitnet.db"
	return &s
}
