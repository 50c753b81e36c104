// Package conf loads and validates the fruitnet configuration.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"github.com/tmakinen/fruitnet-go/internal/errors"
)

// Settings holds the full pipeline configuration.
type Settings struct {
	Debug bool // true to enable debug log output

	Paths struct {
		RawData     string // root of the raw labeled image tree
		CleanedData string // root of the sanitized image tree
		Model       string // trained model artifact path
		Plot        string // training history chart path
	}

	Input struct {
		Width    int // target image width in pixels
		Height   int // target image height in pixels
		Channels int // color channels, 3 for RGB
	}

	Training struct {
		Epochs          int     // number of passes over the training set
		BatchSize       int     // samples per gradient step
		LearningRate    float64 // initial Adam learning rate
		ValidationSplit float64 // fraction of data held out for validation
		Seed            int64   // seed for shuffles and splits
	}

	Augmentation struct {
		Rotation       float64 // max rotation in degrees
		WidthShift     float64 // max horizontal shift as fraction of width
		HeightShift    float64 // max vertical shift as fraction of height
		Shear          float64 // max shear factor
		Zoom           float64 // max zoom factor
		HorizontalFlip bool    // randomly mirror images horizontally
	}

	Output struct {
		SQLite struct {
			Enabled bool   // true to record runs and predictions to sqlite
			Path    string // path to sqlite database
		}
	}
}

// Load reads the configuration file and returns the populated settings.
// A default config file is created when none is found.
func Load() (*Settings, error) {
	var settings Settings

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(&settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

// Validate checks the settings for values the pipeline cannot run with.
func (s *Settings) Validate() error {
	switch {
	case s.Input.Width <= 0 || s.Input.Height <= 0 || s.Input.Channels <= 0:
		return validationError("input dimensions must be positive, got %dx%dx%d",
			s.Input.Width, s.Input.Height, s.Input.Channels)
	case s.Input.Channels > 3:
		return validationError("input channels must be at most 3 (RGB), got %d", s.Input.Channels)
	case s.Training.Epochs <= 0:
		return validationError("training epochs must be positive, got %d", s.Training.Epochs)
	case s.Training.BatchSize <= 0:
		return validationError("training batch size must be positive, got %d", s.Training.BatchSize)
	case s.Training.LearningRate <= 0:
		return validationError("learning rate must be positive, got %g", s.Training.LearningRate)
	case s.Training.ValidationSplit <= 0 || s.Training.ValidationSplit >= 1:
		return validationError("validation split must be in (0, 1), got %g", s.Training.ValidationSplit)
	}
	return nil
}

func validationError(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("conf").
		Category(errors.CategoryValidation).
		Build()
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := getDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaults()

	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// getDefaultConfigPaths returns a list of default config paths for the current OS
func getDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user directory: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		return []string{
			".",
			filepath.Join(homeDir, "AppData", "Local", "fruitnet-go"),
		}, nil
	default:
		return []string{
			".",
			filepath.Join(homeDir, ".config", "fruitnet-go"),
			"/etc/fruitnet-go",
		}, nil
	}
}

// createDefaultConfig writes the default config file to the first config path.
func createDefaultConfig() error {
	configPaths, err := getDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}
