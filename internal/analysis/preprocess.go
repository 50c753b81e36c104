// Package analysis wires the pipeline components into the three top-level
// flows: preprocessing, training and prediction.
package analysis

import (
	"fmt"

	"github.com/tmakinen/fruitnet-go/internal/conf"
	"github.com/tmakinen/fruitnet-go/internal/dataset"
	"github.com/tmakinen/fruitnet-go/internal/logging"
)

// Preprocess runs the offline cleaning pass: mirror the raw image tree into
// the cleaned directory, drop files that do not decode as images and report
// per-class retention.
func Preprocess(settings *conf.Settings) error {
	log := logging.ForComponent("analysis")
	log.Info("sanitizing image directory",
		"raw", settings.Paths.RawData,
		"cleaned", settings.Paths.CleanedData)

	counts, err := dataset.Sanitize(settings.Paths.RawData, settings.Paths.CleanedData)
	if err != nil {
		return err
	}

	fmt.Println("Result of cleaning:")
	for _, c := range counts {
		fmt.Printf("    %d/%d remaining in %s\n", c.Clean, c.Raw, c.Class)
	}

	return nil
}
