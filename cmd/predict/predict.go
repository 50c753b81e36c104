package predict

import (
	"github.com/spf13/cobra"

	"github.com/tmakinen/fruitnet-go/internal/analysis"
	"github.com/tmakinen/fruitnet-go/internal/conf"
)

// Command creates the predict command. The image argument is optional; when
// omitted a random image is drawn from the cleaned dataset.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict [image]",
		Short: "Classify a single image with the trained model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath := ""
			if len(args) == 1 {
				imagePath = args[0]
			}
			return analysis.Predict(settings, imagePath)
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

// setupFlags configures flags specific to the predict command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVar(&settings.Paths.Model, "model", settings.Paths.Model, "Path to the model artifact")
}
