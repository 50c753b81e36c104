package train

import (
	"github.com/spf13/cobra"

	"github.com/tmakinen/fruitnet-go/internal/analysis"
	"github.com/tmakinen/fruitnet-go/internal/conf"
)

// Command creates the train command, the full training flow from the cleaned
// image directory to a persisted model artifact and a training chart.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the classifier on the cleaned dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.Train(settings)
		},
	}

	setupFlags(cmd, settings)

	return cmd
}

// setupFlags configures flags specific to the train command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().IntVar(&settings.Training.Epochs, "epochs", settings.Training.Epochs, "Number of training epochs")
	cmd.Flags().IntVar(&settings.Training.BatchSize, "batchsize", settings.Training.BatchSize, "Samples per gradient step")
}
