package preprocess

import (
	"github.com/spf13/cobra"

	"github.com/tmakinen/fruitnet-go/internal/analysis"
	"github.com/tmakinen/fruitnet-go/internal/conf"
)

// Command creates the preprocess command, the offline cleaning pass over the
// raw image directory.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Sanitize the raw image directory",
		Long:  "Mirror the raw image tree into the cleaned directory, dropping files that do not decode as images.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return analysis.Preprocess(settings)
		},
	}

	return cmd
}
