package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tmakinen/fruitnet-go/cmd/predict"
	"github.com/tmakinen/fruitnet-go/cmd/preprocess"
	"github.com/tmakinen/fruitnet-go/cmd/train"
	"github.com/tmakinen/fruitnet-go/internal/conf"
	"github.com/tmakinen/fruitnet-go/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fruitnet",
		Short: "FruitNet-Go CLI",
		Long:  "Train and run a small convolutional image classifier over a labeled image directory.",
	}

	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		preprocess.Command(settings),
		train.Command(settings),
		predict.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Init(settings.Debug)
		return settings.Validate()
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Paths.RawData, "rawdata", viper.GetString("paths.rawdata"), "Path to the raw labeled image directory")
	rootCmd.PersistentFlags().StringVar(&settings.Paths.CleanedData, "cleaneddata", viper.GetString("paths.cleaneddata"), "Path to the sanitized image directory")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
