package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:               "mnist-dashboard",
	Short:             "Train an MNIST digit classifier once and serve its predictions",
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE:              runServe,
}

var serveCmd = &cobra.Command{
	Use:          "serve",
	Short:        "Start the dashboard server (default)",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runServe,
}

var trainCmd = &cobra.Command{
	Use:          "train",
	Short:        "Download the dataset, train the classifier and report test accuracy",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runTrain,
}

func init() {
	rootCmd.AddCommand(serveCmd, trainCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
