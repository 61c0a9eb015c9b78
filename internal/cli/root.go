// Package cli holds the codepair commands.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	settingsFile string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "codepair",
	Short: "Recursive and iterative solutions side by side",
	Long: `codepair asks a language model for a recursive and an iterative
solution to a problem, shows both with syntax highlighting and can
explain how they differ.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil && verbose {
			fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
		}
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsFile, "config", "codepair.yml", "settings file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.AddCommand(newServeCmd(), newGenerateCmd())
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	return zapConfig.Build()
}
