package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bq-inspector",
	Short: "SQL inspection and advisory tooling for BigQuery",
	Long: `bq-inspector analyzes BigQuery SQL without executing it: it
classifies statement structure, extracts table and column dependencies,
runs heuristic advisory checks, and scores query performance from
dry-run metadata.

No query is ever executed and no table data is read.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.bq-inspector.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output")
	rootCmd.PersistentFlags().String("project", "", "default GCP project for dry-run requests")
	rootCmd.PersistentFlags().String("location", "", "default BigQuery location")
	rootCmd.PersistentFlags().Float64("price-per-tib", 0, "price per TiB for cost estimates")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("project", rootCmd.PersistentFlags().Lookup("project"))
	_ = viper.BindPFlag("location", rootCmd.PersistentFlags().Lookup("location"))
	_ = viper.BindPFlag("price-per-tib", rootCmd.PersistentFlags().Lookup("price-per-tib"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".bq-inspector" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".bq-inspector")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// Missing config files are fine; flags and env cover everything.
	_ = viper.ReadInConfig()
}
