package linkpath

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/soundprediction/linkpath/pkg/config"
	"github.com/soundprediction/linkpath/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "linkpath",
		Short: "linkpath: find link chains between wiki pages",
		Long: `linkpath searches for a chain of links leading from one wiki page to another.

Links are ranked by embedding similarity to the goal title, so only the most
promising pages are expanded at each level of the search.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.linkpath.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "color", "log format (color, text, json)")
	rootCmd.PersistentFlags().String("wiki-api", "", "MediaWiki action API endpoint")
	rootCmd.PersistentFlags().String("embedding-provider", "", "embedding provider (openai, embedeverything)")
	rootCmd.PersistentFlags().String("embedding-model", "", "embedding model")
	rootCmd.PersistentFlags().Bool("cache", false, "persist link lookups between runs")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("wiki.api_url", rootCmd.PersistentFlags().Lookup("wiki-api"))
	_ = viper.BindPFlag("embedding.provider", rootCmd.PersistentFlags().Lookup("embedding-provider"))
	_ = viper.BindPFlag("embedding.model", rootCmd.PersistentFlags().Lookup("embedding-model"))
	_ = viper.BindPFlag("cache.enabled", rootCmd.PersistentFlags().Lookup("cache"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".linkpath" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".linkpath")
	}

	viper.SetEnvPrefix("LINKPATH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads configuration and builds the logger it describes.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.NewLogger(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	return cfg, log, nil
}
