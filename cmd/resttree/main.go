package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/resttree-io/resttree/cmd/resttree/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "resttree",
	Short: "Exercise REST APIs from the command line",
	Long: `A command-line companion for the resttree client toolkit.

Point it at a service base URL and exchange requests against routes
underneath it, with the same retry and auth behavior the library
applies programmatically.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.resttree/config.yml)")
	rootCmd.PersistentFlags().StringP("base-url", "b", "", "service base URL")
	rootCmd.PersistentFlags().StringP("token", "t", "", "bearer token")
	rootCmd.PersistentFlags().String("user", "", "basic auth username")
	rootCmd.PersistentFlags().String("password", "", "basic auth password")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("username", rootCmd.PersistentFlags().Lookup("user"))
	_ = viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(commands.NewRequestCommands()...)
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
}

func initConfig() {
	if configFile, _ := rootCmd.PersistentFlags().GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".resttree"))
			viper.SetConfigName("config")
			viper.SetConfigType("yml")
		}
	}

	viper.SetEnvPrefix("RESTTREE")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
