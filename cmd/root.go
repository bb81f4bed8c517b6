package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"autoabsen/internal/output"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "autoabsen",
	Short: "AutoAbsen - automatic attendance confirmation for SimKuliah",
	Long: `autoabsen runs a local daemon that logs into simkuliah.usk.ac.id,
watches the attendance page for an active class session, and submits the
attendance confirmation at the configured moment. A web dashboard and this
CLI both talk to the daemon's HTTP API.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/autoabsen/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "autoabsen")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("AUTOABSEN")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultStateDir := filepath.Join(home, ".config", "autoabsen")

	viper.SetDefault("port", 3000)
	viper.SetDefault("state_dir", defaultStateDir)
	viper.SetDefault("portal.base_url", "https://simkuliah.usk.ac.id")
	viper.SetDefault("portal.timeout", "15s")
	viper.SetDefault("engine.check_interval", "60s")
	viper.SetDefault("engine.idle_timeout", "20m")
	viper.SetDefault("diag.db_path", filepath.Join(defaultStateDir, "diag.db"))
	viper.SetDefault("diag.keep", 20)
	viper.SetDefault("daemon.pid_file", filepath.Join(defaultStateDir, "autoabsen.pid"))

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
}
