// Package cli wires the cobra command tree. Configuration follows the
// usual hierarchy: flags over CANTUS_* environment variables over
// ~/.cantus/config.yaml over built-in defaults.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cantuslabs/cantus/internal/model"
)

var (
	cfgFile   string
	rulesFile string
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cantus",
	Short: "Cantus - stylistic verification for symbolic scores (non-normative)",
	Long: `Cantus checks symbolic polyphonic scores against a configurable set
of voice-leading rules by compiling them to logical constraints and
deciding them with a SAT solver.

It does not determine whether music is good, beautiful, or historically
authentic. It evaluates conformance to the rules you configured, and
explains every violation at a concrete location.

Cantus is a proof assistant for counterpoint, not a critic.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Cantus.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cantus v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.cantus/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "rule configuration file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.cantus")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CANTUS_*
	viper.SetEnvPrefix("CANTUS")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// buildConfig assembles the effective configuration: defaults, then
// the config file via viper, then the --rules file, then flags applied
// by the calling command.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if viper.ConfigFileUsed() != "" {
		if err := viper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if rulesFile != "" {
		rules, err := model.LoadRuleConfig(rulesFile)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rules
	}

	cfg.Output.Verbose = verbose
	return cfg, nil
}
