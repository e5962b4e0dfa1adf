package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cantuslabs/cantus/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Cantus configuration",
	Long: `Manage Cantus configuration.

Settings resolve in order: CLI flags, then CANTUS_* environment
variables, then ~/.cantus/config.yaml, then built-in defaults.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default ~/.cantus/config.yaml",
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", used)
	} else {
		fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	fmt.Print(string(out))

	fmt.Println()
	fmt.Println("Resolution order: flags > CANTUS_* env > config file > defaults.")
	fmt.Println("The generator key is read from OPENAI_API_KEY, never from this file.")
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("find home directory: %w", err)
	}
	path := filepath.Join(home, ".cantus", "config.yaml")

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists; 'cantus config show' displays it", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	body, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}

	header := "# Cantus configuration.\n" +
		"# Flags and CANTUS_* environment variables override these values.\n" +
		"# Keep the generator API key in OPENAI_API_KEY, not in this file.\n\n"
	if err := os.WriteFile(path, append([]byte(header), body...), 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	fmt.Printf("✓ Created %s\n", path)
	fmt.Println("Edit it directly, or inspect the result with 'cantus config show'.")
	return nil
}
