// Package cmd implements the httpsig CLI commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/offblocks/httpsig-draft/internal/config"
	"github.com/offblocks/httpsig-draft/internal/log"
)

var (
	// Version is set at build time
	Version = "0.1.0"

	// Global flags
	outputFormat string
	configDir    string
	logLevel     string

	// Loaded in PersistentPreRunE
	cfg *config.Config

	okFmt   = color.New(color.FgGreen).SprintFunc()
	failFmt = color.New(color.FgRed, color.Bold).SprintFunc()
	dimFmt  = color.New(color.Faint).SprintFunc()
	infoFmt = color.New(color.FgYellow).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "httpsig",
	Short: "Sign and verify HTTP requests with the Signature authorization scheme",
	Long: `httpsig signs API requests, prepares key rotation uploads and verifies
signed requests and webhook deliveries.

Requests are signed over "(request-target) Date Digest" with an RSA or EC
key and carry the signature in the Authorization header.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		switch outputFormat {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unknown output format %q, expected text, json or yaml", outputFormat)
		}

		dirs := []string{"."}
		if configDir != "" {
			dirs = []string{configDir}
		}

		c, err := config.Load(dirs...)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			c.Log.Level = log.Level(logLevel)
		}
		if err := log.Init(c.Log.Level, c.Log.JSON); err != nil {
			return err
		}

		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Directory holding config.yaml (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// formatOutput writes data as json or yaml. It reports false for text output, which each
// command renders itself.
func formatOutput(w io.Writer, data interface{}) (bool, error) {
	switch outputFormat {
	case "json":
		return true, outputJSON(w, data)
	case "yaml":
		return true, outputYAML(w, data)
	default:
		return false, nil
	}
}

func outputJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func outputYAML(w io.Writer, data interface{}) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
