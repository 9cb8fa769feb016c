package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/anonyreport/internal/config"
)

// NewRootCmd creates the root command for anonyreport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anonyreport",
		Short: "Anonymous survey client for extortion reports",
		Long: `anonyreport collects an anonymous survey response through a short
branching questionnaire and submits it to the collection backend.

No name, phone number or address is asked. Use --tor or --proxy to hide
your network address from the backend as well.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .anonyreport in current or home directory)")
	cmd.PersistentFlags().String("api-url", "",
		"Survey backend origin (overrides $"+config.EnvAPIURL+" and the configuration file)")
	cmd.PersistentFlags().String("data-dir", "",
		"Directory of the local state database (default: XDG data directory)")

	// Add subcommands
	cmd.AddCommand(NewFillCmd())
	cmd.AddCommand(NewHealthCmd())
	cmd.AddCommand(NewRegionsCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
