package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what this machine remembers about the survey",
		Long: `Status prints the local state kept between runs: a masked form of the
random session token, whether a response was accepted, and the log of
submission attempts. Attempts only store digests, never answers.

Use --reset to forget everything. The next run starts with a new token and
may submit again.

Examples:
  anonyreport status
  anonyreport status --reset`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}

	cmd.Flags().Bool("reset", false,
		"Forget the session token, the completed flag and the attempt log")

	return cmd
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	reset, err := cmd.Flags().GetBool("reset")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	db, err := openStateDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if reset {
		if err := db.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset local state: %w", err)
		}
		fmt.Fprintln(out, "Local state cleared.")
		return nil
	}

	token, err := db.SessionToken(ctx)
	if err != nil {
		return err
	}
	done, err := db.Completed(ctx)
	if err != nil {
		return err
	}
	attempts, err := db.Attempts(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Database:  %s\n", db.Path())
	fmt.Fprintf(out, "Token:     %s\n", maskToken(token))
	fmt.Fprintf(out, "Completed: %t\n", done)
	fmt.Fprintf(out, "Attempts:  %d\n", len(attempts))
	for _, a := range attempts {
		line := fmt.Sprintf("  %s  %-13s %s", a.Timestamp.Local().Format(timestampLayout), a.Status, shortDigest(a.RecordDigest))
		if a.Detail != "" {
			line += "  " + a.Detail
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

// timestampLayout is how attempt times are printed.
const timestampLayout = "2006-01-02 15:04:05"

// maskToken keeps the first and last four characters of a token.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "…" + token[len(token)-4:]
}

// shortDigest abbreviates a hex digest for display.
func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
