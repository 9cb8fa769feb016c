package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nao1215/anonyreport/internal/config"
	"github.com/nao1215/anonyreport/internal/database"
	"github.com/nao1215/anonyreport/internal/log"
	"github.com/nao1215/anonyreport/internal/message"
	"github.com/nao1215/anonyreport/internal/model"
	"github.com/nao1215/anonyreport/internal/readiness"
	"github.com/nao1215/anonyreport/internal/report"
	"github.com/nao1215/anonyreport/internal/submission"
	"github.com/nao1215/anonyreport/internal/survey"
	"github.com/nao1215/anonyreport/internal/tui"
)

// NewFillCmd creates the fill command.
func NewFillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Answer the survey in the terminal",
		Long: `Fill shows the questionnaire one step at a time and submits the answers
when you confirm the location step.

Only the answers, the time spent and a random per-machine token are sent.
After the backend accepts the response a receipt is printed; the receipt
never contains the token.

Keys:
  up/down   move between options      space/enter  choose
  right/n   next step                 left/b       previous step
  tab       next list (location)      s            submit (location)
  q/esc     quit without submitting

Examples:
  # Answer the survey over a direct connection
  anonyreport fill

  # Hide your network address with an embedded Tor daemon
  anonyreport fill --tor

  # Use Tor Browser's proxy and keep a Markdown receipt
  anonyreport fill --proxy 127.0.0.1:9150 --receipt receipt.md --format markdown`,
		Args: cobra.NoArgs,
		RunE: runFillCmd,
	}

	addTransportFlags(cmd)

	cmd.Flags().StringP("receipt", "r", "",
		"Also write the receipt to this file (creates directories if needed)")
	cmd.Flags().String("format", config.DefaultFormat,
		"Receipt format: text, json or markdown")
	cmd.Flags().StringP("language", "l", config.DefaultLanguage,
		"Language of notices and errors: es or en")
	cmd.Flags().Duration("probe-timeout", config.DefaultProbeTimeout,
		"How long to wait for the backend to wake up")
	cmd.Flags().String("log-file", "",
		"Log destination while the survey is shown (default: XDG state directory, - for stderr)")
	cmd.Flags().Bool("force", false,
		"Answer again although a response from this machine was already accepted")

	return cmd
}

// applyFillFlags copies the fill flags onto cfg.
// Flags with a file equivalent only override it when they were set.
func applyFillFlags(cmd *cobra.Command, cfg *config.Config) error {
	if err := applyTransportFlags(cmd, cfg); err != nil {
		return err
	}

	flags := cmd.Flags()
	var err error

	if cfg.ReceiptFile, err = flags.GetString("receipt"); err != nil {
		return err
	}
	if cfg.Force, err = flags.GetBool("force"); err != nil {
		return err
	}

	if flags.Changed("format") {
		if cfg.Format, err = flags.GetString("format"); err != nil {
			return err
		}
	}
	if flags.Changed("language") {
		if cfg.Language, err = flags.GetString("language"); err != nil {
			return err
		}
	}
	if flags.Changed("probe-timeout") {
		if cfg.ProbeTimeout, err = flags.GetDuration("probe-timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("log-file") {
		if cfg.LogFile, err = flags.GetString("log-file"); err != nil {
			return err
		}
	}
	return nil
}

// runFillCmd executes the fill command.
func runFillCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFillFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStateDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	done, err := db.Completed(ctx)
	if err != nil {
		return err
	}
	if done && !cfg.Force {
		return errAlreadyCompleted
	}

	// The survey owns the terminal, so logs go to a file.
	logOut, err := log.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logOut.Close()
	logger := log.NewSecureLogger(logOut, cfg.Verbose)
	slog.SetDefault(logger)

	return runFill(ctx, cfg, db, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// runFill wires the survey and runs it until the respondent quits.
func runFill(ctx context.Context, cfg *config.Config, db *database.StateDB, out, errOut io.Writer, logger *slog.Logger) error {
	catalog, err := message.NewCatalog()
	if err != nil {
		return err
	}
	loc, err := catalog.Localizer(cfg.Language)
	if err != nil {
		return err
	}

	t, err := newTransport(ctx, cfg, errOut, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := t.Close(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}()

	client, err := newAPIClient(cfg, t, logger)
	if err != nil {
		return err
	}

	token, err := db.SessionToken(ctx)
	if err != nil {
		return err
	}

	presenter := tui.NewPresenter()
	prober := readiness.New(client,
		readiness.WithTimeout(cfg.ProbeTimeout),
		readiness.WithNotifier(presenter.Notify),
		readiness.WithLogger(logger),
	)
	coordinator := submission.NewCoordinator(client,
		submission.WithReadiness(prober),
		submission.WithStateStore(db),
		submission.WithNotifier(presenter.Notify),
		submission.WithLogger(logger),
	)
	controller := survey.NewController(model.NewSession(token, time.Now()), coordinator, presenter,
		survey.WithTrigger(prober),
		survey.WithLogger(logger),
	)

	program := tea.NewProgram(tui.New(ctx, controller, client, loc),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	presenter.Attach(program.Send)

	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return ctx.Err()
		}
		return fmt.Errorf("survey failed: %w", err)
	}

	m, ok := final.(tui.Model)
	if !ok {
		return nil
	}
	outcome, confirmed := m.Confirmed()
	if !confirmed {
		fmt.Fprintln(errOut, "No response was submitted.")
		return nil
	}

	return writeReceipt(out, cfg, outcome, time.Now())
}

// writeReceipt prints the receipt of an accepted submission and, when a
// receipt file is configured, writes it there in the configured format.
func writeReceipt(out io.Writer, cfg *config.Config, outcome submission.Outcome, at time.Time) error {
	digest, err := database.RecordDigest(outcome.Record)
	if err != nil {
		return err
	}
	receipt := report.Receipt{Record: outcome.Record, Digest: digest, SubmittedAt: at}

	if cfg.ReceiptFile == "" {
		w, err := report.NewWriter(cfg.Format, out)
		if err != nil {
			return err
		}
		_, err = w.WriteReceipt(receipt)
		return err
	}

	f, err := createReportFile(cfg.ReceiptFile)
	if err != nil {
		return err
	}
	defer f.Close()

	fileWriter, err := report.NewWriter(cfg.Format, f)
	if err != nil {
		return err
	}

	if _, err := report.NewMultiWriter(report.NewSimpleWriter(out), fileWriter).WriteReceipt(receipt); err != nil {
		return fmt.Errorf("failed to write receipt: %w", err)
	}
	fmt.Fprintf(out, "\nReceipt saved to %s\n", cfg.ReceiptFile)
	return nil
}

// createReportFile creates (or truncates) path with owner-only permissions,
// creating parent directories as needed.
func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
