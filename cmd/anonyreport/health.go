package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/anonyreport/internal/config"
	"github.com/nao1215/anonyreport/internal/message"
	"github.com/nao1215/anonyreport/internal/model"
	"github.com/nao1215/anonyreport/internal/readiness"
)

// errBackendUnreachable is returned by health when the probe failed.
var errBackendUnreachable = errors.New("backend is not reachable")

// NewHealthCmd creates the health command.
func NewHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check whether the survey backend is awake",
		Long: `Health sends one liveness request to the survey backend and prints the result.

A backend on a free hosting tier may take several seconds to wake up, so the
request waits up to --probe-timeout. The command exits with status 1 when the
backend did not answer.

Examples:
  anonyreport health
  anonyreport health --api-url https://encuesta.example.org --probe-timeout 30s`,
		Args: cobra.NoArgs,
		RunE: runHealthCmd,
	}

	addTransportFlags(cmd)
	cmd.Flags().Duration("probe-timeout", config.DefaultProbeTimeout,
		"How long to wait for the backend to wake up")
	cmd.Flags().StringP("language", "l", config.DefaultLanguage,
		"Language of the result: es or en")

	return cmd
}

// runHealthCmd executes the health command.
func runHealthCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyTransportFlags(cmd, cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("probe-timeout") {
		if cfg.ProbeTimeout, err = cmd.Flags().GetDuration("probe-timeout"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("language") {
		if cfg.Language, err = cmd.Flags().GetString("language"); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx := cmd.Context()
	logger := newLogger(cfg.Verbose)

	catalog, err := message.NewCatalog()
	if err != nil {
		return err
	}
	loc, err := catalog.Localizer(cfg.Language)
	if err != nil {
		return err
	}

	t, err := newTransport(ctx, cfg, cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}
	defer t.Close()

	client, err := newAPIClient(cfg, t, logger)
	if err != nil {
		return err
	}

	prober := readiness.New(client,
		readiness.WithTimeout(cfg.ProbeTimeout),
		readiness.WithLogger(logger),
	)

	start := time.Now()
	state := prober.Probe(ctx)
	elapsed := time.Since(start).Round(time.Millisecond)

	id := message.IDReadinessReady
	if state != model.ReadinessReady {
		id = message.IDReadinessDown
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", client.BaseURL(), loc.T(id, nil), elapsed)

	if state != model.ReadinessReady {
		return errBackendUnreachable
	}
	return nil
}
