package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/anonyreport/internal/api"
	"github.com/nao1215/anonyreport/internal/model"
	"github.com/nao1215/anonyreport/internal/report"
)

// defaultTreeConcurrency bounds concurrent lookups of regions --all.
const defaultTreeConcurrency = 4

// NewRegionsCmd creates the regions command.
func NewRegionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions [departamento [provincia]]",
		Short: "List the regions offered on the location step",
		Long: `Regions lists departments, the provinces of a department, or the districts
of a province, exactly as the location step of the survey offers them.

With --all the whole hierarchy is loaded (lookups run concurrently).

Examples:
  # List departments
  anonyreport regions

  # List the districts of a province
  anonyreport regions AYACUCHO HUAMANGA

  # Export the whole hierarchy as JSON
  anonyreport regions --all --json > ubigeo.json`,
		Args: cobra.MaximumNArgs(2),
		RunE: runRegionsCmd,
	}

	addTransportFlags(cmd)
	cmd.Flags().BoolP("all", "a", false,
		"Load every department, province and district")
	cmd.Flags().IntP("concurrency", "n", defaultTreeConcurrency,
		"Number of concurrent lookups with --all")
	cmd.Flags().Bool("no-cache", false,
		"Fetch every lookup from the backend instead of reusing earlier results")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runRegionsCmd executes the regions command.
func runRegionsCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyTransportFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	flags := cmd.Flags()
	all, err := flags.GetBool("all")
	if err != nil {
		return err
	}
	if all && len(args) > 0 {
		return errors.New("--all lists the whole hierarchy and takes no arguments")
	}
	concurrency, err := flags.GetInt("concurrency")
	if err != nil {
		return err
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return err
	}
	format, err := regionsFormat(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := newLogger(cfg.Verbose)

	t, err := newTransport(ctx, cfg, cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}
	defer t.Close()

	client, err := newAPIClient(cfg, t, logger, api.WithLookupCache(!noCache))
	if err != nil {
		return err
	}

	var regions []model.RegionNode
	if all {
		regions, err = client.Tree(ctx, model.LevelDistrict, concurrency)
	} else {
		var names []string
		names, err = client.Children(ctx, args...)
		regions = make([]model.RegionNode, len(names))
		for i, name := range names {
			regions[i].Name = name
		}
	}
	if err != nil {
		return fmt.Errorf("failed to load regions: %w", err)
	}

	w, err := report.NewWriter(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	_, err = w.WriteRegions(regions)
	return err
}

// regionsFormat returns the writer format selected by --json or --markdown.
func regionsFormat(cmd *cobra.Command) (string, error) {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return "", err
	}
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return "", err
	}

	switch {
	case asJSON:
		return report.FormatJSON, nil
	case asMarkdown:
		return report.FormatMarkdown, nil
	default:
		return report.FormatText, nil
	}
}
