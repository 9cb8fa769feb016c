package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/anonyreport/internal/api"
	"github.com/nao1215/anonyreport/internal/config"
	"github.com/nao1215/anonyreport/internal/database"
	"github.com/nao1215/anonyreport/internal/log"
	"github.com/nao1215/anonyreport/internal/tor"
)

// buildConfig creates a Config from defaults, the configuration file, the
// environment and the global flags, in increasing order of precedence.
// Command-specific flags are applied by the caller before Validate.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path that does not exist is an error; a missing default
	// file just leaves the defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.ApplyEnv(os.Getenv)

	apiURL, err := flags.GetString("api-url")
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	dataDir, err := flags.GetString("data-dir")
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DBDir = dataDir
	}

	cfg.Verbose, err = flags.GetBool("verbose")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// addTransportFlags registers the flags that route requests through Tor.
func addTransportFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and send every request through it")
	cmd.Flags().StringP("proxy", "p", "",
		"Send every request through the SOCKS5 Tor proxy at this address (e.g., 127.0.0.1:9150)")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().Duration("timeout", config.DefaultRequestTimeout,
		"Timeout for region lookups and the submission request")
}

// applyTransportFlags copies the transport flags onto cfg.
// Flags only override the configuration file when they were set.
func applyTransportFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	var err error
	cfg.UseTor, err = flags.GetBool("tor")
	if err != nil {
		return err
	}

	if flags.Changed("proxy") {
		if cfg.TorProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}

	cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout")
	if err != nil {
		return err
	}

	if flags.Changed("timeout") {
		if cfg.RequestTimeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	return nil
}

// newLogger creates the secure logger for commands that own the terminal.
func newLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// transport is the HTTP client every backend request goes through.
type transport struct {
	client   *http.Client
	embedded *tor.EmbeddedTor
}

// Close stops the embedded Tor daemon, if one was started.
func (t *transport) Close() error {
	if t.embedded == nil {
		return nil
	}
	return t.embedded.Stop()
}

// newTransport builds the HTTP client for cfg.
//
// An onion API address is refused unless Tor is in use. With UseTor an
// embedded daemon is started; with TorProxyAddress the proxy is checked
// before use. Otherwise requests go out directly.
func newTransport(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) (*transport, error) {
	viaTor := cfg.UseTor || cfg.TorProxyAddress != ""
	if err := tor.CheckAPIHost(cfg.APIURL, viaTor); err != nil {
		return nil, err
	}

	switch {
	case cfg.UseTor:
		return startEmbeddedTor(ctx, cfg, out, logger)

	case cfg.TorProxyAddress != "":
		client, err := tor.NewClient(cfg.TorProxyAddress, cfg.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			return nil, fmt.Errorf("tor proxy check failed: %w (make sure Tor is running at %s)",
				status.Error(), cfg.TorProxyAddress)
		}
		logger.Info("Tor proxy connection verified", "address", cfg.TorProxyAddress)
		return &transport{client: client.HTTPClient()}, nil

	default:
		return &transport{client: &http.Client{
			Timeout: cfg.RequestTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}}, nil
	}
}

// startEmbeddedTor starts an embedded Tor daemon and returns a transport
// that dials through it.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) (*transport, error) {
	fmt.Fprintln(out, "Starting embedded Tor daemon...")
	fmt.Fprintf(out, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embedded := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := embedded.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}
	logger.Info("embedded Tor daemon started", "socksAddr", embedded.SocksAddr())

	client, err := embedded.NewClient(cfg.RequestTimeout)
	if err != nil {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("failed to create Tor client: %w", err)
	}

	if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("embedded Tor proxy check failed: %w", status.Error())
	}

	return &transport{client: client.HTTPClient(), embedded: embedded}, nil
}

// newAPIClient creates the backend client over t. extra options are applied last.
func newAPIClient(cfg *config.Config, t *transport, logger *slog.Logger, extra ...api.Option) (*api.Client, error) {
	opts := []api.Option{
		api.WithHTTPClient(t.client),
		api.WithUserAgent(cfg.UserAgent),
		api.WithMaxBodySize(cfg.MaxBodySize),
		api.WithLogger(logger),
	}
	return api.NewClient(cfg.APIURL, append(opts, extra...)...)
}

// openStateDB opens the local state database in cfg.DBDir.
func openStateDB(cfg *config.Config) (*database.StateDB, error) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// errAlreadyCompleted is returned by fill when a response was already accepted.
var errAlreadyCompleted = errors.New("a response from this machine was already accepted (use --force to answer again)")
