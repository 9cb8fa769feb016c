package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultAPIURL is the survey backend origin used when nothing else is configured.
	DefaultAPIURL = "http://localhost:8080"

	// DefaultTorProxyAddress is the standard Tor SOCKS5 proxy address.
	// We use 127.0.0.1 instead of localhost to avoid DNS resolution overhead.
	DefaultTorProxyAddress = "127.0.0.1:9050"

	// DefaultProbeTimeout bounds the liveness probe. A cold backend on a free
	// hosting tier can take several seconds to wake up.
	DefaultProbeTimeout = 15 * time.Second

	// DefaultRequestTimeout bounds every other request (region lookups, submission).
	DefaultRequestTimeout = 30 * time.Second

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultLanguage is the language of user-facing messages.
	DefaultLanguage = "es"

	// DefaultFormat is the receipt format.
	DefaultFormat = FormatText

	// AppName is the application name used for XDG directory paths.
	AppName = "anonyreport"

	// DefaultUserAgent identifies the client to the backend. It carries no
	// information about the respondent.
	DefaultUserAgent = "anonyreport/1"

	// DefaultMaxBodySize limits the response body size read per request.
	DefaultMaxBodySize = 1 * 1024 * 1024

	// EnvAPIURL overrides the API origin at deploy time.
	EnvAPIURL = "ANONYREPORT_API_URL"
)

// Receipt formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Config holds all configuration options for anonyreport.
// It is populated from defaults, the configuration file, the environment
// and CLI flags, in increasing order of precedence.
type Config struct {
	// APIURL is the survey backend origin, e.g. "https://encuesta.example.org".
	APIURL string

	// ProbeTimeout bounds the one-shot liveness probe.
	ProbeTimeout time.Duration

	// RequestTimeout bounds region lookups and the submission request.
	RequestTimeout time.Duration

	// Language selects the message catalog ("es" or "en").
	Language string

	// TorProxyAddress is a SOCKS5 proxy ("host:port") every request is sent
	// through. Empty means a direct connection unless UseTor is set.
	TorProxyAddress string

	// UseTor starts an embedded Tor daemon and routes requests through it.
	// It takes precedence over TorProxyAddress.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor daemon.
	TorStartupTimeout time.Duration

	// DBDir is the directory of the local state database.
	// Defaults to the XDG data directory (~/.local/share/anonyreport on Linux).
	DBDir string

	// Verbose enables debug logging.
	Verbose bool

	// LogFile receives log output while the interactive UI owns the terminal.
	// "-" means stderr.
	LogFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .anonyreport is searched in the current directory and then
	// in the home directory.
	ConfigFilePath string

	// Format is the receipt format: text, json or markdown.
	Format string

	// ReceiptFile is where the receipt is written. Empty means stdout.
	ReceiptFile string

	// Force allows filling in the questionnaire again after a completed submission.
	Force bool

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		APIURL:            DefaultAPIURL,
		ProbeTimeout:      DefaultProbeTimeout,
		RequestTimeout:    DefaultRequestTimeout,
		Language:          DefaultLanguage,
		TorStartupTimeout: DefaultTorStartupTimeout,
		DBDir:             XDGDataDir(),
		LogFile:           filepath.Join(XDGStateDir(), AppName+".log"),
		Format:            DefaultFormat,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// ApplyEnv overrides the API origin from the environment.
// getenv is os.Getenv outside of tests.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
}

// XDGDataDir returns the XDG data directory for anonyreport.
// On Linux: ~/.local/share/anonyreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for anonyreport.
// On Linux: ~/.config/anonyreport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGStateDir returns the XDG state directory for anonyreport, where logs go.
// On Linux: ~/.local/state/anonyreport
func XDGStateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// Validate checks if the configuration is valid and returns the first problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidAPIURL
	}

	if c.ProbeTimeout <= 0 {
		return ErrInvalidProbeTimeout
	}

	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	switch c.Format {
	case FormatText, FormatJSON, FormatMarkdown:
	default:
		return ErrInvalidFormat
	}

	if c.Language != "es" && c.Language != "en" {
		return ErrUnsupportedLanguage
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
