package config

import "time"

// File represents the structure of the .anonyreport configuration file.
// Zero values leave the corresponding setting untouched.
type File struct {
	// APIURL is the survey backend origin.
	APIURL string `yaml:"api_url,omitempty"`

	// ProbeTimeout bounds the liveness probe, e.g. "15s".
	ProbeTimeout time.Duration `yaml:"probe_timeout,omitempty"`

	// RequestTimeout bounds lookups and submission, e.g. "30s".
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`

	// Language is "es" or "en".
	Language string `yaml:"language,omitempty"`

	// Proxy is a SOCKS5 proxy address such as "127.0.0.1:9050".
	Proxy string `yaml:"proxy,omitempty"`

	// Format is the default receipt format.
	Format string `yaml:"format,omitempty"`
}

// Apply copies every setting present in the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.APIURL != "" {
		cfg.APIURL = f.APIURL
	}
	if f.ProbeTimeout != 0 {
		cfg.ProbeTimeout = f.ProbeTimeout
	}
	if f.RequestTimeout != 0 {
		cfg.RequestTimeout = f.RequestTimeout
	}
	if f.Language != "" {
		cfg.Language = f.Language
	}
	if f.Proxy != "" {
		cfg.TorProxyAddress = f.Proxy
	}
	if f.Format != "" {
		cfg.Format = f.Format
	}
}
