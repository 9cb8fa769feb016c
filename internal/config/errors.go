package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidAPIURL is returned when the API origin is not an absolute http(s) URL.
	ErrInvalidAPIURL = errors.New("invalid API URL: expected http(s)://host[:port]")

	// ErrInvalidProbeTimeout is returned when the liveness probe timeout is not positive.
	ErrInvalidProbeTimeout = errors.New("invalid probe timeout: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidFormat is returned for a receipt format other than text, json or markdown.
	ErrInvalidFormat = errors.New("invalid format: must be text, json or markdown")

	// ErrUnsupportedLanguage is returned for a language without a message catalog.
	ErrUnsupportedLanguage = errors.New("unsupported language: must be es or en")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
