// Package config provides the configuration of anonyreport: defaults, the
// optional .anonyreport YAML file, the ANONYREPORT_API_URL override and the
// XDG directories used for local state and logs.
package config
