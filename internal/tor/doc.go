// Package tor routes survey traffic through the Tor network.
//
// Respondents who do not want the collection API to see their IP address
// can run "anonyreport fill --proxy 127.0.0.1:9050" against their own Tor
// daemon, or "anonyreport fill --tor" to start an embedded daemon through
// tornago. Either way the api.Client receives an *http.Client from
// Client.HTTPClient that dials every connection through SOCKS5.
//
// The API may itself be published as a v3 onion service. CheckAPIHost
// verifies such an address and refuses to reach it without Tor.
package tor
