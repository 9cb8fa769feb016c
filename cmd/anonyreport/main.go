// Package main provides the entry point for the anonyreport CLI.
//
// anonyreport walks a respondent through the anonymous extortion survey in
// the terminal and submits the answers to the collection backend, optionally
// over Tor.
//
// Usage:
//
//	anonyreport fill
//	anonyreport fill --tor
//	anonyreport regions AYACUCHO
//
// See --help for all available options.
package main

// main is the entry point for anonyreport.
func main() {
	Execute()
}
