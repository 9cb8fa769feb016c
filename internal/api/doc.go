// Package api is the HTTP transport to the survey backend.
//
// It covers the three remote collaborators of the questionnaire:
//   - GET /health: liveness of a possibly cold backend
//   - GET /api/ubigeo/...: the department, province and district hierarchy
//   - POST /api/submit: the collection endpoint
//
// A Client is created once per process with the API origin and an
// *http.Client (plain, or routed through Tor by the tor package) and shared
// by the readiness prober, the terminal UI and the submission coordinator.
package api
