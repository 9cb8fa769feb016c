// Package readiness wakes a possibly cold backend and remembers whether it answered.
//
// A Prober checks the liveness endpoint once per session. The first user
// interaction starts it in the background so the backend warms up while the
// respondent answers the early questions; the submission coordinator consults
// the result, and joins or starts the probe only when no result exists yet.
// The probe is advisory: it never blocks navigation and never fails a caller.
package readiness
