// Package log provides secure logging built on top of the standard slog package.
//
// The SecureHandler masks values before they reach any output:
//   - the session token and anything that looks like a UUID or bearer token
//   - every questionnaire answer, the three location fields and the honeypot
//   - HTTP credentials (Authorization, Cookie)
//
// Even in verbose mode these values are masked, so a shared log file never
// links a respondent to their answers.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Info("submission accepted",
//	    "token", session.Token,        // masked
//	    "esVictima", "si",             // masked
//	    "status", 201,
//	)
//
// The interactive UI owns the terminal, so the fill command writes logs to a
// file opened with OpenFile.
package log
